package transcribe

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Wav2VecText turns the raw CTC token stream ("HELLO|WORLD") into readable
// words: pipes become spaces and the result is title-cased.
func Wav2VecText(raw string) string {
	return titleCase(strings.ReplaceAll(raw, "|", " "))
}

// titleCase applies the title mapping to a character that follows an uncased
// one and the lower mapping to every other character. Mappings are the full
// ones ("ß" titles to "Ss"). Word boundaries are purely casedness, so an
// apostrophe starts a new word and "DON'T" becomes "Don'T".
func titleCase(s string) string {
	title := cases.Title(language.Und, cases.NoLower)
	lower := cases.Lower(language.Und)
	runes := []rune(s)

	var b strings.Builder
	b.Grow(len(s))

	prevCased := false
	for i, r := range runes {
		switch {
		case prevCased && r == 'Σ':
			if finalSigma(runes, i) {
				b.WriteRune('ς')
			} else {
				b.WriteRune('σ')
			}
		case prevCased:
			b.WriteString(lower.String(string(r)))
		default:
			b.WriteString(title.String(string(r)))
		}
		prevCased = isCased(r)
	}
	return b.String()
}

// isCased reports the Unicode Cased property: Lowercase, Uppercase or
// titlecase letters.
func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r) ||
		unicode.Is(unicode.Other_Lowercase, r) || unicode.Is(unicode.Other_Uppercase, r)
}

// isCaseIgnorable approximates the Unicode Case_Ignorable property.
func isCaseIgnorable(r rune) bool {
	switch r {
	case '\'', '.', ':', '\u00b7', '\u0387', '\u05f4', '\u2018', '\u2019', '\u2024', '\u2027', '\ufe13', '\ufe52', '\ufe55', '\uff07', '\uff0e', '\uff1a':
		return true
	}
	return unicode.In(r, unicode.Mn, unicode.Me, unicode.Cf, unicode.Lm, unicode.Sk)
}

// finalSigma reports whether the capital sigma at i ends a word: a cased
// character precedes it and none follows, skipping case-ignorables.
func finalSigma(runes []rune, i int) bool {
	j := i - 1
	for j >= 0 && isCaseIgnorable(runes[j]) {
		j--
	}
	if j < 0 || !isCased(runes[j]) {
		return false
	}

	k := i + 1
	for k < len(runes) && isCaseIgnorable(runes[k]) {
		k++
	}
	return k == len(runes) || !isCased(runes[k])
}
