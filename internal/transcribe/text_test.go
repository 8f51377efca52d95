package transcribe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWav2VecText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "HELLO|WORLD", want: "Hello World"},
		{raw: "THE|QUICK|BROWN|FOX|", want: "The Quick Brown Fox "},
		{raw: "DON'T|STOP", want: "Don'T Stop"},
		{raw: "", want: ""},
		{raw: "||", want: "  "},
		{raw: "room|42b", want: "Room 42B"},
		{raw: "ÉCOLE|ÜBER", want: "École Über"},
		{raw: "STRASSE|ß", want: "Strasse Ss"},
		{raw: "ﬁne", want: "Fine"},
		{raw: "ⓐb", want: "Ⓐb"},
		{raw: "ΟΔΟΣ|ΣΟΦΙΑ", want: "Οδος Σοφια"},
		{raw: "ΑΣ'Α", want: "Ασ'Α"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Wav2VecText(tt.raw), "raw %q", tt.raw)
	}
}

func TestWav2VecTextIdempotentOnCleanText(t *testing.T) {
	t.Parallel()

	for _, clean := range []string{"Hello World", "Don'T Stop", "A B C", "École", ""} {
		once := Wav2VecText(clean)
		require.Equal(t, clean, once)
		require.Equal(t, once, Wav2VecText(once))
	}
}
