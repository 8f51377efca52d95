// Package language holds the table of languages wavscribe offers as
// transcription hints. Whisper accepts more codes than are listed here; the
// table only drives validation in the convert command and the help output.
package language

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	xlanguage "golang.org/x/text/language"
)

// Language is one entry of the supported table.
type Language struct {
	Tag  xlanguage.Tag
	Name string
}

// Code is the ISO 639-1 code passed to the model.
func (l Language) Code() string {
	return l.Tag.String()
}

var supported = []Language{
	{xlanguage.English, "English"},
	{xlanguage.Chinese, "Chinese"},
	{xlanguage.Japanese, "Japanese"},
	{xlanguage.Korean, "Korean"},
	{xlanguage.French, "French"},
	{xlanguage.German, "German"},
	{xlanguage.Spanish, "Spanish"},
	{xlanguage.Russian, "Russian"},
	{xlanguage.Portuguese, "Portuguese"},
	{xlanguage.Arabic, "Arabic"},
	{xlanguage.Hindi, "Hindi"},
	{xlanguage.Italian, "Italian"},
}

var byCode map[string]Language

func init() {
	byCode = make(map[string]Language, len(supported))
	for _, l := range supported {
		byCode[l.Code()] = l
	}
}

// Supported returns the table in display order. The slice is a copy.
func Supported() []Language {
	out := make([]Language, len(supported))
	copy(out, supported)
	return out
}

// Lookup matches code case-insensitively against the table.
func Lookup(code string) (Language, bool) {
	l, ok := byCode[strings.ToLower(strings.TrimSpace(code))]
	return l, ok
}

// RenderTable renders the supported languages as a two column table.
func RenderTable() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Code", "Language"})
	for _, l := range supported {
		tw.AppendRow(table.Row{l.Code(), l.Name})
	}
	return tw.Render()
}
