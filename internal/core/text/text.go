// Package text holds the rich text values used for NPC display names and
// for the templated messages sent back to command sources.
package text

import (
	"strings"
)

// SectionSign prefixes a formatting code in the stored form of a Text.
const SectionSign = '§'

// Text is an immutable piece of rich text. It is stored in formatting code
// form ("§aHello") so that it survives a round trip through a container.
type Text struct {
	code string
}

// Empty is the zero Text.
var Empty = Text{}

// Of wraps plain content without interpreting any formatting codes.
func Of(s string) Text {
	return Text{code: s}
}

// FromFormattingCode parses user input where '&' introduces a formatting
// code ("&aGreen &lbold"). A literal ampersand that is not followed by a
// code character is kept as is.
func FromFormattingCode(s string) Text {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '&' && i+1 < len(runes) && isCode(runes[i+1]) {
			b.WriteRune(SectionSign)
			b.WriteRune(toLower(runes[i+1]))
			i++
			continue
		}
		b.WriteRune(runes[i])
	}
	return Text{code: b.String()}
}

// Parse restores a Text from its stored formatting code form.
func Parse(code string) Text {
	return Text{code: code}
}

// Code returns the stored form, including '§' formatting codes.
func (t Text) Code() string { return t.code }

// Plain returns the content with every formatting code stripped.
func (t Text) Plain() string {
	if !strings.ContainsRune(t.code, SectionSign) {
		return t.code
	}
	var b strings.Builder
	runes := []rune(t.code)
	for i := 0; i < len(runes); i++ {
		if runes[i] == SectionSign && i+1 < len(runes) {
			i++
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

func (t Text) IsEmpty() bool { return t.code == "" }

func (t Text) String() string { return t.Plain() }

// Concat joins texts without separators.
func Concat(parts ...Text) Text {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.code)
	}
	return Text{code: b.String()}
}

func (t Text) MarshalText() ([]byte, error) {
	return []byte(t.code), nil
}

func (t *Text) UnmarshalText(b []byte) error {
	t.code = string(b)
	return nil
}

func isCode(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		return true
	case strings.ContainsRune("klmnorKLMNOR", r):
		return true
	}
	return false
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
