package text

import (
	"fmt"
	"sort"
	"strings"
)

// Template is a message with "{key}" placeholders.
type Template struct {
	raw string
}

// NewTemplate parses '&' formatting codes in raw and keeps the placeholders.
func NewTemplate(raw string) Template {
	return Template{raw: FromFormattingCode(raw).Code()}
}

func (t Template) Raw() string { return t.raw }

// Placeholders lists the keys referenced by the template, sorted.
func (t Template) Placeholders() []string {
	seen := make(map[string]struct{})
	rest := t.raw
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			break
		}
		key := rest[open+1 : open+end]
		if key != "" {
			seen[key] = struct{}{}
		}
		rest = rest[open+end+1:]
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply substitutes every known placeholder. Unknown placeholders are left
// untouched so a missing substitution is visible in the output.
func (t Template) Apply(subs map[string]any) Text {
	if len(subs) == 0 {
		return Text{code: t.raw}
	}
	pairs := make([]string, 0, len(subs)*2)
	for k, v := range subs {
		pairs = append(pairs, "{"+k+"}", format(v))
	}
	return Text{code: strings.NewReplacer(pairs...).Replace(t.raw)}
}

func format(v any) string {
	switch tv := v.(type) {
	case Text:
		return tv.code
	case string:
		return tv
	case fmt.Stringer:
		return tv.String()
	default:
		return fmt.Sprint(v)
	}
}

// Literal wraps t as a template. Braces in t are kept verbatim as long as
// Apply is called without substitutions.
func Literal(t Text) Template {
	return Template{raw: t.code}
}
