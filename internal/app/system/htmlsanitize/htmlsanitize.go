// Package htmlsanitize strips markup from user-supplied text before it is
// stored. Project names, descriptions, info values and progress notes are
// plain text; clients render them as such.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	strict *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	once.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// PlainText removes all tags (and the contents of script/style elements),
// then unescapes entities so the stored value reads as the user typed it.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(policy().Sanitize(s)))
}

// PlainTextMap applies PlainText to every string value in m, recursing into
// nested maps and slices. Other value kinds pass through unchanged.
func PlainTextMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[PlainText(k)] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case string:
		return PlainText(t)
	case map[string]any:
		return PlainTextMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	default:
		return v
	}
}
