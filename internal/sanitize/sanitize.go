// Package sanitize cleans raw generated text before it becomes the session document.
// All work is textual; markup is never parsed or validated.
package sanitize

import (
	"regexp"
	"strings"
)

var fenceMarkers = []string{"```html", "```"}

var wrapperTags = regexp.MustCompile(`(?i)<!doctype[^>]*>|</?html(\s[^>]*)?>|</?body(\s[^>]*)?>`)

// Sanitizer removes code-fence markers and, with StripWrapper, the outer
// document/body tags so that only inner markup remains for a rich-text editor.
type Sanitizer struct {
	StripWrapper bool
}

// Sanitize returns raw without fence markers (and wrapper tags if configured),
// trimmed of surrounding whitespace. Removal repeats until nothing changes, so
// markers that only appear after an earlier removal are caught as well and
// Sanitize(Sanitize(x)) == Sanitize(x).
func (s Sanitizer) Sanitize(raw string) string {
	out := raw
	for {
		next := s.pass(out)
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}

func (s Sanitizer) pass(text string) string {
	for _, m := range fenceMarkers {
		text = strings.ReplaceAll(text, m, "")
	}
	if s.StripWrapper {
		text = wrapperTags.ReplaceAllString(text, "")
	}
	return text
}
