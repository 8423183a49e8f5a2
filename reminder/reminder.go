// Package reminder extracts user reminders from free-form task input.
//
// A reminder is any text wrapped in <reminder>...</reminder>. Reminders can
// appear anywhere in the task text, span multiple lines, and repeat; they are
// recomputed from the source text every time it is processed and never stored
// on their own.
package reminder

import (
	"regexp"
	"strings"
)

const (
	openTag  = "<reminder>"
	closeTag = "</reminder>"
)

// tagPattern is compiled once. A regexp.Regexp keeps no scan position between
// calls, so Extract, Has and Tags are independent of call history and safe for
// concurrent use.
var tagPattern = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(openTag) + `(.*?)` + regexp.QuoteMeta(closeTag))

// Tag is one well-formed reminder tag pair found in a text.
type Tag struct {
	// Content is the text between the tags, untrimmed.
	Content string

	// Start is the byte offset of the opening tag.
	Start int

	// End is the byte offset just past the closing tag.
	End int
}

// Tags returns every reminder tag pair in text, in document order.
//
// Matching is non-greedy: the first closing tag after an opening tag ends the
// match, and scanning resumes after it. An opening tag without a closing tag
// is ignored.
func Tags(text string) []Tag {
	if text == "" {
		return nil
	}
	matches := tagPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]Tag, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, Tag{
			Content: text[m[2]:m[3]],
			Start:   m[0],
			End:     m[1],
		})
	}
	return tags
}

// Extract returns the reminder text for prompt injection.
//
// Each tag's content is trimmed, blank contents are dropped, and the rest are
// joined with a blank line. Text without qualifying tags yields "".
func Extract(text string) string {
	tags := Tags(text)
	if len(tags) == 0 {
		return ""
	}
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		content := strings.TrimSpace(tag.Content)
		if content == "" {
			continue
		}
		parts = append(parts, content)
	}
	return strings.Join(parts, "\n\n")
}

// Has reports whether text contains at least one reminder tag pair. Pairs with
// blank content count.
func Has(text string) bool {
	if text == "" {
		return false
	}
	return tagPattern.MatchString(text)
}
