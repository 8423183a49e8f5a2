package task

import (
	"strings"

	internalstrings "github.com/amonks/taskprompt/internal/strings"
	"github.com/muesli/reflow/wordwrap"
)

const (
	lineWidth         = 80
	documentIndent    = 4
	subdocumentIndent = 8
)

// IndentBlock prefixes each line with spaces.
func IndentBlock(value string, spaces int) string {
	value = internalstrings.TrimTrailingNewlines(value)
	if spaces <= 0 {
		return value
	}
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// ReflowIndentedText wraps runs of equally indented lines and keeps their
// indentation.
func ReflowIndentedText(value string, width int, baseIndent int) string {
	value = internalstrings.NormalizeNewlines(value)
	value = strings.TrimRight(value, "\n")
	if internalstrings.IsBlank(value) {
		return IndentBlock("-", baseIndent)
	}

	lines := strings.Split(value, "\n")
	var out []string
	for i := 0; i < len(lines); {
		line := lines[i]
		if internalstrings.IsBlank(line) {
			out = append(out, "")
			i++
			continue
		}
		indent := internalstrings.LeadingSpaces(line)
		var parts []string
		for i < len(lines) {
			line = lines[i]
			if internalstrings.IsBlank(line) || internalstrings.LeadingSpaces(line) != indent {
				break
			}
			parts = append(parts, strings.TrimSpace(line[indent:]))
			i++
		}
		wrapWidth := width - baseIndent - indent
		if wrapWidth < 1 {
			wrapWidth = 1
		}
		wrapped := wordwrap.String(internalstrings.NormalizeWhitespace(strings.Join(parts, " ")), wrapWidth)
		out = append(out, strings.Split(IndentBlock(wrapped, baseIndent+indent), "\n")...)
	}
	return strings.Join(out, "\n")
}
