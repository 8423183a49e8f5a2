// Package validation formats validation failures consistently.
package validation

import (
	"fmt"
	"strings"
)

// FormatValidValues joins string-like values for error messages.
func FormatValidValues[T ~string](values []T) string {
	formatted := make([]string, 0, len(values))
	for _, value := range values {
		formatted = append(formatted, string(value))
	}
	return strings.Join(formatted, ", ")
}

// FormatValue renders a rejected value: strings quoted, anything else as-is.
func FormatValue(value any) string {
	if s, ok := value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	if value == nil {
		return "null"
	}
	return fmt.Sprintf("%v", value)
}

// FormatInvalidValueError wraps base with the rejected value and the values
// that would have been accepted.
func FormatInvalidValueError[T ~string](base error, value any, valid []T) error {
	return fmt.Errorf("%w: %s (valid: %s)", base, FormatValue(value), FormatValidValues(valid))
}
