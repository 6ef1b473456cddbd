// Package normalize turns raw filing markup into flat, canonicalized text.
// Section location works on character offsets over the whole document, so
// every flattener preserves visible text content and its document order.
package normalize

import "strings"

// Normalize canonicalizes whitespace:
//   - runs of spaces/tabs collapse to one space
//   - each line is trimmed
//   - 3+ consecutive newlines collapse to exactly two (paragraph break)
//
// It is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	text = strings.Join(lines, "\n")

	// Collapse blank-line runs to a single paragraph break.
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(text)
}
