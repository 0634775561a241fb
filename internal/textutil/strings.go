// Package textutil holds the string and JSON helpers shared by the
// segmenters and the ingestion pipeline.
package textutil

import (
	"strings"
	"unicode"
)

// TrimAffix removes every leading and trailing repetition of affix.
func TrimAffix(text, affix string) string {
	if affix == "" {
		return text
	}
	for strings.HasPrefix(text, affix) {
		text = text[len(affix):]
	}
	for strings.HasSuffix(text, affix) {
		text = text[:len(text)-len(affix)]
	}
	return text
}

// ReplaceAll replaces old with new until no occurrence of old remains, so
// "a  b" with ("  ", " ") collapses any run of spaces. When new itself
// contains old the loop could never settle; the input is returned unchanged.
func ReplaceAll(text, old, new string) string {
	if old == "" || strings.Contains(new, old) {
		return text
	}
	for strings.Contains(text, old) {
		text = strings.ReplaceAll(text, old, new)
	}
	return text
}

// NormalizeWhitespace trims spaces at both ends and collapses triple newlines
// and newline-space pairs until the text stops changing.
func NormalizeWhitespace(text string) string {
	for {
		next := TrimAffix(text, " ")
		next = ReplaceAll(next, "\n\n\n", "\n\n")
		next = ReplaceAll(next, "\n ", "\n")
		if next == text {
			return next
		}
		text = next
	}
}

// SanitizeText flattens text into a single line: newlines become sentence
// breaks and doubled full stops are removed.
func SanitizeText(text string) string {
	text = TrimAffix(text, " ")
	text = TrimAffix(text, "\n")
	text = ReplaceAll(text, "\n", ". ")
	text = ReplaceAll(text, " .", ".")
	text = ReplaceAll(text, "..", ".")
	return text
}

// CollapseSpaces maps every Unicode space to an ASCII space, collapses runs
// and trims the result.
func CollapseSpaces(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pending := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
