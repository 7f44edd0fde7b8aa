// Package render provides text helpers for user-supplied strings (score
// titles, instrument and note names) shown in the TUI.
package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Sanitize drops control characters (except tab) and invalid UTF-8 bytes,
// and turns non-breaking spaces into plain spaces.
func Sanitize(s string) string {
	if !needsSanitize(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '\u00a0':
		case r != '\t' && unicode.IsControl(r):
		case r == ' ':
			b.WriteByte(' ')
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

// needsSanitize reports whether s may contain anything Sanitize would
// change. Any non-ASCII byte takes the slow path.
func needsSanitize(s string) bool {
	for i := range len(s) {
		c := s[i]
		if (c < 0x20 && c != '\t') || c >= 0x7f {
			return true
		}
	}
	return false
}

// Truncate sanitizes s and shortens it to maxWidth display columns,
// ending with "…" when cut. Wide runes count double.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(Sanitize(s), maxWidth, "…")
}

// Pad fills s with spaces to width display columns.
func Pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Row places left and right at the edges of a width-wide line, keeping at
// least one space between them.
func Row(left, right string, width int) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}
