package chat

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxTextLength is the largest text body accepted in one message, in characters.
	MaxTextLength = 4096
	// MaxCaptionLength is the largest media caption, in characters.
	MaxCaptionLength = 1024
	// MaxButtonsPerRow caps inline controls on a single row.
	MaxButtonsPerRow = 8
	// MaxButtons caps inline controls attached to one message.
	MaxButtons = 100
)

// SplitLines packs lines into chunks of at most limit characters, joining lines
// with "\n". Order is preserved and a line is never split across chunks; a single
// line longer than limit becomes its own chunk, truncated to limit.
func SplitLines(lines []string, limit int) []string {
	if limit <= 0 {
		limit = MaxTextLength
	}
	var (
		chunks []string
		cur    []string
		size   int
	)
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, strings.Join(cur, "\n"))
			cur, size = nil, 0
		}
	}
	for _, line := range lines {
		n := utf8.RuneCountInString(line)
		if n > limit {
			flush()
			chunks = append(chunks, truncate(line, limit))
			continue
		}
		if len(cur) > 0 && size+1+n > limit {
			flush()
		}
		if len(cur) > 0 {
			size++
		}
		cur = append(cur, line)
		size += n
	}
	flush()
	return chunks
}

// Truncate shortens s to at most limit characters.
func Truncate(s string, limit int) string {
	return truncate(s, limit)
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit])
}

// TruncateMarkdown shortens legacy Markdown text to at most limit characters
// without leaving a dangling escape or an unclosed entity at the cut.
func TruncateMarkdown(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= 1 {
		return ""
	}
	r := []rune(truncate(s, limit-1))
	tail := 0
	for i := len(r) - 1; i >= 0 && r[i] == '\\'; i-- {
		tail++
	}
	if tail%2 == 1 {
		r = r[:len(r)-1]
	}

	var open rune
	escaped := false
	for _, c := range r {
		switch {
		case escaped:
			escaped = false
		case c == '\\' && open != '`':
			escaped = true
		case c == '*' || c == '_' || c == '`':
			if open == 0 {
				open = c
			} else if open == c {
				open = 0
			}
		}
	}
	if open != 0 {
		r = append(r, open)
	}
	return string(r)
}

// CountButtons returns the total number of controls in rows.
func CountButtons(rows [][]Button) int {
	n := 0
	for _, row := range rows {
		n += len(row)
	}
	return n
}

// FitControls drops controls that exceed the per-row and per-message caps.
func FitControls(rows [][]Button) [][]Button {
	out := make([][]Button, 0, len(rows))
	total := 0
	for _, row := range rows {
		if len(row) > MaxButtonsPerRow {
			row = row[:MaxButtonsPerRow]
		}
		if total+len(row) > MaxButtons {
			row = row[:MaxButtons-total]
		}
		if len(row) == 0 {
			continue
		}
		out = append(out, row)
		total += len(row)
		if total == MaxButtons {
			break
		}
	}
	return out
}
