package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Wrap hard-wraps s to width terminal cells, breaking at spaces where
// possible. Wide (CJK) runes count as two cells. Existing newlines are kept.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	if runewidth.StringWidth(line) <= width {
		return []string{line}
	}

	var (
		lines []string
		cur   strings.Builder
		curW  int
	)
	flush := func() {
		lines = append(lines, strings.TrimRight(cur.String(), " "))
		cur.Reset()
		curW = 0
	}

	for _, word := range strings.SplitAfter(line, " ") {
		// trailing spaces may overhang the line end
		if curW+runewidth.StringWidth(strings.TrimRight(word, " ")) <= width {
			cur.WriteString(word)
			curW += runewidth.StringWidth(word)
			continue
		}
		if curW > 0 {
			flush()
		}
		// a single word wider than the line is split by cells
		for runewidth.StringWidth(word) > width {
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				break
			}
			lines = append(lines, head)
			word = word[len(head):]
		}
		cur.WriteString(word)
		curW = runewidth.StringWidth(word)
	}
	if cur.Len() > 0 {
		flush()
	}
	return lines
}

// Truncate shortens s to width cells, adding an ellipsis when cut
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
