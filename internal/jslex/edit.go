package jslex

import (
	"sort"
	"strings"
)

// Edit replaces src[Pos:End] with Text. An insertion has Pos == End.
type Edit struct {
	Pos  int
	End  int
	Text string
}

// Apply applies non-overlapping edits to src. Edits may be given in any
// order; insertions at the same offset keep their relative order.
func Apply(src string, edits []Edit) string {
	if len(edits) == 0 {
		return src
	}
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Pos < sorted[j].Pos })

	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for _, e := range sorted {
		if e.Pos < last {
			continue
		}
		b.WriteString(src[last:e.Pos])
		b.WriteString(e.Text)
		last = e.End
	}
	b.WriteString(src[last:])
	return b.String()
}

// LineOf returns the 1-based line number of offset pos in src.
func LineOf(src string, pos int) int {
	if pos > len(src) {
		pos = len(src)
	}
	return strings.Count(src[:pos], "\n") + 1
}

// IndentAt returns the leading whitespace of the line containing pos.
func IndentAt(src string, pos int) string {
	start := strings.LastIndexByte(src[:pos], '\n') + 1
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return src[start:end]
}

// NewlineBetween reports whether a line break separates two tokens.
func NewlineBetween(src string, a, b Token) bool {
	if a.End() > b.Pos {
		return false
	}
	return strings.ContainsAny(src[a.End():b.Pos], "\n\r")
}

// Unquote returns the quote character and raw body of a string token.
// ok is false for anything but a terminated single or double quoted string.
func Unquote(tok Token) (quote byte, body string, ok bool) {
	if tok.Kind != String || len(tok.Text) < 2 {
		return 0, "", false
	}
	q := tok.Text[0]
	if tok.Text[len(tok.Text)-1] != q {
		return 0, "", false
	}
	return q, tok.Text[1 : len(tok.Text)-1], true
}
