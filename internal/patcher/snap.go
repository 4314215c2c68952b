package patcher

import (
	"fmt"

	"github.com/sokinpui/codemod/internal/jslex"
)

// snapExpr is a matched `Math.R(AXIS / CELL) * CELL [+ CELL / N]`.
type snapExpr struct {
	axis jslex.Token
	last jslex.Token
}

// matchSnap checks that value is the snapping expression t expects for one
// axis. The returned reason is empty on success.
func matchSnap(value []jslex.Token, axis, cell string, t Target) (snapExpr, string) {
	want := fmt.Sprintf("Math.%s(%s / %s) * %s", t.Rounding, axis, cell, cell)
	if t.Centered {
		want += fmt.Sprintf(" + %s / 2", cell)
	}

	if len(value) < 4 || !value[0].Is("Math") || !value[1].Is(".") || !value[3].Is("(") {
		return snapExpr{}, "expected " + want
	}
	if !value[2].Is(t.Rounding) {
		return snapExpr{}, fmt.Sprintf("rounds with Math.%s, expected Math.%s", value[2].Text, t.Rounding)
	}
	if len(value) > 4 && value[4].Is("(") {
		if containsPunct(value[4:], "-") {
			return snapExpr{}, alreadyPatched
		}
		return snapExpr{}, "expected " + want
	}

	base := []string{axis, "/", cell, ")", "*", cell}
	if len(value) < 4+len(base) {
		return snapExpr{}, "expected " + want
	}
	for i, text := range base {
		if !value[4+i].Is(text) {
			return snapExpr{}, "expected " + want
		}
	}
	rest := value[4+len(base):]

	switch {
	case !t.Centered && len(rest) == 0:
	case t.Centered && len(rest) == 4 && rest[0].Is("+") && rest[1].Is(cell) &&
		rest[2].Is("/") && rest[3].Kind == jslex.Number:
	default:
		return snapExpr{}, "expected " + want
	}
	return snapExpr{axis: value[4], last: value[len(value)-1]}, ""
}

func containsPunct(tokens []jslex.Token, punct string) bool {
	for _, tok := range tokens {
		if tok.Kind == jslex.Punct && tok.Text == punct {
			return true
		}
	}
	return false
}

// edits shifts the snapped coordinate by offset before rounding and back
// after scaling.
func (e snapExpr) edits(offset string) []jslex.Edit {
	return []jslex.Edit{
		{Pos: e.axis.Pos, End: e.axis.End(), Text: "(" + e.axis.Text + " - " + offset + ")"},
		{Pos: e.last.End(), End: e.last.End(), Text: " + " + offset},
	}
}
