// Package patcher rewrites the grid snapping helpers of a scene canvas so
// they honour a per-scene grid offset.
//
// Matching is structural: the source is tokenized and each target function
// is located by name, then its cell-size bindings and returned coordinate
// expressions are checked against the expected shape. Formatting, comments
// and unrelated code inside the function do not affect the match.
package patcher

import (
	"fmt"
	"strings"

	"github.com/sokinpui/codemod/internal/jslex"
	"github.com/sokinpui/codemod/model"
)

const (
	widthProp   = "gridWidth"
	heightProp  = "gridHeight"
	offsetXProp = "gridOffsetX"
	offsetYProp = "gridOffsetY"
	offsetXVar  = "offsetX"
	offsetYVar  = "offsetY"

	// ContextLen is how much source is kept for diagnostics on a non-match.
	ContextLen = 500

	alreadyPatched = "already applies grid offsets"
)

// Target names a snapping function and the rounding it is expected to use.
type Target struct {
	Name     string
	Rounding string
	// Centered targets add half a cell after scaling.
	Centered bool
}

// DefaultTargets are the two snapping helpers of the scene canvas.
var DefaultTargets = []Target{
	{Name: "snapToGrid", Rounding: "round"},
	{Name: "snapToGridCenter", Rounding: "floor", Centered: true},
}

// Patcher applies the offset rewrite to each of its targets.
type Patcher struct {
	Targets []Target
}

// New returns a Patcher for DefaultTargets.
func New() *Patcher {
	return &Patcher{Targets: DefaultTargets}
}

// Patch rewrites every target that matches. Targets that do not match are
// reported and left untouched.
func (p *Patcher) Patch(src string) (string, model.PatchReport) {
	sig := jslex.Significant(jslex.Tokenize(src))

	var (
		report model.PatchReport
		edits  []jslex.Edit
	)
	for _, t := range p.Targets {
		e, fr := patchFunction(src, sig, t)
		edits = append(edits, e...)
		report.Functions = append(report.Functions, fr)
	}

	out := jslex.Apply(src, edits)
	report.Changed = out != src
	if !report.Changed && len(p.Targets) > 0 {
		report.Context = contextAround(src, "function "+p.Targets[0].Name)
	}
	return out, report
}

// contextAround returns up to ContextLen characters of src from marker.
func contextAround(src, marker string) string {
	i := strings.Index(src, marker)
	if i < 0 {
		return ""
	}
	rest := src[i:]
	n := 0
	for j := range rest {
		if n == ContextLen {
			return rest[:j]
		}
		n++
	}
	return rest
}

func patchFunction(src string, sig []jslex.Token, t Target) ([]jslex.Edit, model.FunctionReport) {
	report := model.FunctionReport{Name: t.Name}
	fn, ok := findFunction(sig, t.Name)
	if !ok {
		report.Reason = "function not found"
		return nil, report
	}
	report.Found = true

	fail := func(format string, args ...any) ([]jslex.Edit, model.FunctionReport) {
		report.Reason = fmt.Sprintf(format, args...)
		return nil, report
	}

	if len(fn.params) != 2 {
		return fail("expected 2 parameters, found %d", len(fn.params))
	}
	for _, prm := range fn.params {
		if prm.name == "" || (prm.hasType && prm.typ != "number") {
			return fail("parameters must be plain numbers")
		}
	}
	axisX, axisY := fn.params[0].name, fn.params[1].name

	for i := fn.bodyOpen + 1; i < fn.bodyClose; i++ {
		if sig[i].Is(offsetXVar) || sig[i].Is(offsetYVar) {
			return fail(alreadyPatched)
		}
	}

	var width, height *binding
	bindings := fn.bindings(src, sig)
	for i := range bindings {
		switch bindings[i].prop {
		case widthProp:
			width = &bindings[i]
		case heightProp:
			height = &bindings[i]
		case offsetXProp, offsetYProp:
			return fail(alreadyPatched)
		}
	}
	if width == nil {
		return fail("cell width is not read from %s", widthProp)
	}
	if height == nil {
		return fail("cell height is not read from %s", heightProp)
	}

	var (
		xExpr, yExpr snapExpr
		matched      bool
	)
	reason := fmt.Sprintf("no returned object computes both %s and %s", axisX, axisY)
	for _, props := range fn.returnObjects(sig) {
		var xValue, yValue []jslex.Token
		for _, prop := range props {
			switch prop.key {
			case axisX:
				xValue = prop.value
			case axisY:
				yValue = prop.value
			}
		}
		if xValue == nil || yValue == nil {
			continue
		}
		var why string
		if xExpr, why = matchSnap(xValue, axisX, width.name, t); why != "" {
			reason = axisX + ": " + why
			continue
		}
		if yExpr, why = matchSnap(yValue, axisY, height.name, t); why != "" {
			reason = axisY + ": " + why
			continue
		}
		matched = true
		break
	}
	if !matched {
		return fail("%s", reason)
	}

	// The offsets are declared right after the later of the two cell bindings.
	anchor := height
	if width.end > height.end {
		anchor = width
	}
	indent := jslex.IndentAt(src, sig[anchor.start].Pos)
	decl := func(b *binding, name, prop string) string {
		text := "\n" + indent + anchor.keyword + " " + name + " = " + b.object + b.accessor + prop + " ?? 0"
		if anchor.semi {
			text += ";"
		}
		return text
	}
	at := sig[anchor.end].End()
	edits := []jslex.Edit{{
		Pos:  at,
		End:  at,
		Text: decl(width, offsetXVar, offsetXProp) + decl(height, offsetYVar, offsetYProp),
	}}
	edits = append(edits, xExpr.edits(offsetXVar)...)
	edits = append(edits, yExpr.edits(offsetYVar)...)

	report.Patched = true
	return edits, report
}
