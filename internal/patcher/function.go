package patcher

import (
	"github.com/sokinpui/codemod/internal/jslex"
)

// function is a located function declaration. All indexes point into the
// significant token slice it was parsed from.
type function struct {
	name      string
	params    []param
	bodyOpen  int
	bodyClose int
}

type param struct {
	name    string
	typ     string
	hasType bool
}

// binding is a `const NAME = OBJ.PROP ?? FALLBACK` declaration.
type binding struct {
	keyword  string
	name     string
	object   string
	accessor string
	prop     string
	start    int
	end      int
	semi     bool
}

// property is one entry of an object literal. value is empty for
// shorthand and spread entries.
type property struct {
	key   string
	value []jslex.Token
}

// closing returns the index of the bracket matching the one at open, or -1.
func closing(sig []jslex.Token, open int) int {
	var pair string
	switch sig[open].Text {
	case "(":
		pair = ")"
	case "{":
		pair = "}"
	case "[":
		pair = "]"
	default:
		return -1
	}
	depth := 0
	for i := open; i < len(sig); i++ {
		if sig[i].Kind != jslex.Punct {
			continue
		}
		switch sig[i].Text {
		case "(", "{", "[":
			depth++
		case ")", "}", "]":
			depth--
			if depth == 0 {
				if sig[i].Text != pair {
					return -1
				}
				return i
			}
		}
	}
	return -1
}

// findFunction locates `function name(...) [: Type] { ... }`. Overload
// signatures ending in `;` are skipped.
func findFunction(sig []jslex.Token, name string) (function, bool) {
	for i := 0; i+2 < len(sig); i++ {
		if !sig[i].Is("function") || !sig[i+1].Is(name) || !sig[i+2].Is("(") {
			continue
		}
		closeParen := closing(sig, i+2)
		if closeParen < 0 {
			return function{}, false
		}
		fn := function{name: name, params: parseParams(sig[i+3 : closeParen])}

		k := closeParen + 1
		if k < len(sig) && sig[k].Is(":") {
			k = skipReturnType(sig, k+1)
		}
		if k >= len(sig) || !sig[k].Is("{") {
			continue
		}
		fn.bodyOpen = k
		if fn.bodyClose = closing(sig, k); fn.bodyClose < 0 {
			return function{}, false
		}
		return fn, true
	}
	return function{}, false
}

// skipReturnType returns the index of the first token after a return type
// annotation starting at k: the body brace, a `;`, or len(sig).
func skipReturnType(sig []jslex.Token, k int) int {
	angles := 0
	for k < len(sig) {
		tok := sig[k]
		switch {
		case tok.Is("<"):
			angles++
		case tok.Is(">"):
			angles--
		case tok.Is(";") && angles == 0:
			return k
		case tok.Is("(") || tok.Is("["):
			if k = closing(sig, k); k < 0 {
				return len(sig)
			}
		case tok.Is("{"):
			// A brace opens a type literal inside generics or right after
			// a type operator. Anywhere else it is the body.
			if angles == 0 && !opensType(sig[k-1]) {
				return k
			}
			if k = closing(sig, k); k < 0 {
				return len(sig)
			}
		}
		k++
	}
	return k
}

func opensType(prev jslex.Token) bool {
	switch prev.Text {
	case ":", "|", "&", ",", "=>":
		return prev.Kind == jslex.Punct
	}
	return false
}

func parseParams(tokens []jslex.Token) []param {
	var params []param
	for _, part := range splitTopLevel(tokens, ",") {
		if len(part) == 0 || part[0].Kind != jslex.Ident {
			params = append(params, param{})
			continue
		}
		p := param{name: part[0].Text}
		if len(part) > 2 && part[1].Is(":") {
			p.hasType = true
			for _, tok := range part[2:] {
				p.typ += tok.Text
			}
		}
		params = append(params, p)
	}
	return params
}

// splitTopLevel splits tokens on sep at bracket depth zero. A trailing
// separator does not produce an empty part.
func splitTopLevel(tokens []jslex.Token, sep string) [][]jslex.Token {
	var (
		parts [][]jslex.Token
		cur   []jslex.Token
		depth int
	)
	for _, tok := range tokens {
		if tok.Kind == jslex.Punct {
			switch tok.Text {
			case "(", "{", "[":
				depth++
			case ")", "}", "]":
				depth--
			}
		}
		if depth == 0 && tok.Is(sep) {
			parts = append(parts, cur)
			cur = nil
			continue
		}
		cur = append(cur, tok)
	}
	if len(cur) > 0 {
		parts = append(parts, cur)
	}
	return parts
}

// bindings collects defaulted property reads declared directly in the body.
func (fn function) bindings(src string, sig []jslex.Token) []binding {
	var out []binding
	for i := fn.bodyOpen + 1; i+5 < fn.bodyClose; i++ {
		kw := sig[i]
		if !kw.Is("const") && !kw.Is("let") && !kw.Is("var") {
			continue
		}
		if sig[i+1].Kind != jslex.Ident || !sig[i+2].Is("=") {
			continue
		}

		// OBJ(.IDENT)* ACCESSOR PROP ??
		k := i + 3
		if sig[k].Kind != jslex.Ident {
			continue
		}
		for k+2 < fn.bodyClose && (sig[k+1].Is(".") || sig[k+1].Is("?.")) && sig[k+2].Kind == jslex.Ident {
			k += 2
		}
		if k == i+3 || k+1 >= fn.bodyClose || !sig[k+1].Is("??") {
			continue
		}

		b := binding{
			keyword:  kw.Text,
			name:     sig[i+1].Text,
			object:   src[sig[i+3].Pos:sig[k-2].End()],
			accessor: sig[k-1].Text,
			prop:     sig[k].Text,
			start:    i,
		}
		b.end, b.semi = statementEnd(src, sig, k+2, fn.bodyClose)
		out = append(out, b)
	}
	return out
}

// statementEnd finds the last token of the statement continuing at from.
// It stops at a semicolon, or at a line break followed by an identifier
// when automatic semicolon insertion would end the statement.
func statementEnd(src string, sig []jslex.Token, from, limit int) (int, bool) {
	depth := 0
	for j := from; j < limit; j++ {
		tok := sig[j]
		if tok.Kind == jslex.Punct {
			switch tok.Text {
			case "(", "{", "[":
				depth++
			case ")", "}", "]":
				depth--
			case ";":
				if depth == 0 {
					return j, true
				}
			}
		}
		if depth == 0 && j+1 < limit && sig[j+1].Kind == jslex.Ident &&
			endsExpression(tok) && jslex.NewlineBetween(src, tok, sig[j+1]) {
			return j, false
		}
	}
	return limit - 1, false
}

func endsExpression(tok jslex.Token) bool {
	return tok.Kind != jslex.Punct || tok.Is(")") || tok.Is("]")
}

// returnObjects returns the properties of every `return { ... }` in the body.
func (fn function) returnObjects(sig []jslex.Token) [][]property {
	var out [][]property
	for i := fn.bodyOpen + 1; i+1 < fn.bodyClose; i++ {
		if !sig[i].Is("return") || !sig[i+1].Is("{") {
			continue
		}
		end := closing(sig, i+1)
		if end < 0 || end > fn.bodyClose {
			continue
		}
		var props []property
		for _, part := range splitTopLevel(sig[i+2:end], ",") {
			if len(part) == 0 {
				continue
			}
			p := property{key: part[0].Text}
			if len(part) > 2 && part[0].Kind == jslex.Ident && part[1].Is(":") {
				p.value = part[2:]
			}
			props = append(props, p)
		}
		out = append(out, props)
		i = end
	}
	return out
}
