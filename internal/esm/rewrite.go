// Package esm rewrites relative module specifiers in JavaScript and
// TypeScript source so they carry an explicit file extension.
//
// Two passes run over the token stream: one for static import/export
// declarations and one for dynamic import() calls. Only the string literal
// holding the specifier is replaced; everything else is left byte-for-byte.
package esm

import (
	"github.com/sokinpui/codemod/internal/jslex"
	"github.com/sokinpui/codemod/internal/specifier"
)

// Form tells which construct a specifier was found in.
type Form int

const (
	Static Form = iota
	Dynamic
)

func (f Form) String() string {
	if f == Dynamic {
		return "dynamic"
	}
	return "static"
}

// Change describes one rewritten specifier.
type Change struct {
	Form Form
	Line int
	From string
	To   string
}

// Result is the outcome of rewriting one source text.
type Result struct {
	Content string
	Changes []Change
}

// Modified reports whether the content differs from the input.
func (r Result) Modified() bool { return len(r.Changes) > 0 }

// Rewriter applies specifier resolution to source text.
type Rewriter struct {
	resolver *specifier.Resolver
}

// New creates a Rewriter backed by resolver.
func New(resolver *specifier.Resolver) *Rewriter {
	return &Rewriter{resolver: resolver}
}

// Rewrite rewrites every relative specifier in src. fileDir is the directory
// of the importing file and anchors resolution.
func (r *Rewriter) Rewrite(src, fileDir string) Result {
	edits, changes := r.Edits(src, fileDir)
	return Result{Content: jslex.Apply(src, edits), Changes: changes}
}

// Edits computes the edits Rewrite would apply without applying them.
func (r *Rewriter) Edits(src, fileDir string) ([]jslex.Edit, []Change) {
	sig := jslex.Significant(jslex.Tokenize(src))
	seen := make(map[int]bool)

	var (
		edits   []jslex.Edit
		changes []Change
	)
	rewrite := func(tok jslex.Token, form Form) {
		if seen[tok.Pos] {
			return
		}
		seen[tok.Pos] = true
		quote, spec, ok := jslex.Unquote(tok)
		if !ok || !r.resolver.NeedsExtension(spec) {
			return
		}
		resolved := r.resolver.Resolve(spec, fileDir)
		edits = append(edits, jslex.Edit{
			Pos:  tok.Pos,
			End:  tok.End(),
			Text: string(quote) + resolved + string(quote),
		})
		changes = append(changes, Change{
			Form: form,
			Line: jslex.LineOf(src, tok.Pos),
			From: spec,
			To:   resolved,
		})
	}

	for _, idx := range staticSpecifiers(sig) {
		rewrite(sig[idx], Static)
	}
	for _, idx := range dynamicSpecifiers(sig) {
		rewrite(sig[idx], Dynamic)
	}
	return edits, changes
}

// isClauseToken reports whether tok may appear between import/export and from.
func isClauseToken(tok jslex.Token) bool {
	if tok.Kind == jslex.Ident {
		return tok.Text != "import" && tok.Text != "export"
	}
	return tok.Is("{") || tok.Is("}") || tok.Is(",") || tok.Is("*")
}

func isKeywordAt(sig []jslex.Token, i int, word string) bool {
	if sig[i].Kind != jslex.Ident || sig[i].Text != word {
		return false
	}
	// obj.import / obj?.export are member accesses.
	if i > 0 && (sig[i-1].Is(".") || sig[i-1].Is("?.")) {
		return false
	}
	return true
}

// staticSpecifiers returns indexes of string tokens naming the module of an
// import or export declaration:
//
//	import './side-effect'
//	import def, { a, type B } from './a'
//	import type { T } from './t'
//	export * from './b'
//	export * as ns from './c'
//	export { x as y } from './d'
func staticSpecifiers(sig []jslex.Token) []int {
	var out []int
	for i := range sig {
		if !isKeywordAt(sig, i, "import") && !isKeywordAt(sig, i, "export") {
			continue
		}
		j := i + 1
		if j >= len(sig) {
			break
		}
		// import('x') and import.meta are handled elsewhere or not at all.
		if sig[j].Is("(") || sig[j].Is(".") {
			continue
		}
		if sig[j].Kind == jslex.String {
			if sig[i].Text == "import" {
				out = append(out, j)
			}
			continue
		}
		for ; j+1 < len(sig) && isClauseToken(sig[j]); j++ {
			if sig[j].Text == "from" && sig[j].Kind == jslex.Ident && sig[j+1].Kind == jslex.String && j > i+1 {
				out = append(out, j+1)
				break
			}
		}
	}
	return out
}

// dynamicSpecifiers returns indexes of string literals passed directly to
// import(...). Computed arguments are skipped.
func dynamicSpecifiers(sig []jslex.Token) []int {
	var out []int
	for i := 0; i+3 < len(sig); i++ {
		if !isKeywordAt(sig, i, "import") || !sig[i+1].Is("(") {
			continue
		}
		if sig[i+2].Kind != jslex.String {
			continue
		}
		if next := sig[i+3]; next.Is(")") || next.Is(",") {
			out = append(out, i+2)
		}
	}
	return out
}
