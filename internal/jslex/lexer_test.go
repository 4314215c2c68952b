package jslex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

func TestTokenize_RoundTrip(t *testing.T) {
	src := "import { a, type B } from './a';\n" +
		"// import x from './commented'\n" +
		"const s = `tpl ${fn({ k: 1 })} end`;\n" +
		"const r = /[/]\\//g.test(s) ? 1 / 2 : x?.y ?? 3;\n" +
		"/* block\n comment */ export * as ns from \"../b\";\n"

	tokens := Tokenize(src)

	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			require.Equal(t, tokens[i-1].End(), tok.Pos, "token %d is not contiguous", i)
		}
		b.WriteString(tok.Text)
	}
	assert.Equal(t, src, b.String())
}

func TestTokenize_CommentsAndStringsAreOpaque(t *testing.T) {
	src := "// import a from './x'\n'import b from \"./y\"' /* import('./z') */"
	sig := Significant(Tokenize(src))

	require.Len(t, sig, 1)
	assert.Equal(t, String, sig[0].Kind)
}

func TestTokenize_TemplateSubstitution(t *testing.T) {
	src := "`a ${ import('./lazy') } b ${ {x: 1}.x } c`"
	sig := Significant(Tokenize(src))

	assert.Equal(t, []string{
		"`a ${", "import", "(", "'./lazy'", ")", "} b ${",
		"{", "x", ":", "1", "}", ".", "x", "} c`",
	}, texts(sig))
	assert.Equal(t, Template, sig[0].Kind)
	assert.Equal(t, String, sig[3].Kind)
	assert.Equal(t, Template, sig[len(sig)-1].Kind)
}

func TestTokenize_RegexVersusDivision(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want Kind
		text string
	}{
		{name: "after assignment", src: "x = /ab+c/i", want: Regex, text: "/ab+c/i"},
		{name: "after return", src: "return /a/", want: Regex, text: "/a/"},
		{name: "after identifier", src: "a / b / c", want: Punct, text: "/"},
		{name: "after paren", src: "(a) / 2", want: Punct, text: "/"},
		{name: "unterminated on line", src: "x = / 2\n", want: Punct, text: "/"},
		{name: "slash in class", src: "x = /[/]/", want: Regex, text: "/[/]/"},
		{name: "jsx closing tag", src: "<a>home</a>; import('./Page')", want: Punct, text: "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var found *Token
			for _, tok := range Significant(Tokenize(tc.src)) {
				if strings.HasPrefix(tok.Text, "/") {
					tok := tok
					found = &tok
					break
				}
			}
			require.NotNil(t, found)
			assert.Equal(t, tc.want, found.Kind)
			assert.Equal(t, tc.text, found.Text)
		})
	}
}

func TestTokenize_Punctuators(t *testing.T) {
	sig := Significant(Tokenize("a?.b ?? c => d ... e ? .5 : f"))
	assert.Equal(t, []string{"a", "?.", "b", "??", "c", "=>", "d", "...", "e", "?", ".5", ":", "f"}, texts(sig))
}

func TestApply(t *testing.T) {
	src := "abcdef"
	got := Apply(src, []Edit{
		{Pos: 4, End: 5, Text: "E"},
		{Pos: 0, End: 0, Text: ">"},
		{Pos: 1, End: 3, Text: "BC!"},
		{Pos: 6, End: 6, Text: "<"},
	})
	assert.Equal(t, ">aBC!dEf<", got)
}

func TestUnquote(t *testing.T) {
	q, body, ok := Unquote(Token{Kind: String, Text: `"./a"`})
	require.True(t, ok)
	assert.Equal(t, byte('"'), q)
	assert.Equal(t, "./a", body)

	_, _, ok = Unquote(Token{Kind: String, Text: `'./a`})
	assert.False(t, ok)
}

func TestIndentAt(t *testing.T) {
	src := "a\n    const x = 1;\n"
	assert.Equal(t, "    ", IndentAt(src, strings.Index(src, "x")))
	assert.Equal(t, 2, LineOf(src, strings.Index(src, "x")))
}
