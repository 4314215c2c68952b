// Package jslex splits JavaScript and TypeScript source into tokens.
//
// The lexer is shallow. It knows where strings, template literals, comments
// and regular expression literals end, and nothing about grammar. Every byte of the input
// belongs to exactly one token, so concatenating token texts reproduces the
// source.
package jslex

import "strings"

// Kind classifies a token.
type Kind int

const (
	Whitespace Kind = iota
	Comment
	Ident
	Number
	String
	Template
	Regex
	Punct
)

func (k Kind) String() string {
	switch k {
	case Whitespace:
		return "whitespace"
	case Comment:
		return "comment"
	case Ident:
		return "ident"
	case Number:
		return "number"
	case String:
		return "string"
	case Template:
		return "template"
	case Regex:
		return "regex"
	case Punct:
		return "punct"
	default:
		return "unknown"
	}
}

// Token is a slice of the source. Pos is the byte offset of Text.
type Token struct {
	Kind Kind
	Text string
	Pos  int
}

// End returns the byte offset just past the token.
func (t Token) End() int { return t.Pos + len(t.Text) }

// Is reports whether the token is an identifier or punctuator with the given text.
func (t Token) Is(text string) bool {
	return (t.Kind == Ident || t.Kind == Punct) && t.Text == text
}

// multi-character punctuators, longest first.
var punctuators = []string{
	"...", "??=", "===", "!==", "**=", "&&=", "||=",
	"?.", "??", "=>", "==", "!=", "<=", ">=", "&&", "||", "**", "++", "--",
	"+=", "-=", "*=", "%=", "&=", "|=", "^=",
}

// keywords after which a slash starts a regular expression.
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
}

type lexer struct {
	src    string
	pos    int
	tokens []Token
	// brace depth per open template substitution
	templates []int
}

// Tokenize splits src into tokens, whitespace and comments included.
func Tokenize(src string) []Token {
	l := &lexer{src: src}
	for l.pos < len(l.src) {
		l.next()
	}
	return l.tokens
}

// Significant filters out whitespace and comments.
func Significant(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind == Whitespace || tok.Kind == Comment {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func (l *lexer) emit(kind Kind, start int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: l.src[start:l.pos], Pos: start})
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset < len(l.src) {
		return l.src[l.pos+offset]
	}
	return 0
}

func (l *lexer) next() {
	start := l.pos
	c := l.src[l.pos]

	switch {
	case isSpace(c):
		for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
			l.pos++
		}
		l.emit(Whitespace, start)
	case c == '/' && l.peek(1) == '/':
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.pos++
		}
		l.emit(Comment, start)
	case c == '/' && l.peek(1) == '*':
		end := strings.Index(l.src[l.pos+2:], "*/")
		if end < 0 {
			l.pos = len(l.src)
		} else {
			l.pos += 2 + end + 2
		}
		l.emit(Comment, start)
	case c == '/':
		if l.regexAllowed() && l.scanRegex() {
			l.emit(Regex, start)
			return
		}
		l.pos++
		if l.peek(0) == '=' {
			l.pos++
		}
		l.emit(Punct, start)
	case c == '\'' || c == '"':
		l.scanString(c)
		l.emit(String, start)
	case c == '`':
		l.pos++
		l.scanTemplate(start)
	case c == '{':
		if n := len(l.templates); n > 0 {
			l.templates[n-1]++
		}
		l.pos++
		l.emit(Punct, start)
	case c == '}':
		if n := len(l.templates); n > 0 {
			if l.templates[n-1] == 0 {
				l.templates = l.templates[:n-1]
				l.pos++
				l.scanTemplate(start)
				return
			}
			l.templates[n-1]--
		}
		l.pos++
		l.emit(Punct, start)
	case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
		l.scanNumber()
		l.emit(Number, start)
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		l.emit(Ident, start)
	default:
		l.scanPunct()
		l.emit(Punct, start)
	}
}

// regexAllowed decides whether a slash at the current position opens a
// regular expression literal, based on the previous significant token.
func (l *lexer) regexAllowed() bool {
	for i := len(l.tokens) - 1; i >= 0; i-- {
		tok := l.tokens[i]
		switch tok.Kind {
		case Whitespace, Comment:
			continue
		case Number, String, Template, Regex:
			return false
		case Ident:
			return regexKeywords[tok.Text]
		case Punct:
			switch tok.Text {
			case ")", "]", "++", "--":
				return false
			case "<":
				// JSX closing tag.
				return false
			}
			return true
		}
	}
	return true
}

// scanRegex consumes a regular expression literal. It gives up (leaving the
// position untouched) when the line ends before the closing slash, which is
// the usual symptom of a division misread as a regex.
func (l *lexer) scanRegex() bool {
	i := l.pos + 1
	inClass := false
	for i < len(l.src) {
		c := l.src[i]
		switch {
		case c == '\n' || c == '\r':
			return false
		case c == '\\':
			i += 2
			continue
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			i++
			for i < len(l.src) && isIdentPart(l.src[i]) {
				i++
			}
			l.pos = i
			return true
		}
		i++
	}
	return false
}

func (l *lexer) scanString(quote byte) {
	l.pos++
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '\\':
			l.pos += 2
			continue
		case quote:
			l.pos++
			return
		case '\n':
			// Unterminated; stop at the line end so the rest still lexes.
			return
		}
		l.pos++
	}
	if l.pos > len(l.src) {
		l.pos = len(l.src)
	}
}

// scanTemplate consumes template text up to the closing backtick or the next
// substitution. start is where the emitted token begins.
func (l *lexer) scanTemplate(start int) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\':
			l.pos += 2
			continue
		case c == '`':
			l.pos++
			l.emit(Template, start)
			return
		case c == '$' && l.peek(1) == '{':
			l.pos += 2
			l.templates = append(l.templates, 0)
			l.emit(Template, start)
			return
		}
		l.pos++
	}
	if l.pos > len(l.src) {
		l.pos = len(l.src)
	}
	l.emit(Template, start)
}

func (l *lexer) scanNumber() {
	hex := l.src[l.pos] == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X')
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isIdentPart(c) || c == '.':
			l.pos++
		case (c == '+' || c == '-') && !hex && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E'):
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) scanPunct() {
	rest := l.src[l.pos:]
	for _, p := range punctuators {
		if !strings.HasPrefix(rest, p) {
			continue
		}
		// "a?.5:b" is a conditional, not optional chaining.
		if p == "?." && len(rest) > 2 && isDigit(rest[2]) {
			continue
		}
		l.pos += len(p)
		return
	}
	l.pos++
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || c == '#' || c == '@' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
