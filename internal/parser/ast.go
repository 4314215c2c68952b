package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/sokinpui/codemod/internal/jslex"
)

// ScriptLangs are the fence languages holding JavaScript or TypeScript.
var ScriptLangs = []string{"ts", "typescript", "tsx", "js", "javascript", "jsx", "mts", "mjs"}

// line maps one content line of a code block back to the source.
type line struct {
	// offset of the line in Content, padding included
	offset  int
	padding int
	start   int
	stop    int
}

// CodeBlock represents a fenced code block from markdown content.
type CodeBlock struct {
	// Lang is the first word of the info string, lower-cased.
	Lang string
	// Content is the raw text inside the code block.
	Content string

	lines []line
}

// ExtractCodeBlocks uses a markdown AST to find all fenced code blocks.
func ExtractCodeBlocks(source []byte) ([]CodeBlock, error) {
	var blocks []CodeBlock
	parser := goldmark.DefaultParser()
	root := parser.Parse(text.NewReader(source))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		fencedCodeBlock, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var block CodeBlock
		block.Lang = strings.ToLower(string(fencedCodeBlock.Language(source)))

		var content bytes.Buffer
		lines := fencedCodeBlock.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			block.lines = append(block.lines, line{
				offset:  content.Len(),
				padding: seg.Padding,
				start:   seg.Start,
				stop:    seg.Stop,
			})
			content.Write(seg.Value(source))
		}
		block.Content = content.String()

		blocks = append(blocks, block)
		return ast.WalkSkipChildren, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return nil, err
	}

	return blocks, nil
}

// IsScript reports whether the block is tagged with one of ScriptLangs.
func (b CodeBlock) IsScript() bool {
	for _, lang := range ScriptLangs {
		if b.Lang == lang {
			return true
		}
	}
	return false
}

// SourceEdits translates edits on Content into edits on the markdown source.
// Edits that do not fall inside a single source line are dropped.
func (b CodeBlock) SourceEdits(edits []jslex.Edit) []jslex.Edit {
	var out []jslex.Edit
	for _, e := range edits {
		for _, l := range b.lines {
			from := l.offset + l.padding
			to := from + l.stop - l.start
			if e.Pos < from || e.End > to {
				continue
			}
			out = append(out, jslex.Edit{
				Pos:  l.start + e.Pos - from,
				End:  l.start + e.End - from,
				Text: e.Text,
			})
			break
		}
	}
	return out
}
