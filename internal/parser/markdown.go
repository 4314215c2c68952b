package parser

import (
	"github.com/sokinpui/codemod/internal/jslex"
)

// RewriteScripts runs edit over the content of every script block and
// splices the resulting edits into source. It returns the new source and the
// number of edits applied.
func RewriteScripts(source []byte, edit func(code string) []jslex.Edit) (string, int, error) {
	blocks, err := ExtractCodeBlocks(source)
	if err != nil {
		return "", 0, err
	}

	var edits []jslex.Edit
	for _, block := range blocks {
		if !block.IsScript() {
			continue
		}
		edits = append(edits, block.SourceEdits(edit(block.Content))...)
	}
	return jslex.Apply(string(source), edits), len(edits), nil
}
