package codemod

import (
	"fmt"
	"io"
	"os"

	"github.com/sokinpui/codemod/cli"
	"github.com/sokinpui/codemod/internal/fs"
	"github.com/sokinpui/codemod/internal/patcher"
	"github.com/sokinpui/codemod/internal/source"
	"github.com/sokinpui/codemod/model"
)

// GridPatcher applies the grid offset rewrite to the scene canvas component.
type GridPatcher struct {
	cfg            *cli.GridConfig
	resolver       *fs.PathResolver
	patcher        *patcher.Patcher
	history        *history
	sourceProvider *source.SourceProvider
	writer         fs.Writer
	stdout         io.Writer
}

// NewGridPatcher creates a GridPatcher for cfg.
func NewGridPatcher(cfg *cli.GridConfig) *GridPatcher {
	pathResolver := fs.NewPathResolver(cfg.Base)
	return &GridPatcher{
		cfg:            cfg,
		resolver:       pathResolver,
		patcher:        patcher.New(),
		history:        newHistory("gridsnap", cfg.StateDir, pathResolver),
		sourceProvider: source.New(),
		stdout:         os.Stdout,
	}
}

// SetWriter replaces the sink for the patched file.
func (g *GridPatcher) SetWriter(w fs.Writer) {
	g.writer = w
}

// SetOutput sets where patched text goes for --stdin and --stdout.
func (g *GridPatcher) SetOutput(w io.Writer) {
	g.stdout = w
}

// Execute patches the configured input, or replays history when revert or
// redo is set.
func (g *GridPatcher) Execute() (outcome Outcome, err error) {
	// Centralized panic recovery.
	defer recoverPanic(&err)

	switch {
	case g.cfg.Stdin:
		outcome.Patch, err = g.patchStdin()
		return outcome, err
	case g.cfg.Clipboard:
		outcome.Patch, err = g.patchClipboard()
		return outcome, err
	}

	if g.cfg.Stdout && !g.cfg.Revert && !g.cfg.Redo {
		outcome.Patch, err = g.patchFile(nil)
		return outcome, err
	}

	w, closeWriter, err := openWriter(g.cfg.Nvim, g.writer)
	if err != nil {
		return outcome, err
	}
	defer closeWriter()

	var s model.Summary
	switch {
	case g.cfg.Revert:
		s, err = g.history.revert(w)
	case g.cfg.Redo:
		s, err = g.history.redo(w)
	default:
		outcome.Patch, err = g.patchFile(w)
		if err != nil {
			return outcome, err
		}
		return outcome, g.history.commit()
	}
	if err != nil {
		return outcome, err
	}
	outcome.History = &s
	return outcome, nil
}

// patchFile patches the configured file. A nil writer prints the result.
func (g *GridPatcher) patchFile(w fs.Writer) (model.PatchReport, error) {
	path := g.resolver.Resolve(g.cfg.File)
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PatchReport{Path: path}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	out, report := g.patcher.Patch(string(data))
	report.Path = path
	if !report.Changed {
		return report, nil
	}

	if w == nil {
		_, err := io.WriteString(g.stdout, out)
		return report, err
	}
	if err := w.WriteFile(path, []byte(out)); err != nil {
		return report, fmt.Errorf("failed to write %s: %w", path, err)
	}
	report.Written = true
	if err := g.history.record(path, data, []byte(out)); err != nil {
		return report, err
	}
	return report, nil
}

func (g *GridPatcher) patchStdin() (model.PatchReport, error) {
	content, err := g.sourceProvider.ReadStdin()
	if err != nil {
		return model.PatchReport{}, err
	}
	out, report := g.patcher.Patch(content)
	report.Path = "<stdin>"
	_, err = io.WriteString(g.stdout, out)
	return report, err
}

func (g *GridPatcher) patchClipboard() (model.PatchReport, error) {
	content, err := g.sourceProvider.ReadClipboard()
	if err != nil || content == "" {
		return model.PatchReport{Path: "<clipboard>"}, err
	}
	out, report := g.patcher.Patch(content)
	report.Path = "<clipboard>"
	if !report.Changed {
		return report, nil
	}
	if err := g.sourceProvider.WriteClipboard(out); err != nil {
		return report, err
	}
	report.Written = true
	return report, nil
}
