package codemod

import (
	"fmt"
	"path/filepath"

	"github.com/sokinpui/codemod/cli"
	"github.com/sokinpui/codemod/internal/config"
	"github.com/sokinpui/codemod/internal/patcher"
	"github.com/sokinpui/codemod/internal/specifier"
	"github.com/sokinpui/codemod/internal/state"
	"github.com/sokinpui/codemod/model"
)

// Config for using the import fixer as a library. Zero values fall back to
// the built-in defaults.
type Config struct {
	// Base anchors relative roots. Required.
	Base  string
	Roots []string
	// SourceExt and TargetExt may be given with or without the dot.
	SourceExt string
	TargetExt string
	Entry     string
	Ignore    []string
	Markdown  bool
	DryRun    bool
}

// FixImports rewrites relative specifiers below the configured roots and
// returns the run summary. Written files are journaled under Base.
func FixImports(opts Config) (model.ImportSummary, error) {
	cfg, err := opts.importConfig()
	if err != nil {
		return model.ImportSummary{}, err
	}
	fixer, err := NewImportFixer(cfg)
	if err != nil {
		return model.ImportSummary{}, fmt.Errorf("failed to initialize import fixer: %w", err)
	}
	outcome, err := fixer.Execute()
	return outcome.Imports, err
}

func (c Config) importConfig() (*cli.ImportConfig, error) {
	if c.Base == "" {
		return nil, fmt.Errorf("codemod: Base is required")
	}
	base, err := filepath.Abs(c.Base)
	if err != nil {
		return nil, err
	}

	defaults := config.Defaults().Imports
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	cfg := &cli.ImportConfig{
		Base:      base,
		Roots:     c.Roots,
		SourceExt: specifier.NormalizeExt(pick(c.SourceExt, defaults.SourceExt)),
		TargetExt: specifier.NormalizeExt(pick(c.TargetExt, defaults.TargetExt)),
		Entry:     pick(c.Entry, defaults.Entry),
		Ignore:    c.Ignore,
		StateDir:  filepath.Join(base, state.DirName),
		Markdown:  c.Markdown,
		DryRun:    c.DryRun,
	}
	if len(cfg.Roots) == 0 {
		cfg.Roots = defaults.Roots
	}
	if cfg.Ignore == nil {
		cfg.Ignore = defaults.Ignore
	}
	return cfg, nil
}

// PatchGridSnap applies the grid offset rewrite to component source text.
func PatchGridSnap(src string) (string, model.PatchReport) {
	return patcher.New().Patch(src)
}
