package codemod

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/sokinpui/codemod/cli"
	"github.com/sokinpui/codemod/internal/esm"
	"github.com/sokinpui/codemod/internal/fs"
	"github.com/sokinpui/codemod/internal/jslex"
	"github.com/sokinpui/codemod/internal/parser"
	"github.com/sokinpui/codemod/internal/specifier"
	"github.com/sokinpui/codemod/model"
)

const (
	markdownExt   = ".md"
	markdownLabel = "Markdown"
)

var languageLabels = map[string]string{
	".ts":  "TypeScript",
	".mts": "TypeScript",
	".cts": "TypeScript",
	".tsx": "TSX",
	".js":  "JavaScript",
	".mjs": "JavaScript",
	".cjs": "JavaScript",
	".jsx": "JSX",
}

// LanguageLabel names the files a source extension selects.
func LanguageLabel(ext string) string {
	if label, ok := languageLabels[ext]; ok {
		return label
	}
	return strings.ToUpper(strings.TrimPrefix(ext, "."))
}

// ImportFixer adds explicit extensions to relative specifiers below a set
// of source roots.
type ImportFixer struct {
	cfg      *cli.ImportConfig
	resolver *fs.PathResolver
	rewriter *esm.Rewriter
	history  *history
	reporter Reporter
	writer   fs.Writer

	cancelled atomic.Bool
}

// NewImportFixer creates an ImportFixer for cfg.
func NewImportFixer(cfg *cli.ImportConfig) (*ImportFixer, error) {
	res, err := specifier.NewResolver(specifier.Options{
		SourceExt: cfg.SourceExt,
		TargetExt: cfg.TargetExt,
		EntryName: cfg.Entry,
	})
	if err != nil {
		return nil, err
	}
	pathResolver := fs.NewPathResolver(cfg.Base)
	return &ImportFixer{
		cfg:      cfg,
		resolver: pathResolver,
		rewriter: esm.New(res),
		history:  newHistory("esmfix", cfg.StateDir, pathResolver),
		reporter: nopReporter{},
	}, nil
}

// Config returns the settings the fixer runs with.
func (f *ImportFixer) Config() *cli.ImportConfig { return f.cfg }

// SetReporter sets where progress is sent.
func (f *ImportFixer) SetReporter(r Reporter) {
	f.reporter = r
}

// SetWriter replaces the sink for rewritten files.
func (f *ImportFixer) SetWriter(w fs.Writer) {
	f.writer = w
}

// Cancel asks a running fix to stop before the next file. Files already
// written are still journaled, so the partial run can be reverted.
func (f *ImportFixer) Cancel() {
	f.cancelled.Store(true)
}

// Execute runs the fixer, or replays history when revert or redo is set.
func (f *ImportFixer) Execute() (outcome Outcome, err error) {
	// Centralized panic recovery.
	defer recoverPanic(&err)

	if f.cfg.DryRun && !f.cfg.Revert && !f.cfg.Redo {
		outcome.Imports = f.fix(nil)
		return outcome, nil
	}

	w, closeWriter, err := openWriter(f.cfg.Nvim, f.writer)
	if err != nil {
		return outcome, err
	}
	defer closeWriter()

	var s model.Summary
	switch {
	case f.cfg.Revert:
		s, err = f.history.revert(w)
	case f.cfg.Redo:
		s, err = f.history.redo(w)
	default:
		outcome.Imports = f.fix(w)
		return outcome, f.history.commit()
	}
	if err != nil {
		return outcome, err
	}
	outcome.History = &s
	return outcome, nil
}

// fix processes every root. A nil writer means dry run.
func (f *ImportFixer) fix(w fs.Writer) model.ImportSummary {
	summary := model.ImportSummary{DryRun: w == nil}

	exts := []string{f.cfg.SourceExt}
	if f.cfg.Markdown {
		exts = append(exts, markdownExt)
	}
	label := LanguageLabel(f.cfg.SourceExt)

	for _, root := range f.cfg.Roots {
		if f.cancelled.Load() {
			summary.Interrupted = true
			break
		}
		dir := f.resolver.Resolve(root)
		d := model.DirResult{Root: dir, Label: label}

		if !fs.IsDir(dir) {
			d.Missing = true
			f.reporter.OnRootMissing(dir)
			summary.Add(d)
			continue
		}

		files, unreadable, err := fs.WalkFiles(dir, exts, f.cfg.Ignore)
		if err != nil {
			d.Failed = append(d.Failed, f.failed(dir, err))
			summary.Add(d)
			continue
		}
		for _, u := range unreadable {
			d.Failed = append(d.Failed, f.failed(u.Path, u.Err))
		}

		sources, docs := splitMarkdown(files)
		d.Scanned = len(files)
		groups := []struct {
			label string
			files []string
		}{{label, sources}, {markdownLabel, docs}}
		for _, g := range groups {
			if len(g.files) == 0 && g.label == markdownLabel {
				continue
			}
			if f.cancelled.Load() {
				summary.Interrupted = true
				break
			}
			f.reporter.OnRootStart(dir, len(g.files), g.label)
			for _, path := range g.files {
				if f.cancelled.Load() {
					summary.Interrupted = true
					break
				}
				res := f.processFile(dir, path, w)
				switch {
				case res.Err != nil:
					d.Failed = append(d.Failed, res)
				case res.Modified:
					d.Modified = append(d.Modified, res)
				}
				f.reporter.OnFileDone(res)
			}
		}
		summary.Add(d)
	}
	return summary
}

func (f *ImportFixer) failed(path string, err error) model.FileResult {
	res := model.FileResult{Path: path, Stage: "reading", Err: err}
	f.reporter.OnFileDone(res)
	return res
}

// splitMarkdown separates Markdown documents from source files, keeping
// the order of each.
func splitMarkdown(files []string) (sources, docs []string) {
	for _, p := range files {
		if strings.EqualFold(filepath.Ext(p), markdownExt) {
			docs = append(docs, p)
		} else {
			sources = append(sources, p)
		}
	}
	return sources, docs
}

func (f *ImportFixer) processFile(root, path string, w fs.Writer) model.FileResult {
	res := model.FileResult{Path: path, RelPath: relTo(root, path)}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Stage, res.Err = "reading", err
		return res
	}

	content, changes, err := f.rewrite(path, data)
	if err != nil {
		res.Stage, res.Err = "reading", err
		return res
	}
	if changes == 0 || content == string(data) {
		return res
	}

	if w != nil {
		if err := w.WriteFile(path, []byte(content)); err != nil {
			res.Stage, res.Err = "writing", err
			return res
		}
		if err := f.history.record(path, data, []byte(content)); err != nil {
			res.Stage, res.Err = "writing", fmt.Errorf("file written but not journaled: %w", err)
			return res
		}
	}
	res.Modified = true
	res.Changes = changes
	return res
}

// rewrite returns the new content of one file and the number of rewritten
// specifiers.
func (f *ImportFixer) rewrite(path string, data []byte) (string, int, error) {
	dir := filepath.Dir(path)
	if strings.EqualFold(filepath.Ext(path), markdownExt) {
		return parser.RewriteScripts(data, func(code string) []jslex.Edit {
			edits, _ := f.rewriter.Edits(code, dir)
			return edits
		})
	}
	result := f.rewriter.Rewrite(string(data), dir)
	return result.Content, len(result.Changes), nil
}

func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

