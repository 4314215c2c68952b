package codemod_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/codemod/cli"
	"github.com/sokinpui/codemod/codemod"
	"github.com/sokinpui/codemod/model"
)

func write(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func read(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

// recorder keeps everything a Reporter is told.
type recorder struct {
	missing []string
	roots   []string
	starts  []string
	files   []model.FileResult
}

func (r *recorder) OnRootMissing(dir string) { r.missing = append(r.missing, dir) }

func (r *recorder) OnRootStart(dir string, files int, label string) {
	if len(r.roots) == 0 || r.roots[len(r.roots)-1] != dir {
		r.roots = append(r.roots, dir)
	}
	r.starts = append(r.starts, fmt.Sprintf("%d %s", files, label))
}

func (r *recorder) OnFileDone(f model.FileResult) { r.files = append(r.files, f) }

func newProject(t *testing.T) (string, *cli.ImportConfig) {
	t.Helper()
	base := t.TempDir()
	write(t, base, "apps/server/src/main.ts", "import { db } from './db';\nimport * as utils from './utils';\n")
	write(t, base, "apps/server/src/utils/index.ts", "export * from './strings';\n")
	write(t, base, "apps/server/src/utils/strings.ts", "export const s = 1;\n")
	write(t, base, "apps/server/src/db.ts", "export const db = import('../../../packages/database/src/client');\n")
	write(t, base, "apps/server/src/node_modules/x/index.ts", "import y from './y';\n")

	return base, &cli.ImportConfig{
		Base:      base,
		Roots:     []string{"apps/server/src", "packages/shared/src"},
		SourceExt: ".ts",
		TargetExt: ".js",
		Entry:     "index",
		Ignore:    []string{"node_modules", ".git", ".codemod"},
		StateDir:  filepath.Join(base, ".codemod"),
	}
}

func TestImportFixer_Execute(t *testing.T) {
	base, cfg := newProject(t)
	fixer, err := codemod.NewImportFixer(cfg)
	require.NoError(t, err)
	rec := &recorder{}
	fixer.SetReporter(rec)

	outcome, err := fixer.Execute()
	require.NoError(t, err)

	s := outcome.Imports
	assert.Equal(t, 3, s.FilesModified)
	assert.Equal(t, 4, s.TotalChanges)
	assert.Equal(t, 0, outcome.ExitCode())
	assert.Nil(t, outcome.History)

	assert.Equal(t, []string{filepath.Join(base, "packages", "shared", "src")}, rec.missing)
	assert.Equal(t, []string{filepath.Join(base, "apps", "server", "src")}, rec.roots)
	assert.Equal(t, []string{"4 TypeScript"}, rec.starts)
	assert.Len(t, rec.files, 4)

	assert.Equal(t, "import { db } from './db.js';\nimport * as utils from './utils/index.js';\n",
		read(t, filepath.Join(base, "apps/server/src/main.ts")))
	assert.Equal(t, "export * from './strings.js';\n",
		read(t, filepath.Join(base, "apps/server/src/utils/index.ts")))
	assert.Equal(t, "import y from './y';\n",
		read(t, filepath.Join(base, "apps/server/src/node_modules/x/index.ts")))

	require.Len(t, s.Dirs, 2)
	assert.True(t, s.Dirs[1].Missing)
	rels := []string{}
	for _, f := range s.Dirs[0].Modified {
		rels = append(rels, f.RelPath)
	}
	assert.Equal(t, []string{"db.ts", "main.ts", "utils/index.ts"}, rels)

	// A second run finds nothing left to do.
	again, err := codemod.NewImportFixer(cfg)
	require.NoError(t, err)
	outcome, err = again.Execute()
	require.NoError(t, err)
	assert.Zero(t, outcome.Imports.FilesModified)
	assert.Equal(t, 1, outcome.ExitCode())
}

func TestImportFixer_RevertAndRedo(t *testing.T) {
	base, cfg := newProject(t)
	mainFile := filepath.Join(base, "apps/server/src/main.ts")
	before := read(t, mainFile)

	fixer, err := codemod.NewImportFixer(cfg)
	require.NoError(t, err)
	_, err = fixer.Execute()
	require.NoError(t, err)
	after := read(t, mainFile)
	require.NotEqual(t, before, after)

	revertCfg := *cfg
	revertCfg.Revert = true
	reverter, err := codemod.NewImportFixer(&revertCfg)
	require.NoError(t, err)
	outcome, err := reverter.Execute()
	require.NoError(t, err)
	require.NotNil(t, outcome.History)
	assert.Equal(t, "Revert", outcome.History.Action)
	assert.Len(t, outcome.History.Modified, 3)
	assert.Contains(t, outcome.History.Modified, "apps/server/src/main.ts")
	assert.Equal(t, before, read(t, mainFile))

	redoCfg := *cfg
	redoCfg.Redo = true
	redoer, err := codemod.NewImportFixer(&redoCfg)
	require.NoError(t, err)
	outcome, err = redoer.Execute()
	require.NoError(t, err)
	assert.Empty(t, outcome.History.Failed)
	assert.Equal(t, after, read(t, mainFile))
}

func TestImportFixer_DryRun(t *testing.T) {
	base, cfg := newProject(t)
	cfg.DryRun = true
	mainFile := filepath.Join(base, "apps/server/src/main.ts")
	before := read(t, mainFile)

	fixer, err := codemod.NewImportFixer(cfg)
	require.NoError(t, err)
	outcome, err := fixer.Execute()
	require.NoError(t, err)

	assert.True(t, outcome.Imports.DryRun)
	assert.Equal(t, 3, outcome.Imports.FilesModified)
	assert.Equal(t, before, read(t, mainFile))
	assert.NoDirExists(t, cfg.StateDir)
}

type failingWriter struct{}

func (failingWriter) WriteFile(string, []byte) error { return errors.New("disk full") }

func TestImportFixer_WriteFailureIsReported(t *testing.T) {
	_, cfg := newProject(t)
	fixer, err := codemod.NewImportFixer(cfg)
	require.NoError(t, err)
	fixer.SetWriter(failingWriter{})

	outcome, err := fixer.Execute()
	require.NoError(t, err)

	assert.Zero(t, outcome.Imports.FilesModified)
	assert.Len(t, outcome.Imports.Failed(), 3)
	for _, f := range outcome.Imports.Dirs[0].Failed {
		assert.Equal(t, "writing", f.Stage)
	}
	assert.Equal(t, 1, outcome.ExitCode())
}

func TestImportFixer_UnreadableFileIsReported(t *testing.T) {
	base, cfg := newProject(t)
	broken := filepath.Join(base, "apps", "server", "src", "broken.ts")
	require.NoError(t, os.Symlink(filepath.Join(base, "gone.ts"), broken))

	fixer, err := codemod.NewImportFixer(cfg)
	require.NoError(t, err)
	rec := &recorder{}
	fixer.SetReporter(rec)
	outcome, err := fixer.Execute()
	require.NoError(t, err)

	s := outcome.Imports
	assert.Equal(t, 3, s.FilesModified)
	assert.Equal(t, 4, s.TotalChanges)
	assert.Equal(t, []string{broken}, s.Failed())
	assert.Equal(t, "reading", s.Dirs[0].Failed[0].Stage)
	assert.Equal(t, 5, s.Dirs[0].Scanned)
	assert.Len(t, rec.files, 5)
	assert.Equal(t, 0, outcome.ExitCode())
}

func TestImportFixer_UnreadableDirIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	base, cfg := newProject(t)
	locked := filepath.Dir(write(t, base, "apps/server/src/zz_locked/a.ts", "import a from './a';\n"))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	fixer, err := codemod.NewImportFixer(cfg)
	require.NoError(t, err)
	outcome, err := fixer.Execute()
	require.NoError(t, err)

	s := outcome.Imports
	assert.Equal(t, 3, s.FilesModified)
	assert.Equal(t, 4, s.TotalChanges)
	assert.Equal(t, []string{locked}, s.Failed())
	assert.Equal(t, "reading", s.Dirs[0].Failed[0].Stage)
	assert.Equal(t, 0, outcome.ExitCode())
}

// cancelAfterFirst stops the fixer once the first file is done.
type cancelAfterFirst struct {
	recorder
	fixer *codemod.ImportFixer
}

func (c *cancelAfterFirst) OnFileDone(f model.FileResult) {
	c.recorder.OnFileDone(f)
	c.fixer.Cancel()
}

func TestImportFixer_CancelKeepsJournal(t *testing.T) {
	base, cfg := newProject(t)
	db := filepath.Join(base, "apps/server/src/db.ts")
	before := read(t, db)

	fixer, err := codemod.NewImportFixer(cfg)
	require.NoError(t, err)
	rep := &cancelAfterFirst{fixer: fixer}
	fixer.SetReporter(rep)

	outcome, err := fixer.Execute()
	require.NoError(t, err)

	s := outcome.Imports
	assert.True(t, s.Interrupted)
	assert.Equal(t, 1, s.FilesModified)
	assert.Len(t, rep.files, 1)
	assert.Len(t, s.Dirs, 1)
	assert.Equal(t, 1, outcome.ExitCode())
	require.NotEqual(t, before, read(t, db))

	revertCfg := *cfg
	revertCfg.Revert = true
	reverter, err := codemod.NewImportFixer(&revertCfg)
	require.NoError(t, err)
	outcome, err = reverter.Execute()
	require.NoError(t, err)
	assert.Equal(t, []string{"apps/server/src/db.ts"}, outcome.History.Modified)
	assert.Equal(t, before, read(t, db))
}

func TestImportFixer_Markdown(t *testing.T) {
	base, cfg := newProject(t)
	doc := write(t, base, "apps/server/src/README.md",
		"Example:\n\n```ts\nimport { s } from './utils/strings';\n```\n\n```sh\nnode ./main\n```\n")
	cfg.Markdown = true

	fixer, err := codemod.NewImportFixer(cfg)
	require.NoError(t, err)
	rec := &recorder{}
	fixer.SetReporter(rec)
	outcome, err := fixer.Execute()
	require.NoError(t, err)

	assert.Equal(t, []string{"4 TypeScript", "1 Markdown"}, rec.starts)
	assert.Equal(t, 4, outcome.Imports.FilesModified)
	assert.Equal(t,
		"Example:\n\n```ts\nimport { s } from './utils/strings.js';\n```\n\n```sh\nnode ./main\n```\n",
		read(t, doc))
}

func TestFixImports(t *testing.T) {
	base, _ := newProject(t)

	s, err := codemod.FixImports(codemod.Config{
		Base:      base,
		Roots:     []string{"apps/server/src"},
		TargetExt: "js",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, s.FilesModified)

	_, err = codemod.FixImports(codemod.Config{})
	assert.Error(t, err)
}

func TestLanguageLabel(t *testing.T) {
	assert.Equal(t, "TypeScript", codemod.LanguageLabel(".ts"))
	assert.Equal(t, "VUE", codemod.LanguageLabel(".vue"))
}

const canvas = `<script lang="ts">
  function snapToGrid(x: number, y: number): { x: number; y: number } {
    if (!gridSnap) return { x, y };
    const gridSize = scene.gridSize ?? 100;
    const cellWidth = scene.gridWidth ?? gridSize;
    const cellHeight = scene.gridHeight ?? gridSize;
    return {
      x: Math.round(x / cellWidth) * cellWidth,
      y: Math.round(y / cellHeight) * cellHeight,
    };
  }
</script>
`

func newCanvas(t *testing.T) (string, *cli.GridConfig) {
	t.Helper()
	base := t.TempDir()
	write(t, base, "web/Canvas.svelte", canvas)
	return base, &cli.GridConfig{
		Base:     base,
		File:     "web/Canvas.svelte",
		StateDir: filepath.Join(base, ".codemod"),
	}
}

func TestGridPatcher_Execute(t *testing.T) {
	base, cfg := newCanvas(t)
	path := filepath.Join(base, "web", "Canvas.svelte")

	outcome, err := codemod.NewGridPatcher(cfg).Execute()
	require.NoError(t, err)

	r := outcome.Patch
	assert.True(t, r.Changed)
	assert.True(t, r.Written)
	assert.Equal(t, path, r.Path)
	assert.Contains(t, read(t, path), "x: Math.round((x - offsetX) / cellWidth) * cellWidth + offsetX,")

	// Already patched: nothing changes, nothing is written.
	patched := read(t, path)
	outcome, err = codemod.NewGridPatcher(cfg).Execute()
	require.NoError(t, err)
	assert.False(t, outcome.Patch.Changed)
	assert.False(t, outcome.Patch.Written)
	assert.Equal(t, patched, read(t, path))

	revertCfg := *cfg
	revertCfg.Revert = true
	outcome, err = codemod.NewGridPatcher(&revertCfg).Execute()
	require.NoError(t, err)
	assert.Equal(t, []string{"web/Canvas.svelte"}, outcome.History.Modified)
	assert.Equal(t, canvas, read(t, path))
}

func TestGridPatcher_Stdout(t *testing.T) {
	base, cfg := newCanvas(t)
	cfg.Stdout = true

	var out strings.Builder
	g := codemod.NewGridPatcher(cfg)
	g.SetOutput(&out)
	outcome, err := g.Execute()
	require.NoError(t, err)

	assert.True(t, outcome.Patch.Changed)
	assert.False(t, outcome.Patch.Written)
	assert.Contains(t, out.String(), "const offsetX = scene.gridOffsetX ?? 0;")
	assert.Equal(t, canvas, read(t, filepath.Join(base, "web", "Canvas.svelte")))
}

func TestGridPatcher_MissingFile(t *testing.T) {
	_, cfg := newCanvas(t)
	cfg.File = "nope.svelte"

	_, err := codemod.NewGridPatcher(cfg).Execute()
	assert.Error(t, err)
}

func TestPatchGridSnap(t *testing.T) {
	out, report := codemod.PatchGridSnap(canvas)
	assert.True(t, report.Changed)
	require.Len(t, report.Functions, 2)
	assert.True(t, report.Functions[0].Patched)
	assert.Equal(t, "function not found", report.Functions[1].Reason)
	assert.Contains(t, out, "+ offsetY,")
}
