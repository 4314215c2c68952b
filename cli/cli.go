package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/pflag"

	"github.com/sokinpui/codemod/internal/config"
	"github.com/sokinpui/codemod/internal/specifier"
)

// ImportConfig holds the resolved settings of an esmfix run.
type ImportConfig struct {
	Base      string
	Roots     []string
	SourceExt string
	TargetExt string
	Entry     string
	Ignore    []string
	StateDir  string

	Markdown    bool
	DryRun      bool
	NoAnimation bool
	Nvim        bool
	Revert      bool
	Redo        bool
}

// GridConfig holds the resolved settings of a gridsnap run.
type GridConfig struct {
	Base     string
	File     string
	StateDir string

	Stdin     bool
	Clipboard bool
	Stdout    bool
	Nvim      bool
	Revert    bool
	Redo      bool
}

type common struct {
	base       string
	configPath string
	nvim       bool
	revert     bool
	redo       bool
}

func (c *common) register(fs *pflag.FlagSet) {
	fs.StringVarP(&c.base, "base", "b", "", "Directory relative paths are resolved against (default: config file directory, git root or cwd).")
	fs.StringVarP(&c.configPath, "config", "c", "", "Path to a .codemod.yml file (default: $CODEMOD_CONFIG or nearest .codemod.yml).")
	fs.BoolVar(&c.nvim, "nvim", false, "Write files through Neovim ($NVIM or a headless instance).")

	// Mutually exclusive history group
	fs.BoolVarP(&c.revert, "revert", "u", false, "Revert the last run.")
	fs.BoolVarP(&c.redo, "redo", "R", false, "Redo the last reverted run.")
}

// load validates the shared flags and returns the config with base applied.
func (c *common) load() (*config.Config, string, error) {
	if c.revert && c.redo {
		return nil, "", fmt.Errorf("error: --revert and --redo are mutually exclusive")
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, "", err
	}
	base := cfg.Base
	if c.base != "" {
		if base, err = filepath.Abs(c.base); err != nil {
			return nil, "", err
		}
	}
	return cfg, base, nil
}

func newFlagSet(name, about, example string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	// Parse errors are returned to the caller, which prints them once.
	fs.SetOutput(io.Discard)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", name)
		fmt.Fprintf(os.Stderr, "\n%s\n", about)
		fmt.Fprintf(os.Stderr, "\nExample: %s\n", example)
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fmt.Fprint(os.Stderr, fs.FlagUsages())
	}
	return fs
}

// ParseImportFlags parses esmfix arguments (without the program name).
// Values not given on the command line come from the config file.
func ParseImportFlags(args []string) (*ImportConfig, error) {
	var (
		c   common
		out ImportConfig
	)
	fs := newFlagSet("esmfix",
		"Add explicit file extensions to relative import and export specifiers.",
		"esmfix -r apps/server/src --dry-run")
	c.register(fs)
	fs.StringSliceVarP(&out.Roots, "root", "r", nil, "Source root to scan, relative to --base (repeatable).")
	fs.StringVar(&out.SourceExt, "ext", "", "Extension of the files to scan (default from config, ts).")
	fs.StringVar(&out.TargetExt, "target-ext", "", "Extension to add to specifiers (default from config, js).")
	fs.StringVar(&out.Entry, "entry", "", "Entry file name of a directory import (default from config, index).")
	fs.StringSliceVar(&out.Ignore, "ignore", nil, "Directory names to skip.")
	fs.BoolVar(&out.Markdown, "markdown", false, "Also rewrite fenced code samples in Markdown files.")
	fs.BoolVarP(&out.DryRun, "dry-run", "n", false, "Report changes without writing files.")
	fs.BoolVar(&out.NoAnimation, "no-animation", false, "Disable loading spinner and progress updates.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, base, err := c.load()
	if err != nil {
		return nil, err
	}

	imp := cfg.Imports
	if !fs.Changed("root") {
		out.Roots = imp.Roots
	}
	if !fs.Changed("ext") {
		out.SourceExt = imp.SourceExt
	}
	if !fs.Changed("target-ext") {
		out.TargetExt = imp.TargetExt
	}
	if !fs.Changed("entry") {
		out.Entry = imp.Entry
	}
	if !fs.Changed("ignore") {
		out.Ignore = imp.Ignore
	}
	if !fs.Changed("markdown") {
		out.Markdown = imp.Markdown
	}

	out.SourceExt = specifier.NormalizeExt(out.SourceExt)
	out.TargetExt = specifier.NormalizeExt(out.TargetExt)
	if out.SourceExt == "" || out.TargetExt == "" {
		return nil, fmt.Errorf("error: --ext and --target-ext must not be empty")
	}
	out.Roots = lo.Uniq(lo.Compact(out.Roots))
	if len(out.Roots) == 0 {
		return nil, fmt.Errorf("error: no source roots configured")
	}

	out.Base = base
	out.StateDir = cfg.StateDirFor(base)
	out.Nvim, out.Revert, out.Redo = c.nvim, c.revert, c.redo
	return &out, nil
}

// ParseGridFlags parses gridsnap arguments (without the program name).
func ParseGridFlags(args []string) (*GridConfig, error) {
	var (
		c   common
		out GridConfig
	)
	fs := newFlagSet("gridsnap",
		"Make the grid snapping helpers of the scene canvas honour grid offsets.",
		"gridsnap -f apps/web/src/lib/components/SceneCanvas.svelte")
	c.register(fs)
	fs.StringVarP(&out.File, "file", "f", "", "Component file to patch, relative to --base (default from config).")
	fs.BoolVar(&out.Stdin, "stdin", false, "Read the component from stdin and print the result.")
	fs.BoolVar(&out.Clipboard, "clipboard", false, "Patch the clipboard contents in place.")
	fs.BoolVar(&out.Stdout, "stdout", false, "Print the patched file instead of writing it.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if out.Stdin && out.Clipboard {
		return nil, fmt.Errorf("error: --stdin and --clipboard are mutually exclusive")
	}
	cfg, base, err := c.load()
	if err != nil {
		return nil, err
	}

	if !fs.Changed("file") {
		out.File = cfg.GridSnap.File
	}
	if out.File == "" && !out.Stdin && !out.Clipboard {
		return nil, fmt.Errorf("error: no component file configured")
	}

	out.Base = base
	out.StateDir = cfg.StateDirFor(base)
	out.Nvim, out.Revert, out.Redo = c.nvim, c.revert, c.redo
	return &out, nil
}
