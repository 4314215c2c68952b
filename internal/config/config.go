// Package config loads project defaults for both tools from a .codemod.yml
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sokinpui/codemod/internal/fs"
	"github.com/sokinpui/codemod/internal/state"
)

const (
	FileName = ".codemod.yml"

	EnvConfig = "CODEMOD_CONFIG"
	EnvBase   = "CODEMOD_BASE"
)

// Imports configures the import extension fixer.
type Imports struct {
	Roots     []string `yaml:"roots"`
	SourceExt string   `yaml:"source_ext"`
	TargetExt string   `yaml:"target_ext"`
	Entry     string   `yaml:"entry"`
	Ignore    []string `yaml:"ignore"`
	Markdown  bool     `yaml:"markdown"`
}

// GridSnap configures the grid-snap patcher.
type GridSnap struct {
	File string `yaml:"file"`
}

// File is the on-disk layout of .codemod.yml.
type File struct {
	Base     string   `yaml:"base"`
	StateDir string   `yaml:"state_dir"`
	Imports  Imports  `yaml:"imports"`
	GridSnap GridSnap `yaml:"gridsnap"`
}

// Config is a loaded File with its paths resolved.
type Config struct {
	File
	// Path is the config file that was read, or "" when defaults are used.
	Path string
}

// Defaults returns the built-in settings for the web application monorepo.
func Defaults() File {
	return File{
		Imports: Imports{
			Roots:     []string{"apps/server/src", "packages/shared/src", "packages/database/src"},
			SourceExt: "ts",
			TargetExt: "js",
			Entry:     "index",
			Ignore:    append([]string(nil), fs.DefaultIgnoreDirs...),
		},
		GridSnap: GridSnap{
			File: "apps/web/src/lib/components/SceneCanvas.svelte",
		},
	}
}

// Load reads the config file named by explicit, or by $CODEMOD_CONFIG, or
// the nearest .codemod.yml above the working directory. A missing file is
// only an error when it was named explicitly.
func Load(explicit string) (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not get current working directory: %w", err)
	}

	path := explicit
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfig))
	}
	if path == "" {
		found, err := fs.FindUpwards(wd, FileName)
		if err != nil && !errors.Is(err, fs.ErrNotFound) {
			return nil, err
		}
		path = found
	}

	cfg := &Config{File: Defaults()}
	if path != "" {
		if err := cfg.read(path); err != nil {
			return nil, err
		}
	}
	cfg.resolve(wd)
	return cfg, nil
}

func (c *Config) read(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c.File); err != nil {
		return fmt.Errorf("invalid config %s: %w", abs, err)
	}
	c.Path = abs
	return nil
}

// resolve makes Base absolute.
func (c *Config) resolve(wd string) {
	switch {
	case os.Getenv(EnvBase) != "":
		c.Base = absFrom(wd, os.Getenv(EnvBase))
	case c.Base != "" && c.Path != "":
		c.Base = absFrom(filepath.Dir(c.Path), c.Base)
	case c.Path != "":
		c.Base = filepath.Dir(c.Path)
	default:
		if root := fs.FindGitRoot(wd); root != "" {
			c.Base = root
		} else {
			c.Base = wd
		}
	}
}

// StateDirFor returns the history directory for a run anchored at base.
func (c *Config) StateDirFor(base string) string {
	if c.StateDir == "" {
		return filepath.Join(base, state.DirName)
	}
	return absFrom(base, c.StateDir)
}

func absFrom(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}
