package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by FindUpwards when no directory up to the
// filesystem root holds the name.
var ErrNotFound = errors.New("not found")

// PathResolver turns paths given on the command line or in config into
// absolute paths anchored at a base directory.
type PathResolver struct {
	base string
}

// NewPathResolver creates a resolver for base. An empty base means the
// current working directory.
func NewPathResolver(base string) *PathResolver {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			// This is unlikely to fail, but if it does, it's a critical error.
			panic(fmt.Sprintf("could not get current working directory: %v", err))
		}
		return &PathResolver{base: wd}
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		abs = filepath.Clean(base)
	}
	return &PathResolver{base: abs}
}

// Base returns the absolute base directory.
func (r *PathResolver) Base() string { return r.base }

// Resolve returns p as an absolute path. Relative paths are joined to the base.
func (r *PathResolver) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(r.base, p)
}

// Rel returns p relative to the base using forward slashes. Paths outside
// the base are returned unchanged.
func (r *PathResolver) Rel(p string) string {
	rel, err := filepath.Rel(r.base, r.Resolve(p))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return filepath.ToSlash(rel)
}

// IsDir reports whether p names an existing directory.
func IsDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// FindUpwards walks from start towards the filesystem root and returns the
// first path start/.../name that exists.
func FindUpwards(start, name string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// FindGitRoot returns the closest directory at or above start that holds a
// .git entry, or "" if there is none.
func FindGitRoot(start string) string {
	p, err := FindUpwards(start, ".git")
	if err != nil {
		return ""
	}
	return filepath.Dir(p)
}
