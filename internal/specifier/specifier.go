// Package specifier classifies module specifiers and resolves relative ones
// to their ESM form with an explicit file extension.
package specifier

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 4096

// Options configures resolution.
type Options struct {
	// SourceExt is the extension of source files on disk, e.g. ".ts".
	SourceExt string
	// TargetExt is the extension appended to specifiers, e.g. ".js".
	TargetExt string
	// EntryName is the conventional directory entry file without extension.
	EntryName string
	// CacheSize bounds the number of cached directory lookups.
	CacheSize int
}

// Resolver rewrites relative specifiers. Directory lookups are cached since
// most files of a tree import the same handful of directories.
type Resolver struct {
	opts  Options
	cache *lru.Cache[string, bool]
	stat  func(string) (os.FileInfo, error)
}

// NewResolver creates a Resolver with normalized options.
func NewResolver(opts Options) (*Resolver, error) {
	opts.SourceExt = NormalizeExt(opts.SourceExt)
	opts.TargetExt = NormalizeExt(opts.TargetExt)
	if opts.TargetExt == "" {
		return nil, fmt.Errorf("specifier: target extension is required")
	}
	if opts.EntryName == "" {
		opts.EntryName = "index"
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, bool](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("specifier: create cache: %w", err)
	}
	return &Resolver{opts: opts, cache: cache, stat: os.Stat}, nil
}

// Options returns the normalized options.
func (r *Resolver) Options() Options { return r.opts }

// NormalizeExt lower-cases an extension and ensures a leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// IsRelative reports whether spec starts with "./" or "../".
func IsRelative(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// NeedsExtension reports whether spec is relative and lacks targetExt.
func NeedsExtension(spec, targetExt string) bool {
	if strings.HasSuffix(spec, targetExt) {
		return false
	}
	return IsRelative(spec)
}

// NeedsExtension reports whether spec would be rewritten by Resolve.
func (r *Resolver) NeedsExtension(spec string) bool {
	return NeedsExtension(spec, r.opts.TargetExt)
}

// Resolve returns the rewritten form of spec as imported from a file in
// fileDir. Specifiers that need no rewrite are returned unchanged.
func (r *Resolver) Resolve(spec, fileDir string) string {
	if !r.NeedsExtension(spec) {
		return spec
	}

	entry := "/" + r.opts.EntryName
	target := filepath.Join(fileDir, filepath.FromSlash(spec))
	if r.hasEntry(target) {
		if strings.HasSuffix(spec, entry) {
			return spec + r.opts.TargetExt
		}
		return strings.TrimSuffix(spec, "/") + entry + r.opts.TargetExt
	}
	return spec + r.opts.TargetExt
}

// hasEntry reports whether dir is a directory holding the entry file.
func (r *Resolver) hasEntry(dir string) bool {
	if ok, cached := r.cache.Get(dir); cached {
		return ok
	}
	ok := false
	if info, err := r.stat(dir); err == nil && info.IsDir() {
		entry := filepath.Join(dir, r.opts.EntryName+r.opts.SourceExt)
		if _, err := r.stat(entry); err == nil {
			ok = true
		}
	}
	r.cache.Add(dir, ok)
	return ok
}
