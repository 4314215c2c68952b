package fs

import (
	iofs "io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// DefaultIgnoreDirs are never descended into.
var DefaultIgnoreDirs = []string{"node_modules", ".git", ".codemod"}

// Unreadable is an entry below the walk root that could not be read.
type Unreadable struct {
	Path string
	Err  error
}

// WalkFiles returns every file below root whose extension is one of exts,
// in lexical order. Symlinks are listed too, so reading them reports broken
// targets. Directories named in ignore are skipped. exts are compared
// case-insensitively and must include the leading dot.
//
// Entries that cannot be read are skipped and returned as unreadable; only
// a failure on root itself is an error.
func WalkFiles(root string, exts, ignore []string) ([]string, []Unreadable, error) {
	exts = lo.Map(exts, func(e string, _ int) string { return strings.ToLower(e) })

	var (
		files   []string
		skipped []Unreadable
	)
	err := filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			skipped = append(skipped, Unreadable{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && lo.Contains(ignore, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if t := d.Type(); !t.IsRegular() && t&iofs.ModeSymlink == 0 {
			return nil
		}
		if lo.Contains(exts, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(files)
	return files, skipped, nil
}
