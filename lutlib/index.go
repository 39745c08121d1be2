// Package lutlib discovers .cube LUT files on disk, resolves loosely
// specified LUT names against the discovered set and caches parsed
// transforms.
//
// Name resolution is deliberately forgiving: the identifiers it receives are
// usually produced by a best-effort natural-language planner and are often
// near-miss filenames.
package lutlib

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

const lutExt = ".cube"

// Index is an immutable mapping from lowercased base filenames to the paths
// that carry them. Build one with ScanDir; concurrent readers share it freely.
type Index struct {
	names map[string][]string
	paths []string
}

// ScanDir recursively walks root and indexes every file with a .cube
// extension (case-insensitive). A missing root yields an empty index, not an
// error. Unreadable subdirectories are skipped.
func ScanDir(root string) (*Index, error) {
	ix := &Index{names: make(map[string][]string)}
	if root == "" {
		return ix, nil
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return ix, nil
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), lutExt) {
			return nil
		}
		if abs, aerr := filepath.Abs(path); aerr == nil {
			path = abs
		}
		ix.add(strings.ToLower(filepath.Base(path)), path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ix, nil
}

// add registers path under key, keeping (key, path) pairs unique. The first
// registered path for a key wins on lookup.
func (ix *Index) add(key, path string) {
	for _, existing := range ix.names[key] {
		if existing == path {
			return
		}
	}
	ix.names[key] = append(ix.names[key], path)
	ix.paths = append(ix.paths, path)
}

// Paths returns every registered path. Order is not significant.
func (ix *Index) Paths() []string {
	return append([]string(nil), ix.paths...)
}

// Keys returns every registered lowercased filename.
func (ix *Index) Keys() []string {
	keys := make([]string, 0, len(ix.names))
	for k := range ix.names {
		keys = append(keys, k)
	}
	return keys
}

// Lookup returns the first registered path for the lowercased base filename
// of name.
func (ix *Index) Lookup(name string) (string, bool) {
	if paths := ix.names[strings.ToLower(filepath.Base(name))]; len(paths) > 0 {
		return paths[0], true
	}
	return "", false
}

func (ix *Index) Len() int { return len(ix.paths) }

// Library owns the index for a LUT root directory. The index is rebuilt only
// by Rescan, which publishes a freshly built index atomically so concurrent
// readers never observe a partially built one.
type Library struct {
	root string
	idx  atomic.Pointer[Index]
}

// NewLibrary scans root and returns a library over it.
func NewLibrary(root string) (*Library, error) {
	l := &Library{root: root}
	if err := l.Rescan(); err != nil {
		return nil, err
	}
	return l, nil
}

// Root returns the directory the library scans.
func (l *Library) Root() string { return l.root }

// Index returns the current published index.
func (l *Library) Index() *Index { return l.idx.Load() }

// Rescan rebuilds the index from disk and swaps it in. Build-then-publish:
// readers keep the old index until the new one is complete.
func (l *Library) Rescan() error {
	ix, err := ScanDir(l.root)
	if err != nil {
		return err
	}
	l.idx.Store(ix)
	return nil
}
