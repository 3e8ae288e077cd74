package project

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

var errStopWalk = errors.New("stop walk")

// Locator finds the entry HTML file of a game project.
type Locator struct {
	fs         afero.Fs
	entryName  string
	candidates []string
}

// NewLocator creates a Locator. candidates are tried in order, relative to
// the root passed to Locate.
func NewLocator(fsys afero.Fs, entryName string, candidates []string) *Locator {
	return &Locator{fs: fsys, entryName: entryName, candidates: candidates}
}

// Locate returns the first existing candidate under root. When none exists it
// falls back to a recursive search and takes the first file named like the
// entry file in lexical walk order. ok is false when nothing was found; err
// is set only when root itself could not be searched.
func (l *Locator) Locate(root string) (path string, ok bool, err error) {
	for _, candidate := range l.candidates {
		p := filepath.Join(root, filepath.FromSlash(candidate))
		if isFile(l.fs, p) {
			return p, true, nil
		}
	}

	err = afero.Walk(l.fs, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			// unreadable subtrees are skipped, not fatal
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() && info.Name() == l.entryName {
			path = p
			return errStopWalk
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return "", false, fmt.Errorf("failed to search %s: %w", root, err)
	}
	return path, path != "", nil
}

func isFile(fsys afero.Fs, p string) bool {
	info, err := fsys.Stat(p)
	return err == nil && !info.IsDir()
}
