package fs

import (
	"path/filepath"
	"sort"

	"github.com/karrick/godirwalk"
)

// DirWalkFunc is invoked once per directory visited by WalkDirectories
// (including the root), with a path relative to the walk's root. Returning
// descend=false skips recursing into that directory's children.
type DirWalkFunc func(dir, relPath string) (descend bool, err error)

// WalkDirectories performs a depth-first, directories-only, name-sorted
// walk rooted at root. Regular files are never visited directly: module and
// package boundaries are always directories, so the discoverer only ever
// needs to ask "is there a manifest in this directory" at each step, which
// the callback does itself.
func WalkDirectories(root string, callback DirWalkFunc) error {
	return walkDirectories(root, root, callback)
}

func walkDirectories(dir, root string, callback DirWalkFunc) error {
	relPath, err := filepath.Rel(root, dir)
	if err != nil {
		return err
	}
	if relPath == "." {
		relPath = ""
	}
	descend, err := callback(dir, relPath)
	if err != nil || !descend {
		return err
	}

	dirents, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		return err
	}
	sort.Sort(dirents)
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		if err := walkDirectories(filepath.Join(dir, d.Name()), root, callback); err != nil {
			return err
		}
	}
	return nil
}
