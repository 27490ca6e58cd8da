// Package fs provides filesystem helpers shared by the discovery and
// artifact-layout components. It deliberately knows nothing about packages,
// modules or build targets; the core only ever reads, never writes, through
// this package.
package fs

import (
	"os"
	"path/filepath"
)

// PathExists returns true if the given path exists, as a file or a directory.
func PathExists(filename string) bool {
	_, err := os.Lstat(filename)
	return err == nil
}

// FileExists returns true if the given path exists and is a file.
func FileExists(filename string) bool {
	info, err := os.Lstat(filename)
	return err == nil && !info.IsDir()
}

// IsDirectory checks if a given path is a directory.
func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsPackage returns true if the given directory contains one of the given
// manifest file names, i.e. it defines a package or module.
func IsPackage(manifestNames []string, dir string) bool {
	for _, name := range manifestNames {
		if FileExists(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}
