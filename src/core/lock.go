// Exclusive lock file management for the build's target directory, used by
// an external writer (the incremental executor) before any write to the
// target tree begins. The core itself never writes
// through this; it exists here because BuildOptions.TargetDirRoot is a core
// concept and callers building a front-end around this library need a
// single, correctly-race-free place to acquire it. Built on flock()
// underneath.
package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/pkg/xattr"
)

// lockFileName is the name of the advisory lock file at the top of the
// target directory.
const lockFileName = ".lumen-lock"

type fdMap struct {
	files map[string]*os.File
	mutex sync.RWMutex
}

var lockFiles = fdMap{files: make(map[string]*os.File)}

// AcquireRepoLock acquires the exclusive lock on targetDirRoot's lock file.
// If acquisition blocks, the process waits.
func AcquireRepoLock(targetDirRoot string) error {
	return AcquireFileLock(filepath.Join(targetDirRoot, lockFileName))
}

// AcquireFileLock opens a file and acquires an exclusive flock on it.
func AcquireFileLock(filePath string) error {
	lockFiles.mutex.Lock()
	defer lockFiles.mutex.Unlock()

	lockFile, err := openLockFile(filePath)
	if err != nil {
		return err
	}
	log.Debug("Attempting to acquire lock %s...", filePath)
	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err == nil {
		log.Debug("Acquired lock %s", filePath)
	} else if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", filePath, err)
	}

	lockFiles.files[filePath] = lockFile
	if _, err := lockFile.Seek(0, io.SeekStart); err == nil {
		if n, err := lockFile.Write([]byte(fmt.Sprint(os.Getpid(), "\n"))); err == nil {
			_ = lockFile.Truncate(int64(n))
		}
	}
	return nil
}

// CheckXattrsSupported does a quick best-effort probe of xattr support on
// the target directory's filesystem, used to decide whether the executor
// can rely on xattr-tagged lock metadata or must fall back to the lock
// file's textual PID record alone.
func CheckXattrsSupported(targetDirRoot string) bool {
	p := filepath.Join(targetDirRoot, lockFileName)
	if _, err := openLockFile(p); err != nil {
		return false
	}
	if err := xattr.Set(p, "user.lumen_build", []byte("lock")); err != nil {
		log.Warning("xattrs are not supported on this filesystem, using fallbacks")
		return false
	}
	return true
}

// ReleaseFileLock releases the lock and closes the file handle.
func ReleaseFileLock(filePath string) error {
	lockFiles.mutex.Lock()
	defer lockFiles.mutex.Unlock()

	lockFile, ok := lockFiles.files[filePath]
	if !ok {
		return fmt.Errorf("lock file %s not acquired", filePath)
	}
	err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)
	closeErr := lockFile.Close()
	delete(lockFiles.files, filePath)
	if err != nil {
		return err
	}
	return closeErr
}

// ReleaseRepoLock releases the lock acquired by AcquireRepoLock.
func ReleaseRepoLock(targetDirRoot string) error {
	return ReleaseFileLock(filepath.Join(targetDirRoot, lockFileName))
}

func openLockFile(filePath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModeDir|0775); err != nil {
		return nil, err
	}
	return os.OpenFile(filePath, os.O_RDWR|os.O_CREATE, 0644)
}
