// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDirectory returns parent/leaf, creating the directory and any missing
// parents when it does not exist yet. Calling it again for an existing
// directory is a no-op that returns the same path.
func EnsureDirectory(parent, leaf string) (string, error) {
	dir := filepath.Join(parent, leaf)

	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return dir, nil
	case err == nil:
		return "", fmt.Errorf("%s exists and is not a directory", dir)
	case !os.IsNotExist(err):
		return "", fmt.Errorf("could not stat %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create directory: %w", err)
	}
	return dir, nil
}

// ExecutableDir returns the directory holding the running binary, with
// symlinks resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("could not locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
