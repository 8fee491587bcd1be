package dicom

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ListRegularFiles returns the regular files directly inside dir, sorted.
// Subdirectories and other entries are ignored.
func ListRegularFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not list %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}

	sort.Strings(files)
	return files, nil
}

// ListEntries returns the names of the top-level entries of dir, sorted.
func ListEntries(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not list %s: %w", dir, err)
	}
	return entries, nil
}
