package preset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// collect returns the files at path for which keep returns true.
//
// If path is a file it is returned as is without consulting keep, if it is a
// directory it is walked recursively. Hidden directories are skipped.
func collect(path string, keep func(path string) bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("could not get path info: %w", err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var paths []string

	err = filepath.WalkDir(path, func(current string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if current != path && len(d.Name()) > 1 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}

			return nil
		}

		if d.Type().IsRegular() && keep(current) {
			paths = append(paths, current)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not walk %s: %w", path, err)
	}

	return paths, nil
}
