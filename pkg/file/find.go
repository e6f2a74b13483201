package file

import (
	"io/fs"
	"path/filepath"
	"time"
)

// FindRecentAfter returns the regular files under dir modified after
// startTime, keyed by cleaned path.
func FindRecentAfter(dir string, startTime time.Time) (map[string]struct{}, error) {
	recent := make(map[string]struct{})

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(startTime) {
			recent[filepath.Clean(path)] = struct{}{}
		}
		return nil
	})

	return recent, err
}
