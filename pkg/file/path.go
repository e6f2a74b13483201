package file

import (
	"path/filepath"
	"strings"
)

// ReplaceExt swaps the last extension of path for ext. A missing leading
// dot on ext is added; dotfiles such as ".env" keep their name.
func ReplaceExt(path, ext string) string {
	if path == "" {
		return path
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	dir := filepath.Dir(path)
	filename := filepath.Base(path)
	if lastDot := strings.LastIndex(filename, "."); lastDot > 0 {
		filename = filename[:lastDot]
	}
	return filepath.Join(dir, filename+ext)
}
