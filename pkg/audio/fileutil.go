package audio

import (
	"os"
	"path/filepath"
	"strings"
)

// findFileInsensitive resolves name under baseDir, falling back to a
// case-insensitive directory scan. Legacy scenes reference audio files with
// inconsistent casing.
func findFileInsensitive(baseDir, name string) (string, error) {
	path := name
	if !filepath.IsAbs(name) {
		path = filepath.Join(baseDir, name)
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(entry.Name(), base) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", os.ErrNotExist
}
