package script

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// SourceFile is a script source file as read from disk, converted to UTF-8.
// The scheduler never interprets the source; it is kept so halt diagnostics can
// show the original line the error locator resolved.
type SourceFile struct {
	FileName string
	Content  string
	Size     int64
}

// Line returns the 1-based line of the source, or "" when out of range.
func (f *SourceFile) Line(n int) string {
	if f == nil || n < 1 {
		return ""
	}
	lines := strings.Split(f.Content, "\n")
	if n > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[n-1], "\r")
}

// Loader reads script source files from a scene directory.
type Loader struct {
	scenePath string
}

// NewLoader creates a Loader rooted at the scene directory.
func NewLoader(scenePath string) *Loader {
	return &Loader{
		scenePath: scenePath,
	}
}

// LoadAllSources reads every .hks file under the scene directory.
func (l *Loader) LoadAllSources() ([]SourceFile, error) {
	sourceFiles, err := l.findSourceFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to find script sources: %w", err)
	}

	if len(sourceFiles) == 0 {
		return nil, fmt.Errorf("no script sources found in %s", l.scenePath)
	}

	var sources []SourceFile
	for _, filePath := range sourceFiles {
		src, err := l.loadSource(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load script source %s: %w", filePath, err)
		}
		sources = append(sources, *src)
	}

	return sources, nil
}

// findSourceFiles detects .hks files, case-insensitive on the extension.
func (l *Loader) findSourceFiles() ([]string, error) {
	var sourceFiles []string

	err := filepath.Walk(l.scenePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if strings.EqualFold(ext, ".hks") {
			sourceFiles = append(sourceFiles, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return sourceFiles, nil
}

// loadSource reads a single source file and normalizes its encoding.
func (l *Loader) loadSource(path string) (*SourceFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content, err := decodeSource(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert encoding: %w", err)
	}

	return &SourceFile{
		FileName: filepath.Base(path),
		Content:  content,
		Size:     info.Size(),
	}, nil
}

// decodeSource converts legacy Shift-JIS sources to UTF-8. Sources that are
// already valid UTF-8 pass through unchanged.
func decodeSource(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoder := japanese.ShiftJIS.NewDecoder()
	reader := transform.NewReader(bytes.NewReader(data), decoder)

	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode Shift-JIS: %w", err)
	}

	return string(utf8Data), nil
}
