package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lu4p/cat"
)

// catExtensions are read through lu4p/cat, which works on file paths.
var catExtensions = map[string]bool{".rtf": true, ".odt": true}

// extractCatFile returns the text of an RTF or OpenDocument file.
func extractCatFile(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filepath.Ext(path), err)
	}
	return extractPlain([]byte(text))
}

// extractCatBytes spools content to a temporary file with the given extension.
func extractCatBytes(content []byte, ext string) (string, error) {
	f, err := os.CreateTemp("", "posting-*"+ext)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", ext, err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("extract %s: %w", ext, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("extract %s: %w", ext, err)
	}
	return extractCatFile(f.Name())
}
