// Package extract turns job posting files into plain text and JobPosting values.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxBytes caps the size of a posting file read from disk.
const DefaultMaxBytes = 10 << 20

// SupportedExtensions lists the file types Extract understands.
var SupportedExtensions = []string{".txt", ".md", ".pdf", ".docx", ".xlsx", ".rtf", ".odt"}

// Extractor extracts plain text from job posting files.
type Extractor struct {
	maxBytes int64
}

// NewExtractor returns an Extractor that rejects files larger than maxBytes.
// maxBytes <= 0 means DefaultMaxBytes.
func NewExtractor(maxBytes int64) *Extractor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Extractor{maxBytes: maxBytes}
}

// Supported reports whether ext (with leading dot) is an extractable posting format.
func Supported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, s := range SupportedExtensions {
		if s == ext {
			return true
		}
	}
	return false
}

// Extract reads the file at path and returns its text with one paragraph per line.
// Returns an error if the file cannot be read, is too large, or the format is unsupported.
func (e *Extractor) Extract(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat file: %w", err)
	}
	if info.Size() > e.maxBytes {
		return "", fmt.Errorf("file %s is %d bytes, limit is %d", filepath.Base(path), info.Size(), e.maxBytes)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if catExtensions[ext] {
		return extractCatFile(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".xlsx":
		return extractExcel(content)
	case ".txt", ".md":
		return extractPlain(content)
	case ".rtf", ".odt":
		return extractCatBytes(content, ext)
	default:
		return "", fmt.Errorf("unsupported posting format %q", ext)
	}
}

// ExtractPosting extracts the file at path and parses it into a posting.
func (e *Extractor) ExtractPosting(path string) (Posting, error) {
	text, err := e.Extract(path)
	if err != nil {
		return Posting{}, err
	}
	return ParsePosting(text)
}
