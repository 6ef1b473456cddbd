package normalize

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Flattener extracts the visible text of one source format, in document
// order. Output is fed through Normalize before use.
type Flattener interface {
	Flatten(r io.Reader, filename string) (string, error)
}

// SupportedExtensions lists filing formats this service can handle.
var SupportedExtensions = map[string]bool{
	".htm":      true,
	".html":     true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the flattener for a filename.
func ForFile(filename string) (Flattener, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".htm", ".html":
		return &HTMLFlattener{}, nil
	case ".txt":
		return &TextFlattener{}, nil
	case ".md", ".markdown":
		return &MarkdownFlattener{}, nil
	case ".pdf":
		return &PDFFlattener{}, nil
	case ".docx":
		return &DOCXFlattener{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Document flattens and normalizes one raw filing in a single call.
func Document(r io.Reader, filename string) (string, error) {
	f, err := ForFile(filename)
	if err != nil {
		return "", err
	}
	text, err := f.Flatten(r, filename)
	if err != nil {
		return "", err
	}
	return Normalize(text), nil
}

// TextFlattener handles plain-text filings (full-text submission files).
type TextFlattener struct{}

func (p *TextFlattener) Flatten(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
