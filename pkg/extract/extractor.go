// Package extract turns uploaded document bytes into plain text. Extractors
// are registered per file extension; the binary formats (PDF, DOCX) are
// supplied by the embedding host, only plain text ships here.
package extract

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"ai-studyroom-be/internal/apperr"
)

// Extractor converts one file format into plain text.
type Extractor func(raw []byte) (string, error)

// Registry maps lowercase file extensions (".pdf") to extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
}

// NewRegistry returns a registry with the built-in plain-text extractors.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}
	r.Register(".txt", extractPlainText)
	r.Register(".md", extractPlainText)
	r.Register(".csv", extractPlainText)
	return r
}

func (r *Registry) Register(ext string, fn Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[strings.ToLower(ext)] = fn
}

// Extract picks the extractor for filename's extension and runs it.
func (r *Registry) Extract(raw []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	r.mu.RLock()
	fn, ok := r.extractors[ext]
	r.mu.RUnlock()

	if !ok {
		return "", apperr.Wrapf(apperr.ErrUnsupportedFormat, "no extractor for %q", ext)
	}

	text, err := fn(raw)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrExtractionFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", apperr.Wrapf(apperr.ErrExtractionFailed, "document %q produced no text", filename)
	}
	return text, nil
}

func extractPlainText(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", errors.New("content is not valid UTF-8")
	}
	return string(raw), nil
}
