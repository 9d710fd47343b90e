// Package extract defines the document text extraction boundary.
// PDF/DOCX parsing is an external capability; the core only consumes
// extracted text.
package extract

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedType is returned for file types no extractor handles
var ErrUnsupportedType = errors.New("unsupported file type")

// EmptyContentSentinel marks a document that produced no usable text.
// Callers treat it as "no resume content" rather than an error.
const EmptyContentSentinel = "Resume content appears to be empty or could not be extracted."

// TextExtractor turns an uploaded document into plain text
type TextExtractor interface {
	Extract(filename string, data []byte) (string, error)
}

// PlainTextExtractor handles .txt uploads and is the default wiring;
// PDF and DOCX extractors plug in behind the same interface.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".txt" && ext != ".text" && ext != "" {
		return "", ErrUnsupportedType
	}
	if !utf8.Valid(data) {
		return EmptyContentSentinel, nil
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return EmptyContentSentinel, nil
	}
	return text, nil
}

// Registry routes by file extension to the first extractor claiming
// the file.
type Registry struct {
	byExt map[string]TextExtractor
}

// NewRegistry builds a registry with the plain-text extractor installed
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]TextExtractor)}
	plain := PlainTextExtractor{}
	r.Register(".txt", plain)
	r.Register(".text", plain)
	return r
}

// Register binds an extractor to a lower-case extension (".pdf")
func (r *Registry) Register(ext string, e TextExtractor) {
	r.byExt[strings.ToLower(ext)] = e
}

// Extract dispatches on the filename extension
func (r *Registry) Extract(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	e, ok := r.byExt[ext]
	if !ok {
		return "", ErrUnsupportedType
	}
	return e.Extract(filename, data)
}
