// Package parser converts documents (.txt, .pdf, .epub/.pub) into
// ordered token sequences for RSVP playback.
package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors; callers discriminate with errors.Is.
var (
	// ErrNotFound is returned when the input path does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrUnsupportedFormat is returned for extensions no registered
	// format handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Format defines a file format reader for extracting text.
type Format interface {
	Name() string
	Extensions() []string
	Extract(filename string) (string, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// lookup resolves the format for a filename by lowercased extension.
func lookup(filename string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f, true
			}
		}
	}
	return nil, false
}

// ExtractText extracts plain text from a file using the registered
// format for its extension. It fails with ErrNotFound when the path
// does not exist and ErrUnsupportedFormat when no format claims the
// extension.
func ExtractText(filename string) (string, error) {
	if _, err := os.Stat(filename); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	f, ok := lookup(filename)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	return f.Extract(filename)
}

// Parse extracts a file and tokenizes it into a flat token sequence.
func Parse(filename string) ([]string, error) {
	text, err := ExtractText(filename)
	if err != nil {
		return nil, err
	}
	return Tokenize(text), nil
}

// ParseChapters extracts a file and returns its chapters in reading
// order, each tokenized separately. Documents without detectable
// headings come back as a single "content" chapter.
func ParseChapters(filename string) ([]Chapter, error) {
	text, err := ExtractText(filename)
	if err != nil {
		return nil, err
	}

	var chapters []Chapter
	for _, s := range SplitChapters(text) {
		chapters = append(chapters, Chapter{
			Name:   s.Name,
			Tokens: Tokenize(s.Text),
		})
	}
	return chapters, nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}
