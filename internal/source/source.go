// Package source provides run-scoped access to typesafety source
// files and the line splitting shared by the parser and renderer.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is a typesafety source file. Its content is read on first
// access and reused for the rest of the run. A File belongs to one
// item and is not safe for concurrent use.
type File struct {
	// Path is the absolute filesystem path.
	Path string

	content *string
}

// Open returns a File for path, resolved to an absolute path. The
// file is not read until Content is called.
func Open(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	return &File{Path: abs}, nil
}

// FromString returns a File whose content is already known. Used
// when the text does not come from disk.
func FromString(path, content string) *File {
	return &File{Path: path, content: &content}
}

// Content returns the file text, reading it on the first call.
func (f *File) Content() (string, error) {
	if f.content != nil {
		return *f.content, nil
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", f.Path, err)
	}
	text := string(data)
	f.content = &text
	return text, nil
}

// Lines splits content into lines. "\n", "\r\n" and "\r" all end a
// line; a trailing line break does not start a new empty line, so
// empty content has no lines.
func Lines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
