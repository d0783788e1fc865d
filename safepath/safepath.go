// Package safepath confines caller-supplied file paths to an optional root
// directory and bounds how much of a file is read into memory.
package safepath

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a path resolves outside the sandbox root.
var ErrOutsideRoot = errors.New("safepath: path escapes root directory")

// ErrTooLarge is returned when a file exceeds the read limit.
var ErrTooLarge = errors.New("safepath: file too large")

// Sandbox resolves paths. A zero Root allows any path; a zero MaxBytes
// disables the read limit.
type Sandbox struct {
	Root     string
	MaxBytes int64
}

// New returns a Sandbox rooted at root (made absolute).
func New(root string, maxBytes int64) (*Sandbox, error) {
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("safepath: root: %w", err)
		}
		root = abs
	}
	return &Sandbox{Root: root, MaxBytes: maxBytes}, nil
}

// Resolve returns the cleaned absolute form of p. Relative paths are taken
// relative to Root when one is set.
func (s *Sandbox) Resolve(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New("safepath: empty path")
	}
	if s == nil || s.Root == "" {
		return filepath.Abs(p)
	}
	var cleaned string
	if filepath.IsAbs(p) {
		cleaned = filepath.Clean(p)
	} else {
		cleaned = filepath.Join(s.Root, p)
	}
	rel, err := filepath.Rel(s.Root, cleaned)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, p)
	}
	return cleaned, nil
}

// ReadFile resolves p and reads it within the size limit.
func (s *Sandbox) ReadFile(p string) ([]byte, error) {
	path, err := s.Resolve(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var limit int64
	if s != nil {
		limit = s.MaxBytes
	}
	if limit <= 0 {
		return io.ReadAll(f)
	}
	return LimitedReadAll(f, limit)
}

// LimitedReadAll reads at most maxBytes from r.
func LimitedReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}
