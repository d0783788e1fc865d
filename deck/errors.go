package deck

import (
	"errors"
	"fmt"
)

// ErrIndex is matched by every *IndexError.
var ErrIndex = errors.New("index out of range")

// ErrNotFound reports a missing package part or relationship.
var ErrNotFound = errors.New("not found")

// ErrDetached is returned by editors that need the owning presentation
// (media, charts, layouts) when called on a slide built with NewSlide.
var ErrDetached = errors.New("slide is not attached to a presentation")

// IndexError reports an out-of-range slide, shape, row or column index.
type IndexError struct {
	What  string // "slide", "shape", "row", "column", "layout"
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("Invalid %s index: %d", e.What, e.Index)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndex }

func checkIndex(what string, i, n int) error {
	if i < 0 || i >= n {
		return &IndexError{What: what, Index: i, Len: n}
	}
	return nil
}
