package ungroup

import (
	"errors"
	"fmt"
)

// ErrNestedGroup is matched by every *NestedGroupError.
var ErrNestedGroup = errors.New("nested group")

// ErrTransform is matched by every *TransformError.
var ErrTransform = errors.New("malformed transform")

// NestedGroupError reports the first group found holding another group.
type NestedGroupError struct {
	GroupID int
	ChildID int
}

func (e *NestedGroupError) Error() string {
	return fmt.Sprintf("group %d contains nested group %d", e.GroupID, e.ChildID)
}

func (e *NestedGroupError) Unwrap() error { return ErrNestedGroup }

// TransformError reports coordinates that could not be decoded. The (0,0)
// fallback only covers absent values, not unreadable ones.
type TransformError struct {
	ShapeID int
	Err     error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("shape %d: %v", e.ShapeID, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

func (e *TransformError) Is(target error) bool { return target == ErrTransform }
