package modules

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is classification.
var (
	ErrNotFound        = errors.New("module not found")
	ErrIndexOutOfRange = errors.New("module index out of range")
	ErrDuplicate       = errors.New("duplicate module name")
)

// NotFoundError reports a lookup miss. Retrying the same name cannot succeed.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("modules: %s: %q", ErrNotFound, e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IndexError reports a positional selection outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("modules: %s: %d not in [0, %d)", ErrIndexOutOfRange, e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }
