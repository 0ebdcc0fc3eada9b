package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is wrapped by every store operation given a bad index.
	ErrIndexOutOfRange = errors.New("task index out of range")
	// ErrUnencodable marks a task the line format cannot represent.
	ErrUnencodable = errors.New("task cannot be encoded as a line")
)

// ParseError reports a malformed persisted record. Line is 1-based and zero
// for formats without lines.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse line %d %q: %v", e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("parse tasks: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PersistenceError wraps the I/O failure behind a load or save. The in-memory
// store keeps the mutation that triggered the save, so saved state may lag.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func indexError(i, n int) error {
	return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, n)
}
