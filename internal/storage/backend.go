package storage

import (
	"fmt"
	"strings"

	"todo/internal/task"
)

// Backend persists the whole ordered task sequence. Every Save rewrites the
// full store; there is no partial update and no buffering.
type Backend interface {
	Load() ([]task.Task, error)
	Save(tasks []task.Task) error
	Path() string
	Close() error
}

// Validator is implemented by backends that cannot store every task. Store
// calls Validate before applying a change, so a rejected edit leaves memory
// and disk untouched.
type Validator interface {
	Validate(t task.Task) error
}

const (
	KindJSON   = "json"
	KindLines  = "lines"
	KindSQLite = "sqlite"
)

// OpenBackend picks the encoding once, at construction.
func OpenBackend(kind, path string) (Backend, error) {
	if path == "" {
		return nil, fmt.Errorf("data path is empty")
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindJSON:
		return NewJSONFile(path), nil
	case KindLines:
		return NewLineFile(path), nil
	case KindSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s, %s or %s)", kind, KindJSON, KindLines, KindSQLite)
	}
}
