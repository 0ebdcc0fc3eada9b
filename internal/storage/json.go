package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"todo/internal/task"
)

// JSONFile stores the sequence as a pretty-printed JSON array.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (f *JSONFile) Path() string { return f.path }

func (f *JSONFile) Close() error { return nil }

func (f *JSONFile) Load() ([]task.Task, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := f.Save(nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: f.path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, &ParseError{Err: err}
	}
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, &ParseError{Err: err}
		}
	}
	return tasks, nil
}

func (f *JSONFile) Save(tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "encode", Path: f.path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return &PersistenceError{Op: "create dir for", Path: f.path, Err: err}
	}
	if err := os.WriteFile(f.path, append(data, '\n'), 0o644); err != nil {
		return &PersistenceError{Op: "write", Path: f.path, Err: err}
	}
	return nil
}
