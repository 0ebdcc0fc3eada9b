package storage

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"todo/internal/task"
)

// LineFile is the legacy encoding: one task per line, id,description,completed[,body].
// Fields are not escaped; description may hold commas because trailing fields
// are split off from the right.
type LineFile struct {
	path string
}

func NewLineFile(path string) *LineFile {
	return &LineFile{path: path}
}

func (f *LineFile) Path() string { return f.path }

func (f *LineFile) Close() error { return nil }

func (f *LineFile) Load() ([]task.Task, error) {
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

	var tasks []task.Task
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		t, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Text: line, Err: err}
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (f *LineFile) Save(tasks []task.Task) error {
	var b strings.Builder
	for _, t := range tasks {
		line, err := formatLine(t)
		if err != nil {
			return &PersistenceError{Op: "encode", Path: f.path, Err: err}
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return &PersistenceError{Op: "create dir for", Path: f.path, Err: err}
	}
	if err := os.WriteFile(f.path, []byte(b.String()), 0o644); err != nil {
		return &PersistenceError{Op: "write", Path: f.path, Err: err}
	}
	return f.stripTrailingBlankLine()
}

// stripTrailingBlankLine re-reads the whole file and rewrites it without a
// final empty line.
func (f *LineFile) stripTrailingBlankLine() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return &PersistenceError{Op: "reread", Path: f.path, Err: err}
	}
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return &PersistenceError{Op: "reread", Path: f.path, Err: err}
	}
	if n := len(lines); n > 0 && strings.TrimSuffix(lines[n-1], "\r") == "" {
		lines = lines[:n-1]
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(f.path, []byte(b.String()), 0o644); err != nil {
		return &PersistenceError{Op: "rewrite", Path: f.path, Err: err}
	}
	return nil
}

// Validate rejects tasks that have no line encoding.
func (f *LineFile) Validate(t task.Task) error {
	_, err := formatLine(t)
	return err
}

func formatLine(t task.Task) (string, error) {
	if strings.ContainsAny(t.Description, "\r\n") {
		return "", fmt.Errorf("%w: description of task %d contains a newline", ErrUnencodable, t.ID)
	}
	if strings.ContainsAny(t.Body, ",\r\n") {
		return "", fmt.Errorf("%w: body of task %d contains a comma or newline", ErrUnencodable, t.ID)
	}
	return fmt.Sprintf("%d,%s,%t,%s", t.ID, t.Description, t.Completed, t.Body), nil
}

// parseLine reads a 4-field record when the second field from the right is a
// boolean, and falls back to the 3-field legacy shape otherwise.
func parseLine(line string) (task.Task, error) {
	idField, rest, ok := strings.Cut(line, ",")
	if !ok {
		return task.Task{}, errors.New("want 3 or 4 comma separated fields")
	}
	id, err := strconv.ParseUint(idField, 10, 64)
	if err != nil {
		return task.Task{}, fmt.Errorf("id: %w", err)
	}

	t := task.Task{ID: id}
	if parts := rsplitN(rest, 3); len(parts) == 3 {
		if done, err := parseBool(parts[1]); err == nil {
			t.Description, t.Completed, t.Body = parts[0], done, parts[2]
			return t, t.Validate()
		}
	}
	parts := rsplitN(rest, 2)
	if len(parts) != 2 {
		return task.Task{}, errors.New("want 3 or 4 comma separated fields")
	}
	done, err := parseBool(parts[1])
	if err != nil {
		return task.Task{}, fmt.Errorf("completed: %w", err)
	}
	t.Description, t.Completed = parts[0], done
	return t, t.Validate()
}

// rsplitN splits s on commas from the right into at most n parts; the first
// part keeps any remaining commas.
func rsplitN(s string, n int) []string {
	var tail []string
	for len(tail) < n-1 {
		i := strings.LastIndexByte(s, ',')
		if i < 0 {
			break
		}
		tail = append(tail, s[i+1:])
		s = s[:i]
	}
	parts := make([]string, 0, len(tail)+1)
	parts = append(parts, s)
	for i := len(tail) - 1; i >= 0; i-- {
		parts = append(parts, tail[i])
	}
	return parts
}

func parseBool(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
