// Package storage owns the ordered task list and keeps it in sync with disk.
//
// Every mutating Store method checks the new task against the backend,
// applies the change in memory, then rewrites the whole backend synchronously.
// A task the backend cannot encode is rejected with ErrUnencodable before
// anything changes. A failed write is returned as a *PersistenceError and the
// in-memory change is kept.
package storage

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"todo/internal/task"
)

type Store struct {
	backend Backend
	tasks   []task.Task
	nextID  uint64
	log     *log.Logger
}

// Open loads the backend into a new Store. A nil logger discards output.
func Open(backend Backend, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Store{backend: backend, log: logger}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) Path() string {
	return s.backend.Path()
}

// Load replaces the in-memory sequence with what the backend holds.
func (s *Store) Load() error {
	tasks, err := s.backend.Load()
	if err != nil {
		s.log.Error("load tasks", "path", s.backend.Path(), "err", err)
		return err
	}
	s.tasks = tasks
	s.nextID = 0
	for _, t := range tasks {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	s.log.Debug("loaded tasks", "path", s.backend.Path(), "count", len(tasks))
	return nil
}

func (s *Store) Len() int { return len(s.tasks) }

// Tasks returns a copy of the ordered sequence.
func (s *Store) Tasks() []task.Task {
	out := make([]task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) Task(i int) (task.Task, error) {
	if err := s.check(i); err != nil {
		return task.Task{}, err
	}
	return s.tasks[i], nil
}

// Add assigns the next id, appends t and persists. It returns t's index.
func (s *Store) Add(t task.Task) (int, error) {
	if err := t.Validate(); err != nil {
		return -1, err
	}
	t.ID = s.nextID
	if err := s.encodable(t); err != nil {
		return -1, err
	}
	s.nextID++
	s.tasks = append(s.tasks, t)
	s.log.Debug("added task", "id", t.ID, "description", t.Description)
	return len(s.tasks) - 1, s.Persist()
}

func (s *Store) Remove(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	removed := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.log.Debug("removed task", "id", removed.ID, "index", i)
	return s.Persist()
}

// Clear drops every task and writes an empty store.
func (s *Store) Clear() error {
	s.tasks = nil
	s.nextID = 0
	s.log.Debug("cleared tasks")
	return s.Persist()
}

func (s *Store) SetDescription(i int, text string) error {
	if err := s.check(i); err != nil {
		return err
	}
	t := s.tasks[i]
	if err := t.SetDescription(text); err != nil {
		return err
	}
	if err := s.encodable(t); err != nil {
		return err
	}
	s.tasks[i] = t
	return s.Persist()
}

func (s *Store) SetBody(i int, text string) error {
	if err := s.check(i); err != nil {
		return err
	}
	t := s.tasks[i]
	t.SetBody(text)
	if err := s.encodable(t); err != nil {
		return err
	}
	s.tasks[i] = t
	return s.Persist()
}

func (s *Store) ToggleCompleted(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.tasks[i].ToggleCompleted()
	return s.Persist()
}

// Persist rewrites the whole backend from memory.
func (s *Store) Persist() error {
	if err := s.backend.Save(s.tasks); err != nil {
		s.log.Error("persist tasks", "path", s.backend.Path(), "err", err)
		return err
	}
	return nil
}

// Visible returns the store indices shown under the completed-task filter.
func (s *Store) Visible(showCompleted bool) []int {
	idx := make([]int, 0, len(s.tasks))
	for i, t := range s.tasks {
		if !showCompleted && t.Completed {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}

// TasksIntoString renders one "description [ ] body" line per task.
func (s *Store) TasksIntoString() string {
	var b strings.Builder
	for _, t := range s.tasks {
		b.WriteString(t.Description)
		b.WriteString(" ")
		b.WriteString(task.Checkbox(t.Completed))
		b.WriteString(" ")
		if t.Body != "" {
			b.WriteString(t.Body)
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Store) encodable(t task.Task) error {
	v, ok := s.backend.(Validator)
	if !ok {
		return nil
	}
	return v.Validate(t)
}

func (s *Store) check(i int) error {
	if i < 0 || i >= len(s.tasks) {
		return indexError(i, len(s.tasks))
	}
	return nil
}
