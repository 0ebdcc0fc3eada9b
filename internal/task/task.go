package task

import (
	"errors"
	"fmt"
)

// ErrEmptyDescription is returned when a task would end up without a description.
var ErrEmptyDescription = errors.New("description is empty")

type Task struct {
	ID          uint64 `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Body        string `json:"body"`
}

// New builds a pending task. It fails when description is empty.
func New(id uint64, description, body string) (Task, error) {
	if description == "" {
		return Task{}, ErrEmptyDescription
	}
	return Task{
		ID:          id,
		Description: description,
		Body:        body,
	}, nil
}

func (t *Task) SetDescription(text string) error {
	if text == "" {
		return ErrEmptyDescription
	}
	t.Description = text
	return nil
}

func (t *Task) SetBody(text string) {
	t.Body = text
}

func (t *Task) ToggleCompleted() {
	t.Completed = !t.Completed
}

// Validate reports whether a decoded task satisfies the entity invariants.
func (t Task) Validate() error {
	if t.Description == "" {
		return fmt.Errorf("task %d: %w", t.ID, ErrEmptyDescription)
	}
	return nil
}

// Checkbox renders the completion flag the way the task list shows it.
func Checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[]"
}
