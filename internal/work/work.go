// Package work tracks back-office tasks and the documents they depend on.
//
// State changes go through Reduce, a pure function from a snapshot and an
// action to the next snapshot. Board wraps it with loading and saving.
package work

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tally-dev/tally/internal/model"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrDocumentNotFound = errors.New("document not found")
)

// ActionError reports an action rejected for invalid input.
type ActionError struct {
	Action string
	Reason string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Reason)
}

func notFound(err error, id string) error {
	return fmt.Errorf("%w: %s", err, id)
}

// Snapshot is the whole board at one point in time.
type Snapshot struct {
	Tasks     []model.Task
	Documents []model.Document
}

// Reduce applies a to s and returns the resulting snapshot. s is never
// modified; on error the returned snapshot is s.
func Reduce(s Snapshot, a Action, now time.Time) (Snapshot, error) {
	if a == nil {
		return s, errors.New("nil action")
	}
	next := s.clone()
	if err := a.apply(&next, now.UTC()); err != nil {
		return s, err
	}
	return next, nil
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Tasks:     make([]model.Task, len(s.Tasks)),
		Documents: slices.Clone(s.Documents),
	}
	for i, t := range s.Tasks {
		t.DocumentIDs = slices.Clone(t.DocumentIDs)
		out.Tasks[i] = t
	}
	return out
}

// Task returns the task with id.
func (s Snapshot) Task(id string) (model.Task, bool) {
	if i := s.taskIndex(id); i >= 0 {
		return s.Tasks[i], true
	}
	return model.Task{}, false
}

// Document returns the document with id.
func (s Snapshot) Document(id string) (model.Document, bool) {
	if i := s.documentIndex(id); i >= 0 {
		return s.Documents[i], true
	}
	return model.Document{}, false
}

// TasksByStatus returns the tasks in one column, in board order.
func (s Snapshot) TasksByStatus(status model.TaskStatus) []model.Task {
	var out []model.Task
	for _, t := range s.Tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Outstanding returns the linked documents of t that are not yet filed.
func (s Snapshot) Outstanding(t model.Task) []model.Document {
	var out []model.Document
	for _, id := range t.DocumentIDs {
		if d, ok := s.Document(id); ok && d.Status != model.DocumentFiled {
			out = append(out, d)
		}
	}
	return out
}

func (s Snapshot) taskIndex(id string) int {
	return slices.IndexFunc(s.Tasks, func(t model.Task) bool { return t.ID == id })
}

func (s Snapshot) documentIndex(id string) int {
	return slices.IndexFunc(s.Documents, func(d model.Document) bool { return d.ID == id })
}
