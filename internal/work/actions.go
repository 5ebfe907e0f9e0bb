package work

import (
	"time"

	"github.com/tally-dev/tally/internal/model"
)

// Action is a change to the board. The set is closed; see Reduce.
type Action interface {
	apply(s *Snapshot, now time.Time) error
}

// AddTask creates a todo task.
type AddTask struct {
	ID          string
	Title       string
	Assignee    string
	DueDate     time.Time
	DocumentIDs []string
}

// MoveTask changes a task's column.
type MoveTask struct {
	TaskID string
	Status model.TaskStatus
}

// AssignTask sets or clears a task's assignee.
type AssignTask struct {
	TaskID   string
	Assignee string
}

// LinkDocument attaches a document to a task.
type LinkDocument struct {
	TaskID     string
	DocumentID string
}

// AddDocument starts tracking a document as pending.
type AddDocument struct {
	ID   string
	Name string
	Kind string
}

// FileDocument advances a document's status. The zero Status means filed.
type FileDocument struct {
	DocumentID string
	Status     model.DocumentStatus
}

func (a AddTask) apply(s *Snapshot, now time.Time) error {
	if a.ID == "" {
		return &ActionError{Action: "add task", Reason: "id is required"}
	}
	if a.Title == "" {
		return &ActionError{Action: "add task", Reason: "title is required"}
	}
	if _, ok := s.Task(a.ID); ok {
		return &ActionError{Action: "add task", Reason: "task " + a.ID + " already exists"}
	}
	for _, docID := range a.DocumentIDs {
		if _, ok := s.Document(docID); !ok {
			return notFound(ErrDocumentNotFound, docID)
		}
	}
	s.Tasks = append(s.Tasks, model.Task{
		ID:          a.ID,
		Title:       a.Title,
		Status:      model.TaskTodo,
		Assignee:    a.Assignee,
		DueDate:     model.Day(a.DueDate),
		DocumentIDs: dedupe(a.DocumentIDs),
		CreatedAt:   now,
	})
	return nil
}

func (a MoveTask) apply(s *Snapshot, _ time.Time) error {
	if !a.Status.Valid() {
		return &ActionError{Action: "move task", Reason: "unknown status " + string(a.Status)}
	}
	i := s.taskIndex(a.TaskID)
	if i < 0 {
		return notFound(ErrTaskNotFound, a.TaskID)
	}
	s.Tasks[i].Status = a.Status
	return nil
}

func (a AssignTask) apply(s *Snapshot, _ time.Time) error {
	i := s.taskIndex(a.TaskID)
	if i < 0 {
		return notFound(ErrTaskNotFound, a.TaskID)
	}
	s.Tasks[i].Assignee = a.Assignee
	return nil
}

func (a LinkDocument) apply(s *Snapshot, _ time.Time) error {
	i := s.taskIndex(a.TaskID)
	if i < 0 {
		return notFound(ErrTaskNotFound, a.TaskID)
	}
	if _, ok := s.Document(a.DocumentID); !ok {
		return notFound(ErrDocumentNotFound, a.DocumentID)
	}
	for _, id := range s.Tasks[i].DocumentIDs {
		if id == a.DocumentID {
			return nil
		}
	}
	s.Tasks[i].DocumentIDs = append(s.Tasks[i].DocumentIDs, a.DocumentID)
	return nil
}

func (a AddDocument) apply(s *Snapshot, now time.Time) error {
	if a.ID == "" {
		return &ActionError{Action: "add document", Reason: "id is required"}
	}
	if a.Name == "" {
		return &ActionError{Action: "add document", Reason: "name is required"}
	}
	if _, ok := s.Document(a.ID); ok {
		return &ActionError{Action: "add document", Reason: "document " + a.ID + " already exists"}
	}
	s.Documents = append(s.Documents, model.Document{
		ID:        a.ID,
		Name:      a.Name,
		Kind:      a.Kind,
		Status:    model.DocumentPending,
		UpdatedAt: now,
	})
	return nil
}

func (a FileDocument) apply(s *Snapshot, now time.Time) error {
	status := a.Status
	if status == "" {
		status = model.DocumentFiled
	}
	if !status.Valid() {
		return &ActionError{Action: "file document", Reason: "unknown status " + string(status)}
	}
	i := s.documentIndex(a.DocumentID)
	if i < 0 {
		return notFound(ErrDocumentNotFound, a.DocumentID)
	}
	if s.Documents[i].Status == status {
		return nil
	}
	s.Documents[i].Status = status
	s.Documents[i].UpdatedAt = now
	return nil
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
