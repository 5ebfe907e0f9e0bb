package model

import "time"

// TaskStatus is a column on the work board.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskDone       TaskStatus = "done"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	return s == TaskTodo || s == TaskInProgress || s == TaskDone
}

// Task is a unit of back-office work.
type Task struct {
	ID          string
	CompanyID   string
	Title       string
	Status      TaskStatus
	Assignee    string
	DueDate     time.Time
	DocumentIDs []string
	CreatedAt   time.Time
}

// DocumentStatus tracks paperwork from request to filing.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentReceived DocumentStatus = "received"
	DocumentFiled    DocumentStatus = "filed"
)

// Valid reports whether s is a known status.
func (s DocumentStatus) Valid() bool {
	return s == DocumentPending || s == DocumentReceived || s == DocumentFiled
}

// Document is a tracked piece of paperwork (W-9, I-9, receipt, ...).
type Document struct {
	ID        string
	CompanyID string
	Name      string
	Kind      string
	Status    DocumentStatus
	UpdatedAt time.Time
}
