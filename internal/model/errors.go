package model

import (
	"errors"
	"fmt"
)

var (
	ErrNoPayee        = errors.New("payroll run must reference an employee or a contractor")
	ErrAmbiguousPayee = errors.New("payroll run must not reference both an employee and a contractor")
)

// FieldError describes one invalid field on a record.
type FieldError struct {
	Entity string
	ID     string
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %s %s", e.Entity, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s: %s %s", e.Entity, e.ID, e.Field, e.Reason)
}
