package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrInactiveEmployee = errors.New("employee is inactive")
	ErrPayeeNotFound    = errors.New("payee not found")
)

// InputError reports a pay calculation input that failed validation.
type InputError struct {
	Field  string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid payroll input %s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return e.Err
}
