package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/gantt/internal/calendar"
)

// Validation error kinds. A *ValidationError unwraps to exactly one of these.
var (
	ErrInvalidTask     = errors.New("invalid task")
	ErrInvalidDeadline = errors.New("invalid deadline")
	ErrInvalidProject  = errors.New("invalid project")
)

// ErrNotFound is returned when a mutation names an id that does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Kind   error
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return e.Kind.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap returns the error kind so callers can use errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) orNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// ValidateTask checks a single task for constraint violations.
func ValidateTask(t Task) error {
	ve := ValidationError{Kind: ErrInvalidTask}
	validateTaskFields(&ve, "", t)
	return ve.orNil()
}

func validateTaskFields(ve *ValidationError, prefix string, t Task) {
	if t.Width <= 0 {
		ve.add(prefix+"width", "must be positive, got %d", t.Width)
	}
	if t.Row < 0 {
		ve.add(prefix+"row", "must not be negative, got %d", t.Row)
	}
}

// colBounds returns the columns of calendar.MinDate and calendar.MaxDate
// relative to start.
func colBounds(start calendar.Date) (lo, hi int) {
	return calendar.DateToCol(start, calendar.MinDate), calendar.DateToCol(start, calendar.MaxDate)
}

// validateTaskSpan checks that the task's exclusive end date is still a
// four-digit-year date. Written as hi-Width so a huge width cannot overflow.
func validateTaskSpan(ve *ValidationError, prefix string, start calendar.Date, t Task) {
	if t.Width <= 0 {
		return
	}
	lo, hi := colBounds(start)
	if t.Col < lo || t.Col > hi-t.Width {
		ve.add(prefix+"col", "span of %d days at column %d falls outside %s..%s", t.Width, t.Col, calendar.MinDate, calendar.MaxDate)
	}
}

func validateDeadlineCol(ve *ValidationError, prefix string, start calendar.Date, d Deadline) {
	lo, hi := colBounds(start)
	if d.Col < lo || d.Col > hi {
		ve.add(prefix+"col", "column %d falls outside %s..%s", d.Col, calendar.MinDate, calendar.MaxDate)
	}
}

func validateProjectDate(field string, d calendar.Date) error {
	if d.InRange() {
		return nil
	}
	return &ValidationError{
		Kind:   ErrInvalidProject,
		Errors: []FieldError{{Field: field, Message: fmt.Sprintf("%s is outside %s..%s", d, calendar.MinDate, calendar.MaxDate)}},
	}
}

// ValidateProject checks the project dates, every task and every deadline,
// including id uniqueness within each collection and that every column
// denotes a date in calendar.MinDate..calendar.MaxDate. The returned error
// kind reflects the first category that failed: project, then tasks, then
// deadlines.
func ValidateProject(p *Project) error {
	if err := validateProjectDate("start_date", p.StartDate); err != nil {
		return err
	}
	if err := validateProjectDate("end_date", p.EndDate); err != nil {
		return err
	}
	if p.StartDate.After(p.EndDate) {
		return &ValidationError{
			Kind: ErrInvalidProject,
			Errors: []FieldError{{
				Field:   "start_date",
				Message: fmt.Sprintf("%s is after end date %s", p.StartDate, p.EndDate),
			}},
		}
	}

	tasks := ValidationError{Kind: ErrInvalidTask}
	seen := make(map[int]struct{}, len(p.Tasks))
	for i, t := range p.Tasks {
		prefix := fmt.Sprintf("tasks[%d].", i)
		validateTaskFields(&tasks, prefix, t)
		validateTaskSpan(&tasks, prefix, p.StartDate, t)
		if _, dup := seen[t.ID]; dup {
			tasks.add(prefix+"id", "duplicate id %d", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	if tasks.HasErrors() {
		return &tasks
	}

	deadlines := ValidationError{Kind: ErrInvalidDeadline}
	seen = make(map[int]struct{}, len(p.Deadlines))
	for i, d := range p.Deadlines {
		prefix := fmt.Sprintf("deadlines[%d].", i)
		validateDeadlineCol(&deadlines, prefix, p.StartDate, d)
		if _, dup := seen[d.ID]; dup {
			deadlines.add(prefix+"id", "duplicate id %d", d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return deadlines.orNil()
}
