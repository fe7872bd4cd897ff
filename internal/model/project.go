// Package model holds the column-space entities the editor works on: a
// Project with its Tasks and Deadlines.
//
// Columns are only meaningful relative to Project.StartDate. Nothing in this
// package stores a task's calendar dates; those are derived on demand.
package model

import (
	"fmt"
	"slices"

	"github.com/alfredjeanlab/gantt/internal/calendar"
)

// TodayDeadlineID is the reserved id of the synthetic "Today" deadline.
// Negative ids are never handed out by NextDeadlineID.
const TodayDeadlineID = -1

// Task is a bar spanning grid columns [Col, Col+Width) on Row.
type Task struct {
	ID    int
	Row   int
	Col   int
	Width int
	Label string
}

// End returns the first column after the task.
func (t Task) End() int {
	return t.Col + t.Width
}

// Covers reports whether col falls inside the task's span.
func (t Task) Covers(col int) bool {
	return col >= t.Col && col < t.End()
}

// Deadline is a single vertical marker at Col.
type Deadline struct {
	ID    int
	Col   int
	Label string
}

// IsSynthetic reports whether the deadline uses a reserved negative id.
func (d Deadline) IsSynthetic() bool {
	return d.ID < 0
}

// Project is the editor's in-memory document. It has a single owner; no
// method takes a lock.
type Project struct {
	StartDate calendar.Date
	EndDate   calendar.Date
	Tasks     []Task
	Deadlines []Deadline
}

// NewProject returns an empty project spanning [start, end].
func NewProject(start, end calendar.Date) (*Project, error) {
	p := &Project{
		StartDate: start,
		EndDate:   end,
		Tasks:     []Task{},
		Deadlines: []Deadline{},
	}
	if err := ValidateProject(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Clone returns a deep copy of p.
func (p *Project) Clone() *Project {
	return &Project{
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Tasks:     append([]Task{}, p.Tasks...),
		Deadlines: append([]Deadline{}, p.Deadlines...),
	}
}

// Columns returns the number of grid columns from StartDate to EndDate,
// both days included.
func (p *Project) Columns() int {
	return calendar.DaysBetween(p.StartDate, p.EndDate) + 1
}

// ColOf returns the column that d falls on.
func (p *Project) ColOf(d calendar.Date) int {
	return calendar.DateToCol(p.StartDate, d)
}

// DateOf returns the date column col denotes.
func (p *Project) DateOf(col int) calendar.Date {
	return calendar.ColToDate(p.StartDate, col)
}

// SetEndDate moves the project end. Columns are unaffected.
func (p *Project) SetEndDate(end calendar.Date) error {
	if err := validateProjectDate("end_date", end); err != nil {
		return err
	}
	if p.StartDate.After(end) {
		return &ValidationError{
			Kind:   ErrInvalidProject,
			Errors: []FieldError{{Field: "end_date", Message: fmt.Sprintf("%s is before start date %s", end, p.StartDate)}},
		}
	}
	p.EndDate = end
	return nil
}

// Reanchor moves the column origin to start. Every task and deadline column
// is re-derived so the dates they denote do not change.
func (p *Project) Reanchor(start calendar.Date) error {
	if err := validateProjectDate("start_date", start); err != nil {
		return err
	}
	if start.After(p.EndDate) {
		return &ValidationError{
			Kind:   ErrInvalidProject,
			Errors: []FieldError{{Field: "start_date", Message: fmt.Sprintf("%s is after end date %s", start, p.EndDate)}},
		}
	}
	shift := calendar.DateToCol(start, p.StartDate)
	for i := range p.Tasks {
		p.Tasks[i].Col += shift
	}
	for i := range p.Deadlines {
		p.Deadlines[i].Col += shift
	}
	p.StartDate = start
	return nil
}

// Task returns the task with the given id.
func (p *Project) Task(id int) (Task, bool) {
	i := p.taskIndex(id)
	if i < 0 {
		return Task{}, false
	}
	return p.Tasks[i], true
}

// Deadline returns the deadline with the given id.
func (p *Project) Deadline(id int) (Deadline, bool) {
	i := p.deadlineIndex(id)
	if i < 0 {
		return Deadline{}, false
	}
	return p.Deadlines[i], true
}

// NextTaskID returns one more than the largest task id, or 0.
func (p *Project) NextTaskID() int {
	next := 0
	for _, t := range p.Tasks {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	return next
}

// NextDeadlineID returns one more than the largest deadline id, or 0.
// Reserved negative ids never influence the result.
func (p *Project) NextDeadlineID() int {
	next := 0
	for _, d := range p.Deadlines {
		if d.ID >= next {
			next = d.ID + 1
		}
	}
	return next
}

// AddTask appends t after checking its fields, its date range and id
// uniqueness.
func (p *Project) AddTask(t Task) error {
	ve := ValidationError{Kind: ErrInvalidTask}
	validateTaskFields(&ve, "", t)
	validateTaskSpan(&ve, "", p.StartDate, t)
	if p.taskIndex(t.ID) >= 0 {
		ve.add("id", "duplicate id %d", t.ID)
	}
	if err := ve.orNil(); err != nil {
		return err
	}
	p.Tasks = append(p.Tasks, t)
	return nil
}

// AddDeadline appends d after checking its column and id uniqueness.
func (p *Project) AddDeadline(d Deadline) error {
	ve := ValidationError{Kind: ErrInvalidDeadline}
	validateDeadlineCol(&ve, "", p.StartDate, d)
	if p.deadlineIndex(d.ID) >= 0 {
		ve.add("id", "duplicate id %d", d.ID)
	}
	if err := ve.orNil(); err != nil {
		return err
	}
	p.Deadlines = append(p.Deadlines, d)
	return nil
}

// MoveTask places a task at a new row and column, keeping its width.
func (p *Project) MoveTask(id, row, col int) error {
	return p.updateTask(id, func(t *Task) {
		t.Row = row
		t.Col = col
	})
}

// ResizeTask changes a task's width. Non-positive widths are rejected.
func (p *Project) ResizeTask(id, width int) error {
	return p.updateTask(id, func(t *Task) {
		t.Width = width
	})
}

// RenameTask replaces a task's label.
func (p *Project) RenameTask(id int, label string) error {
	return p.updateTask(id, func(t *Task) {
		t.Label = label
	})
}

// updateTask applies fn to a copy of the task and commits it only if the
// result is still valid.
func (p *Project) updateTask(id int, fn func(*Task)) error {
	i := p.taskIndex(id)
	if i < 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	t := p.Tasks[i]
	fn(&t)
	ve := ValidationError{Kind: ErrInvalidTask}
	validateTaskFields(&ve, "", t)
	validateTaskSpan(&ve, "", p.StartDate, t)
	if err := ve.orNil(); err != nil {
		return err
	}
	p.Tasks[i] = t
	return nil
}

// RemoveTask deletes a task, preserving the order of the rest.
func (p *Project) RemoveTask(id int) error {
	i := p.taskIndex(id)
	if i < 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	p.Tasks = slices.Delete(p.Tasks, i, i+1)
	return nil
}

// MoveDeadline places a deadline at a new column.
func (p *Project) MoveDeadline(id, col int) error {
	i := p.deadlineIndex(id)
	if i < 0 {
		return fmt.Errorf("deadline %d: %w", id, ErrNotFound)
	}
	d := p.Deadlines[i]
	d.Col = col
	ve := ValidationError{Kind: ErrInvalidDeadline}
	validateDeadlineCol(&ve, "", p.StartDate, d)
	if err := ve.orNil(); err != nil {
		return err
	}
	p.Deadlines[i] = d
	return nil
}

// RemoveDeadline deletes a deadline, preserving the order of the rest.
func (p *Project) RemoveDeadline(id int) error {
	i := p.deadlineIndex(id)
	if i < 0 {
		return fmt.Errorf("deadline %d: %w", id, ErrNotFound)
	}
	p.Deadlines = slices.Delete(p.Deadlines, i, i+1)
	return nil
}

// TasksAt returns the tasks whose span covers col, in collection order.
func (p *Project) TasksAt(col int) []Task {
	var out []Task
	for _, t := range p.Tasks {
		if t.Covers(col) {
			out = append(out, t)
		}
	}
	return out
}

// DeadlinesBetween returns the deadlines whose date lies in [from, to].
func (p *Project) DeadlinesBetween(from, to calendar.Date) []Deadline {
	var out []Deadline
	for _, d := range p.Deadlines {
		if calendar.IsBetween(from, to, p.DateOf(d.Col)) {
			out = append(out, d)
		}
	}
	return out
}

func (p *Project) taskIndex(id int) int {
	return slices.IndexFunc(p.Tasks, func(t Task) bool { return t.ID == id })
}

func (p *Project) deadlineIndex(id int) int {
	return slices.IndexFunc(p.Deadlines, func(d Deadline) bool { return d.ID == id })
}
