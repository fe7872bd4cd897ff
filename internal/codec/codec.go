// Package codec converts column-space projects to and from the date-space
// JSON document used for save and load.
//
// Serialize and Deserialize are exact inverses for any valid project: ids,
// rows, columns, widths, labels and collection order all survive.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/alfredjeanlab/gantt/internal/calendar"
	"github.com/alfredjeanlab/gantt/internal/model"
)

var (
	// ErrMalformedProject means the document does not have the required
	// top-level shape.
	ErrMalformedProject = errors.New("malformed project")

	// ErrMalformedDate means a date string is not a valid calendar date.
	ErrMalformedDate = calendar.ErrMalformedDate
)

// Error is a decoding failure attributed to a document field.
type Error struct {
	Kind  error
	Field string
	Msg   string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	s := e.Kind.Error()
	if e.Field != "" {
		s += ": " + e.Field
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *Error) Unwrap() error { return e.Kind }

func malformed(field, format string, args ...any) error {
	return &Error{Kind: ErrMalformedProject, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// SerializedTask is a task in date-space. StartDate is inclusive, EndDate
// exclusive, so EndDate is always after StartDate.
type SerializedTask struct {
	ID        int    `json:"id"`
	Row       int    `json:"row"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Label     string `json:"label"`
}

// SerializedDeadline is a deadline in date-space.
type SerializedDeadline struct {
	ID    int    `json:"id"`
	Date  string `json:"date"`
	Label string `json:"label,omitempty"`
}

// SerializedProject is the persisted document.
type SerializedProject struct {
	StartDate string               `json:"startDate"`
	EndDate   string               `json:"endDate"`
	Tasks     []SerializedTask     `json:"tasks"`
	Deadlines []SerializedDeadline `json:"deadlines"`
}

// Serialize converts p to date-space using p.StartDate as column zero.
// The result only decodes back when model.ValidateProject accepts p.
func Serialize(p *model.Project) SerializedProject {
	s := SerializedProject{
		StartDate: p.StartDate.String(),
		EndDate:   p.EndDate.String(),
		Tasks:     make([]SerializedTask, 0, len(p.Tasks)),
		Deadlines: make([]SerializedDeadline, 0, len(p.Deadlines)),
	}
	for _, t := range p.Tasks {
		s.Tasks = append(s.Tasks, SerializedTask{
			ID:        t.ID,
			Row:       t.Row,
			StartDate: calendar.ColToDate(p.StartDate, t.Col).String(),
			EndDate:   calendar.ColToDate(p.StartDate, t.Col+t.Width).String(),
			Label:     t.Label,
		})
	}
	for _, d := range p.Deadlines {
		s.Deadlines = append(s.Deadlines, SerializedDeadline{
			ID:    d.ID,
			Date:  calendar.ColToDate(p.StartDate, d.Col).String(),
			Label: d.Label,
		})
	}
	return s
}

// Deserialize rebuilds a column-space project anchored at s.StartDate.
// Shape is checked before any date is parsed, and no project is returned
// unless every task and deadline is valid.
func Deserialize(s SerializedProject) (*model.Project, error) {
	switch {
	case s.StartDate == "":
		return nil, malformed("startDate", "is required")
	case s.EndDate == "":
		return nil, malformed("endDate", "is required")
	case s.Tasks == nil:
		return nil, malformed("tasks", "is required")
	case s.Deadlines == nil:
		return nil, malformed("deadlines", "is required")
	}

	start, err := parseDate("startDate", s.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("endDate", s.EndDate)
	if err != nil {
		return nil, err
	}

	p := &model.Project{
		StartDate: start,
		EndDate:   end,
		Tasks:     make([]model.Task, 0, len(s.Tasks)),
		Deadlines: make([]model.Deadline, 0, len(s.Deadlines)),
	}

	for i, st := range s.Tasks {
		field := fmt.Sprintf("tasks[%d]", i)
		taskStart, err := parseDate(field+".startDate", st.StartDate)
		if err != nil {
			return nil, err
		}
		taskEnd, err := parseDate(field+".endDate", st.EndDate)
		if err != nil {
			return nil, err
		}
		if !taskEnd.After(taskStart) {
			return nil, &model.ValidationError{
				Kind: model.ErrInvalidTask,
				Errors: []model.FieldError{{
					Field:   field + ".endDate",
					Message: fmt.Sprintf("%s is not after start date %s", taskEnd, taskStart),
				}},
			}
		}
		p.Tasks = append(p.Tasks, model.Task{
			ID:    st.ID,
			Row:   st.Row,
			Col:   calendar.DateToCol(start, taskStart),
			Width: calendar.DaysBetween(taskStart, taskEnd),
			Label: st.Label,
		})
	}

	for i, sd := range s.Deadlines {
		date, err := parseDate(fmt.Sprintf("deadlines[%d].date", i), sd.Date)
		if err != nil {
			return nil, err
		}
		p.Deadlines = append(p.Deadlines, model.Deadline{
			ID:    sd.ID,
			Col:   calendar.DateToCol(start, date),
			Label: sd.Label,
		})
	}

	if err := model.ValidateProject(p); err != nil {
		return nil, err
	}
	return p, nil
}

func parseDate(field, s string) (calendar.Date, error) {
	d, err := calendar.Parse(s)
	if err != nil {
		return calendar.Date{}, &Error{Kind: ErrMalformedDate, Field: field, Msg: fmt.Sprintf("%q", s)}
	}
	return d, nil
}

// EncodeTo validates p and writes it as an indented JSON document followed
// by a newline. Validation errors are returned unchanged.
func EncodeTo(w io.Writer, p *model.Project) error {
	if err := model.ValidateProject(p); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Serialize(p)); err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	return nil
}

// Encode returns p as an indented JSON document.
func Encode(p *model.Project) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// requiredFields lists the top-level keys and the JSON kind each must have.
var requiredFields = []struct {
	name string
	kind byte // first byte of the raw value
}{
	{"startDate", '"'},
	{"endDate", '"'},
	{"tasks", '['},
	{"deadlines", '['},
}

// Keys every task and deadline object must carry with a non-null value.
// A deadline label is optional.
var (
	taskKeys     = []string{"id", "row", "startDate", "endDate", "label"}
	deadlineKeys = []string{"id", "date"}
)

// requireKeys checks that raw is an array of objects that each carry keys.
func requireKeys(field string, raw json.RawMessage, keys []string) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return malformed(field, "has the wrong type")
	}
	for i, elem := range elems {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(elem, &obj); err != nil || obj == nil {
			return malformed(fmt.Sprintf("%s[%d]", field, i), "expected an object")
		}
		for _, k := range keys {
			v, ok := obj[k]
			if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				return malformed(fmt.Sprintf("%s[%d].%s", field, i, k), "is required")
			}
		}
	}
	return nil
}

// Decode parses a JSON document into a project. The top-level value must be
// an object with string startDate/endDate and array tasks/deadlines, and
// every task and deadline must carry all of its keys; any other shape fails
// with ErrMalformedProject before dates are looked at.
func Decode(data []byte) (*model.Project, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return nil, malformed("", "expected a project object")
	}
	for _, f := range requiredFields {
		raw, ok := top[f.name]
		if !ok {
			return nil, malformed(f.name, "is required")
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != f.kind {
			return nil, malformed(f.name, "has the wrong type")
		}
	}
	if err := requireKeys("tasks", top["tasks"], taskKeys); err != nil {
		return nil, err
	}
	if err := requireKeys("deadlines", top["deadlines"], deadlineKeys); err != nil {
		return nil, err
	}

	var s SerializedProject
	if err := json.Unmarshal(data, &s); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, malformed(typeErr.Field, "has the wrong type")
		}
		return nil, malformed("", "%v", err)
	}
	return Deserialize(s)
}

// DecodeFrom reads a whole document from r and decodes it. Read failures
// are returned as-is so callers can tell them apart from decode failures.
func DecodeFrom(r io.Reader) (*model.Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
