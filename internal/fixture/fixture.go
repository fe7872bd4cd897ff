// Package fixture generates randomized, valid projects for demos and tests.
//
// Every draw comes from the Generator's own *rand.Rand, so a fixed seed
// yields the same project every time.
package fixture

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/alfredjeanlab/gantt/internal/calendar"
	"github.com/alfredjeanlab/gantt/internal/model"
)

// ErrEmptyRange is returned when a Range contains no integers.
var ErrEmptyRange = errors.New("empty range")

// Range is the half-open integer interval [Min, Max).
type Range struct {
	Min int
	Max int
}

// Len returns the number of integers in r.
func (r Range) Len() int {
	if r.Max <= r.Min {
		return 0
	}
	return r.Max - r.Min
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Min, r.Max)
}

// Defaults used by Project when Options leaves a range unset. They match
// the editor demo: tasks start in columns 5..54 and are 5..19 wide.
var (
	DefaultCols   = Range{Min: 5, Max: 55}
	DefaultWidths = Range{Min: 5, Max: 20}
)

// Generator draws fixtures from an explicit random source.
type Generator struct {
	rng *rand.Rand
}

// New returns a Generator seeded deterministically from seed.
func New(seed uint64) *Generator {
	return NewWithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewWithRand returns a Generator that draws from rng.
func NewWithRand(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

func (g *Generator) intIn(r Range) int {
	return r.Min + g.rng.IntN(r.Len())
}

// Tasks returns count tasks, one per row 0..count-1, with id equal to the
// row. Col and width are drawn independently and uniformly from cols and
// widths.
func (g *Generator) Tasks(count int, cols, widths Range) ([]model.Task, error) {
	if count < 0 {
		return nil, fmt.Errorf("task count %d is negative", count)
	}
	if cols.Len() == 0 {
		return nil, fmt.Errorf("cols %s: %w", cols, ErrEmptyRange)
	}
	if widths.Len() == 0 {
		return nil, fmt.Errorf("widths %s: %w", widths, ErrEmptyRange)
	}
	if widths.Min < 1 {
		return nil, fmt.Errorf("widths %s: minimum width must be at least 1", widths)
	}

	tasks := make([]model.Task, 0, count)
	for i := 0; i < count; i++ {
		tasks = append(tasks, model.Task{
			ID:    i,
			Row:   i,
			Col:   g.intIn(cols),
			Width: g.intIn(widths),
			Label: fmt.Sprintf("Task %d", i),
		})
	}
	return tasks, nil
}

// Deadlines returns count deadlines with ids 0..count-1 at uniformly drawn
// columns, followed by a "Today" deadline with the reserved id at todayCol.
// label formats the generated deadlines' labels from their column; a nil
// label leaves them empty.
func (g *Generator) Deadlines(count int, cols Range, todayCol int, label func(col int) string) ([]model.Deadline, error) {
	if count < 0 {
		return nil, fmt.Errorf("deadline count %d is negative", count)
	}
	if count > 0 && cols.Len() == 0 {
		return nil, fmt.Errorf("cols %s: %w", cols, ErrEmptyRange)
	}

	deadlines := make([]model.Deadline, 0, count+1)
	for i := 0; i < count; i++ {
		d := model.Deadline{ID: i, Col: g.intIn(cols)}
		if label != nil {
			d.Label = label(d.Col)
		}
		deadlines = append(deadlines, d)
	}
	deadlines = append(deadlines, model.Deadline{
		ID:    model.TodayDeadlineID,
		Col:   todayCol,
		Label: "Today",
	})
	return deadlines, nil
}

// Options controls Project. Zero ranges fall back to the defaults; a zero
// DeadlineCols spans the whole project.
type Options struct {
	Tasks        int
	Deadlines    int
	Cols         Range
	Widths       Range
	DeadlineCols Range
}

// Project returns a populated project spanning [start, end] with a "Today"
// deadline at today's column. Generated deadlines are labelled like
// "Deadline Jan 2".
func (g *Generator) Project(start, end, today calendar.Date, opts Options) (*model.Project, error) {
	p, err := model.NewProject(start, end)
	if err != nil {
		return nil, err
	}

	cols := opts.Cols
	if cols == (Range{}) {
		cols = DefaultCols
	}
	widths := opts.Widths
	if widths == (Range{}) {
		widths = DefaultWidths
	}
	deadlineCols := opts.DeadlineCols
	if deadlineCols == (Range{}) {
		// A single-day project still has one column to draw from.
		deadlineCols = Range{Min: 0, Max: max(calendar.DaysBetween(start, end), 1)}
	}

	tasks, err := g.Tasks(opts.Tasks, cols, widths)
	if err != nil {
		return nil, err
	}
	deadlines, err := g.Deadlines(opts.Deadlines, deadlineCols, p.ColOf(today), func(col int) string {
		return "Deadline " + p.DateOf(col).Format("Jan 2")
	})
	if err != nil {
		return nil, err
	}

	p.Tasks = tasks
	p.Deadlines = deadlines
	if err := model.ValidateProject(p); err != nil {
		return nil, fmt.Errorf("generated project: %w", err)
	}
	return p, nil
}
