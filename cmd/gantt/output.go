package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/alfredjeanlab/gantt/internal/codec"
	"github.com/alfredjeanlab/gantt/internal/model"
	"github.com/alfredjeanlab/gantt/internal/ui"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printProject(w io.Writer, p *model.Project, timeline bool) error {
	if jsonOutput {
		return codec.EncodeTo(w, p)
	}

	fmt.Fprintf(w, "%s %s → %s (%d days)\n", palette.Accent("Project"), p.StartDate, p.EndDate, p.Columns())

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROW\tSTART\tEND\tDAYS\tLABEL")
	for _, t := range p.Tasks {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\t%s\n",
			t.ID, t.Row, p.DateOf(t.Col), p.DateOf(t.End()), t.Width, t.Label)
	}
	tw.Flush()
	fmt.Fprintf(w, "%s\n", palette.Muted(fmt.Sprintf("%d tasks", len(p.Tasks))))

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tLABEL")
	for _, d := range p.Deadlines {
		label := d.Label
		if d.IsSynthetic() {
			label = palette.Today(label)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", d.ID, p.DateOf(d.Col), label)
	}
	tw.Flush()
	fmt.Fprintf(w, "%s\n", palette.Muted(fmt.Sprintf("%d deadlines", len(p.Deadlines))))

	if timeline {
		fmt.Fprintln(w)
		printTimeline(w, p)
	}
	return nil
}

// timelineWidth is used when stdout is not a terminal.
const timelineWidth = 100

// printTimeline draws one bar per task across the project's columns,
// clipped to the terminal width.
func printTimeline(w io.Writer, p *model.Project) {
	gutter := 1
	for _, t := range p.Tasks {
		gutter = max(gutter, len(strconv.Itoa(t.ID)))
	}
	columns := min(p.Columns(), max(ui.Width(w, timelineWidth)-gutter-1, 1))

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, t := range p.Tasks {
		fmt.Fprintf(tw, "%d\t%s\n", t.ID, palette.Accent(ui.Bar(t.Col, t.Width, columns)))
	}
	tw.Flush()
	if columns < p.Columns() {
		fmt.Fprintf(w, "%s\n", palette.Muted(fmt.Sprintf("first %d of %d days", columns, p.Columns())))
	}
}

func printTask(w io.Writer, p *model.Project, t model.Task) error {
	if jsonOutput {
		return printJSON(w, codec.Serialize(&model.Project{
			StartDate: p.StartDate,
			EndDate:   p.EndDate,
			Tasks:     []model.Task{t},
		}).Tasks[0])
	}
	fmt.Fprintf(w, "task %d: %s → %s %q (row %d)\n", t.ID, p.DateOf(t.Col), p.DateOf(t.End()), t.Label, t.Row)
	return nil
}

func printDeadline(w io.Writer, p *model.Project, d model.Deadline) error {
	if jsonOutput {
		return printJSON(w, codec.Serialize(&model.Project{
			StartDate: p.StartDate,
			EndDate:   p.EndDate,
			Deadlines: []model.Deadline{d},
		}).Deadlines[0])
	}
	fmt.Fprintf(w, "deadline %d: %s %q\n", d.ID, p.DateOf(d.Col), d.Label)
	return nil
}
