package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gantt/internal/calendar"
	"github.com/alfredjeanlab/gantt/internal/model"
)

var addTaskCmd = &cobra.Command{
	Use:   "add-task <name> <label>",
	Short: "Add a task to a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		row, _ := cmd.Flags().GetInt("row")

		var task model.Task
		p, err := editProject(cmd.Context(), args[0], func(p *model.Project) error {
			start, err := dateFlag(cmd, "start", p.StartDate)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("row") {
				row = nextRow(p)
			}
			task = model.Task{
				ID:    p.NextTaskID(),
				Row:   row,
				Col:   p.ColOf(start),
				Width: days,
				Label: args[1],
			}
			if cmd.Flags().Changed("end") {
				end, err := dateFlag(cmd, "end", start)
				if err != nil {
					return err
				}
				task.Width = calendar.DateToCol(start, end)
			}
			return p.AddTask(task)
		})
		if err != nil {
			return err
		}
		return printTask(cmd.OutOrStdout(), p, task)
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <name> <task-id>",
	Short: "Move a task to another row or start date",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		p, err := editProject(cmd.Context(), args[0], func(p *model.Project) error {
			t, ok := p.Task(id)
			if !ok {
				return fmt.Errorf("task %d: %w", id, model.ErrNotFound)
			}
			row := t.Row
			if cmd.Flags().Changed("row") {
				row, _ = cmd.Flags().GetInt("row")
			}
			start, err := dateFlag(cmd, "start", p.DateOf(t.Col))
			if err != nil {
				return err
			}
			return p.MoveTask(id, row, p.ColOf(start))
		})
		if err != nil {
			return err
		}
		t, _ := p.Task(id)
		return printTask(cmd.OutOrStdout(), p, t)
	},
}

var resizeCmd = &cobra.Command{
	Use:   "resize <name> <task-id> <days>",
	Short: "Change how many days a task spans",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		days, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid day count %q", args[2])
		}
		p, err := editProject(cmd.Context(), args[0], func(p *model.Project) error {
			return p.ResizeTask(id, days)
		})
		if err != nil {
			return err
		}
		t, _ := p.Task(id)
		return printTask(cmd.OutOrStdout(), p, t)
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <name> <task-id> <label>",
	Short: "Change a task's label",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		p, err := editProject(cmd.Context(), args[0], func(p *model.Project) error {
			return p.RenameTask(id, args[2])
		})
		if err != nil {
			return err
		}
		t, _ := p.Task(id)
		return printTask(cmd.OutOrStdout(), p, t)
	},
}

var rmTaskCmd = &cobra.Command{
	Use:   "rm-task <name> <task-id>",
	Short: "Remove a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if _, err := editProject(cmd.Context(), args[0], func(p *model.Project) error {
			return p.RemoveTask(id)
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed task %d\n", id)
		return nil
	},
}

// nextRow returns the first row below every existing task.
func nextRow(p *model.Project) int {
	row := 0
	for _, t := range p.Tasks {
		row = max(row, t.Row+1)
	}
	return row
}

func init() {
	addTaskCmd.Flags().String("start", "", "start date YYYY-MM-DD (default project start)")
	addTaskCmd.Flags().String("end", "", "exclusive end date YYYY-MM-DD (overrides --days)")
	addTaskCmd.Flags().Int("days", 1, "number of days the task spans")
	addTaskCmd.Flags().Int("row", 0, "row (default first free row)")

	moveCmd.Flags().Int("row", 0, "new row")
	moveCmd.Flags().String("start", "", "new start date YYYY-MM-DD")
}
