package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gantt/internal/calendar"
	"github.com/alfredjeanlab/gantt/internal/model"
)

var addDeadlineCmd = &cobra.Command{
	Use:   "add-deadline <name> <date>",
	Short: "Add a deadline marker to a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := calendar.Parse(args[1])
		if err != nil {
			return err
		}
		label, _ := cmd.Flags().GetString("label")

		var d model.Deadline
		p, err := editProject(cmd.Context(), args[0], func(p *model.Project) error {
			d = model.Deadline{ID: p.NextDeadlineID(), Col: p.ColOf(date), Label: label}
			return p.AddDeadline(d)
		})
		if err != nil {
			return err
		}
		return printDeadline(cmd.OutOrStdout(), p, d)
	},
}

var rmDeadlineCmd = &cobra.Command{
	Use:   "rm-deadline <name> <deadline-id>",
	Short: "Remove a deadline marker",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if _, err := editProject(cmd.Context(), args[0], func(p *model.Project) error {
			return p.RemoveDeadline(id)
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed deadline %d\n", id)
		return nil
	},
}

func init() {
	addDeadlineCmd.Flags().String("label", "", "deadline label")
}
