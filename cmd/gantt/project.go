package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gantt/internal/calendar"
	"github.com/alfredjeanlab/gantt/internal/document"
	"github.com/alfredjeanlab/gantt/internal/fixture"
	"github.com/alfredjeanlab/gantt/internal/model"
)

// defaultSpan is the length of a new project when --end is not given.
const defaultSpan = 90

var newCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create an empty project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := dateFlag(cmd, "start", calendar.Today())
		if err != nil {
			return err
		}
		end, err := dateFlag(cmd, "end", start.AddDays(defaultSpan))
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		var name string
		if len(args) > 0 {
			name = args[0]
		}
		if name != "" && !force {
			_, err := store.Read(cmd.Context(), name)
			if err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", name)
			}
			if !errors.Is(err, document.ErrNotExist) {
				return err
			}
		}

		p, err := model.NewProject(start, end)
		if err != nil {
			return err
		}
		name, err = session.Save(cmd.Context(), p, name)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), name)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a project's tasks and deadlines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeline, _ := cmd.Flags().GetBool("timeline")
		p, err := session.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printProject(cmd.OutOrStdout(), p, timeline)
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lister, ok := store.(document.Lister)
		if !ok {
			return fmt.Errorf("the %s store cannot list documents", cfg.Store)
		}
		names, err := lister.List(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			if names == nil {
				names = []string{}
			}
			return printJSON(cmd.OutOrStdout(), names)
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <name>...",
	Short: "Check that stored projects load cleanly",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, name := range args {
			if _, err := session.Load(cmd.Context(), name); err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", name, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", name)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d projects invalid", failed, len(args))
		}
		return nil
	},
}

var reanchorCmd = &cobra.Command{
	Use:   "reanchor <name> <start-date>",
	Short: "Move a project's start date without moving its tasks",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := calendar.Parse(args[1])
		if err != nil {
			return err
		}
		p, err := editProject(cmd.Context(), args[0], func(p *model.Project) error {
			return p.Reanchor(start)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s now starts %s\n", args[0], p.StartDate)
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [name]",
	Short: "Create a project filled with random tasks and deadlines",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		today, err := dateFlag(cmd, "today", calendar.Today())
		if err != nil {
			return err
		}
		start, err := dateFlag(cmd, "start", today)
		if err != nil {
			return err
		}
		end, err := dateFlag(cmd, "end", start.AddDays(defaultSpan))
		if err != nil {
			return err
		}
		tasks, _ := cmd.Flags().GetInt("tasks")
		deadlines, _ := cmd.Flags().GetInt("deadlines")
		seed, _ := cmd.Flags().GetUint64("seed")
		if !cmd.Flags().Changed("seed") {
			seed = uint64(time.Now().UnixNano())
		}

		p, err := fixture.New(seed).Project(start, end, today, fixture.Options{
			Tasks:     tasks,
			Deadlines: deadlines,
		})
		if err != nil {
			return err
		}

		var name string
		if len(args) > 0 {
			name = args[0]
		}
		name, err = session.Save(cmd.Context(), p, name)
		if err != nil {
			return err
		}
		logger.Debug("generated project", "seed", seed, "tasks", tasks, "deadlines", deadlines)
		fmt.Fprintln(cmd.OutOrStdout(), name)
		return nil
	},
}

func init() {
	newCmd.Flags().String("start", "", "start date YYYY-MM-DD (default today)")
	newCmd.Flags().String("end", "", "end date YYYY-MM-DD (default start + 90 days)")
	newCmd.Flags().Bool("force", false, "overwrite an existing project")

	showCmd.Flags().Bool("timeline", false, "draw a bar per task")

	generateCmd.Flags().String("start", "", "start date YYYY-MM-DD (default today)")
	generateCmd.Flags().String("end", "", "end date YYYY-MM-DD (default start + 90 days)")
	generateCmd.Flags().String("today", "", "date of the Today marker (default today)")
	generateCmd.Flags().Int("tasks", 50, "number of tasks")
	generateCmd.Flags().Int("deadlines", 20, "number of deadlines, not counting Today")
	generateCmd.Flags().Uint64("seed", 0, "random seed (default: time based)")
}
