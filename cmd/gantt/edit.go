package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gantt/internal/calendar"
	"github.com/alfredjeanlab/gantt/internal/model"
)

// editProject loads the named project, applies fn and saves it back under
// the same name. Nothing is written when fn fails.
func editProject(ctx context.Context, name string, fn func(p *model.Project) error) (*model.Project, error) {
	p, err := session.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if _, err := session.Save(ctx, p, name); err != nil {
		return nil, err
	}
	return p, nil
}

// dateFlag returns the named flag parsed as a date, or fallback when the
// flag was not given.
func dateFlag(cmd *cobra.Command, name string, fallback calendar.Date) (calendar.Date, error) {
	if !cmd.Flags().Changed(name) {
		return fallback, nil
	}
	s, _ := cmd.Flags().GetString(name)
	d, err := calendar.Parse(s)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
