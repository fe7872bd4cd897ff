package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gantt/internal/events"
	"github.com/alfredjeanlab/gantt/internal/idgen"
)

var watchCmd = &cobra.Command{
	Use:   "watch [name]",
	Short: "Print project saves and loads as they happen",
	Long: `Subscribes to project events on the NATS server named by nats_url and
prints one line per save or load. With a name, only that project's events
are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.NATSURL == "" {
			return errors.New("watch needs a NATS server: set GANTT_NATS_URL or nats_url")
		}
		count, _ := cmd.Flags().GetInt("count")
		var name string
		if len(args) > 0 {
			name = args[0]
		}

		sub, err := events.NewNATSSubscriber(cfg.NATSURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				logger.Warn("nats disconnected", "err", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				logger.Info("nats reconnected")
			}),
		)
		if err != nil {
			return fmt.Errorf("connecting to NATS: %w", err)
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(events.TopicAll)
		if err != nil {
			return fmt.Errorf("subscribing to events: %w", err)
		}
		defer cancel()
		return watchEvents(cmd.Context(), ch, cmd.OutOrStdout(), name, count)
	},
}

// watchedEvent holds the fields shared by ProjectSaved and ProjectLoaded.
type watchedEvent struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Bytes   int            `json:"bytes,omitempty"`
	Project events.Summary `json:"project"`
}

func (e watchedEvent) kind() string {
	switch {
	case strings.HasPrefix(e.ID, idgen.SavePrefix):
		return "saved"
	case strings.HasPrefix(e.ID, idgen.LoadPrefix):
		return "loaded"
	default:
		return "event"
	}
}

// watchEvents prints events from ch until ctx is done, ch closes, or count
// matching events were printed (count <= 0 means no limit).
func watchEvents(ctx context.Context, ch <-chan []byte, w io.Writer, name string, count int) error {
	printed := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-ch:
			if !ok {
				return nil
			}
			var e watchedEvent
			if err := json.Unmarshal(data, &e); err != nil {
				logger.Warn("skipping malformed event", "err", err)
				continue
			}
			if name != "" && e.Name != name {
				continue
			}
			if jsonOutput {
				fmt.Fprintln(w, string(data))
			} else {
				fmt.Fprintf(w, "%s %s %s %s→%s tasks=%d deadlines=%d\n",
					palette.Muted(e.ID), palette.Accent(e.kind()), e.Name,
					e.Project.StartDate, e.Project.EndDate, e.Project.Tasks, e.Project.Deadlines)
			}
			printed++
			if count > 0 && printed >= count {
				return nil
			}
		}
	}
}

func init() {
	watchCmd.Flags().Int("count", 0, "exit after this many events (0 = run until interrupted)")
}
