package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gantt/internal/config"
	"github.com/alfredjeanlab/gantt/internal/document"
	"github.com/alfredjeanlab/gantt/internal/events"
	"github.com/alfredjeanlab/gantt/internal/ui"
)

var (
	configPath string
	storeKind  string
	storeDir   string
	jsonOutput bool

	cfg     *config.Config
	logger  *slog.Logger
	store   document.Store
	pub     events.Publisher
	session *document.Session
	palette ui.Palette
)

var rootCmd = &cobra.Command{
	Use:           "gantt",
	Short:         "Create, edit and inspect Gantt chart projects",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath, func(c *config.Config) {
			if cmd.Flags().Changed("store") {
				c.Store = storeKind
			}
			if cmd.Flags().Changed("dir") {
				c.Dir = storeDir
			}
		})
		if err != nil {
			return err
		}
		logger = cfg.NewLogger(cmd.ErrOrStderr())
		palette = ui.Palette{Enabled: !jsonOutput && ui.ShouldUseColor(cmd.OutOrStdout())}

		store, err = document.NewStore(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open %s store: %w", cfg.Store, err)
		}

		pub = &events.NoopPublisher{}
		if cfg.NATSURL != "" {
			np, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				logger.Warn("events disabled", "nats_url", cfg.NATSURL, "err", err)
			} else {
				pub = np
			}
		}

		session = document.NewSession(store, pub, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if pub != nil {
			pub.Close()
		}
		if c, ok := store.(io.Closer); ok {
			c.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "", "document store: file, s3, git or postgres")
	rootCmd.PersistentFlags().StringVar(&storeDir, "dir", "", "directory for the file store")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(reanchorCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(addTaskCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(resizeCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(rmTaskCmd)
	rootCmd.AddCommand(addDeadlineCmd)
	rootCmd.AddCommand(rmDeadlineCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
