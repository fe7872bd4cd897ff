package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after the config file, GANTT_* environment
variables and flags have been applied. With --save it is written back to
the config file instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		save, _ := cmd.Flags().GetBool("save")
		if !save {
			return cfg.Encode(cmd.OutOrStdout())
		}
		if configPath == "" {
			return errors.New("no config path (set --config or GANTT_CONFIG)")
		}
		if err := cfg.Save(configPath); err != nil {
			return err
		}
		logger.Info("saved config", "path", configPath)
		fmt.Fprintln(cmd.OutOrStdout(), configPath)
		return nil
	},
}

func init() {
	configCmd.Flags().Bool("save", false, "write the effective configuration to the config file")
}
