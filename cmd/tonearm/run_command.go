package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tonearm/internal/daemonrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	var development bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the tonearm daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    logLevel,
				Development: development,
			})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&development, "dev", false, "Log in console format regardless of configuration")
	return cmd
}
