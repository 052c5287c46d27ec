package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tonearm/internal/metadata"
	"tonearm/internal/reader"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var sourcePath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream decoded metadata events to the console",
		Long: "Watch attaches directly to the metadata pipe and prints every decoded " +
			"event until interrupted. Use - to read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			path := strings.TrimSpace(sourcePath)
			if path == "" {
				path = cfg.Source.Path
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			stream := reader.New(path,
				reader.WithMaxFrameBytes(cfg.Source.MaxFrameBytes),
				reader.WithChannelBuffer(cfg.Source.ChannelBuffer),
				reader.WithBackoff(
					time.Duration(cfg.Source.ReopenBackoffMS)*time.Millisecond,
					time.Duration(cfg.Source.MaxBackoffMS)*time.Millisecond,
				),
			)
			if err := stream.Start(signalCtx); err != nil {
				return fmt.Errorf("start stream: %w", err)
			}
			defer stream.Stop()

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)
			for {
				select {
				case <-signalCtx.Done():
					return nil
				case ev, ok := <-stream.Events():
					if !ok {
						return nil
					}
					if jsonOutput {
						if err := writeJSON(cmd.OutOrStdout(), newEventView(ev)); err != nil {
							return err
						}
						continue
					}
					fmt.Fprintln(stdout, renderEventLine(ev, colorize))
				}
			}
		},
	}

	cmd.Flags().StringVar(&sourcePath, "source", "", "Metadata source path (defaults to the configured pipe)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit one JSON object per event")
	return cmd
}

func renderEventLine(ev metadata.Event, colorize bool) string {
	stamp := time.Now().Format("15:04:05")
	line := fmt.Sprintf("%s  %s", stamp, ev.String())
	if colorize {
		if color := eventColor(ev.Kind); color != "" {
			return color + line + ansiReset
		}
	}
	return line
}

func eventColor(kind metadata.Kind) string {
	switch kind {
	case metadata.KindPlayBegin, metadata.KindPlayResume, metadata.KindActiveBegin:
		return ansiGreen
	case metadata.KindPlayEnd, metadata.KindActiveEnd:
		return ansiRed
	case metadata.KindPlayFlush:
		return ansiYellow
	case metadata.KindPicture:
		return ansiBlue
	default:
		return ""
	}
}
