package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tonearm/internal/metadata"
	"tonearm/internal/reader"
)

// eventView is the JSON shape for decoded events. Raw payloads are summarized
// by size so picture frames do not flood the output.
type eventView struct {
	Kind string `json:"kind"`
	Type string `json:"type"`
	Code string `json:"code"`
	Text string `json:"text,omitempty"`
	Size int    `json:"size,omitempty"`
}

func newEventView(ev metadata.Event) eventView {
	view := eventView{
		Kind: ev.Kind.String(),
		Type: ev.Type.String(),
		Code: ev.Code.String(),
		Text: ev.Text,
	}
	if len(ev.Raw) > 0 {
		view.Size = len(ev.Raw)
	}
	return view
}

func newDecodeCommand(ctx *commandContext) *cobra.Command {
	var maxItems int
	var budget time.Duration
	var maxFrame int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "decode <path>",
		Short:       "Decode a metadata stream in one shot",
		Long:        "Decode reads a file, pipe, or stdin (-) until EOF and prints every event. Malformed frames are skipped.",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []reader.Option{}
			if maxItems > 0 {
				opts = append(opts, reader.WithMaxItems(maxItems))
			}
			if budget > 0 {
				opts = append(opts, reader.WithBudget(budget))
			}
			if maxFrame > 0 {
				opts = append(opts, reader.WithMaxFrameBytes(maxFrame))
			}
			var skipped int
			opts = append(opts, reader.WithSkipNotice(func(error) { skipped++ }))

			stream := reader.New(args[0], opts...)
			events, err := stream.ReadAll(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				views := make([]eventView, 0, len(events))
				for _, ev := range events {
					views = append(views, newEventView(ev))
				}
				return writeJSON(cmd.OutOrStdout(), views)
			}

			stdout := cmd.OutOrStdout()
			for _, ev := range events {
				fmt.Fprintln(stdout, ev.String())
			}
			if skipped > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d malformed frame(s)\n", skipped)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxItems, "max-items", 0, "Stop after this many events (0 means unlimited)")
	cmd.Flags().DurationVar(&budget, "budget", 0, "Stop after this much wall time (0 means unlimited)")
	cmd.Flags().IntVar(&maxFrame, "max-frame-bytes", 0, "Skip frames with payloads larger than this (0 uses the default)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit events as a JSON array")
	return cmd
}
