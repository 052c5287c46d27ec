package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tonearm/internal/ipc"
	"tonearm/internal/nowplaying"
)

func newNowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "now",
		Short: "Show the current playback state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Now()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), resp.Snapshot)
				}
				renderSnapshot(cmd, resp.Snapshot)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the snapshot as JSON")
	return cmd
}

func renderSnapshot(cmd *cobra.Command, snap nowplaying.Snapshot) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	stateKind := statusInfo
	if snap.State == nowplaying.StatePlaying {
		stateKind = statusOK
	}
	fmt.Fprintln(stdout, renderStatusLine("State", stateKind, snap.State.String(), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Session", statusInfo, yesNo(snap.Active), colorize))

	if snap.HasTrack {
		fmt.Fprintln(stdout, renderStatusLine("Track", statusInfo, snap.Track.String(), colorize))
		if snap.Track.Album != "" {
			fmt.Fprintln(stdout, renderStatusLine("Album", statusInfo, snap.Track.Album, colorize))
		}
		if snap.Track.Genre != "" {
			fmt.Fprintln(stdout, renderStatusLine("Genre", statusInfo, snap.Track.Genre, colorize))
		}
		if !snap.Track.StartedAt.IsZero() {
			fmt.Fprintln(stdout, renderStatusLine("Started", statusInfo, snap.Track.StartedAt.Local().Format(time.Kitchen), colorize))
		}
	}
	if snap.HasProgress {
		progress := fmt.Sprintf("%s / %s",
			snap.Progress.Elapsed().Truncate(time.Second),
			snap.Progress.Duration().Truncate(time.Second))
		fmt.Fprintln(stdout, renderStatusLine("Progress", statusInfo, progress, colorize))
	}
	if snap.HasVolume {
		volume := fmt.Sprintf("%.0f%%", snap.Volume.Percent())
		if snap.Volume.Muted() {
			volume = "muted"
		}
		fmt.Fprintln(stdout, renderStatusLine("Volume", statusInfo, volume, colorize))
	}
	if snap.StreamName != "" {
		fmt.Fprintln(stdout, renderStatusLine("Stream", statusInfo, snap.StreamName, colorize))
	}
	if snap.StreamTitle != "" {
		fmt.Fprintln(stdout, renderStatusLine("Stream title", statusInfo, snap.StreamTitle, colorize))
	}
	if snap.UserAgent != "" {
		fmt.Fprintln(stdout, renderStatusLine("Client", statusInfo, snap.UserAgent, colorize))
	}
}
