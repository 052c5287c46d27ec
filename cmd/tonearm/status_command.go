package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tonearm/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and stream status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), resp)
				}
				renderStatus(cmd, resp)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit status as JSON")
	return cmd
}

func renderStatus(cmd *cobra.Command, resp *ipc.StatusResponse) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(stdout, line)
	}
	runningKind := statusOK
	if !resp.Running {
		runningKind = statusError
	}
	fmt.Fprintln(stdout, renderStatusLine("Running", runningKind, yesNo(resp.Running), colorize))
	if resp.PID > 0 {
		fmt.Fprintln(stdout, renderStatusLine("PID", statusInfo, fmt.Sprintf("%d", resp.PID), colorize))
	}
	if !resp.StartedAt.IsZero() {
		uptime := time.Since(resp.StartedAt).Truncate(time.Second)
		fmt.Fprintln(stdout, renderStatusLine("Uptime", statusInfo, uptime.String(), colorize))
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Source", colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, renderStatusLine("Path", statusInfo, resp.SourcePath, colorize))
	stateKind := statusOK
	if resp.SourceState != "reading" {
		stateKind = statusWarn
	}
	fmt.Fprintln(stdout, renderStatusLine("State", stateKind, resp.SourceState, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Frames", statusInfo, fmt.Sprintf("%d", resp.Frames), colorize))
	skipKind := statusInfo
	if resp.Skipped > 0 {
		skipKind = statusWarn
	}
	fmt.Fprintln(stdout, renderStatusLine("Skipped", skipKind, fmt.Sprintf("%d", resp.Skipped), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Reopens", statusInfo, fmt.Sprintf("%d", resp.Reopens), colorize))

	if resp.HistoryDB == "" && resp.LockPath == "" {
		return
	}
	fmt.Fprintln(stdout)
	for _, line := range renderSectionHeader("Storage", colorize) {
		fmt.Fprintln(stdout, line)
	}
	if resp.HistoryDB != "" {
		fmt.Fprintln(stdout, renderStatusLine("History DB", statusInfo, resp.HistoryDB, colorize))
		fmt.Fprintln(stdout, renderStatusLine("Plays", statusInfo, fmt.Sprintf("%d", resp.HistoryPlays), colorize))
		fmt.Fprintln(stdout, renderStatusLine("Sessions", statusInfo, fmt.Sprintf("%d", resp.HistorySessions), colorize))
	}
	if resp.LockPath != "" {
		fmt.Fprintln(stdout, renderStatusLine("Lock", statusInfo, resp.LockPath, colorize))
	}
}
