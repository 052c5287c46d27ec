package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tonearm/internal/history"
	"tonearm/internal/ipc"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently played tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			plays, err := fetchHistory(cmd.Context(), ctx, limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), plays)
			}
			if len(plays) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No plays recorded")
				return nil
			}
			rows := make([][]string, 0, len(plays))
			for _, play := range plays {
				rows = append(rows, []string{
					fmt.Sprintf("%d", play.ID),
					play.PlayedAt.Local().Format(time.DateTime),
					play.Artist,
					play.Title,
					play.Album,
					play.StreamName,
				})
			}
			table := renderTable([]tableColumn{
				{title: "#", right: true},
				{title: "Played"},
				{title: "Artist"},
				{title: "Title"},
				{title: "Album"},
				{title: "Stream"},
			}, rows)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of plays to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit plays as JSON")
	return cmd
}

// fetchHistory prefers the daemon so results include in-flight sessions, but
// falls back to reading the database directly when no daemon is running.
func fetchHistory(cmdCtx context.Context, ctx *commandContext, limit int) ([]history.Play, error) {
	var plays []history.Play
	err := ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.HistoryList(limit)
		if err != nil {
			return err
		}
		plays = resp.Plays
		return nil
	})
	if err == nil {
		return plays, nil
	}

	cfg, cfgErr := ctx.ensureConfig()
	if cfgErr != nil || cfg == nil || !cfg.History.Enabled {
		return nil, err
	}
	store, openErr := history.Open(cfg.HistoryDBPath())
	if openErr != nil {
		return nil, fmt.Errorf("open history database: %w", openErr)
	}
	defer store.Close()
	return store.List(cmdCtx, limit)
}
