package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"tonearm/internal/artwork"
)

func newArtworkCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "artwork",
		Short: "Show exported cover art",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cfg.Artwork.Enabled {
				return fmt.Errorf("artwork export is disabled; enable [artwork] in the configuration")
			}

			dir := cfg.Paths.ArtworkDir
			exporter := artwork.New(dir, cfg.Artwork.MaxFiles, nil)
			current := exporter.Current()
			files, err := listArtworkFiles(dir)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), struct {
					Dir     string   `json:"dir"`
					Current string   `json:"current,omitempty"`
					Files   []string `json:"files"`
				}{Dir: dir, Current: current, Files: files})
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Artwork directory: %s\n", dir)
			if current != "" {
				fmt.Fprintf(stdout, "Current: %s\n", current)
			} else {
				fmt.Fprintln(stdout, "Current: (none)")
			}
			if len(files) == 0 {
				fmt.Fprintln(stdout, "No artwork exported")
				return nil
			}
			rows := make([][]string, 0, len(files))
			for _, name := range files {
				marker := ""
				if current != "" && filepath.Base(current) == name {
					marker = "current"
				}
				rows = append(rows, []string{name, marker})
			}
			fmt.Fprintln(stdout, renderTable([]tableColumn{{title: "File"}, {title: ""}}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit artwork info as JSON")
	return cmd
}

func listArtworkFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read artwork directory: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == artwork.CurrentLink {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}
