package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adrata/crm-ops/internal/checkpoint"
)

var (
	statusCheckpoint string
	statusFormat     string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize enrichment run progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := statusCheckpoint
		if path == "" {
			path = cfg.Checkpoint.Path
		}

		tracker := checkpoint.Load(path)
		state := tracker.State()

		switch statusFormat {
		case "text":
			cmd.Println(tracker.Summarize())
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(state); err != nil {
				return eris.Wrap(err, "encode state")
			}
		case "yaml":
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			if err := enc.Encode(state); err != nil {
				return eris.Wrap(err, "encode state")
			}
		default:
			return eris.Errorf("unsupported format: %s", statusFormat)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusCheckpoint, "checkpoint", "", "progress file path (default from config)")
	statusCmd.Flags().StringVar(&statusFormat, "format", "text", "output format: text, json, or yaml")
	rootCmd.AddCommand(statusCmd)
}
