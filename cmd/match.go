package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/adrata/crm-ops/internal/match"
)

var (
	matchLocalLinkedIn  string
	matchRemoteLinkedIn string
	matchLocalName      string
	matchRemoteName     string
)

var matchCmd = &cobra.Command{
	Use:   "match <local-website> <remote-website>",
	Short: "Score two company identifiers against each other",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result := match.Compare(
			match.Candidate{Primary: args[0], Secondary: matchLocalLinkedIn, Name: matchLocalName},
			match.Candidate{Primary: args[1], Secondary: matchRemoteLinkedIn, Name: matchRemoteName},
			cfg.Match,
		)

		out := struct {
			match.Result
			Accepted bool `json:"accepted"`
		}{result, result.Accepted(cfg.Match)}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return eris.Wrap(err, "encode result")
		}
		return nil
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchLocalLinkedIn, "local-linkedin", "", "local LinkedIn URL")
	matchCmd.Flags().StringVar(&matchRemoteLinkedIn, "remote-linkedin", "", "remote LinkedIn URL")
	matchCmd.Flags().StringVar(&matchLocalName, "local-name", "", "local company name (diagnostic)")
	matchCmd.Flags().StringVar(&matchRemoteName, "remote-name", "", "remote company name (diagnostic)")
	rootCmd.AddCommand(matchCmd)
}
