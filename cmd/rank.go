package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adrata/crm-ops/internal/rank"
)

var rankScope string

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Recompute speedrun queue ranks",
	Long:  "Assigns dense ranks 1..N by most recent activity, globally or per owner.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, closeStore, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		scope := rankScope
		if scope == "" {
			scope = cfg.Rank.Scope
		}

		reranker, err := rank.NewReranker(st, rank.Scope(scope))
		if err != nil {
			return err
		}

		n, err := reranker.Run(ctx)
		if err != nil {
			return err
		}

		zap.L().Info("rerank complete", zap.Int("leads", n), zap.String("scope", scope))
		return nil
	},
}

func init() {
	rankCmd.Flags().StringVar(&rankScope, "scope", "", "ranking scope: global or owner (default from config)")
	rootCmd.AddCommand(rankCmd)
}
