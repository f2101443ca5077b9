package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adrata/crm-ops/internal/checkpoint"
	"github.com/adrata/crm-ops/internal/enrich"
	"github.com/adrata/crm-ops/internal/resilience"
	"github.com/adrata/crm-ops/internal/store"
)

var (
	enrichSource     string
	enrichLimit      int
	enrichOwner      string
	enrichCheckpoint string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run a checkpointed enrichment batch",
	Long:  "Looks up each company on the chosen source, scores the match, and records accepted matches. Interrupted runs resume from the checkpoint file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, closeStore, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		provider, closeProvider, err := initProvider(ctx, enrichSource)
		if err != nil {
			return err
		}
		defer closeProvider()

		path := enrichCheckpoint
		if path == "" {
			path = cfg.Checkpoint.Path
		}
		tracker := checkpoint.Load(path)

		retry := resilience.DefaultRetryConfig()
		retry.OnRetry = resilience.RetryLogger(enrichSource, "lookup")

		runner := enrich.NewRunner(st, provider, tracker, enrich.Options{
			Concurrency: cfg.Batch.MaxConcurrentCompanies,
			SaveEvery:   cfg.Checkpoint.SaveEvery,
			Match:       cfg.Match,
			Retry:       retry,
		})

		if err := runner.Run(ctx, store.CompanyFilter{OwnerID: enrichOwner, Limit: enrichLimit}); err != nil {
			return err
		}

		cmd.Println(tracker.Summarize())
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichSource, "source", "dataset", "lookup source: dataset or salesforce")
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 0, "max companies to process (0 = store default)")
	enrichCmd.Flags().StringVar(&enrichOwner, "owner", "", "only companies owned by this user ID")
	enrichCmd.Flags().StringVar(&enrichCheckpoint, "checkpoint", "", "progress file path (default from config)")
	rootCmd.AddCommand(enrichCmd)
}
