package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adrata/crm-ops/internal/fetcher"
)

var (
	importCSVPath  string
	importXLSXPath string
	importSheet    string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a company list from CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if (importCSVPath == "") == (importXLSXPath == "") {
			return eris.New("exactly one of --csv or --xlsx is required")
		}

		var (
			header []string
			rows   [][]string
			err    error
			source string
		)
		if importCSVPath != "" {
			source = importCSVPath
			f, openErr := os.Open(importCSVPath)
			if openErr != nil {
				return eris.Wrap(openErr, "open csv")
			}
			defer f.Close()
			header, rows, err = fetcher.ReadCSV(f, fetcher.CSVOptions{HasHeader: true, TrimSpace: true})
		} else {
			source = importXLSXPath
			header, rows, err = fetcher.ReadXLSX(importXLSXPath, fetcher.XLSXOptions{SheetName: importSheet, HasHeader: true})
		}
		if err != nil {
			return err
		}

		companies, skipped, err := fetcher.MapCompanies(header, rows)
		if err != nil {
			return err
		}

		st, closeStore, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		upserted, err := st.BulkUpsertCompanies(ctx, companies)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.String("file", source),
			zap.Int64("upserted", upserted),
			zap.Int("skipped", skipped),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to CSV file")
	importCmd.Flags().StringVar(&importXLSXPath, "xlsx", "", "path to XLSX file")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	rootCmd.AddCommand(importCmd)
}
