package main

import (
	"fmt"
	"io"
	"os"

	"handyman/catalog"
	"handyman/database"
	"handyman/importer"
	"handyman/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importCmd = &cobra.Command{
	Use:   "import [file.csv]",
	Short: "Import reviews from a CSV file (\"-\" reads stdin)",
	Long: `Imports reviews through the same path as POST /api/reviews. The file needs
the columns name, email, service, rating and comment; other columns are
ignored. Rows with invalid input or an unknown service are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = os.Stdin
		if args[0] != "-" {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer file.Close()
			in = file
		}

		cat, err := catalog.Default()
		if err != nil {
			return err
		}
		db, err := database.ConnectDb(cfg.DB, log)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close(db) }()

		if _, err := database.SeedServices(cmd.Context(), db, cat); err != nil {
			return fmt.Errorf("seed services: %w", err)
		}

		res, err := importer.ImportCSV(cmd.Context(), in, store.New(db, log), log)
		for _, skipped := range res.Skipped {
			log.Warn("row skipped", zap.Int("row", skipped.Row), zap.Error(skipped.Err))
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d reviews, skipped %d\n", res.Imported, len(res.Skipped))
		return nil
	},
}
