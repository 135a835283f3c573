package cmd

import (
	"context"
	"fmt"
	"log"

	"catalog-sync/core/config"
	"catalog-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncSource string

// syncCmd runs one catalog sync pipeline pass and exits.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one catalog sync pass",
	Long: `Fetches the catalog from the given supplier, stages it, processes every
item through the pipeline and reaps outdated products. Exits non-zero when the
run fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx := context.Background()
		feature, pool, err := buildCatalog(ctx, cfg, logg)
		if err != nil {
			return err
		}
		defer pool.Stop()

		source := syncSource
		if source == "" {
			source = cfg.Supplier.Source
		}

		result, err := feature.Service().SyncFromSource(ctx, source)
		if err != nil {
			return err
		}

		fmt.Printf("batch=%d success=%t products=%d duration=%.2fs\n",
			result.StagingID, result.Success, result.TotalProducts, result.SyncDurationSeconds)
		if !result.Success {
			return fmt.Errorf("sync run %d failed: %s", result.StagingID, result.Error)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncSource, "source", "", "supplier to sync from (defaults to supplier.source)")
	RootCmd.AddCommand(syncCmd)
}
