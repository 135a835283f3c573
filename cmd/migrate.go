package cmd

import (
	"fmt"
	"log"

	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/logger"
	"catalog-sync/feature/catalog/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateVerify bool

// migrateCmd creates or updates the catalog schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the catalog schema",
	Long:  `Runs the GORM auto-migration for every catalog table.`,
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

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}

		if err := db.AutoMigrate(models.All()...); err != nil {
			return err
		}
		logg.Info("Schema migrated")

		if migrateVerify {
			// Spot-check the columns the pipeline depends on at runtime.
			checks := map[string][]string{
				"products":        {"id", "sku", "price", "status", "last_batch_id"},
				"staging_batches": {"status", "total_items", "processed_items", "payload_ref"},
				"staging_items":   {"staging_batch_id", "status", "error_message", "product_id"},
			}
			for table, expected := range checks {
				missing, err := database.HasColumns(db, table, expected)
				if err != nil {
					return err
				}
				if len(missing) > 0 {
					logg.Error("Schema verification failed",
						zap.String("table", table),
						zap.Strings("missing", missing),
					)
					return fmt.Errorf("table %s is missing columns %v", table, missing)
				}
			}
			logg.Info("Schema verified")
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateVerify, "verify", false, "verify pipeline columns after migrating")
	RootCmd.AddCommand(migrateCmd)
}
