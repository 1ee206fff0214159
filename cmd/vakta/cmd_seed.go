package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/vakta/storage"
)

var seedStorageDir string

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample roles, users, policies and baselines",
	Long: `Seed the store with a sample organization.

Loads three roles (admin, manager, staff), four users, their access
policies and role baselines. Useful for local development and demos.
Seeding is idempotent: rerunning overwrites the same records.`,
	Example: `  vakta seed --storage /var/lib/vakta
  vakta seed --storage ./dev-data`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedStorageDir, "storage", "", "Storage directory (overrides config)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeBase()
	if err != nil {
		return err
	}
	if seedStorageDir != "" {
		cfg.Storage.Dir = seedStorageDir
	}

	store, err := storage.Open(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("failed to open storage at %s: %w", cfg.Storage.Dir, err)
	}
	defer func() { _ = store.Close() }()

	if err := storage.Seed(store); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	fmt.Printf("Seeded sample data into %s\n", cfg.Storage.Dir)
	return nil
}
