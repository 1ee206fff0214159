package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yairfalse/vakta/ingest"
	"github.com/yairfalse/vakta/storage"
	"github.com/yairfalse/vakta/types"
)

var (
	scoreStorageDir string
	scoreEventFile  string
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a single activity event",
	Long: `Score one activity event against the stored roles, policies and
baselines and print the verdict as JSON.

The event is read as JSON from --event or from stdin. The event is
persisted to the activity stream like any ingested event, so trailing
frequency counts stay accurate across runs.`,
	Example: `  vakta score --storage ./dev-data --event event.json
  echo '{"subject_id":"staff001","action":"READ","resource":"Finance_Reports","record_count":5200,"timestamp":"2026-02-02T22:14:00Z"}' | vakta score --storage ./dev-data`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreStorageDir, "storage", "", "Storage directory (overrides config)")
	scoreCmd.Flags().StringVar(&scoreEventFile, "event", "", "Path to event JSON (default: stdin)")
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeBase()
	if err != nil {
		return err
	}
	if scoreStorageDir != "" {
		cfg.Storage.Dir = scoreStorageDir
	}

	event, err := readEvent()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("failed to open storage at %s: %w", cfg.Storage.Dir, err)
	}
	defer func() { _ = store.Close() }()

	ing := ingest.New(store, cfg.Detection)
	result, err := ing.Process(context.Background(), event)
	if err != nil {
		return fmt.Errorf("event rejected: %w", err)
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	return out.Encode(result)
}

func readEvent() (types.ActivityEvent, error) {
	var event types.ActivityEvent

	var data []byte
	var err error
	if scoreEventFile != "" {
		data, err = os.ReadFile(scoreEventFile) // #nosec G304 -- path is intentional user input
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return event, fmt.Errorf("failed to read event: %w", err)
	}

	if err := json.Unmarshal(data, &event); err != nil {
		return event, fmt.Errorf("invalid event JSON: %w", err)
	}
	return event, nil
}
