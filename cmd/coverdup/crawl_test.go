package main

import (
	"os"
	"testing"

	"github.com/spf13/cobra"

	"cover-dedup/internal/indexer"
)

func newAPIKeyCommand(t *testing.T, flagValue string) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("api-key", "", "")
	if flagValue != "" {
		if err := cmd.Flags().Set("api-key", flagValue); err != nil {
			t.Fatalf("set api-key flag: %v", err)
		}
	}
	return cmd
}

func TestResolveAPIKeyFlag(t *testing.T) {
	t.Setenv("LRR_API_KEY", "from-env")

	key, err := resolveAPIKey(newAPIKeyCommand(t, "from-flag"))
	if err != nil {
		t.Fatalf("resolveAPIKey() error = %v", err)
	}
	if key != "from-flag" {
		t.Errorf("resolveAPIKey() = %q, want flag value to win", key)
	}
}

func TestResolveAPIKeyEnv(t *testing.T) {
	t.Setenv("LRR_API_KEY", "from-env")

	key, err := resolveAPIKey(newAPIKeyCommand(t, ""))
	if err != nil {
		t.Fatalf("resolveAPIKey() error = %v", err)
	}
	if key != "from-env" {
		t.Errorf("resolveAPIKey() = %q, want %q", key, "from-env")
	}
}

func TestResolveAPIKeyNeither(t *testing.T) {
	// Stdin is not a terminal under go test, so the prompt is skipped
	// and open access is assumed.
	t.Setenv("LRR_API_KEY", "")
	os.Unsetenv("LRR_API_KEY")

	key, err := resolveAPIKey(newAPIKeyCommand(t, ""))
	if err != nil {
		t.Fatalf("resolveAPIKey() error = %v", err)
	}
	if key != "" {
		t.Errorf("resolveAPIKey() = %q, want empty key", key)
	}
}

func TestPrintProgressDoesNotPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("printProgress panicked: %v", r)
		}
	}()

	for _, stage := range []indexer.Stage{
		indexer.StageStarting,
		indexer.StageEnumerating,
		indexer.StageIndexing,
		indexer.StageCompleted,
	} {
		printProgress(indexer.Progress{
			Stage:    stage,
			Total:    42,
			Counters: indexer.Counters{Seen: 10, Completed: 8, Indexed: 7, Skipped: 2, Failed: 1},
		})
	}
}
