package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cover-dedup/internal/database"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store statistics and the crawl checkpoint",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := signalContext()
		defer cancel()

		db, err := openDatabase(ctx, cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()

		stats := db.GetStats()
		fmt.Printf("%s\n", cyan("=== Fingerprint Store ==="))
		fmt.Printf("  Archives:     %d\n", stats.Archives)
		fmt.Printf("  Fingerprints: %d\n", stats.Fingerprints)
		fmt.Printf("  Exclusions:   %d\n", stats.Exclusions)

		// The checkpoint is per remote server; show it only when one
		// is configured.
		flagValue, _ := cmd.Flags().GetString("base-url")
		baseURL, err := resolveBaseURL(flagValue)
		if err != nil {
			return
		}

		checkpoint, err := db.GetCheckpoint(ctx, database.NewProfileID(baseURL))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: read checkpoint: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\n%s\n", cyan("=== Crawl Checkpoint ==="))
		fmt.Printf("  Server:      %s\n", baseURL)
		fmt.Printf("  Last offset: %d\n", checkpoint.LastOffset)
		if !checkpoint.LastIndexedAt.IsZero() {
			fmt.Printf("  Updated:     %s\n", checkpoint.LastIndexedAt.Format("2006-01-02 15:04:05"))
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
