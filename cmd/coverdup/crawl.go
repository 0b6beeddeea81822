package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cover-dedup/internal/indexer"
	"cover-dedup/internal/lanraragi"
	"cover-dedup/internal/phash"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl the remote library and fingerprint every cover",
	Long: `Walk the remote library's listing page by page, fetch each archive's
cover thumbnail, and store its fingerprints. The checkpoint advances
after every fully attempted page, so an interrupted crawl can pick up
where it left off with --resume.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := signalContext()
		defer cancel()

		profile, err := profileFor(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		apiKey, err := resolveAPIKey(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		db, err := openDatabase(ctx, cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		timeout, _ := cmd.Flags().GetDuration("timeout")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		resume, _ := cmd.Flags().GetBool("resume")
		skipIndexed, _ := cmd.Flags().GetBool("skip-indexed")
		noFallback, _ := cmd.Flags().GetBool("no-fallback")

		client := lanraragi.New(profile.BaseURL, apiKey, timeout)
		idx := indexer.New(db, client, phash.Hasher{}, indexer.Config{
			Concurrency:         concurrency,
			Resume:              resume,
			SkipIndexed:         skipIndexed,
			NoThumbnailFallback: noFallback,
		})

		fmt.Printf("Crawling %s (concurrency %d)\n", profile.BaseURL, idx.Concurrency())

		start := time.Now()
		counters, err := idx.Run(ctx, profile, printProgress)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Fprintf(os.Stderr, "Crawl interrupted: %d indexed, %d failed so far\n",
					counters.Indexed, counters.Failed)
			} else {
				fmt.Fprintf(os.Stderr, "Error: crawl failed: %v\n", err)
			}
			os.Exit(1)
		}

		fmt.Printf("Done in %v: %d seen, %d indexed, %d skipped, %d failed\n",
			time.Since(start).Round(time.Second),
			counters.Seen, counters.Indexed, counters.Skipped, counters.Failed)
	},
}

func init() {
	crawlCmd.Flags().String("api-key", "", "Remote API key (default $LRR_API_KEY, prompts on a terminal)")
	crawlCmd.Flags().Bool("resume", false, "Resume from the stored checkpoint instead of offset 0")
	crawlCmd.Flags().Bool("skip-indexed", true, "Skip archives that already have stored fingerprints")
	crawlCmd.Flags().Bool("no-fallback", true, "Request real covers only, never placeholder thumbnails")
	crawlCmd.Flags().Int("concurrency", 0, "In-flight item pipelines (0 selects automatically)")
	crawlCmd.Flags().Duration("timeout", 30*time.Second, "HTTP timeout per request")

	rootCmd.AddCommand(crawlCmd)
}

// printProgress renders crawl progress events. Per-item events arrive
// already throttled by the indexer.
func printProgress(p indexer.Progress) {
	c := p.Counters
	switch p.Stage {
	case indexer.StageEnumerating:
		fmt.Printf("Library reports %d records\n", p.Total)
	case indexer.StageIndexing:
		fmt.Printf("  %d/%d processed (indexed %d, skipped %d, failed %d)\n",
			c.Completed+c.Skipped, p.Total, c.Indexed, c.Skipped, c.Failed)
	}
}

// resolveAPIKey picks the remote API key from the flag, then the
// environment, then an interactive prompt when stdin is a terminal. An
// empty key is passed through for servers with open access.
func resolveAPIKey(cmd *cobra.Command) (string, error) {
	key, _ := cmd.Flags().GetString("api-key")
	if key != "" {
		return key, nil
	}
	if key := os.Getenv("LRR_API_KEY"); key != "" {
		return key, nil
	}
	if !term.IsTerminal(syscall.Stdin) {
		return "", nil
	}

	fmt.Print("API Key (empty for open access): ")
	secret, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read API key: %w", err)
	}
	return string(secret), nil
}
