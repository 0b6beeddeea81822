package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cover-dedup/internal/dedupe"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan stored fingerprints for duplicate covers",
	Long: `Run a duplicate scan over the fingerprints stored by previous crawls.
The scan never talks to the remote server; crawl first to populate or
refresh the store.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := signalContext()
		defer cancel()

		profile, err := profileFor(cmd)
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

		threshold, _ := cmd.Flags().GetInt("threshold")
		maxBucket, _ := cmd.Flags().GetInt("max-bucket")
		includeExact, _ := cmd.Flags().GetBool("exact")
		includeApprox, _ := cmd.Flags().GetBool("approx")

		cfg := dedupe.DefaultConfig()
		cfg.IncludeExact = includeExact
		cfg.IncludeApprox = includeApprox
		if threshold >= 0 {
			cfg.DiffHashThreshold = threshold
			cfg.AvgHashThreshold = threshold
		}
		if maxBucket > 0 {
			cfg.MaxBucketSize = maxBucket
		}

		fingerprints, err := db.LoadScanFingerprints(ctx, profile.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: load fingerprints: %v\n", err)
			os.Exit(1)
		}
		exclusions, err := db.LoadNotDuplicates(ctx, profile.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: load exclusions: %v\n", err)
			os.Exit(1)
		}

		start := time.Now()
		result := dedupe.Scan(fingerprints, exclusions, cfg)

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				fmt.Fprintf(os.Stderr, "Error: encode result: %v\n", err)
				os.Exit(1)
			}
			return
		}

		printScanResult(result, time.Since(start))
	},
}

func init() {
	scanCmd.Flags().Int("threshold", dedupe.DefaultDiffHashThreshold, "Hamming distance bound for both perceptual hashes")
	scanCmd.Flags().Int("max-bucket", dedupe.DefaultMaxBucketSize, "Skip hash buckets larger than this")
	scanCmd.Flags().Bool("exact", true, "Include the exact checksum phase")
	scanCmd.Flags().Bool("approx", true, "Include the perceptual similarity phase")
	scanCmd.Flags().Bool("json", false, "Print the raw scan result as JSON")

	rootCmd.AddCommand(scanCmd)
}

// groupReasons labels each group with the kind of edges that formed
// it: exact, similar, or both.
func groupReasons(result dedupe.Result) []string {
	memberGroup := make(map[string]int)
	for i, group := range result.Groups {
		for _, arcid := range group {
			memberGroup[arcid] = i
		}
	}

	exact := make([]bool, len(result.Groups))
	approx := make([]bool, len(result.Groups))
	for _, pair := range result.Pairs {
		i, ok := memberGroup[pair.A]
		if !ok {
			continue
		}
		switch pair.Reason {
		case dedupe.ReasonExactCover:
			exact[i] = true
		case dedupe.ReasonSimilarCover:
			approx[i] = true
		}
	}

	labels := make([]string, len(result.Groups))
	for i := range labels {
		switch {
		case exact[i] && approx[i]:
			labels[i] = "exact+similar"
		case exact[i]:
			labels[i] = dedupe.ReasonExactCover
		default:
			labels[i] = dedupe.ReasonSimilarCover
		}
	}
	return labels
}

func printScanResult(result dedupe.Result, elapsed time.Duration) {
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	if len(result.Groups) == 0 {
		fmt.Printf("No duplicate covers among %d archives (%v)\n",
			result.Stats.Archives, elapsed.Round(time.Millisecond))
		return
	}

	labels := groupReasons(result)
	for i, group := range result.Groups {
		fmt.Printf("%s (%s)\n", yellow(fmt.Sprintf("Group %d", i+1)), labels[i])
		for _, arcid := range group {
			fmt.Printf("  %s\n", arcid)
		}
		fmt.Println()
	}

	fmt.Printf("%s: %d groups from %d archives in %v\n",
		green("Scan complete"), len(result.Groups), result.Stats.Archives,
		elapsed.Round(time.Millisecond))
	fmt.Printf("  exact partitions: %d, similarity matches: %d",
		result.Stats.ExactGroups, result.Stats.ApproxMatches)
	if result.Stats.SkippedBuckets > 0 {
		fmt.Printf(", %s", gray(fmt.Sprintf("%d buckets skipped", result.Stats.SkippedBuckets)))
	}
	fmt.Println()
}
