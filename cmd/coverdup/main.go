package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"cover-dedup/internal/database"
	"cover-dedup/internal/logging"
	"cover-dedup/internal/startup"
)

// Default database directory path, shared with the service.
const defaultDatabaseDir = "/database"

var rootCmd = &cobra.Command{
	Use:   "coverdup",
	Short: "Find archives with duplicate covers in a remote library",
	Long: `coverdup crawls a remote LANraragi-compatible library, fingerprints
every archive's cover thumbnail, and reports groups of archives whose
covers are identical or perceptually similar.

The fingerprint store is shared with the coverdup service, so crawls
and scans can run from either side against the same database.`,
	SilenceUsage: true,
}

func main() {
	// The shared packages log at info by default, which would drown
	// one-shot command output. Explicit LOG_LEVEL or DEBUG still wins.
	if os.Getenv("LOG_LEVEL") == "" && os.Getenv("DEBUG") == "" {
		logging.SetLevel(logging.LevelWarn)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("base-url", "", "Remote library URL (default $LRR_BASE_URL)")
	rootCmd.PersistentFlags().String("database-dir", "", "Fingerprint database directory (default $DATABASE_DIR or /database)")
}

// signalContext returns a context cancelled by the first SIGINT or
// SIGTERM, so an interrupted command stops at the next safe point.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	return ctx, cancel
}

// resolveBaseURL picks the remote server address from the flag value,
// then the environment.
func resolveBaseURL(flagValue string) (string, error) {
	base := flagValue
	if base == "" {
		base = os.Getenv("LRR_BASE_URL")
	}
	if base == "" {
		return "", fmt.Errorf("no remote server configured: pass --base-url or set LRR_BASE_URL")
	}
	if err := startup.ValidateBaseURL(base); err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	return strings.TrimRight(base, "/"), nil
}

// databasePath resolves the store location the same way the service
// does, so both operate on one database.
func databasePath(flagValue string) string {
	dir := flagValue
	if dir == "" {
		dir = os.Getenv("DATABASE_DIR")
	}
	if dir == "" {
		dir = defaultDatabaseDir
	}
	return filepath.Join(dir, "coverdup.db")
}

func openDatabase(ctx context.Context, cmd *cobra.Command) (*database.Database, error) {
	dir, _ := cmd.Flags().GetString("database-dir")
	path := databasePath(dir)

	db, err := database.New(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return db, nil
}

// profileFor derives the crawl profile for the configured remote
// server. Fingerprints, checkpoints, and exclusions are all stored per
// profile.
func profileFor(cmd *cobra.Command) (*database.Profile, error) {
	flagValue, _ := cmd.Flags().GetString("base-url")
	baseURL, err := resolveBaseURL(flagValue)
	if err != nil {
		return nil, err
	}
	return &database.Profile{
		ID:      database.NewProfileID(baseURL),
		BaseURL: baseURL,
		Lang:    envOr("PROFILE_LANG", "en"),
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
