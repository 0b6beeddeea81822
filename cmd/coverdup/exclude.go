package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var excludeCmd = &cobra.Command{
	Use:   "exclude <arcid> <arcid>",
	Short: "Mark two archives as not duplicates of each other",
	Long: `Record a not-duplicate pair. Later scans will never link the two
archives directly, in either phase; they can still land in one group
through other members.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		a, b := args[0], args[1]
		if a == b {
			fmt.Fprintln(os.Stderr, "Error: the two archive IDs must differ")
			os.Exit(1)
		}

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

		if err := db.AddNotDuplicate(ctx, profile.ID, a, b); err != nil {
			fmt.Fprintf(os.Stderr, "Error: record exclusion: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Recorded: %s and %s will not be linked again\n", a, b)
	},
}

func init() {
	rootCmd.AddCommand(excludeCmd)
}
