package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/kaynstats/internal/cache"
)

var dropForce bool

// dropCmd deletes the match cache file.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the match cache",
	Long:  "Permanently delete the match cache. The next stats run fetches every match again.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	path := resolveCachePath(cmd)
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", path)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(os.Stdout, "Cache does not exist, nothing to drop.")
		return nil
	}
	if err := cache.Remove(path); err != nil {
		return fmt.Errorf("remove cache: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", path)
	return nil
}
