package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/kaynstats/internal/aggregator"
	"github.com/pable/kaynstats/internal/cache"
	"github.com/pable/kaynstats/internal/classifier"
	"github.com/pable/kaynstats/internal/model"
	"github.com/pable/kaynstats/internal/report"
)

var (
	showChampion string
	showCSVPath  string
)

var showCmd = &cobra.Command{
	Use:   "show <puuid-prefix>",
	Short: "Show cached stats for an account without calling the API",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showChampion, "champion", classifier.DefaultChampion, "champion name for the heading")
	showCmd.Flags().StringVar(&showCSVPath, "csv", "", "also export the summary to this CSV file")
}

func runShow(cmd *cobra.Command, args []string) error {
	prefix := args[0]

	store, err := cache.Open(resolveCachePath(cmd))
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	c, err := store.Load()
	if err != nil {
		return fmt.Errorf("load cache: %w", err)
	}

	recs, err := findAccount(c, prefix)
	if err != nil {
		return err
	}
	if recs == nil {
		fmt.Fprintf(os.Stderr, "No account found with PUUID prefix %q\n", prefix)
		return nil
	}

	summary := aggregator.Summarize(recs)
	report.PrintSummary(os.Stdout, showChampion, summary)
	if showCSVPath != "" {
		if err := report.ExportCSV(showCSVPath, summary); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Exported to %s\n", showCSVPath)
	}
	return nil
}

// findAccount returns the records of the single account whose PUUID starts
// with prefix, nil when none does, and an error when the prefix is ambiguous.
func findAccount(c model.Cache, prefix string) (model.MatchRecords, error) {
	var match string
	for p := range c {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		if match != "" {
			return nil, fmt.Errorf("PUUID prefix %q is ambiguous", prefix)
		}
		match = p
	}
	if match == "" {
		return nil, nil
	}
	return c[match], nil
}
