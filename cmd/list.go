package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pable/kaynstats/internal/aggregator"
	"github.com/pable/kaynstats/internal/cache"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached accounts",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := cache.Open(resolveCachePath(cmd))
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	c, err := store.Load()
	if err != nil {
		return fmt.Errorf("load cache: %w", err)
	}
	if len(c) == 0 {
		fmt.Fprintln(os.Stdout, "No accounts cached yet. Run 'kaynstats stats' to add one.")
		return nil
	}

	puuids := make([]string, 0, len(c))
	for p := range c {
		puuids = append(puuids, p)
	}
	sort.Strings(puuids)

	fmt.Fprintf(os.Stdout, "%-14s  %7s  %5s  %5s  %5s  %7s\n",
		"PUUID", "MATCHES", "GAMES", "BLUE", "RED", "WINRATE")
	fmt.Fprintf(os.Stdout, "%-14s  %7s  %5s  %5s  %5s  %7s\n",
		"──────────────", "───────", "─────", "─────", "─────", "───────")
	for _, p := range puuids {
		s := aggregator.Summarize(c[p])
		fmt.Fprintf(os.Stdout, "%-14s  %7d  %5d  %5d  %5d  %7s\n",
			shortID(p), len(c[p]), s.Total.Games, s.Blue.Games, s.Red.Games, s.Total.WinRate)
	}
	return nil
}

// shortID truncates a PUUID for display.
func shortID(puuid string) string {
	if len(puuid) <= 12 {
		return puuid
	}
	return puuid[:12]
}
