package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/kaynstats/internal/cache"
	"github.com/pable/kaynstats/internal/model"
)

var (
	exportOut    string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export <puuid-prefix>",
	Short: "Export per-match classifications for a cached account",
	Long: `Write one row per cached match of the account: match id, variant
(blue, red, or none for matches without the tracked champion) and whether the
game was won. Rows are sorted by match id.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or json")
}

// matchRow is one exported match.
type matchRow struct {
	MatchID string `json:"match_id"`
	Variant string `json:"variant"`
	Win     bool   `json:"win"`
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("unknown format %q (want csv or json)", exportFormat)
	}

	store, err := cache.Open(resolveCachePath(cmd))
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	c, err := store.Load()
	if err != nil {
		return fmt.Errorf("load cache: %w", err)
	}
	recs, err := findAccount(c, args[0])
	if err != nil {
		return err
	}
	if recs == nil {
		return fmt.Errorf("no account found with PUUID prefix %q", args[0])
	}

	var w io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	rows := matchRows(recs)
	if exportFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	return writeMatchRowsCSV(w, rows)
}

// matchRows flattens recs into rows sorted by match id.
func matchRows(recs model.MatchRecords) []matchRow {
	rows := make([]matchRow, 0, len(recs))
	for id, r := range recs {
		row := matchRow{MatchID: id, Variant: "none"}
		switch {
		case r.RedGames > 0:
			row.Variant = "red"
			row.Win = r.RedWins > 0
		case r.BlueGames > 0:
			row.Variant = "blue"
			row.Win = r.BlueWins > 0
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].MatchID < rows[j].MatchID })
	return rows
}

func writeMatchRowsCSV(w io.Writer, rows []matchRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"match_id", "variant", "win"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.MatchID, r.Variant, strconv.FormatBool(r.Win)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
