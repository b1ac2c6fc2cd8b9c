package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/kaynstats/internal/aggregator"
)

var cHeading = color.New(color.FgCyan, color.Bold)

// csvHeader is the first row of every exported CSV.
var csvHeader = []string{"Form", "Games", "Pickrate", "Winrate"}

// PrintSummary prints the ranked stats table for champion to w. Like the CSV,
// the table leaves out a variant that was never played.
func PrintSummary(w io.Writer, champion string, s aggregator.Summary) {
	cHeading.Fprintf(w, "\n%s RANKED STATS\n", strings.ToUpper(champion))
	fmt.Fprintln(w, strings.Repeat("-", len(champion)+13))

	if s.Empty() {
		fmt.Fprintf(w, "No %s games found: %s\n", champion, aggregator.NoData)
		return
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
	table.Header("FORM", "GAMES", "WINS", "PICKRATE", "WINRATE")
	for _, row := range []aggregator.Row{s.Blue, s.Red, s.Total} {
		if row.Games == 0 {
			continue
		}
		table.Append(
			row.Form,
			strconv.Itoa(row.Games),
			strconv.Itoa(row.Wins),
			row.PickRate.String(),
			row.WinRate.String(),
		)
	}
	table.Render()
}

// WriteCSV writes the summary as CSV. Variant rows appear only when that
// variant was played; the Total row is always written.
func WriteCSV(w io.Writer, s aggregator.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range []aggregator.Row{s.Blue, s.Red} {
		if row.Games == 0 {
			continue
		}
		if err := cw.Write(csvRow(row)); err != nil {
			return err
		}
	}
	total := csvRow(s.Total)
	if !s.Empty() {
		total[2] = "100%"
	}
	if err := cw.Write(total); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(r aggregator.Row) []string {
	return []string{r.Form, strconv.Itoa(r.Games), r.PickRate.String(), r.WinRate.String()}
}

// ExportCSV writes the summary CSV to path, replacing any existing file.
func ExportCSV(path string, s aggregator.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := WriteCSV(f, s); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}
