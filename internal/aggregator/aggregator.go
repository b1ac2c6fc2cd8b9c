package aggregator

import (
	"fmt"

	"github.com/pable/kaynstats/internal/model"
)

// NoData is printed in place of a rate whose denominator is zero.
const NoData = "no data"

// Totals are the field-wise sums of a set of classification records.
type Totals struct {
	BlueGames, BlueWins int
	RedGames, RedWins   int
}

// Games returns games across both variants.
func (t Totals) Games() int { return t.BlueGames + t.RedGames }

// Wins returns wins across both variants.
func (t Totals) Wins() int { return t.BlueWins + t.RedWins }

// Sum folds every record in recs into Totals. Absence markers add nothing.
func Sum(recs model.MatchRecords) Totals {
	var t Totals
	for _, r := range recs {
		t.BlueGames += r.BlueGames
		t.BlueWins += r.BlueWins
		t.RedGames += r.RedGames
		t.RedWins += r.RedWins
	}
	return t
}

// Rate is a ratio that may have no denominator.
type Rate struct {
	Num, Den int
}

// Value returns Num/Den, or false when Den is zero.
func (r Rate) Value() (float64, bool) {
	if r.Den == 0 {
		return 0, false
	}
	return float64(r.Num) / float64(r.Den), true
}

// String formats the rate as a percentage with one decimal, or NoData.
func (r Rate) String() string {
	v, ok := r.Value()
	if !ok {
		return NoData
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

// Row is one line of a summary.
type Row struct {
	Form     string
	Games    int
	Wins     int
	PickRate Rate
	WinRate  Rate
}

// Summary holds the per-variant rows and the total.
type Summary struct {
	Totals
	Blue, Red, Total Row
}

// Empty reports whether no champion games were recorded.
func (s Summary) Empty() bool { return s.Total.Games == 0 }

// Summarize computes pick and win rates for recs.
func Summarize(recs model.MatchRecords) Summary {
	t := Sum(recs)
	total := t.Games()
	return Summary{
		Totals: t,
		Blue: Row{
			Form:     model.VariantBlue.String(),
			Games:    t.BlueGames,
			Wins:     t.BlueWins,
			PickRate: Rate{t.BlueGames, total},
			WinRate:  Rate{t.BlueWins, t.BlueGames},
		},
		Red: Row{
			Form:     model.VariantRed.String(),
			Games:    t.RedGames,
			Wins:     t.RedWins,
			PickRate: Rate{t.RedGames, total},
			WinRate:  Rate{t.RedWins, t.RedGames},
		},
		Total: Row{
			Form:     "Total",
			Games:    total,
			Wins:     t.Wins(),
			PickRate: Rate{total, total},
			WinRate:  Rate{t.Wins(), total},
		},
	}
}
