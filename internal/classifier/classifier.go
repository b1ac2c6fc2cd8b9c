// Package classifier fetches match details and sorts the tracked player's
// games into build variants.
package classifier

import (
	"github.com/pable/kaynstats/internal/model"
	"github.com/pable/kaynstats/internal/riot"
)

// Primary rune tree ids.
const (
	RunePrecision   = 8000
	RuneDomination  = 8100
	RuneSorcery     = 8200
	RuneInspiration = 8300
	RuneResolve     = 8400
)

// DefaultChampion is the champion whose forms are tracked.
const DefaultChampion = "Kayn"

// VariantForRune maps a primary rune tree to a build variant. Precision is
// Red; everything else, Domination and Inspiration included, is Blue.
func VariantForRune(style int) model.Variant {
	switch style {
	case RunePrecision:
		return model.VariantRed
	case RuneDomination, RuneInspiration:
		return model.VariantBlue
	default:
		return model.VariantBlue
	}
}

// Classify scans m for participants matching puuid and champion and returns the
// record for them along with how many were found.
func Classify(m *riot.MatchDetail, puuid, champion string) (model.ClassificationRecord, int) {
	var rec model.ClassificationRecord
	found := 0
	for i := range m.Info.Participants {
		p := &m.Info.Participants[i]
		if p.PUUID != puuid || p.ChampionName != champion {
			continue
		}
		style, _ := p.PrimaryStyle()
		rec.Add(VariantForRune(style), p.Win)
		found++
	}
	return rec, found
}
