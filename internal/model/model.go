// Package model holds the records shared by the classifier, the cache and the
// aggregator.
package model

// Variant is the build form a tracked champion was played in.
type Variant int

const (
	VariantUnknown Variant = 0
	VariantBlue    Variant = 1
	VariantRed     Variant = 2
)

func (v Variant) String() string {
	switch v {
	case VariantBlue:
		return "Blue"
	case VariantRed:
		return "Red"
	default:
		return "?"
	}
}

// ClassificationRecord counts the tracked player's appearances on each variant
// within one match. A player shows up at most once per match, so every field is
// normally 0 or 1; the counters tolerate more.
//
// The zero record marks a match that was fetched and did not contain the
// tracked champion.
type ClassificationRecord struct {
	BlueGames int `json:"blue_games" yaml:"blue_games"`
	BlueWins  int `json:"blue_wins" yaml:"blue_wins"`
	RedGames  int `json:"red_games" yaml:"red_games"`
	RedWins   int `json:"red_wins" yaml:"red_wins"`
}

// Add records one appearance on v.
func (r *ClassificationRecord) Add(v Variant, win bool) {
	switch v {
	case VariantRed:
		r.RedGames++
		if win {
			r.RedWins++
		}
	default:
		r.BlueGames++
		if win {
			r.BlueWins++
		}
	}
}

// Games returns the appearances across both variants.
func (r ClassificationRecord) Games() int {
	return r.BlueGames + r.RedGames
}

// IsAbsence reports whether r is the absence marker.
func (r ClassificationRecord) IsAbsence() bool {
	return r == ClassificationRecord{}
}

// Valid reports whether the counters are non-negative and wins never exceed games.
func (r ClassificationRecord) Valid() bool {
	if r.BlueGames < 0 || r.BlueWins < 0 || r.RedGames < 0 || r.RedWins < 0 {
		return false
	}
	return r.BlueWins <= r.BlueGames && r.RedWins <= r.RedGames
}

// MatchRecords maps a match id to the tracked player's record in that match.
type MatchRecords map[string]ClassificationRecord

// ChampionGames returns how many of the records contain at least one appearance.
func (m MatchRecords) ChampionGames() int {
	n := 0
	for _, r := range m {
		if !r.IsAbsence() {
			n++
		}
	}
	return n
}

// Cache maps an account PUUID to its classified matches.
type Cache map[string]MatchRecords

// Account returns the records for puuid, creating the sub-map if needed.
func (c Cache) Account(puuid string) MatchRecords {
	recs, ok := c[puuid]
	if !ok {
		recs = make(MatchRecords)
		c[puuid] = recs
	}
	return recs
}
