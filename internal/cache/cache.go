// Package cache persists classified matches between runs so repeated runs only
// fetch matches they have not seen.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pable/kaynstats/internal/model"
)

// ErrCorruptState is returned by Load when stored state cannot be parsed.
var ErrCorruptState = errors.New("corrupt cache state")

// Store loads and saves the whole cache.
type Store interface {
	Load() (model.Cache, error)
	Save(model.Cache) error
	// Reset discards every stored record, including ones Load rejected.
	Reset() error
	Close() error
}

// Open returns the Store for path, chosen by suffix: .db and .sqlite open a
// SQLite database; anything else is a JSON or YAML document, optionally
// zstd-compressed with a trailing .zst.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path)
	default:
		return NewFileStore(path), nil
	}
}

// Remove deletes the cache at path along with any SQLite side files. A missing
// file is not an error.
func Remove(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

// FilterUnprocessed returns the ids not yet recorded for puuid, in input order.
// Repeated ids are kept only once.
func FilterUnprocessed(c model.Cache, puuid string, ids []string) []string {
	done := c[puuid]
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := done[id]; ok {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Merge copies recs into the cache under puuid and returns how many match ids
// were not present before.
func Merge(c model.Cache, puuid string, recs model.MatchRecords) int {
	if len(recs) == 0 {
		return 0
	}
	dst := c.Account(puuid)
	added := 0
	for id, r := range recs {
		if _, ok := dst[id]; !ok {
			added++
		}
		dst[id] = r
	}
	return added
}

// validate checks every record's invariants after a load.
func validate(c model.Cache) error {
	for puuid, recs := range c {
		for id, r := range recs {
			if !r.Valid() {
				return fmt.Errorf("%w: account %s match %s: invalid record %+v", ErrCorruptState, puuid, id, r)
			}
		}
	}
	return nil
}
