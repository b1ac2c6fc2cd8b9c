package cache

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/pable/kaynstats/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore keeps one row per (puuid, match_id) in a SQLite database.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the SQLite database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: apply schema: %v", ErrCorruptState, err)
	}
	return &SQLiteStore{conn: conn}, nil
}

// Load reads every stored record.
func (s *SQLiteStore) Load() (model.Cache, error) {
	rows, err := s.conn.Query(`
		SELECT puuid, match_id, blue_games, blue_wins, red_games, red_wins
		FROM classifications`)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrCorruptState, err)
	}
	defer rows.Close()

	c := model.Cache{}
	for rows.Next() {
		var puuid, matchID string
		var r model.ClassificationRecord
		if err := rows.Scan(&puuid, &matchID, &r.BlueGames, &r.BlueWins, &r.RedGames, &r.RedWins); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrCorruptState, err)
		}
		c.Account(puuid)[matchID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if err := validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Save upserts every record in one transaction. Rows missing from c are left
// alone; the cache only grows.
func (s *SQLiteStore) Save(c model.Cache) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO classifications(puuid, match_id, blue_games, blue_wins, red_games, red_wins)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for puuid, recs := range c {
		for id, r := range recs {
			if _, err := stmt.Exec(puuid, id, r.BlueGames, r.BlueWins, r.RedGames, r.RedWins); err != nil {
				return fmt.Errorf("insert classification %s/%s: %w", puuid, id, err)
			}
		}
	}
	return tx.Commit()
}

// Reset deletes every row.
func (s *SQLiteStore) Reset() error {
	if _, err := s.conn.Exec(`DELETE FROM classifications`); err != nil {
		return fmt.Errorf("reset classifications: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
