package persistence

import (
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/vitadek/piratecrew/internal/peer"
	"github.com/vitadek/piratecrew/internal/piraterr"
)

// RankingStore is the seed-node team/player ladder: a small sqlite database
// separate from the flat-file World/Game/Tournament saves, fed by ingested
// peer.SeedInfo broadcasts rather than by local simulation. Grounded on
// db.go (sql.Open("sqlite3", dsn) against a WAL-mode file, schema
// created with CREATE TABLE IF NOT EXISTS), swapped to the pure-Go
// modernc.org/sqlite driver so the binary stays cgo-free.
type RankingStore struct {
	db *sql.DB
}

const rankingSchema = `
CREATE TABLE IF NOT EXISTS team_ranking (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	score REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS player_ranking (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	score REAL NOT NULL
);
`

// OpenRankingStore opens (creating if absent) the sqlite ranking database at
// path, in WAL mode like db.go's initDB.
func OpenRankingStore(path string) (*RankingStore, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, piraterr.Wrap(piraterr.CodecError, err, "persistence: open ranking store")
	}
	if _, err := db.Exec(rankingSchema); err != nil {
		db.Close()
		return nil, piraterr.Wrap(piraterr.CodecError, err, "persistence: create ranking schema")
	}
	return &RankingStore{db: db}, nil
}

func (s *RankingStore) Close() error { return s.db.Close() }

// IngestSeedInfo replaces the stored ladder with the rows carried by info,
// the ranking-store half of peer.IngestSeedInfo: core holds no ranking
// state, so a seed node that wants a queryable ladder persists it here
// instead.
func (s *RankingStore) IngestSeedInfo(info peer.SeedInfo) error {
	tx, err := s.db.Begin()
	if err != nil {
		return piraterr.Wrap(piraterr.CodecError, err, "persistence: begin ranking ingest")
	}

	if err := replaceRanking(tx, "team_ranking", info.TeamRanking); err != nil {
		tx.Rollback()
		return err
	}
	if err := replaceRanking(tx, "player_ranking", info.PlayerRanking); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return piraterr.Wrap(piraterr.CodecError, err, "persistence: commit ranking ingest")
	}
	return nil
}

func replaceRanking(tx *sql.Tx, table string, rows []peer.RankingEntry) error {
	if _, err := tx.Exec("DELETE FROM " + table); err != nil {
		return piraterr.Wrap(piraterr.CodecError, err, "persistence: clear %s", table)
	}
	stmt, err := tx.Prepare("INSERT INTO " + table + " (id, name, score) VALUES (?, ?, ?)")
	if err != nil {
		return piraterr.Wrap(piraterr.CodecError, err, "persistence: prepare %s insert", table)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row.Id, row.Name, row.Score); err != nil {
			return piraterr.Wrap(piraterr.CodecError, err, "persistence: insert into %s", table)
		}
	}
	return nil
}

func queryRanking(db *sql.DB, table string, limit int) ([]peer.RankingEntry, error) {
	rows, err := db.Query("SELECT id, name, score FROM "+table+" ORDER BY score DESC LIMIT ?", limit)
	if err != nil {
		return nil, piraterr.Wrap(piraterr.CodecError, err, "persistence: query %s", table)
	}
	defer rows.Close()

	var out []peer.RankingEntry
	for rows.Next() {
		var e peer.RankingEntry
		if err := rows.Scan(&e.Id, &e.Name, &e.Score); err != nil {
			return nil, piraterr.Wrap(piraterr.CodecError, err, "persistence: scan %s row", table)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, piraterr.Wrap(piraterr.CodecError, err, "persistence: iterate %s", table)
	}
	return out, nil
}

// TeamLadder returns the top limit teams by score, descending.
func (s *RankingStore) TeamLadder(limit int) ([]peer.RankingEntry, error) {
	return queryRanking(s.db, "team_ranking", limit)
}

// PlayerLadder returns the top limit players by score, descending.
func (s *RankingStore) PlayerLadder(limit int) ([]peer.RankingEntry, error) {
	return queryRanking(s.db, "player_ranking", limit)
}
