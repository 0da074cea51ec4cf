package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

var sqliteDialect = dialect{
	name: "sqlite",
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			session_id TEXT NOT NULL,
			client_id INTEGER NOT NULL,
			score INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (session_id, client_id),
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_session ON scores(session_id, score DESC)`,
	},
	insertSession: `INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
	upsertScore: `INSERT INTO scores (session_id, client_id, score, tick, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (session_id, client_id) DO UPDATE SET
			score = excluded.score, tick = excluded.tick, updated_at = excluded.updated_at`,
	selectScores: `SELECT client_id, score, tick, updated_at FROM scores
		WHERE session_id = ? ORDER BY score DESC, client_id ASC`,
}

func openSQLite(path string) (*sqlStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite is not concurrent for writes
	return &sqlStore{db: db, d: sqliteDialect}, nil
}
