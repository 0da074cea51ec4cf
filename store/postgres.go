package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

var postgresDialect = dialect{
	name: "postgres",
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			session_id TEXT NOT NULL REFERENCES sessions(id),
			client_id BIGINT NOT NULL,
			score BIGINT NOT NULL,
			tick BIGINT NOT NULL,
			updated_at BIGINT NOT NULL,
			PRIMARY KEY (session_id, client_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_session ON scores(session_id, score DESC)`,
	},
	insertSession: `INSERT INTO sessions (id, started_at) VALUES ($1, $2)`,
	upsertScore: `INSERT INTO scores (session_id, client_id, score, tick, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, client_id) DO UPDATE SET
			score = EXCLUDED.score, tick = EXCLUDED.tick, updated_at = EXCLUDED.updated_at`,
	selectScores: `SELECT client_id, score, tick, updated_at FROM scores
		WHERE session_id = $1 ORDER BY score DESC, client_id ASC`,
}

// openPostgres expects a lib/pq connection string, e.g.
// "host=localhost port=5432 user=coinrush password=... dbname=coinrush sslmode=disable".
func openPostgres(dsn string) (*sqlStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &sqlStore{db: db, d: postgresDialect}, nil
}
