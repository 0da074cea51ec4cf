package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"coinrush/game"
)

// dialect holds the statements that differ between drivers.
type dialect struct {
	name          string
	migrations    []string
	insertSession string
	upsertScore   string
	selectScores  string
}

type sqlStore struct {
	db *sql.DB
	d  dialect
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) Migrate(ctx context.Context) error {
	for _, m := range s.d.migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("%s migration failed: %w", s.d.name, err)
		}
	}
	return nil
}

func (s *sqlStore) StartSession(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()
	if _, err := s.db.ExecContext(ctx, s.d.insertSession, id.String(), time.Now().UnixMilli()); err != nil {
		return uuid.Nil, fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// SaveScores upserts every entry of scores in one transaction.
func (s *sqlStore) SaveScores(ctx context.Context, session uuid.UUID, tick int, scores game.ScoreTable) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.d.upsertScore)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for _, id := range scores.IDs() {
		// client ids are stored bit for bit in a signed BIGINT
		if _, err := stmt.ExecContext(ctx, session.String(), int64(id), int64(scores[id]), tick, now); err != nil {
			return fmt.Errorf("upsert score %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *sqlStore) SessionScores(ctx context.Context, session uuid.UUID) ([]ScoreRow, error) {
	rows, err := s.db.QueryContext(ctx, s.d.selectScores, session.String())
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var out []ScoreRow
	for rows.Next() {
		var (
			r        ScoreRow
			clientID int64
			score    int64
		)
		if err := rows.Scan(&clientID, &score, &r.Tick, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		r.ClientID = uint64(clientID)
		r.Score = uint32(score)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return out, nil
}
