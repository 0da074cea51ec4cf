// Package store persists per-session score tables.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"coinrush/game"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Store persists score tables keyed by server session.
type Store interface {
	Migrate(ctx context.Context) error
	StartSession(ctx context.Context) (uuid.UUID, error)
	SaveScores(ctx context.Context, session uuid.UUID, tick int, scores game.ScoreTable) error
	SessionScores(ctx context.Context, session uuid.UUID) ([]ScoreRow, error)
	Close() error
}

// ScoreRow is the latest persisted score of one client in a session.
type ScoreRow struct {
	ClientID  uint64 `json:"clientId"`
	Score     uint32 `json:"score"`
	Tick      int    `json:"tick"`
	UpdatedAt int64  `json:"updatedAt"` // unix millis
}

// Open connects to driver ("sqlite" or "postgres") and runs migrations.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		s   *sqlStore
		err error
	)
	switch driver {
	case "sqlite":
		s, err = openSQLite(dsn)
	case "postgres":
		s, err = openPostgres(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
