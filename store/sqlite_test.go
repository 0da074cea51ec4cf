package store

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"testing"

	"coinrush/game"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	s, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSaveAndLoadScores(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	session, err := s.StartSession(ctx)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	if err := s.SaveScores(ctx, session, 10, game.ScoreTable{1: 1, 2: 0}); err != nil {
		t.Fatalf("save scores: %v", err)
	}
	if err := s.SaveScores(ctx, session, 20, game.ScoreTable{1: 1, 2: 3}); err != nil {
		t.Fatalf("save scores again: %v", err)
	}

	rows, err := s.SessionScores(ctx, session)
	if err != nil {
		t.Fatalf("session scores: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].ClientID != 2 || rows[0].Score != 3 || rows[0].Tick != 20 {
		t.Fatalf("top row = %+v, want client 2 with 3 at tick 20", rows[0])
	}
	if rows[1].ClientID != 1 || rows[1].Score != 1 {
		t.Fatalf("second row = %+v", rows[1])
	}
}

func TestSQLiteLargeClientIDRoundTrips(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	session, _ := s.StartSession(ctx)

	big := game.ClientID(^uint64(0) - 5)
	if err := s.SaveScores(ctx, session, 1, game.ScoreTable{big: 9}); err != nil {
		t.Fatalf("save: %v", err)
	}
	rows, err := s.SessionScores(ctx, session)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 1 || rows[0].ClientID != uint64(big) {
		t.Fatalf("rows = %+v, want client %d", rows, uint64(big))
	}
}

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mongo", ""); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("err = %v, want ErrUnknownDriver", err)
	}
}

func TestRecorderFlushesOnClose(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	session, _ := s.StartSession(ctx)

	r := NewRecorder(s, session, 8, log.Default())
	table := game.ScoreTable{4: 1}
	if !r.Record(5, table) {
		t.Fatalf("record dropped")
	}
	table[4] = 50 // must not leak into the queued copy
	r.Close()

	if r.Record(6, table) {
		t.Fatalf("record accepted after close")
	}

	rows, err := s.SessionScores(ctx, session)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 1 || rows[0].Score != 1 || rows[0].Tick != 5 {
		t.Fatalf("rows = %+v, want score 1 at tick 5", rows)
	}
}
