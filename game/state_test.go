package game

import (
	"errors"
	"math/rand"
	"testing"
)

func TestConnectRegistersZeroScore(t *testing.T) {
	w := newTestWorld(t)
	for _, id := range []ClientID{5, 2, 9} {
		if err := w.Connect(id); err != nil {
			t.Fatalf("connect %d: %v", id, err)
		}
		if s, ok := w.Score(id); !ok || s != 0 {
			t.Fatalf("score for %d = %d (ok=%v), want 0", id, s, ok)
		}
	}
	scores := w.Scores()
	if len(scores) != 3 {
		t.Fatalf("score entries = %d, want 3", len(scores))
	}
	players := w.Players()
	if len(players) != 3 || players[0].ID != 2 || players[2].ID != 9 {
		t.Fatalf("players not ordered by id: %+v", players)
	}
}

func TestConnectRejectsDuplicate(t *testing.T) {
	w := newTestWorld(t)
	if err := w.Connect(1); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := w.Connect(1); !errors.Is(err, ErrDuplicateClient) {
		t.Fatalf("second connect err = %v, want ErrDuplicateClient", err)
	}
	if n := len(w.Players()); n != 1 {
		t.Fatalf("players = %d, want 1", n)
	}
}

func TestDisconnectPurgeAndRetain(t *testing.T) {
	w := newTestWorld(t)
	_ = w.Connect(1)
	_ = w.Connect(2)
	w.scores[2] = 4

	w.Disconnect(1, true)
	if _, ok := w.Score(1); ok {
		t.Fatalf("purged score still present")
	}
	w.Disconnect(2, false)
	if s, ok := w.Score(2); !ok || s != 4 {
		t.Fatalf("retained score = %d (ok=%v), want 4", s, ok)
	}
	if n := len(w.Players()); n != 0 {
		t.Fatalf("players after disconnect = %d, want 0", n)
	}

	if err := w.Connect(2); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if s, _ := w.Score(2); s != 4 {
		t.Fatalf("reconnect score = %d, want retained 4", s)
	}
}

func TestNewWorldSpawnsInitialCoins(t *testing.T) {
	tun := testTuning()
	tun.InitialCoins = 3
	w := NewWorld(tun, rand.New(rand.NewSource(2)))
	if n := len(w.Coins()); n != 3 {
		t.Fatalf("coins = %d, want 3", n)
	}
}

func TestPlayerColorSurvivesRespawn(t *testing.T) {
	w := newTestWorld(t)
	_ = w.Connect(1)
	before := w.Players()[0].Color
	w.DespawnPlayer(1)
	w.SpawnPlayer(1)
	if after := w.Players()[0].Color; after != before {
		t.Fatalf("color changed across respawn: %v -> %v", before, after)
	}
}

func TestScoreTableIncrementUnknown(t *testing.T) {
	s := make(ScoreTable)
	if _, err := s.Increment(1); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("err = %v, want ErrUnknownPlayer", err)
	}
	s.Register(1)
	if v, err := s.Increment(1); err != nil || v != 1 {
		t.Fatalf("increment = %d, %v", v, err)
	}
	if s.Register(1) {
		t.Fatalf("register of existing id reported new")
	}
}
