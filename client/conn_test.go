package client

import (
	"context"
	"errors"
	"io"
	"log"
	"math/rand"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"coinrush/auth"
	"coinrush/game"
	"coinrush/network"
	"coinrush/protocol"
	"coinrush/room"
)

var testKey = auth.Key{1, 2, 3}

func startServer(t *testing.T) string {
	t.Helper()
	opts := room.DefaultOptions()
	opts.Rand = rand.New(rand.NewSource(1))
	opts.Logger = log.New(io.Discard, "", 0)
	// keep the coin out of reach so scores stay at zero
	opts.Tuning = game.Tuning{PlayerRadius: 1, CoinRadius: 1, SpawnWidth: 1, SpawnHeight: 1, InitialCoins: 0}
	r := room.New(opts)
	go r.Run()
	t.Cleanup(r.Stop)

	srv := network.NewServer(network.Options{
		Room:   r,
		Key:    testKey,
		Logger: log.New(io.Discard, "", 0),
	})
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		ts.Close()
	})
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func testOptions(url string, id uint64) Options {
	return Options{
		ServerURL: url,
		Key:       testKey,
		ClientID:  id,
		TokenTTL:  time.Minute,
	}
}

func TestConnectReceivesWelcome(t *testing.T) {
	url := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Connect(ctx, testOptions(url, 11))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close()
	if conn.Welcome.ClientID != 11 || conn.Welcome.TickHz != protocol.SimTickHz {
		t.Fatalf("unexpected welcome %+v", conn.Welcome)
	}
}

func TestConnectWrongKeyIsRejected(t *testing.T) {
	url := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := testOptions(url, 12)
	opts.Key = auth.Key{9}
	_, err := Connect(ctx, opts)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
	if !strings.Contains(err.Error(), protocol.ErrCodeAuth) {
		t.Fatalf("err = %v, want %s code", err, protocol.ErrCodeAuth)
	}
}

func TestConnectUnreachableServerFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := Connect(ctx, testOptions("ws://127.0.0.1:1/ws", 1)); err == nil {
		t.Fatalf("connect to a closed port succeeded")
	}
}

func TestConnectDuplicateClientIsRejected(t *testing.T) {
	url := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first, err := Connect(ctx, testOptions(url, 5))
	if err != nil {
		t.Fatalf("first connect: %v", err)
	}
	defer first.Close()

	_, err = Connect(ctx, testOptions(url, 5))
	if !errors.Is(err, ErrRejected) || !strings.Contains(err.Error(), protocol.ErrCodeDuplicate) {
		t.Fatalf("err = %v, want duplicate rejection", err)
	}
}

func TestSessionFollowsServerThroughInputs(t *testing.T) {
	url := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Connect(ctx, testOptions(url, 21))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close()

	s := NewSession(game.ClientID(conn.Welcome.ClientID))
	up := game.DirectionInput(game.Direction{Up: true})

	// wait for the first snapshot so prediction starts from the server position
	for {
		select {
		case env, ok := <-conn.Messages():
			if !ok {
				t.Fatalf("connection closed: %v", conn.Err())
			}
			if env.T == protocol.MsgState {
				st, err := protocol.DecodePayload[protocol.State](env)
				if err != nil {
					t.Fatalf("decode state: %v", err)
				}
				s.ApplyState(st)
			}
		case <-ctx.Done():
			t.Fatalf("no snapshot before deadline")
		}
		if _, ok := s.Predicted(); ok {
			break
		}
	}

	for i := 0; i < 3; i++ {
		if err := conn.Send(s.NextInput(up)); err != nil {
			t.Fatalf("send input: %v", err)
		}
	}

	for s.Pending() > 0 {
		select {
		case env, ok := <-conn.Messages():
			if !ok {
				t.Fatalf("connection closed: %v", conn.Err())
			}
			if env.T != protocol.MsgState {
				continue
			}
			st, err := protocol.DecodePayload[protocol.State](env)
			if err != nil {
				t.Fatalf("decode state: %v", err)
			}
			s.ApplyState(st)
		case <-ctx.Done():
			t.Fatalf("inputs never acknowledged, %d pending", s.Pending())
		}
	}
	if pos, _ := s.Predicted(); pos != (mgl32.Vec3{0, 3, 0}) {
		t.Fatalf("position after 3 up inputs = %v, want (0,3,0)", pos)
	}
}
