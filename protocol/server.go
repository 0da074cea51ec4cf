package protocol

import "coinrush/game"

type Welcome struct {
	ClientID uint64 `msgpack:"cid"`
	TickHz   int    `msgpack:"tickHz"`
	Tick     int    `msgpack:"tick"`
}

type State struct {
	Tick    int              `msgpack:"tick"`
	Players []PlayerSnapshot `msgpack:"players"`
	Coins   []CoinSnapshot   `msgpack:"coins"`
}

type PlayerSnapshot struct {
	ID    uint64     `msgpack:"id"`
	X     float32    `msgpack:"x"`
	Y     float32    `msgpack:"y"`
	Z     float32    `msgpack:"z,omitempty"`
	Color game.Color `msgpack:"c"`
	Ack   uint32     `msgpack:"ack"` // last applied input tick
}

type CoinSnapshot struct {
	ID    uint64     `msgpack:"id"`
	X     float32    `msgpack:"x"`
	Y     float32    `msgpack:"y"`
	Color game.Color `msgpack:"c"`
}

// Scores is the full score table, sent after every pickup.
type Scores struct {
	Tick   int               `msgpack:"tick"`
	Scores map[uint64]uint32 `msgpack:"scores"`
}

type Error struct {
	Code string `msgpack:"code"`
	Msg  string `msgpack:"msg"`
}

const (
	ErrCodeBadHello  = "bad_hello"
	ErrCodeAuth      = "unauthorized"
	ErrCodeDuplicate = "duplicate_client"
	ErrCodeShutdown  = "shutdown"
)

func ScoresFrom(tick int, t game.ScoreTable) Scores {
	out := Scores{Tick: tick, Scores: make(map[uint64]uint32, len(t))}
	for id, v := range t {
		out.Scores[uint64(id)] = v
	}
	return out
}
