package room

import (
	"coinrush/game"
	"coinrush/protocol"
)

type Conn interface {
	Send([]byte) error
	Close() error
}

// ScoreRecorder receives a copy of the score table after every pickup.
type ScoreRecorder interface {
	Record(tick int, scores game.ScoreTable) bool
}

// Join: issued once after the hello token is verified
type Join struct {
	ClientID game.ClientID
	Conn     Conn
	Reply    chan<- JoinResult
}

type JoinResult struct {
	ClientID game.ClientID
	Tick     int
	Err      error
}

// Input: one sampled input for a client, queued until a tick consumes it
type Input struct {
	ClientID game.ClientID
	Input    protocol.Input
}

// Leave: issued on disconnect. When Conn is set the leave only applies if it
// is still the client's current connection.
type Leave struct {
	ClientID game.ClientID
	Conn     Conn
}

// ScoresRequest asks for a copy of the live score table.
type ScoresRequest struct {
	Reply chan<- game.ScoreTable
}
