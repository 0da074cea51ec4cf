package protocol

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	MsgHello   = "hello"
	MsgInput   = "input"
	MsgWelcome = "welcome"
	MsgState   = "state"
	MsgScores  = "scores"
	MsgError   = "error"
)

const Version = 1

const (
	SimTickHz          = 64
	ClientInputHz      = SimTickHz
	ServerSendInterval = 40 * time.Millisecond
)

// TickDuration is one fixed simulation step.
const TickDuration = time.Second / SimTickHz

// BroadcastEvery is the number of ticks between state snapshots, rounded up so
// snapshots are never sent faster than ServerSendInterval.
func BroadcastEvery(interval time.Duration) int {
	if interval <= TickDuration {
		return 1
	}
	n := int(interval / TickDuration)
	if interval%TickDuration != 0 {
		n++
	}
	return n
}

type Envelope struct {
	T string             `msgpack:"t"`
	P msgpack.RawMessage `msgpack:"p"` // raw payload bytes
}
