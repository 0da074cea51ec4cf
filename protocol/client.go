package protocol

import "coinrush/game"

// messages coming in from the client.

type Hello struct {
	V          int    `msgpack:"v"`
	ProtocolID uint64 `msgpack:"pid"`
	Token      string `msgpack:"token"`
}

// Input carries the input sampled on client tick Tick.
type Input struct {
	Tick  uint32     `msgpack:"tick"`
	Input game.Input `msgpack:"in"`
}
