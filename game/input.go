package game

// InputKind tags what a client asked for on a given tick.
type InputKind uint8

const (
	// InputNone is sent explicitly so the server can tell an idle client from a lost packet.
	InputNone InputKind = iota
	InputDirection
	InputDelete
	InputSpawn
)

func (k InputKind) String() string {
	switch k {
	case InputNone:
		return "none"
	case InputDirection:
		return "direction"
	case InputDelete:
		return "delete"
	case InputSpawn:
		return "spawn"
	}
	return "unknown"
}

type Direction struct {
	Up    bool `msgpack:"u,omitempty"`
	Down  bool `msgpack:"d,omitempty"`
	Left  bool `msgpack:"l,omitempty"`
	Right bool `msgpack:"r,omitempty"`
}

func (d Direction) IsNone() bool {
	return !d.Up && !d.Down && !d.Left && !d.Right
}

type Input struct {
	Kind      InputKind `msgpack:"k"`
	Direction Direction `msgpack:"dir,omitempty"`
}

func NoInput() Input { return Input{Kind: InputNone} }

// DirectionInput wraps d, collapsing an empty direction to the none sentinel.
func DirectionInput(d Direction) Input {
	if d.IsNone() {
		return NoInput()
	}
	return Input{Kind: InputDirection, Direction: d}
}
