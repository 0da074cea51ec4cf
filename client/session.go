package client

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"coinrush/game"
	"coinrush/protocol"
)

const maxPending = 256

// Session is the client's view of the world: the last replicated snapshot,
// the predicted position of its own player and the scoreboard.
// It is owned by the UI loop and not safe for concurrent use.
type Session struct {
	ID game.ClientID

	tick      uint32
	predicted mgl32.Vec3
	spawned   bool
	pending   []protocol.Input

	serverTick int
	players    []protocol.PlayerSnapshot
	coins      []protocol.CoinSnapshot
	scores     map[uint64]uint32
}

func NewSession(id game.ClientID) *Session {
	return &Session{ID: id, scores: make(map[uint64]uint32)}
}

// NextInput stamps in with the next client tick, applies it to the predicted
// position and keeps it until the server acknowledges it.
func (s *Session) NextInput(in game.Input) protocol.Input {
	s.tick++
	msg := protocol.Input{Tick: s.tick, Input: in}
	if s.spawned {
		game.ApplyMovement(&s.predicted, in)
	}
	if len(s.pending) >= maxPending {
		s.pending = s.pending[1:]
	}
	s.pending = append(s.pending, msg)
	return msg
}

// ApplyState adopts an authoritative snapshot and replays unacknowledged
// inputs on top of the server position.
func (s *Session) ApplyState(st protocol.State) {
	s.serverTick = st.Tick
	s.players = st.Players
	s.coins = st.Coins

	var own *protocol.PlayerSnapshot
	for i := range st.Players {
		if st.Players[i].ID == uint64(s.ID) {
			own = &st.Players[i]
			break
		}
	}
	if own == nil {
		s.spawned = false
		return
	}
	s.spawned = true

	i := 0
	for i < len(s.pending) && s.pending[i].Tick <= own.Ack {
		i++
	}
	s.pending = s.pending[i:]

	pos := mgl32.Vec3{own.X, own.Y, own.Z}
	for _, in := range s.pending {
		game.ApplyMovement(&pos, in.Input)
	}
	s.predicted = pos
}

// ApplyScores replaces the scoreboard and reports whether our score went up.
func (s *Session) ApplyScores(sc protocol.Scores) bool {
	before := s.scores[uint64(s.ID)]
	s.scores = sc.Scores
	if s.scores == nil {
		s.scores = make(map[uint64]uint32)
	}
	return s.scores[uint64(s.ID)] > before
}

func (s *Session) Predicted() (mgl32.Vec3, bool) {
	return s.predicted, s.spawned
}

func (s *Session) Players() []protocol.PlayerSnapshot { return s.players }
func (s *Session) Coins() []protocol.CoinSnapshot     { return s.coins }
func (s *Session) Pending() int                       { return len(s.pending) }

func (s *Session) Score() uint32 { return s.scores[uint64(s.ID)] }

// ScoreLines renders the scoreboard, highest score first.
func (s *Session) ScoreLines() []string {
	ids := make([]uint64, 0, len(s.scores))
	for id := range s.scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.scores[ids[i]], s.scores[ids[j]]
		if a != b {
			return a > b
		}
		return ids[i] < ids[j]
	})
	lines := make([]string, 0, len(ids)+1)
	lines = append(lines, "Scoreboard:")
	for _, id := range ids {
		marker := " "
		if id == uint64(s.ID) {
			marker = "*"
		}
		lines = append(lines, fmt.Sprintf("%s %d: %d", marker, id, s.scores[id]))
	}
	return lines
}
