package game

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownPlayer = errors.New("player has no score entry")

// ScoreTable maps every connected player to its coin count.
type ScoreTable map[ClientID]uint32

// Register adds a zero entry for id. It reports false if id was already present.
func (s ScoreTable) Register(id ClientID) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = 0
	return true
}

func (s ScoreTable) Increment(id ClientID) (uint32, error) {
	v, ok := s[id]
	if !ok {
		return 0, fmt.Errorf("increment %d: %w", id, ErrUnknownPlayer)
	}
	v++
	s[id] = v
	return v, nil
}

func (s ScoreTable) Remove(id ClientID) {
	delete(s, id)
}

func (s ScoreTable) Clone() ScoreTable {
	out := make(ScoreTable, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// IDs returns the table keys in ascending order.
func (s ScoreTable) IDs() []ClientID {
	ids := make([]ClientID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
