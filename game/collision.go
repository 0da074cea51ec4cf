package game

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ScoreEvent records one coin pickup and the score table right after it.
type ScoreEvent struct {
	Tick    int
	Player  ClientID
	Score   uint32
	Coin    mgl32.Vec2
	Spawned mgl32.Vec2
	Scores  ScoreTable
}

// EvaluateCollisions tests every (player, coin) pair once. A colliding coin is
// removed, its player credited and a replacement spawned. Coins removed earlier
// in the pass are skipped, so one coin is never credited twice.
func (w *World) EvaluateCollisions() []ScoreEvent {
	players := w.Players()
	coins := w.Coins()
	reach := w.tuning.PickupDistance()

	var events []ScoreEvent
	for _, p := range players {
		for _, c := range coins {
			if !w.ecs.Valid(c.Entity) {
				continue
			}
			if p.Position.Vec2().Sub(c.Position).Len() >= reach {
				continue
			}
			score, err := w.scores.Increment(p.ID)
			if err != nil {
				if errors.Is(err, ErrUnknownPlayer) {
					w.Logger.Printf("collision skipped: %v", err)
				}
				continue
			}
			w.RemoveCoin(c.Entity)
			spawned := w.randomCoinPosition()
			w.SpawnCoin(spawned)
			events = append(events, ScoreEvent{
				Tick:    w.Tick,
				Player:  p.ID,
				Score:   score,
				Coin:    c.Position,
				Spawned: spawned,
				Scores:  w.scores.Clone(),
			})
		}
	}
	return events
}
