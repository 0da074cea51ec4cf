package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// Internal truth authoritative game state

var ErrDuplicateClient = errors.New("client already connected")

// World owns the ECS world, the score table and the client to entity map.
// It is not safe for concurrent use; the room goroutine is its only caller.
type World struct {
	Tick   int
	Logger *log.Logger

	ecs    donburi.World
	tuning Tuning
	rng    *rand.Rand

	scores    ScoreTable
	connected map[ClientID]Color
	players   map[ClientID]donburi.Entity

	playerQuery *donburi.Query
	coinQuery   *donburi.Query
}

// NewWorld builds a world and spawns the initial coins. A nil rng falls back to a
// time seeded source.
func NewWorld(t Tuning, rng *rand.Rand) *World {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	w := &World{
		Logger:      log.Default(),
		ecs:         donburi.NewWorld(),
		tuning:      t,
		rng:         rng,
		scores:      make(ScoreTable),
		connected:   make(map[ClientID]Color),
		players:     make(map[ClientID]donburi.Entity),
		playerQuery: donburi.NewQuery(filter.Contains(PlayerID, PlayerPosition)),
		coinQuery:   donburi.NewQuery(filter.Contains(CoinPosition)),
	}
	for i := 0; i < t.InitialCoins; i++ {
		w.SpawnRandomCoin()
	}
	return w
}

// Connect registers id with a zero score and spawns its player at the origin.
// A retained score from an earlier session is kept.
func (w *World) Connect(id ClientID) error {
	if _, ok := w.connected[id]; ok {
		return fmt.Errorf("connect %d: %w", id, ErrDuplicateClient)
	}
	w.connected[id] = Color{
		R: uint8(w.rng.Intn(256)),
		G: uint8(w.rng.Intn(256)),
		B: uint8(w.rng.Intn(256)),
	}
	w.scores.Register(id)
	w.SpawnPlayer(id)
	return nil
}

// Disconnect removes the player entity. purge also drops the score entry.
func (w *World) Disconnect(id ClientID, purge bool) {
	w.DespawnPlayer(id)
	delete(w.connected, id)
	if purge {
		w.scores.Remove(id)
	}
}

func (w *World) IsConnected(id ClientID) bool {
	_, ok := w.connected[id]
	return ok
}

// SpawnPlayer creates the entity for a connected client that has none.
func (w *World) SpawnPlayer(id ClientID) bool {
	color, ok := w.connected[id]
	if !ok {
		return false
	}
	if _, ok := w.players[id]; ok {
		return false
	}
	e := w.ecs.Create(PlayerID, PlayerPosition, PlayerColor)
	entry := w.ecs.Entry(e)
	PlayerID.SetValue(entry, id)
	PlayerPosition.SetValue(entry, mgl32.Vec3{})
	PlayerColor.SetValue(entry, color)
	w.players[id] = e
	return true
}

func (w *World) DespawnPlayer(id ClientID) bool {
	e, ok := w.players[id]
	if !ok {
		return false
	}
	if w.ecs.Valid(e) {
		w.ecs.Remove(e)
	}
	delete(w.players, id)
	return true
}

func (w *World) SpawnCoin(pos mgl32.Vec2) donburi.Entity {
	e := w.ecs.Create(CoinPosition, CoinColor)
	entry := w.ecs.Entry(e)
	CoinPosition.SetValue(entry, pos)
	CoinColor.SetValue(entry, Gold)
	return e
}

// SpawnRandomCoin places a coin on the integer grid of the spawn rectangle.
func (w *World) SpawnRandomCoin() donburi.Entity {
	return w.SpawnCoin(w.randomCoinPosition())
}

func (w *World) randomCoinPosition() mgl32.Vec2 {
	width, height := w.tuning.SpawnWidth, w.tuning.SpawnHeight
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return mgl32.Vec2{float32(w.rng.Intn(width)), float32(w.rng.Intn(height))}
}

// RemoveCoin reports false if the coin was already gone.
func (w *World) RemoveCoin(e donburi.Entity) bool {
	if !w.ecs.Valid(e) {
		return false
	}
	w.ecs.Remove(e)
	return true
}

func (w *World) PlayerPosition(id ClientID) (mgl32.Vec3, bool) {
	e, ok := w.players[id]
	if !ok || !w.ecs.Valid(e) {
		return mgl32.Vec3{}, false
	}
	return *PlayerPosition.Get(w.ecs.Entry(e)), true
}

func (w *World) SetPlayerPosition(id ClientID, pos mgl32.Vec3) bool {
	e, ok := w.players[id]
	if !ok || !w.ecs.Valid(e) {
		return false
	}
	PlayerPosition.SetValue(w.ecs.Entry(e), pos)
	return true
}

// Players returns every spawned player ordered by id.
func (w *World) Players() []PlayerView {
	out := make([]PlayerView, 0, len(w.players))
	w.playerQuery.Each(w.ecs, func(entry *donburi.Entry) {
		out = append(out, PlayerView{
			ID:       PlayerID.GetValue(entry),
			Position: PlayerPosition.GetValue(entry),
			Color:    PlayerColor.GetValue(entry),
		})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Coins returns every live coin ordered by entity.
func (w *World) Coins() []CoinView {
	var out []CoinView
	w.coinQuery.Each(w.ecs, func(entry *donburi.Entry) {
		c := CoinView{Entity: entry.Entity(), Position: CoinPosition.GetValue(entry), Color: Gold}
		if entry.HasComponent(CoinColor) {
			c.Color = CoinColor.GetValue(entry)
		}
		out = append(out, c)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Entity < out[j].Entity })
	return out
}

// Scores returns a copy of the score table.
func (w *World) Scores() ScoreTable {
	return w.scores.Clone()
}

func (w *World) Score(id ClientID) (uint32, bool) {
	v, ok := w.scores[id]
	return v, ok
}
