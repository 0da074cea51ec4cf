package game

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"
)

// ClientID identifies a connected client. It comes from the connect token.
type ClientID uint64

type Color struct {
	R uint8 `msgpack:"r"`
	G uint8 `msgpack:"g"`
	B uint8 `msgpack:"b"`
}

var Gold = Color{R: 255, G: 215, B: 0}

var (
	PlayerID       = donburi.NewComponentType[ClientID]()
	PlayerPosition = donburi.NewComponentType[mgl32.Vec3]()
	PlayerColor    = donburi.NewComponentType[Color]()

	CoinPosition = donburi.NewComponentType[mgl32.Vec2]()
	CoinColor    = donburi.NewComponentType[Color]()
)

// PlayerView is a read-only copy of a player entity.
type PlayerView struct {
	ID       ClientID
	Position mgl32.Vec3
	Color    Color
}

// CoinView is a read-only copy of a coin entity.
type CoinView struct {
	Entity   donburi.Entity
	Position mgl32.Vec2
	Color    Color
}
