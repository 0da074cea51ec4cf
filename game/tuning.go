package game

const (
	MoveSpeed    float32 = 1.0  // per active direction per tick
	PlayerRadius float32 = 25.0 // half of the 50 unit player box
	CoinRadius   float32 = 10.0
	SpawnWidth           = 400
	SpawnHeight          = 400
	InitialCoins         = 1
)

// Tuning holds the knobs the server config may override.
type Tuning struct {
	PlayerRadius float32
	CoinRadius   float32
	SpawnWidth   int
	SpawnHeight  int
	InitialCoins int
}

func DefaultTuning() Tuning {
	return Tuning{
		PlayerRadius: PlayerRadius,
		CoinRadius:   CoinRadius,
		SpawnWidth:   SpawnWidth,
		SpawnHeight:  SpawnHeight,
		InitialCoins: InitialCoins,
	}
}

// PickupDistance is the exclusive upper bound on player/coin distance for a pickup.
func (t Tuning) PickupDistance() float32 {
	return t.PlayerRadius + t.CoinRadius
}
