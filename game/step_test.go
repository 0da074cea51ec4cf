package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestStepMovesPlayerAndAdvancesTick(t *testing.T) {
	w := newTestWorld(t)
	if err := w.Connect(1); err != nil {
		t.Fatalf("connect: %v", err)
	}
	inputs := map[ClientID]Input{
		1: DirectionInput(Direction{Right: true}),
	}

	w.Step(inputs)
	if w.Tick != 1 {
		t.Fatalf("tick after 1 step = %d, want 1", w.Tick)
	}
	pos, _ := w.PlayerPosition(1)
	if pos != (mgl32.Vec3{1, 0, 0}) {
		t.Fatalf("position after 1 step = %v, want (1,0,0)", pos)
	}

	for i := 0; i < 4; i++ {
		w.Step(inputs)
	}
	if w.Tick != 5 {
		t.Fatalf("tick after 5 steps = %d, want 5", w.Tick)
	}
	pos, _ = w.PlayerPosition(1)
	if pos.X() != 5 {
		t.Fatalf("x after 5 steps = %f, want 5", pos.X())
	}
}

func TestStepWithoutInputLeavesPlayerInPlace(t *testing.T) {
	w := newTestWorld(t)
	if err := w.Connect(1); err != nil {
		t.Fatalf("connect: %v", err)
	}
	w.SetPlayerPosition(1, mgl32.Vec3{40, 40, 0})
	w.Step(nil)
	w.Step(map[ClientID]Input{1: NoInput()})
	if pos, _ := w.PlayerPosition(1); pos != (mgl32.Vec3{40, 40, 0}) {
		t.Fatalf("idle player moved to %v", pos)
	}
}

func TestStepScoresAfterMovement(t *testing.T) {
	w := newTestWorld(t)
	if err := w.Connect(1); err != nil {
		t.Fatalf("connect: %v", err)
	}
	w.SpawnCoin(mgl32.Vec2{7, 0})

	if ev := w.Step(nil); len(ev) != 0 {
		t.Fatalf("coin at 7 collected before moving")
	}
	right := map[ClientID]Input{1: DirectionInput(Direction{Right: true})}

	// at (1,0) the distance equals the radius sum, which is not a pickup
	if ev := w.Step(right); len(ev) != 0 {
		t.Fatalf("pickup at exactly the radius sum: %+v", ev)
	}
	ev := w.Step(right)
	if len(ev) != 1 || ev[0].Tick != 3 {
		t.Fatalf("expected one pickup on tick 3, got %+v", ev)
	}
}

func TestDeleteAndSpawnInputs(t *testing.T) {
	w := newTestWorld(t)
	if err := w.Connect(1); err != nil {
		t.Fatalf("connect: %v", err)
	}
	w.SetPlayerPosition(1, mgl32.Vec3{9, 9, 0})

	w.Step(map[ClientID]Input{1: {Kind: InputDelete}})
	if _, ok := w.PlayerPosition(1); ok {
		t.Fatalf("player still spawned after delete input")
	}
	if _, ok := w.Score(1); !ok {
		t.Fatalf("delete input dropped the score entry")
	}

	w.Step(map[ClientID]Input{1: {Kind: InputSpawn}})
	pos, ok := w.PlayerPosition(1)
	if !ok || pos != (mgl32.Vec3{}) {
		t.Fatalf("respawned player = %v (ok=%v), want origin", pos, ok)
	}
	if n := len(w.Players()); n != 1 {
		t.Fatalf("players = %d, want 1", n)
	}
}
