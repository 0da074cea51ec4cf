package game

import "sort"

// Step advances the world by one tick: every queued input is integrated, then
// collisions are scored. inputs holds at most one input per client.
func (w *World) Step(inputs map[ClientID]Input) []ScoreEvent {
	w.Tick++
	for _, id := range sortedClients(inputs) {
		w.ApplyInput(id, inputs[id])
	}
	return w.EvaluateCollisions()
}

// ApplyInput consumes a single input for id.
func (w *World) ApplyInput(id ClientID, in Input) {
	switch in.Kind {
	case InputDirection:
		e, ok := w.players[id]
		if !ok || !w.ecs.Valid(e) {
			return
		}
		ApplyMovement(PlayerPosition.Get(w.ecs.Entry(e)), in)
	case InputDelete:
		w.DespawnPlayer(id)
	case InputSpawn:
		w.SpawnPlayer(id)
	}
}

func sortedClients(inputs map[ClientID]Input) []ClientID {
	ids := make([]ClientID, 0, len(inputs))
	for id := range inputs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
