package room

import (
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	"coinrush/game"
	"coinrush/protocol"
)

// MaxQueuedInputs bounds how far a client may run ahead of the server.
const MaxQueuedInputs = 8

type Options struct {
	Tuning       game.Tuning
	SendInterval time.Duration
	PurgeScores  bool
	Rand         *rand.Rand
	Recorder     ScoreRecorder
	Logger       *log.Logger
}

func DefaultOptions() Options {
	return Options{
		Tuning:       game.DefaultTuning(),
		SendInterval: protocol.ServerSendInterval,
		PurgeScores:  true,
	}
}

type Room struct {
	Inbox          chan any
	tickHz         int
	broadcastEvery int
	world          *game.World
	clients        map[game.ClientID]Conn
	pending        map[game.ClientID][]protocol.Input
	acks           map[game.ClientID]uint32
	purgeScores    bool
	recorder       ScoreRecorder
	logger         *log.Logger
	quit           chan struct{}
	stopOnce       sync.Once
}

func New(opts Options) *Room {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[room] ", log.LstdFlags)
	}
	world := game.NewWorld(opts.Tuning, opts.Rand)
	world.Logger = logger
	return &Room{
		Inbox:          make(chan any, 256),
		tickHz:         protocol.SimTickHz,
		broadcastEvery: protocol.BroadcastEvery(opts.SendInterval),
		world:          world,
		clients:        make(map[game.ClientID]Conn),
		pending:        make(map[game.ClientID][]protocol.Input),
		acks:           make(map[game.ClientID]uint32),
		purgeScores:    opts.PurgeScores,
		recorder:       opts.Recorder,
		logger:         logger,
		quit:           make(chan struct{}),
	}
}

func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

// NumPlayers returns the current number of connected clients.
// Only safe from the room goroutine or after Run has returned.
func (r *Room) NumPlayers() int {
	return len(r.clients)
}

func (r *Room) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(r.tickHz))
	defer ticker.Stop()
	defer r.closeAll()

	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Room) tick() {
	inputs := make(map[game.ClientID]game.Input, len(r.pending))
	for id, q := range r.pending {
		if len(q) == 0 {
			continue
		}
		inputs[id] = q[0].Input
		r.acks[id] = q[0].Tick
		r.pending[id] = append(q[:0], q[1:]...)
	}

	for _, ev := range r.world.Step(inputs) {
		r.logger.Printf("player %d collected coin at %v, respawned at %v, player scores: %v",
			ev.Player, ev.Coin, ev.Spawned, ev.Scores)
		r.broadcast(protocol.MsgScores, protocol.ScoresFrom(ev.Tick, ev.Scores))
		if r.recorder != nil {
			r.recorder.Record(ev.Tick, ev.Scores)
		}
	}

	if r.world.Tick%r.broadcastEvery == 0 {
		r.broadcastState()
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		if err := r.world.Connect(c.ClientID); err != nil {
			c.Reply <- JoinResult{ClientID: c.ClientID, Err: err}
			return
		}
		r.send(c.ClientID, c.Conn, protocol.MsgWelcome, protocol.Welcome{
			ClientID: uint64(c.ClientID),
			TickHz:   r.tickHz,
			Tick:     r.world.Tick,
		})
		r.clients[c.ClientID] = c.Conn
		r.pending[c.ClientID] = make([]protocol.Input, 0, MaxQueuedInputs)
		r.logger.Printf("client %d connected", c.ClientID)
		c.Reply <- JoinResult{ClientID: c.ClientID, Tick: r.world.Tick}
		r.broadcast(protocol.MsgScores, protocol.ScoresFrom(r.world.Tick, r.world.Scores()))
	case Input:
		q, ok := r.pending[c.ClientID]
		if !ok {
			return
		}
		if len(q) >= MaxQueuedInputs {
			q = append(q[:0], q[1:]...)
		}
		r.pending[c.ClientID] = append(q, c.Input)
	case Leave:
		if c.Conn != nil && r.clients[c.ClientID] != c.Conn {
			return
		}
		r.handleLeave(c.ClientID)
	case ScoresRequest:
		c.Reply <- r.world.Scores()
	default:
		r.logger.Printf("unknown room command %T", cmd)
	}
}

func (r *Room) handleLeave(id game.ClientID) {
	c, ok := r.clients[id]
	if !ok {
		return
	}
	r.world.Disconnect(id, r.purgeScores)
	delete(r.clients, id)
	delete(r.pending, id)
	delete(r.acks, id)
	_ = c.Close()
	r.logger.Printf("client %d disconnected", id)
	r.broadcast(protocol.MsgScores, protocol.ScoresFrom(r.world.Tick, r.world.Scores()))
}

func (r *Room) closeAll() {
	for id, c := range r.clients {
		r.send(id, c, protocol.MsgError, protocol.Error{Code: protocol.ErrCodeShutdown, Msg: "server shutting down"})
		_ = c.Close()
	}
}

// broadcast encodes once and sends to every client. Send failures are logged
// and the tick carries on.
func (r *Room) broadcast(t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.logger.Printf("failed to encode %s: %v", t, err)
		return
	}
	for id, c := range r.clients {
		if err := c.Send(b); err != nil {
			r.logger.Printf("failed to send %s to client %d: %v", t, id, err)
		}
	}
}

func (r *Room) send(id game.ClientID, c Conn, t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.logger.Printf("failed to encode %s: %v", t, err)
		return
	}
	if err := c.Send(b); err != nil {
		r.logger.Printf("failed to send %s to client %d: %v", t, id, err)
	}
}

func (r *Room) broadcastState() {
	r.broadcast(protocol.MsgState, r.buildSnapshot())
}

func (r *Room) buildSnapshot() protocol.State {
	players := r.world.Players()
	coins := r.world.Coins()
	snapshot := protocol.State{
		Tick:    r.world.Tick,
		Players: make([]protocol.PlayerSnapshot, 0, len(players)),
		Coins:   make([]protocol.CoinSnapshot, 0, len(coins)),
	}
	for _, p := range players {
		snapshot.Players = append(snapshot.Players, protocol.PlayerSnapshot{
			ID:    uint64(p.ID),
			X:     p.Position.X(),
			Y:     p.Position.Y(),
			Z:     p.Position.Z(),
			Color: p.Color,
			Ack:   r.acks[p.ID],
		})
	}
	for _, c := range coins {
		snapshot.Coins = append(snapshot.Coins, protocol.CoinSnapshot{
			ID:    uint64(c.Entity),
			X:     c.Position.X(),
			Y:     c.Position.Y(),
			Color: c.Color,
		})
	}
	return snapshot
}
