package store

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"coinrush/game"
)

type snapshot struct {
	tick   int
	scores game.ScoreTable
}

// Recorder writes score tables to a Store off the caller's goroutine.
// Record never blocks; when the queue is full the snapshot is dropped.
type Recorder struct {
	store   Store
	session uuid.UUID
	logger  *log.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan snapshot
	done   chan struct{}
}

func NewRecorder(s Store, session uuid.UUID, size int, logger *log.Logger) *Recorder {
	if size <= 0 {
		size = 64
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Recorder{
		store:   s,
		session: session,
		logger:  logger,
		timeout: 5 * time.Second,
		queue:   make(chan snapshot, size),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Record queues a copy of scores. It reports false if the snapshot was dropped.
func (r *Recorder) Record(tick int, scores game.ScoreTable) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}
	select {
	case r.queue <- snapshot{tick: tick, scores: scores.Clone()}:
		return true
	default:
		r.logger.Printf("score recorder queue full, dropping tick %d", tick)
		return false
	}
}

// Close flushes queued snapshots and stops the writer.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)
	for snap := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := r.store.SaveScores(ctx, r.session, snap.tick, snap.scores); err != nil {
			r.logger.Printf("failed to save scores for tick %d: %v", snap.tick, err)
		}
		cancel()
	}
}
