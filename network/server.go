package network

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"coinrush/auth"
	"coinrush/room"
	"coinrush/store"
)

var ErrServerClosed = errors.New("server closed")

type Options struct {
	Room       *room.Room
	Key        auth.Key
	ProtocolID uint64
	SendQueue  int

	// Store and Session back the session history endpoint; both optional.
	Store   store.Store
	Session uuid.UUID

	Logger *log.Logger
}

// Server exposes the room over websocket plus a small JSON API.
type Server struct {
	room       *room.Room
	key        auth.Key
	protocolID uint64
	sendQueue  int
	store      store.Store
	session    uuid.UUID
	logger     *log.Logger

	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	servers []*http.Server
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[net] ", log.LstdFlags)
	}
	queue := opts.SendQueue
	if queue <= 0 {
		queue = 256
	}
	return &Server{
		room:       opts.Room,
		key:        opts.Key,
		protocolID: opts.ProtocolID,
		sendQueue:  queue,
		store:      opts.Store,
		session:    opts.Session,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Routes serves the game endpoint and the API.
func (s *Server) Routes() http.Handler {
	r := s.baseRouter()
	r.Get("/ws", s.handleWS)
	s.mountAPI(r)
	return r
}

// APIRoutes serves the API alone, for a separate listener.
func (s *Server) APIRoutes() http.Handler {
	r := s.baseRouter()
	s.mountAPI(r)
	return r
}

func (s *Server) baseRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	return r
}

func (s *Server) mountAPI(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/scores", s.handleScores)
		r.Get("/sessions/{id}/scores", s.handleSessionScores)
	})
}

// Listen binds addr and serves h in the background. A bind failure is logged
// and reported as false; the caller keeps running without this listener.
func (s *Server) Listen(name, addr string, h http.Handler) bool {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.logger.Printf("failed to start %s listener on %s: %v", name, addr, err)
		return false
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	s.mu.Lock()
	s.servers = append(s.servers, srv)
	s.mu.Unlock()

	s.logger.Printf("%s listening on %s", name, ln.Addr())
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("%s listener stopped: %v", name, err)
		}
	}()
	return true
}

// Shutdown stops every listener and unblocks pumps waiting on the room.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.done) })

	s.mu.Lock()
	servers := s.servers
	s.servers = nil
	s.mu.Unlock()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
