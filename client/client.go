package client

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"coinrush/auth"
	"coinrush/game"
	"coinrush/protocol"
)

type Options struct {
	ServerURL  string
	Key        auth.Key
	ProtocolID uint64
	ClientID   uint64
	TokenTTL   time.Duration
	HoldWindow time.Duration
	Sound      bool
	Logger     *log.Logger
}

// Connect mints a connect token for opts.ClientID and completes the handshake.
func Connect(ctx context.Context, opts Options) (*Conn, error) {
	token, err := auth.NewToken(opts.Key, opts.ProtocolID, opts.ClientID, opts.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("mint connect token: %w", err)
	}
	conn, err := Dial(ctx, opts.ServerURL, protocol.Hello{
		V:          protocol.Version,
		ProtocolID: opts.ProtocolID,
		Token:      token,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	return conn, nil
}

// Run connects and drives the terminal UI until the user quits, ctx ends or
// the server drops the connection. A connection failure is returned before
// the terminal is touched.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[client] ", log.LstdFlags)
	}

	conn, err := Connect(ctx, opts)
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Printf("connected as client %d at server tick %d", conn.Welcome.ClientID, conn.Welcome.Tick)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	var sound *chime
	if opts.Sound {
		sound, err = newChime()
		if err != nil {
			logger.Printf("Audio initialization failed: %v", err)
		}
		defer sound.Close()
	}

	ui := &ui{
		screen:  screen,
		conn:    conn,
		session: NewSession(game.ClientID(conn.Welcome.ClientID)),
		keys:    NewHeldKeys(opts.HoldWindow),
		sound:   sound,
		logger:  logger,
	}
	return ui.run(ctx)
}

type ui struct {
	screen  tcell.Screen
	conn    *Conn
	session *Session
	keys    *HeldKeys
	sound   *chime
	logger  *log.Logger
}

func (u *ui) run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / protocol.ClientInputHz)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	events := pollEvents(u.screen, done)

	msgs := u.conn.Messages()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if u.keys.Observe(ev) {
					return nil
				}
			case *tcell.EventResize:
				u.screen.Sync()
			}

		case env, ok := <-msgs:
			if !ok {
				return fmt.Errorf("connection lost: %w", u.conn.Err())
			}
			if err := u.handle(env); err != nil {
				return err
			}

		case <-ticker.C:
			msg := u.session.NextInput(u.keys.Sample())
			if err := u.conn.Send(msg); err != nil {
				u.logger.Printf("failed to send input %d: %v", msg.Tick, err)
			}
			draw(u.screen, u.session)
		}
	}
}

func (u *ui) handle(env protocol.Envelope) error {
	switch env.T {
	case protocol.MsgState:
		st, err := protocol.DecodePayload[protocol.State](env)
		if err != nil {
			u.logger.Printf("bad state: %v", err)
			return nil
		}
		u.session.ApplyState(st)
	case protocol.MsgScores:
		sc, err := protocol.DecodePayload[protocol.Scores](env)
		if err != nil {
			u.logger.Printf("bad scores: %v", err)
			return nil
		}
		if u.session.ApplyScores(sc) {
			u.sound.Play()
		}
		u.logger.Printf("player scores: %v", sc.Scores)
	case protocol.MsgError:
		e, err := protocol.DecodePayload[protocol.Error](env)
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return fmt.Errorf("server error %s: %s", e.Code, e.Msg)
	default:
		u.logger.Printf("unexpected %s from server", env.T)
	}
	return nil
}

// pollEvents forwards screen events until the screen is finalized or done closes.
func pollEvents(screen tcell.Screen, done <-chan struct{}) <-chan tcell.Event {
	events := make(chan tcell.Event, 100)
	go func() {
		defer close(events)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	return events
}
