package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"coinrush/protocol"
)

var ErrRejected = errors.New("server rejected connection")

const (
	writeWait   = 5 * time.Second
	welcomeWait = 10 * time.Second
)

// Conn is a client websocket connection that has completed the hello/welcome
// handshake.
type Conn struct {
	ws      *websocket.Conn
	Welcome protocol.Welcome

	msgs chan protocol.Envelope
	done chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
	err       error
}

// Dial connects to url, sends hello and waits for welcome. Any failure,
// including an error frame from the server, is returned.
func Dial(ctx context.Context, url string, hello protocol.Hello) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	welcome, err := handshake(ws, hello)
	if err != nil {
		ws.Close()
		return nil, err
	}

	c := &Conn{
		ws:      ws,
		Welcome: welcome,
		msgs:    make(chan protocol.Envelope, 64),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func handshake(ws *websocket.Conn, hello protocol.Hello) (protocol.Welcome, error) {
	b, err := protocol.Encode(protocol.MsgHello, hello)
	if err != nil {
		return protocol.Welcome{}, err
	}
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return protocol.Welcome{}, fmt.Errorf("send hello: %w", err)
	}

	_ = ws.SetReadDeadline(time.Now().Add(welcomeWait))
	_, msg, err := ws.ReadMessage()
	if err != nil {
		return protocol.Welcome{}, fmt.Errorf("read welcome: %w", err)
	}
	_ = ws.SetReadDeadline(time.Time{})

	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		return protocol.Welcome{}, err
	}
	switch env.T {
	case protocol.MsgWelcome:
		return protocol.DecodePayload[protocol.Welcome](env)
	case protocol.MsgError:
		e, err := protocol.DecodePayload[protocol.Error](env)
		if err != nil {
			return protocol.Welcome{}, err
		}
		return protocol.Welcome{}, fmt.Errorf("%w: %s: %s", ErrRejected, e.Code, e.Msg)
	default:
		return protocol.Welcome{}, fmt.Errorf("expected %s, got %s", protocol.MsgWelcome, env.T)
	}
}

// Messages delivers decoded server frames. It is closed when the connection
// drops; Err then reports why.
func (c *Conn) Messages() <-chan protocol.Envelope { return c.msgs }

func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Send writes one input frame. It must not be called concurrently.
func (c *Conn) Send(in protocol.Input) error {
	b, err := protocol.Encode(protocol.MsgInput, in)
	if err != nil {
		return err
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.BinaryMessage, b)
}

func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) readLoop() {
	defer close(c.msgs)
	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
			return
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			continue
		}
		select {
		case c.msgs <- env:
		case <-c.done:
			return
		}
	}
}
