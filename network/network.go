package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"coinrush/auth"
	"coinrush/game"
	"coinrush/protocol"
	"coinrush/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Clients are terminal programs, not browsers.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Println("upgrade:", err)
		return
	}

	ws.SetReadLimit(maxMessage)

	claims, err := s.readHello(ws)
	if err != nil {
		s.logger.Printf("rejecting %s: %v", r.RemoteAddr, err)
		code := protocol.ErrCodeBadHello
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrProtocolMismatch) {
			code = protocol.ErrCodeAuth
		}
		rejectAndClose(ws, code, err.Error())
		return
	}

	id := game.ClientID(claims.ClientID)
	conn := newWSConn(ws, s.sendQueue)
	go conn.writePump()

	res, err := s.join(r.Context(), id, conn)
	if err != nil {
		s.logger.Printf("join %d failed: %v", id, err)
		code := protocol.ErrCodeShutdown
		if errors.Is(err, game.ErrDuplicateClient) {
			code = protocol.ErrCodeDuplicate
		}
		if b, encErr := protocol.Encode(protocol.MsgError, protocol.Error{Code: code, Msg: err.Error()}); encErr == nil {
			_ = conn.Send(b)
		}
		_ = conn.Close()
		return
	}
	s.logger.Printf("client %d joined from %s at tick %d", id, r.RemoteAddr, res.Tick)

	s.readPump(ws, id, conn)
}

func (s *Server) readHello(ws *websocket.Conn) (*auth.Claims, error) {
	_ = ws.SetReadDeadline(time.Now().Add(helloWait))
	_, msg, err := ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read hello: %w", err)
	}
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		return nil, err
	}
	if env.T != protocol.MsgHello {
		return nil, fmt.Errorf("expected %s, got %s", protocol.MsgHello, env.T)
	}
	hello, err := protocol.DecodePayload[protocol.Hello](env)
	if err != nil {
		return nil, err
	}
	if hello.V != protocol.Version {
		return nil, fmt.Errorf("unsupported protocol version %d", hello.V)
	}
	if hello.ProtocolID != s.protocolID {
		return nil, fmt.Errorf("%w: hello carries %d", auth.ErrProtocolMismatch, hello.ProtocolID)
	}
	return auth.Verify(hello.Token, s.key, s.protocolID)
}

func (s *Server) join(ctx context.Context, id game.ClientID, conn *wsConn) (room.JoinResult, error) {
	reply := make(chan room.JoinResult, 1)
	select {
	case s.room.Inbox <- room.Join{ClientID: id, Conn: conn, Reply: reply}:
	case <-ctx.Done():
		return room.JoinResult{}, ctx.Err()
	case <-s.done:
		return room.JoinResult{}, ErrServerClosed
	}
	// The join is queued from here on; abandoning it must queue a leave too or
	// the room keeps the client connected.
	select {
	case res := <-reply:
		return res, res.Err
	case <-ctx.Done():
		s.abandonJoin(id, conn)
		return room.JoinResult{}, ctx.Err()
	case <-s.done:
		s.abandonJoin(id, conn)
		return room.JoinResult{}, ErrServerClosed
	}
}

func (s *Server) abandonJoin(id game.ClientID, conn *wsConn) {
	select {
	case s.room.Inbox <- room.Leave{ClientID: id, Conn: conn}:
	default:
		s.logger.Printf("room inbox full, client %d may linger until shutdown", id)
	}
}

// readPump forwards input frames to the room until the socket fails, then leaves.
func (s *Server) readPump(ws *websocket.Conn, id game.ClientID, conn *wsConn) {
	defer func() {
		select {
		case s.room.Inbox <- room.Leave{ClientID: id, Conn: conn}:
		case <-s.done:
		}
		s.logger.Printf("client %d disconnected", id)
	}()

	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Printf("read from client %d: %v", id, err)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))

		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			s.logger.Printf("client %d sent a bad frame: %v", id, err)
			continue
		}
		switch env.T {
		case protocol.MsgInput:
			in, err := protocol.DecodePayload[protocol.Input](env)
			if err != nil {
				s.logger.Printf("client %d sent a bad input: %v", id, err)
				continue
			}
			select {
			case s.room.Inbox <- room.Input{ClientID: id, Input: in}:
			case <-s.done:
				return
			}
		default:
			s.logger.Printf("client %d sent unexpected %s", id, env.T)
		}
	}
}

func rejectAndClose(ws *websocket.Conn, code, msg string) {
	defer ws.Close()
	b, err := protocol.Encode(protocol.MsgError, protocol.Error{Code: code, Msg: msg})
	if err != nil {
		return
	}
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.BinaryMessage, b)
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, code))
}
