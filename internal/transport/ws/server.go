package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hevlyo/pegabola/internal/protocol"
	"github.com/hevlyo/pegabola/internal/sim/world"
)

const outQueueSize = 64

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Handler runs one connection: a writer goroutine drains the world's out
// channel while the read loop forwards schema-valid events to the world. The
// connection id doubles as the player's session id once joined; a new
// connection always means a new player.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			s.log.Printf("upgrade failed from %s: %v", r.RemoteAddr, err)
			return
		}
		defer conn.Close()

		connID := uuid.NewString()
		out := make(chan []byte, outQueueSize)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		joined := false
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				s.sendError(out, protocol.ErrBadRequest, "malformed message")
				continue
			}
			if err := protocol.ValidateInbound(base.Type, msg); err != nil {
				s.sendError(out, protocol.ErrBadRequest, "malformed payload")
				continue
			}

			switch base.Type {
			case protocol.TypeJoin:
				if joined {
					s.sendError(out, protocol.ErrAlreadyJoined, "already joined")
					continue
				}
				var join protocol.JoinMsg
				if err := json.Unmarshal(msg, &join); err != nil {
					continue
				}
				respCh := make(chan world.JoinResponse, 1)
				s.world.Join() <- world.JoinRequest{
					ConnID:   connID,
					Nickname: join.Nickname,
					Out:      out,
					Resp:     respCh,
				}
				if resp := <-respCh; resp.ErrCode == "" {
					joined = true
				}
			case protocol.TypeMove:
				if !joined {
					s.sendError(out, protocol.ErrNotJoined, "join first")
					continue
				}
				var mv protocol.MoveMsg
				if err := json.Unmarshal(msg, &mv); err != nil {
					continue
				}
				s.world.Inbox() <- world.EventEnvelope{PlayerID: connID, Type: protocol.TypeMove, Move: &mv}
			case protocol.TypeCollect:
				if !joined {
					s.sendError(out, protocol.ErrNotJoined, "join first")
					continue
				}
				var col protocol.CollectMsg
				if err := json.Unmarshal(msg, &col); err != nil {
					continue
				}
				s.world.Inbox() <- world.EventEnvelope{PlayerID: connID, Type: protocol.TypeCollect, Collect: &col}
			}
		}

		// Cleanup. Abrupt closes land here the same as graceful ones.
		s.world.Leave() <- connID
	}
}

func (s *Server) sendError(out chan []byte, code, msg string) {
	b, err := json.Marshal(protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         msg,
	})
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}
