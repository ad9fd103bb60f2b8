package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"retailtwin.io/internal/protocol"
	"retailtwin.io/internal/sim/world"
)

const outQueueSize = 64

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
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

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		connID := uuid.NewString()
		out := make(chan []byte, outQueueSize)

		// Register with the world; initial_data is queued on out before any
		// event frame.
		s.world.Join() <- world.JoinRequest{ConnID: connID, Out: out}

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

		// Reader loop.
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				// Malformed input gets an error envelope; the connection
				// stays open.
				s.enqueueError(out, protocol.ErrProtoBadRequest, "invalid JSON frame")
				continue
			}
			s.world.Inbox() <- world.CommandEnvelope{
				ConnID: connID,
				Type:   base.Type,
				Raw:    msg,
			}
		}

		// Cleanup.
		s.world.Leave() <- connID
	}
}

func (s *Server) enqueueError(out chan []byte, code, message string) {
	b, err := json.Marshal(protocol.ErrorMsg{
		Type:    protocol.TypeError,
		Code:    code,
		Message: message,
	})
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
		s.log.Printf("error frame dropped: slow client")
	}
}
