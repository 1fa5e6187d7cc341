package server

import (
	"context"
	"time"

	"pulse-lab/runtime"

	"github.com/gofiber/contrib/websocket"
)

// writeWait bounds a single frame write, a peer that stops reading is closed after it.
const writeWait = 10 * time.Second

// handleSocket runs the single reader of a connection. A dedicated writer
// drains the connection outbox until Disconnect closes it.
func (s *Server) handleSocket(c *websocket.Conn) {
	token, _ := c.Locals(tokenKey).(string)
	conn, err := s.router.Connect(c, token)
	if err != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go s.writeLoop(c, conn, done)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("Websocket read failed", "conn_id", conn.ID, "error", err)
			}
			break
		}
		cmd, err := s.codec.Decode(data)
		if err == nil {
			err = s.router.Handle(ctx, conn, cmd)
		}
		if err != nil {
			s.router.Reject(ctx, conn, err)
		}
	}

	s.router.Disconnect(ctx, conn)
	<-done
}

// writeLoop keeps draining after a write failure so that fanout never waits
// on a dead peer for longer than the delivery timeout.
func (s *Server) writeLoop(c *websocket.Conn, conn *runtime.Connection, done chan<- struct{}) {
	defer close(done)
	failed := false
	for fact := range conn.Outbox() {
		if failed {
			continue
		}
		data, err := s.codec.Encode(fact)
		if err != nil {
			s.log.Error("Fact encoding failed", "kind", fact.Kind, "error", err)
			continue
		}
		if err := c.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			s.log.Debug("Websocket write deadline failed", "conn_id", conn.ID, "error", err)
		}
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			s.log.Debug("Websocket write failed", "conn_id", conn.ID, "error", err)
			failed = true
			_ = c.Close()
		}
	}
}
