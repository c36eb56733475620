// Package ws is the WebSocket edge: it upgrades connections, registers each
// one as a broadcast subscriber, and routes inbound client commands.
package ws

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"seetheplay/errors"
	"seetheplay/message"
)

// Subscriber wraps one WebSocket connection behind the broadcast contract.
// Gorilla allows a single concurrent writer per connection, so every write
// goes through the mutex.
type Subscriber struct {
	id     string
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

func NewSubscriber(conn *websocket.Conn) *Subscriber {
	return &Subscriber{id: uuid.NewString(), conn: conn}
}

func (s *Subscriber) ID() string { return s.id }

// Send encodes and writes one message, honoring the caller's deadline.
func (s *Subscriber) Send(ctx context.Context, msg message.Outbound) error {
	payload, err := message.Encode(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrSubscriberClosed
	}

	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
