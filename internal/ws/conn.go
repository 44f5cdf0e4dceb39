// Package ws owns the single bidirectional channel to the game server.
package ws

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const sendBuffer = 32

// Event is one inbound frame, or a terminal transport failure. After an
// Event with Err set the events channel is closed; there is no reconnect.
type Event struct {
	Data []byte
	Err  error
}

// Conn wraps one websocket connection. Outbound sends are fire-and-forget:
// they queue onto a buffered channel drained by a writer goroutine, and a
// full queue drops the frame with a warning.
type Conn struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// Dial opens the connection and, when join is non-nil, queues the join
// handshake before anything else so it is the first frame written.
func Dial(ctx context.Context, wsURL string, join []byte) (*Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	c := &Conn{
		id:     NewConnID(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		events: make(chan Event, sendBuffer),
		done:   make(chan struct{}),
	}
	if join != nil {
		c.send <- join
	}
	go c.readLoop()
	go c.writeLoop()
	log.Debug().Str("conn_id", c.id).Str("url", wsURL).Msg("connected")
	return c, nil
}

// ID is the local correlation id for this connection, used in log fields.
func (c *Conn) ID() string { return c.id }

// Events delivers inbound frames in transport order.
func (c *Conn) Events() <-chan Event { return c.events }

// Send queues an outbound frame.
func (c *Conn) Send(payload []byte) {
	select {
	case <-c.done:
	case c.send <- payload:
	default:
		log.Warn().Str("conn_id", c.id).Msg("send queue full, frame dropped")
	}
}

// Close tears the connection down. Safe to call more than once.
func (c *Conn) Close() error {
	c.once.Do(func() { close(c.done) })
	return c.conn.Close()
}

func (c *Conn) readLoop() {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				// local close, not a transport failure
			default:
				c.events <- Event{Err: err}
			}
			close(c.events)
			return
		}
		c.events <- Event{Data: msg}
	}
}

func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.done:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
			return
		case payload := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Debug().Err(err).Str("conn_id", c.id).Msg("write failed")
				return
			}
		}
	}
}

// URLFromHTTP derives the websocket endpoint from the server's base HTTP
// URL, mirroring how the browser client switches schemes.
func URLFromHTTP(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	return u.String(), nil
}
