package console

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/wsecho/internal/version"
)

const (
	// dialTimeout bounds the opening handshake.
	dialTimeout = 10 * time.Second

	// controlWait bounds control frame writes issued from the read pump.
	controlWait = 5 * time.Second
)

// EventKind identifies what arrived from the peer.
type EventKind int

const (
	EventText EventKind = iota
	EventBinary
	EventPing
	EventPong
	EventClosed
	EventError
)

// Event is a single occurrence on the connection, delivered to the UI.
type Event struct {
	Kind EventKind
	Data []byte
	Err  error
}

// Client is the console's connection to an echo peer. All sends happen
// from the UI loop; received frames are pumped onto the Events channel.
type Client struct {
	conn   *websocket.Conn
	events chan Event
}

// Dial connects to the peer at host:port and starts the read pump.
func Dial(target string) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: target, Path: "/"}

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	header := http.Header{"User-Agent": []string{version.UserAgent()}}

	conn, _, err := dialer.Dial(u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}

	c := &Client{
		conn:   conn,
		events: make(chan Event, 32),
	}

	// Surface pings in the transcript and still answer them. WriteControl
	// is safe to call from the read pump while the UI loop writes messages.
	conn.SetPingHandler(func(data string) error {
		c.events <- Event{Kind: EventPing, Data: []byte(data)}
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(controlWait))
		if err == websocket.ErrCloseSent {
			return nil
		}
		return err
	})
	conn.SetPongHandler(func(data string) error {
		c.events <- Event{Kind: EventPong, Data: []byte(data)}
		return nil
	})

	go c.readPump()
	return c, nil
}

// Events returns the channel of received frames and connection state
// changes. It is closed when the read pump exits.
func (c *Client) Events() <-chan Event {
	return c.events
}

// readPump reads frames until the connection dies and forwards them as
// events. A clean close is its own event kind so the UI can tell it
// apart from a failure.
func (c *Client) readPump() {
	defer close(c.events)
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				c.events <- Event{Kind: EventClosed}
			} else {
				c.events <- Event{Kind: EventError, Err: err}
			}
			return
		}

		switch msgType {
		case websocket.TextMessage:
			c.events <- Event{Kind: EventText, Data: data}
		case websocket.BinaryMessage:
			c.events <- Event{Kind: EventBinary, Data: data}
		}
	}
}

// SendText sends a text message.
func (c *Client) SendText(s string) error {
	return c.conn.WriteMessage(websocket.TextMessage, []byte(s))
}

// SendBinary sends a binary message.
func (c *Client) SendBinary(p []byte) error {
	return c.conn.WriteMessage(websocket.BinaryMessage, p)
}

// Ping sends a ping carrying the given payload. The pong comes back as
// an event.
func (c *Client) Ping(payload []byte) error {
	return c.conn.WriteControl(websocket.PingMessage, payload, time.Now().Add(controlWait))
}

// Close starts the closing handshake. The peer's close reply surfaces
// as an EventClosed from the read pump.
func (c *Client) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	return c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(controlWait))
}

// Shutdown tears the connection down without a closing handshake.
func (c *Client) Shutdown() {
	c.conn.Close()
}
