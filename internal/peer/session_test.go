package peer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/gorilla/websocket"
	nyws "nhooyr.io/websocket"

	"github.com/muurk/wsecho/internal/protocol"
)

const testTimeout = 5 * time.Second

// startServer runs an echo listener on a loopback port and returns its
// address. The listener and pool are torn down with the test.
func startServer(t *testing.T) string {
	t.Helper()

	pool := NewPool(4)
	ln, err := NewListener("127.0.0.1:0", pool, true)
	if err != nil {
		t.Fatalf("NewListener() error = %v", err)
	}
	go func() { _ = ln.AcceptLoop() }()

	t.Cleanup(func() {
		ln.Close()
		pool.Close()
	})
	return ln.Addr().String()
}

// dialPeer opens a WebSocket client connection to the peer at addr.
func dialPeer(t *testing.T, addr string) *websocket.Conn {
	t.Helper()

	u := url.URL{Scheme: "ws", Host: addr, Path: "/"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("Dial(%s) error = %v", u.String(), err)
	}
	conn.SetReadDeadline(time.Now().Add(testTimeout))

	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSessionEchoPreservesOpcode(t *testing.T) {
	addr := startServer(t)

	tests := []struct {
		name    string
		kind    int
		payload []byte
	}{
		{"text", websocket.TextMessage, []byte("hello echo")},
		{"binary", websocket.BinaryMessage, []byte{0x00, 0x01, 0xfe, 0xff}},
		{"empty", websocket.TextMessage, []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := dialPeer(t, addr)
			if err := conn.WriteMessage(tt.kind, tt.payload); err != nil {
				t.Fatalf("WriteMessage() error = %v", err)
			}
			kind, got, err := conn.ReadMessage()
			if err != nil {
				t.Fatalf("ReadMessage() error = %v", err)
			}
			if kind != tt.kind {
				t.Errorf("echo opcode = %d, want %d", kind, tt.kind)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Errorf("echo payload = %q, want %q", got, tt.payload)
			}
		})
	}
}

func TestSessionEchoesInOrder(t *testing.T) {
	addr := startServer(t)
	conn := dialPeer(t, addr)

	const n = 20
	for i := 0; i < n; i++ {
		msg := fmt.Sprintf("message %d", i)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatalf("WriteMessage(%d) error = %v", i, err)
		}
	}
	for i := 0; i < n; i++ {
		want := fmt.Sprintf("message %d", i)
		_, got, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage(%d) error = %v", i, err)
		}
		if string(got) != want {
			t.Errorf("echo %d = %q, want %q", i, got, want)
		}
	}
}

func TestSessionTextCommand(t *testing.T) {
	addr := startServer(t)
	conn := dialPeer(t, addr)

	// A binary message carrying the token comes back as text.
	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("TEXTconverted")); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	kind, got, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if kind != websocket.TextMessage {
		t.Errorf("reply opcode = %d, want %d", kind, websocket.TextMessage)
	}
	if string(got) != "converted" {
		t.Errorf("reply payload = %q, want %q", got, "converted")
	}

	// Only the token itself is consumed; whatever follows it, spaces
	// included, is the payload.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("TEXT spaced out")); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	if _, got, err = conn.ReadMessage(); err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if string(got) != " spaced out" {
		t.Errorf("reply payload = %q, want %q", got, " spaced out")
	}
}

func TestSessionRawCommandBypassesFraming(t *testing.T) {
	addr := startServer(t)
	conn := dialPeer(t, addr)

	const payload = "these bytes have no frame header"
	if err := conn.WriteMessage(websocket.TextMessage, []byte("RAW"+payload)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	// The reply goes straight onto the transport, so it has to be read
	// from the TCP connection underneath the WebSocket client.
	raw := conn.NetConn()
	raw.SetReadDeadline(time.Now().Add(testTimeout))
	got := make([]byte, len(payload))
	if _, err := io.ReadFull(raw, got); err != nil {
		t.Fatalf("reading transport bytes: %v", err)
	}
	if string(got) != payload {
		t.Errorf("transport bytes = %q, want %q", got, payload)
	}
}

func TestSessionPingCommandCapsPayload(t *testing.T) {
	addr := startServer(t)
	conn := dialPeer(t, addr)

	pings := make(chan string, 1)
	conn.SetPingHandler(func(data string) error {
		pings <- data
		return nil
	})
	// Control frames are only delivered while a read is pending.
	go conn.ReadMessage()

	long := strings.Repeat("p", 200)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("PING"+long)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	select {
	case data := <-pings:
		if len(data) != protocol.MaxPingPayload {
			t.Errorf("ping payload length = %d, want %d", len(data), protocol.MaxPingPayload)
		}
		if data != long[:protocol.MaxPingPayload] {
			t.Errorf("ping payload = %q, want a prefix of the request payload", data)
		}
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for the ping frame")
	}
}

func TestSessionCloseCommandEndsSession(t *testing.T) {
	addr := startServer(t)
	conn := dialPeer(t, addr)

	// Prove the session is up before asking it to close.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("still here")); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("CLOSE")); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	_, _, err := conn.ReadMessage()
	if err == nil {
		t.Fatal("expected the close handshake, got another message")
	}
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
		t.Errorf("ReadMessage() error = %v, want a close", err)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	addr := startServer(t)
	first := dialPeer(t, addr)
	second := dialPeer(t, addr)

	for i := 0; i < 10; i++ {
		a := fmt.Sprintf("first %d", i)
		b := fmt.Sprintf("second %d", i)
		if err := first.WriteMessage(websocket.TextMessage, []byte(a)); err != nil {
			t.Fatalf("first WriteMessage() error = %v", err)
		}
		if err := second.WriteMessage(websocket.TextMessage, []byte(b)); err != nil {
			t.Fatalf("second WriteMessage() error = %v", err)
		}
		// Read in the opposite order from the writes: neither session's
		// reply depends on the other's progress.
		if _, got, err := second.ReadMessage(); err != nil || string(got) != b {
			t.Fatalf("second echo = %q (err %v), want %q", got, err, b)
		}
		if _, got, err := first.ReadMessage(); err != nil || string(got) != a {
			t.Fatalf("first echo = %q (err %v), want %q", got, err, a)
		}
	}
}

// A second client implementation keeps the echo behavior honest: nothing
// here may depend on quirks of the library the other tests dial with.
func TestSessionEchoSecondClientImplementation(t *testing.T) {
	addr := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	conn, _, err := nyws.Dial(ctx, "ws://"+addr, &nyws.DialOptions{
		CompressionMode: nyws.CompressionDisabled,
	})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close(nyws.StatusNormalClosure, "")

	payload := []byte{0x10, 0x20, 0x30}
	if err := conn.Write(ctx, nyws.MessageBinary, payload); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	kind, got, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if kind != nyws.MessageBinary {
		t.Errorf("echo type = %v, want %v", kind, nyws.MessageBinary)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("echo payload = %v, want %v", got, payload)
	}
}

// Frame-level round trip with the library the server itself is built on,
// this time driven from the client side.
func TestSessionEchoGobwasClient(t *testing.T) {
	addr := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	conn, br, _, err := ws.Dial(ctx, "ws://"+addr)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	// The dialer hands back a buffered reader when it over-read past the
	// handshake response.
	rw := io.ReadWriter(conn)
	if br != nil {
		rw = struct {
			io.Reader
			io.Writer
		}{br, conn}
	}

	payload := []byte("framed by hand")
	if err := wsutil.WriteClientMessage(conn, ws.OpText, payload); err != nil {
		t.Fatalf("WriteClientMessage() error = %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(testTimeout))
	data, op, err := wsutil.ReadServerData(rw)
	if err != nil {
		t.Fatalf("ReadServerData() error = %v", err)
	}
	if op != ws.OpText {
		t.Errorf("echo opcode = %v, want %v", op, ws.OpText)
	}
	if string(data) != string(payload) {
		t.Errorf("echo payload = %q, want %q", data, payload)
	}
}

func TestClientSessionEchoesUntilClosed(t *testing.T) {
	upgrader := websocket.Upgrader{}
	echoed := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade() error = %v", err)
			return
		}
		defer conn.Close()
		conn.SetReadDeadline(time.Now().Add(testTimeout))

		if err := conn.WriteMessage(websocket.TextMessage, []byte("bounce this")); err != nil {
			return
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		echoed <- msg

		conn.WriteMessage(websocket.TextMessage, []byte("CLOSE"))
		conn.ReadMessage() // close reply
	}))
	defer srv.Close()

	pool := NewPool(2)
	defer pool.Close()

	sess := NewClientSession(strings.TrimPrefix(srv.URL, "http://"), pool, true)
	sess.Run()

	select {
	case msg := <-echoed:
		if string(msg) != "bounce this" {
			t.Errorf("echo = %q, want %q", msg, "bounce this")
		}
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for the echo")
	}
	select {
	case <-sess.Done():
	case <-time.After(testTimeout):
		t.Fatal("session did not finish after the close command")
	}
}

func TestClientSessionDialFailureEndsSession(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	// Bind and release a port so the dial target exists but nobody holds it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	target := ln.Addr().String()
	ln.Close()

	sess := NewClientSession(target, pool, false)
	sess.Run()

	select {
	case <-sess.Done():
	case <-time.After(testTimeout):
		t.Fatal("session did not finish after a failed dial")
	}
}

func TestListenerCloseStopsAccepting(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	ln, err := NewListener("127.0.0.1:0", pool, false)
	if err != nil {
		t.Fatalf("NewListener() error = %v", err)
	}
	loopErr := make(chan error, 1)
	go func() { loopErr <- ln.AcceptLoop() }()

	addr := ln.Addr().String()
	conn := dialPeer(t, addr)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("warm")); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	if err := ln.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	select {
	case err := <-loopErr:
		if err != nil {
			t.Errorf("AcceptLoop() error = %v, want nil", err)
		}
	case <-time.After(testTimeout):
		t.Fatal("AcceptLoop did not stop")
	}

	u := url.URL{Scheme: "ws", Host: addr, Path: "/"}
	if _, _, err := websocket.DefaultDialer.Dial(u.String(), nil); err == nil {
		t.Error("Dial() succeeded after the listener closed")
	}

	// The established session does not depend on the listener.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("still echoing")); err != nil {
		t.Fatalf("WriteMessage() after listener close error = %v", err)
	}
	if _, got, err := conn.ReadMessage(); err != nil || string(got) != "still echoing" {
		t.Fatalf("echo after listener close = %q (err %v)", got, err)
	}
}

func TestListenerRejectsBusyAddress(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	first, err := NewListener("127.0.0.1:0", pool, false)
	if err != nil {
		t.Fatalf("NewListener() error = %v", err)
	}
	defer first.Close()

	_, err = NewListener(first.Addr().String(), pool, false)
	if err == nil {
		t.Fatal("expected an error binding a busy address")
	}
	if !strings.Contains(err.Error(), "failed to bind") {
		t.Errorf("error = %v, want a bind failure", err)
	}
}
