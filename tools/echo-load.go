//go:build ignore

// Echo server load generator.
//
// Opens many concurrent WebSocket connections to a wsecho server, drives
// each through a burst of echo round trips, and reports throughput and
// any echo mismatches. Each connection finishes with a server-driven
// closing handshake via the CLOSE command.
//
// Usage:
//
//	go run tools/echo-load.go -addr localhost:9001 -conns 50 -msgs 200
package main

import (
	"bytes"
	"flag"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var (
	addr     = flag.String("addr", "localhost:9001", "server address (host:port)")
	conns    = flag.Int("conns", 20, "concurrent connections")
	msgs     = flag.Int("msgs", 100, "round trips per connection")
	size     = flag.Int("size", 256, "payload size in bytes")
	asBinary = flag.Bool("binary", false, "send binary messages instead of text")
)

type stats struct {
	roundTrips int64
	mismatches int64
	failures   int64
}

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "

func main() {
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/"}
	fmt.Printf("Driving %d connections x %d round trips against %s\n", *conns, *msgs, u.String())

	var st stats
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < *conns; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := drive(u.String(), id, &st); err != nil {
				atomic.AddInt64(&st.failures, 1)
				fmt.Fprintf(os.Stderr, "conn %d: %v\n", id, err)
			}
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(start)
	trips := atomic.LoadInt64(&st.roundTrips)
	fmt.Printf("\n%d round trips in %s (%.0f/s)\n",
		trips, elapsed.Round(time.Millisecond), float64(trips)/elapsed.Seconds())

	if n := atomic.LoadInt64(&st.mismatches); n > 0 {
		fmt.Printf("MISMATCHES: %d\n", n)
		os.Exit(1)
	}
	if n := atomic.LoadInt64(&st.failures); n > 0 {
		fmt.Printf("failed connections: %d\n", n)
		os.Exit(1)
	}
	fmt.Println("all echoes matched")
}

func drive(target string, id int, st *stats) error {
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	msgType := websocket.TextMessage
	if *asBinary {
		msgType = websocket.BinaryMessage
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))
	payload := make([]byte, *size)

	for i := 0; i < *msgs; i++ {
		fillPayload(rng, payload)

		if err := conn.WriteMessage(msgType, payload); err != nil {
			return fmt.Errorf("write %d: %w", i, err)
		}

		gotType, got, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read %d: %w", i, err)
		}
		if gotType != msgType || !bytes.Equal(got, payload) {
			atomic.AddInt64(&st.mismatches, 1)
		}
		atomic.AddInt64(&st.roundTrips, 1)
	}

	// Finish with a server-driven closing handshake
	if err := conn.WriteMessage(websocket.TextMessage, []byte("CLOSE")); err != nil {
		return fmt.Errorf("close command: %w", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				return nil
			}
			return fmt.Errorf("close wait: %w", err)
		}
	}
}

// fillPayload randomizes the payload. The first byte is pinned so a
// payload can never start with a command word (RAW, TEXT, PING, CLOSE)
// and get intercepted instead of echoed.
func fillPayload(rng *rand.Rand, p []byte) {
	if len(p) == 0 {
		return
	}
	if *asBinary {
		rng.Read(p)
		p[0] = 0x00
		return
	}
	for i := range p {
		p[i] = letters[rng.Intn(len(letters))]
	}
	p[0] = 'm'
}
