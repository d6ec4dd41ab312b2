package relay_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/relay"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// startServer runs the relay behind a websocket endpoint.
func startServer(t *testing.T, rly *relay.Relay) string {
	var upgrader websocket.Upgrader

	h := func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		rly.Handle(conn)
	}

	srv := httptest.NewServer(http.HandlerFunc(h))
	t.Cleanup(func() {
		rly.Shutdown()
		srv.Close()
	})

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// connect dials the relay and waits until the relay has registered the peer.
func connect(t *testing.T, rly *relay.Relay, url string) *websocket.Conn {
	before := rly.PeerCount()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to connect to the relay: %v", failed, err)
	}
	t.Cleanup(func() { conn.Close() })

	waitFor(t, func() bool { return rly.PeerCount() == before+1 })

	return conn
}

// waitFor polls the condition until it is true or the test times out.
func waitFor(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("\t%s\tShould reach the expected state in time.", failed)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func read(conn *websocket.Conn, wait time.Duration) (string, error) {
	conn.SetReadDeadline(time.Now().Add(wait))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// =============================================================================

func Test_BroadcastExclusion(t *testing.T) {
	t.Log("Given the need to forward a message to every peer but the sender.")
	{
		rly := relay.New(relay.Config{WriteTimeout: time.Second})
		url := startServer(t, rly)

		a := connect(t, rly, url)
		b := connect(t, rly, url)
		c := connect(t, rly, url)

		if err := a.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
			t.Fatalf("\t%s\tShould be able to send from A: %v", failed, err)
		}

		for name, conn := range map[string]*websocket.Conn{"B": b, "C": c} {
			msg, err := read(conn, 3*time.Second)
			if err != nil {
				t.Fatalf("\t%s\tShould receive the message on %s: %v", failed, name, err)
			}
			if msg != "hello" {
				t.Fatalf("\t%s\tShould receive the message unmodified on %s: %q", failed, name, msg)
			}
			t.Logf("\t%s\tShould receive the message unmodified on %s.", success, name)
		}

		if msg, err := read(a, 200*time.Millisecond); err == nil {
			t.Fatalf("\t%s\tShould not echo the message back to A: %q", failed, msg)
		}
		t.Logf("\t%s\tShould not echo the message back to A.", success)
	}
}

func Test_MessageType(t *testing.T) {
	t.Log("Given the need to forward binary frames as binary frames.")
	{
		rly := relay.New(relay.Config{})
		url := startServer(t, rly)

		a := connect(t, rly, url)
		b := connect(t, rly, url)

		payload := []byte{0x00, 0xff, 0x10}
		if err := a.WriteMessage(websocket.BinaryMessage, payload); err != nil {
			t.Fatalf("\t%s\tShould be able to send from A: %v", failed, err)
		}

		b.SetReadDeadline(time.Now().Add(3 * time.Second))
		typ, data, err := b.ReadMessage()
		if err != nil {
			t.Fatalf("\t%s\tShould receive the frame: %v", failed, err)
		}

		if typ != websocket.BinaryMessage || string(data) != string(payload) {
			t.Fatalf("\t%s\tShould receive the same binary frame: %d %x", failed, typ, data)
		}
		t.Logf("\t%s\tShould receive the same binary frame.", success)
	}
}

func Test_PartialFailure(t *testing.T) {
	t.Log("Given the need to keep delivering when one peer is broken.")
	{
		rly := relay.New(relay.Config{WriteTimeout: time.Second})
		url := startServer(t, rly)

		a := connect(t, rly, url)
		b := connect(t, rly, url)
		c := connect(t, rly, url)

		b.Close()

		if err := a.WriteMessage(websocket.TextMessage, []byte("still here")); err != nil {
			t.Fatalf("\t%s\tShould be able to send from A: %v", failed, err)
		}

		msg, err := read(c, 3*time.Second)
		if err != nil || msg != "still here" {
			t.Fatalf("\t%s\tShould deliver to C: %q %v", failed, msg, err)
		}
		t.Logf("\t%s\tShould deliver to C.", success)

		waitFor(t, func() bool { return rly.PeerCount() == 2 })
		t.Logf("\t%s\tShould remove B from the peer set.", success)
	}
}

func Test_SenderOrder(t *testing.T) {
	t.Log("Given the need to forward a sender's messages in order.")
	{
		rly := relay.New(relay.Config{QueueSize: 256})
		url := startServer(t, rly)

		a := connect(t, rly, url)
		b := connect(t, rly, url)

		const n = 100
		for i := 0; i < n; i++ {
			if err := a.WriteMessage(websocket.TextMessage, []byte(fmt.Sprint(i))); err != nil {
				t.Fatalf("\t%s\tShould be able to send message %d: %v", failed, i, err)
			}
		}

		for i := 0; i < n; i++ {
			msg, err := read(b, 3*time.Second)
			if err != nil {
				t.Fatalf("\t%s\tShould receive message %d: %v", failed, i, err)
			}
			if msg != fmt.Sprint(i) {
				t.Fatalf("\t%s\tShould receive message %d in order, got %s", failed, i, msg)
			}
		}
		t.Logf("\t%s\tShould receive all messages in order.", success)
	}
}

func Test_OnMessage(t *testing.T) {
	t.Log("Given the need to hand every received frame to the node.")
	{
		got := make(chan string, 1)

		rly := relay.New(relay.Config{
			OnMessage: func(from *relay.Peer, msg relay.Message) {
				got <- string(msg.Data)
			},
		})
		url := startServer(t, rly)

		a := connect(t, rly, url)
		if err := a.WriteMessage(websocket.TextMessage, []byte("block")); err != nil {
			t.Fatalf("\t%s\tShould be able to send: %v", failed, err)
		}

		select {
		case msg := <-got:
			if msg != "block" {
				t.Fatalf("\t%s\tShould hand over the frame unmodified: %q", failed, msg)
			}
			t.Logf("\t%s\tShould hand over the frame even with no other peers.", success)
		case <-time.After(3 * time.Second):
			t.Fatalf("\t%s\tShould hand over the frame.", failed)
		}
	}
}

func Test_Dial(t *testing.T) {
	t.Log("Given the need to connect two relays directly.")
	{
		hub := relay.New(relay.Config{})
		url := startServer(t, hub)

		edge := relay.New(relay.Config{})
		t.Cleanup(edge.Shutdown)

		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)

		if err := edge.Dial(ctx, url); err != nil {
			t.Fatalf("\t%s\tShould be able to dial the hub: %v", failed, err)
		}
		waitFor(t, func() bool { return hub.PeerCount() == 1 && edge.PeerCount() == 1 })
		t.Logf("\t%s\tShould register the connection on both sides.", success)

		client := connect(t, hub, url)

		if n := edge.Broadcast(nil, relay.Message{Type: relay.TextMessage, Data: []byte("from edge")}); n != 1 {
			t.Fatalf("\t%s\tShould queue the frame for the hub, got %d.", failed, n)
		}

		msg, err := read(client, 3*time.Second)
		if err != nil || msg != "from edge" {
			t.Fatalf("\t%s\tShould relay the frame through the hub: %q %v", failed, msg, err)
		}
		t.Logf("\t%s\tShould relay the frame through the hub.", success)

		if err := edge.Dial(ctx, "ws://127.0.0.1:1/none"); err == nil {
			t.Fatalf("\t%s\tShould fail to dial a closed port.", failed)
		}
		t.Logf("\t%s\tShould fail to dial a closed port.", success)
	}
}

func Test_Shutdown(t *testing.T) {
	t.Log("Given the need to shut the relay down with peers connected.")
	{
		rly := relay.New(relay.Config{})
		url := startServer(t, rly)

		a := connect(t, rly, url)
		connect(t, rly, url)

		done := make(chan struct{})
		go func() {
			rly.Shutdown()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Fatalf("\t%s\tShould finish the shutdown.", failed)
		}
		t.Logf("\t%s\tShould finish the shutdown.", success)

		if rly.PeerCount() != 0 {
			t.Fatalf("\t%s\tShould have no peers left.", failed)
		}
		t.Logf("\t%s\tShould have no peers left.", success)

		if _, err := read(a, 3*time.Second); err == nil {
			t.Fatalf("\t%s\tShould have closed the peer connection.", failed)
		}
		t.Logf("\t%s\tShould have closed the peer connection.", success)

		if err := rly.Handle(newFakeConn(false)); err != relay.ErrClosed {
			t.Fatalf("\t%s\tShould refuse new connections: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse new connections.", success)
	}
}

// =============================================================================

// fakeConn is an in memory connection. A blocking fakeConn never completes a
// write, simulating a peer that stopped reading.
type fakeConn struct {
	reads  chan []byte
	writes chan []byte
	block  bool
	closed chan struct{}
	once   sync.Once
}

func newFakeConn(block bool) *fakeConn {
	return &fakeConn{
		reads:  make(chan []byte),
		writes: make(chan []byte, 1024),
		block:  block,
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-c.reads:
		return websocket.TextMessage, data, nil
	case <-c.closed:
		return 0, nil, io.EOF
	}
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	if c.block {
		<-c.closed
		return net.ErrClosed
	}

	select {
	case c.writes <- data:
		return nil
	case <-c.closed:
		return net.ErrClosed
	}
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (c *fakeConn) RemoteAddr() net.Addr             { return nil }

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func Test_SlowPeer(t *testing.T) {
	t.Log("Given the need to keep a slow peer from stalling the others.")
	{
		const queueSize = 4

		rly := relay.New(relay.Config{QueueSize: queueSize})
		t.Cleanup(rly.Shutdown)

		sender := newFakeConn(false)
		fast := newFakeConn(false)
		slow := newFakeConn(true)

		for _, conn := range []*fakeConn{sender, fast, slow} {
			go rly.Handle(conn)
		}
		waitFor(t, func() bool { return rly.PeerCount() == 3 })

		const n = 3 * queueSize
		for i := 0; i < n; i++ {
			sender.reads <- []byte(fmt.Sprint(i))

			select {
			case data := <-fast.writes:
				if string(data) != fmt.Sprint(i) {
					t.Fatalf("\t%s\tShould deliver message %d in order, got %s.", failed, i, data)
				}
			case <-time.After(3 * time.Second):
				t.Fatalf("\t%s\tShould deliver message %d to the fast peer.", failed, i)
			}
		}
		t.Logf("\t%s\tShould deliver every message to the fast peer.", success)

		waitFor(t, func() bool { return rly.PeerCount() == 2 })
		t.Logf("\t%s\tShould disconnect the slow peer.", success)

		// Collectors are ordered: peers, received, forwarded, dropped.
		collectors := rly.Collectors()
		if got := testutil.ToFloat64(collectors[0]); got != 2 {
			t.Fatalf("\t%s\tShould report 2 connected peers, got %v.", failed, got)
		}
		if got := testutil.ToFloat64(collectors[3]); got < 1 {
			t.Fatalf("\t%s\tShould count the dropped frames, got %v.", failed, got)
		}
		t.Logf("\t%s\tShould report the relay metrics.", success)
	}
}
