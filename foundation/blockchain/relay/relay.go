// Package relay implements a flood broadcast gossip relay. Every message
// received from a peer is forwarded, unmodified, to every other peer that is
// connected at the time the message arrives.
//
// Peers speak websocket. One websocket message is one gossip message and the
// message type (text or binary) is preserved when it is forwarded.
package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message types that can be relayed.
const (
	TextMessage   = websocket.TextMessage
	BinaryMessage = websocket.BinaryMessage
)

// ErrClosed is returned when a connection is handed to a relay that has been
// shut down.
var ErrClosed = errors.New("relay is closed")

// Defaults used when the configuration leaves a value unset.
const (
	defaultWriteTimeout = 10 * time.Second
	defaultQueueSize    = 64
)

// =============================================================================

// EventHandler defines a function that is called when events occur in the
// processing of peer connections.
type EventHandler func(v string, args ...any)

// MessageHandler is called for every message read from a peer, after the
// message has been queued for the other peers.
type MessageHandler func(from *Peer, msg Message)

// Config represents the configuration required to start a relay.
type Config struct {
	WriteTimeout time.Duration
	QueueSize    int
	OnMessage    MessageHandler
	EvHandler    EventHandler
}

// Relay manages the set of connected peers and fans messages out to them.
type Relay struct {
	writeTimeout time.Duration
	queueSize    int
	onMessage    MessageHandler
	evHandler    EventHandler
	dialer       *websocket.Dialer
	metrics      *metrics

	peers *PeerSet

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New constructs a relay ready to accept connections.
func New(cfg Config) *Relay {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	return &Relay{
		writeTimeout: writeTimeout,
		queueSize:    queueSize,
		onMessage:    cfg.OnMessage,
		evHandler:    ev,
		dialer:       websocket.DefaultDialer,
		metrics:      newMetrics(),
		peers:        NewPeerSet(),
	}
}

// Handle runs the lifecycle of a single peer connection. The peer joins the
// set, every message it sends is broadcast, and when the connection fails the
// peer leaves the set before Handle returns. Handle blocks for the life of
// the connection and is expected to run on its own goroutine.
func (r *Relay) Handle(conn Conn) error {
	peer := newPeer(conn, r.queueSize)

	// Joining the set and registering with the wait group happen under the
	// same lock Shutdown takes, so a shutdown never misses a peer.
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		conn.Close()
		return ErrClosed
	}
	r.wg.Add(1)
	r.peers.Add(peer)
	r.mu.Unlock()

	r.metrics.peers.Inc()
	r.evHandler("relay: Handle: peer[%s]: addr[%s]: connected", peer.ID, peer.Addr)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		r.writeLoop(peer)
	}()

	defer func() {
		r.peers.Remove(peer)
		peer.close()
		<-writerDone

		r.metrics.peers.Dec()
		r.evHandler("relay: Handle: peer[%s]: disconnected", peer.ID)
		r.wg.Done()
	}()

	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			r.evHandler("relay: Handle: peer[%s]: read: %s", peer.ID, err)
			return nil
		}
		r.metrics.received.Inc()

		msg := Message{Type: typ, Data: data}
		r.Broadcast(peer, msg)

		if r.onMessage != nil {
			r.onMessage(peer, msg)
		}
	}
}

// Dial opens a connection to a known peer and hands it to Handle on a new
// goroutine. There is no reconnect; a lost peer must be dialed again.
func (r *Relay) Dial(ctx context.Context, url string) error {
	conn, _, err := r.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}

	go func() {
		if err := r.Handle(conn); err != nil {
			r.evHandler("relay: Dial: %s: %s", url, err)
		}
	}()

	return nil
}

// Broadcast queues the message for every connected peer except from. A nil
// from sends to every peer. The set is snapshotted once, so peers that join
// during the broadcast don't receive the message. A peer whose queue is full
// or that is already closed is scheduled for disconnect and the broadcast
// continues with the remaining peers. The number of peers the message was
// queued for is returned.
func (r *Relay) Broadcast(from *Peer, msg Message) int {
	var queued int

	for _, peer := range r.peers.Copy(from) {
		if !peer.enqueue(msg) {
			r.metrics.dropped.Inc()
			r.evHandler("relay: Broadcast: peer[%s]: WARNING: queue unavailable, disconnecting", peer.ID)
			peer.close()
			continue
		}
		queued++
	}

	return queued
}

// Peers returns a snapshot of the connected peers.
func (r *Relay) Peers() []*Peer {
	return r.peers.Copy(nil)
}

// PeerCount returns the number of connected peers.
func (r *Relay) PeerCount() int {
	return r.peers.Len()
}

// Shutdown stops accepting peers, closes every connection and waits for all
// peer goroutines to finish.
func (r *Relay) Shutdown() {
	r.evHandler("relay: shutdown: started")
	defer r.evHandler("relay: shutdown: completed")

	r.mu.Lock()
	r.closed = true
	peers := r.peers.Copy(nil)
	r.mu.Unlock()

	for _, peer := range peers {
		peer.close()
	}

	r.wg.Wait()
}

// =============================================================================

// writeLoop is the only goroutine allowed to write to the peer's connection.
// Frames are written in the order they were queued. Any write failure closes
// the peer.
func (r *Relay) writeLoop(peer *Peer) {
	for {
		select {
		case msg := <-peer.queue:
			if err := peer.conn.SetWriteDeadline(time.Now().Add(r.writeTimeout)); err != nil {
				r.metrics.dropped.Inc()
				r.evHandler("relay: writeLoop: peer[%s]: deadline: %s", peer.ID, err)
				peer.close()
				return
			}

			if err := peer.conn.WriteMessage(msg.Type, msg.Data); err != nil {
				r.metrics.dropped.Inc()
				r.evHandler("relay: writeLoop: peer[%s]: write: %s", peer.ID, err)
				peer.close()
				return
			}
			r.metrics.forwarded.Inc()

		case <-peer.done:
			return
		}
	}
}
