package relay

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Conn represents the behavior required of a peer connection. A
// *websocket.Conn from gorilla satisfies this interface.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	RemoteAddr() net.Addr
	Close() error
}

// Message is a single frame received from or sent to a peer.
type Message struct {
	Type int
	Data []byte
}

// =============================================================================

// Peer represents a live connection tracked by the relay. A peer has no
// identity beyond its connection; the ID only exists for logging.
type Peer struct {
	ID   string
	Addr string

	conn  Conn
	queue chan Message
	done  chan struct{}
	once  sync.Once
}

func newPeer(conn Conn, queueSize int) *Peer {
	var addr string
	if ra := conn.RemoteAddr(); ra != nil {
		addr = ra.String()
	}

	return &Peer{
		ID:    uuid.NewString(),
		Addr:  addr,
		conn:  conn,
		queue: make(chan Message, queueSize),
		done:  make(chan struct{}),
	}
}

// enqueue places the message on the peer's outbound queue without blocking.
// It returns false if the peer is closed or its queue is full.
func (p *Peer) enqueue(msg Message) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.queue <- msg:
		return true
	default:
		return false
	}
}

// close tears down the connection. It is safe to call more than once and
// from any goroutine. The owning read loop notices the closed connection and
// removes the peer from the set.
func (p *Peer) close() {
	p.once.Do(func() {
		close(p.done)
		p.conn.Close()
	})
}

// =============================================================================

// PeerSet represents the set of currently connected peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[*Peer]struct{}
}

// NewPeerSet constructs an empty peer set.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[*Peer]struct{}),
	}
}

// Add adds a peer to the set.
func (ps *PeerSet) Add(peer *Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	_, exists := ps.set[peer]
	if !exists {
		ps.set[peer] = struct{}{}
		return true
	}

	return false
}

// Remove removes a peer from the set.
func (ps *PeerSet) Remove(peer *Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Copy returns a snapshot of the peers in the set, leaving out the
// specified peer. A nil exclude returns every peer.
func (ps *PeerSet) Copy(exclude *Peer) []*Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]*Peer, 0, len(ps.set))
	for peer := range ps.set {
		if peer != exclude {
			peers = append(peers, peer)
		}
	}

	return peers
}

// Len returns the number of peers in the set.
func (ps *PeerSet) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}
