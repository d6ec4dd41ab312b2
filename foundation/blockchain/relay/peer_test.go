package relay

import (
	"net"
	"testing"
	"time"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type nopConn struct{}

func (nopConn) ReadMessage() (int, []byte, error) { return 0, nil, net.ErrClosed }
func (nopConn) WriteMessage(int, []byte) error    { return nil }
func (nopConn) SetWriteDeadline(time.Time) error  { return nil }
func (nopConn) RemoteAddr() net.Addr              { return nil }
func (nopConn) Close() error                      { return nil }

// =============================================================================

func Test_CRUD(t *testing.T) {
	type table struct {
		name  string
		peers int
	}

	tt := []table{
		{name: "basic", peers: 3},
		{name: "single", peers: 1},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			ps := NewPeerSet()

			peers := make([]*Peer, tst.peers)
			for i := range peers {
				peers[i] = newPeer(nopConn{}, 1)
				if !ps.Add(peers[i]) {
					t.Fatalf("Test %s:\t%s\tShould be able to add peer %d.", tst.name, failed, i)
				}
			}

			if ps.Add(peers[0]) {
				t.Fatalf("Test %s:\t%s\tShould not add the same connection twice.", tst.name, failed)
			}
			t.Logf("Test %s:\t%s\tShould not add the same connection twice.", tst.name, success)

			got := ps.Copy(nil)
			if len(got) != tst.peers {
				t.Logf("Test %s:\tgot: %d", tst.name, len(got))
				t.Logf("Test %s:\texp: %d", tst.name, tst.peers)
				t.Fatalf("Test %s:\t%s\tShould get back all the peers.", tst.name, failed)
			}

			got = ps.Copy(peers[0])
			if len(got) != tst.peers-1 {
				t.Logf("Test %s:\tgot: %d", tst.name, len(got))
				t.Logf("Test %s:\texp: %d", tst.name, tst.peers-1)
				t.Fatalf("Test %s:\t%s\tShould leave out the excluded peer.", tst.name, failed)
			}
			for _, p := range got {
				if p == peers[0] {
					t.Fatalf("Test %s:\t%s\tShould not return the excluded peer.", tst.name, failed)
				}
			}
			t.Logf("Test %s:\t%s\tShould leave out the excluded peer.", tst.name, success)

			ps.Remove(peers[0])
			if ps.Len() != tst.peers-1 {
				t.Fatalf("Test %s:\t%s\tShould remove the peer.", tst.name, failed)
			}
			t.Logf("Test %s:\t%s\tShould remove the peer.", tst.name, success)
		}

		t.Run(tst.name, f)
	}
}

func Test_Enqueue(t *testing.T) {
	t.Log("Given the need to queue frames for a peer without blocking.")
	{
		p := newPeer(nopConn{}, 1)

		if !p.enqueue(Message{Type: TextMessage, Data: []byte("a")}) {
			t.Fatalf("\t%s\tShould queue the first frame.", failed)
		}
		t.Logf("\t%s\tShould queue the first frame.", success)

		if p.enqueue(Message{Type: TextMessage, Data: []byte("b")}) {
			t.Fatalf("\t%s\tShould refuse a frame when the queue is full.", failed)
		}
		t.Logf("\t%s\tShould refuse a frame when the queue is full.", success)

		<-p.queue
		p.close()
		p.close()

		if p.enqueue(Message{Type: TextMessage, Data: []byte("c")}) {
			t.Fatalf("\t%s\tShould refuse a frame for a closed peer.", failed)
		}
		t.Logf("\t%s\tShould refuse a frame for a closed peer.", success)
	}
}
