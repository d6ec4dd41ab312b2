// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"net/http"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/relay"
	"github.com/ardanlabs/gossipchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	Relay *relay.Relay
	WS    websocket.Upgrader
}

// Connect upgrades the connection and hands it to the relay for the life of
// the peer. Peers are not authenticated.
func (h Handlers) Connect(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	conn, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	h.Log.Infow("relay peer", "traceid", web.GetTraceID(ctx), "remoteaddr", r.RemoteAddr)

	if err := h.Relay.Handle(conn); err != nil && !errors.Is(err, relay.ErrClosed) {
		return err
	}

	return nil
}

// Peers returns the set of connected peers.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	type peer struct {
		ID   string `json:"id"`
		Addr string `json:"addr"`
	}

	peers := h.Relay.Peers()

	resp := make([]peer, len(peers))
	for i, p := range peers {
		resp[i] = peer{ID: p.ID, Addr: p.Addr}
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
