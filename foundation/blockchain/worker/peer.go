package worker

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Settings for connecting to the known peers at startup.
const (
	dialTimeout      = 5 * time.Second
	maxDialsInFlight = 8
)

// connectPeers dials every known peer once. A peer that can't be reached is
// reported and skipped; there is no retry and no reconnect.
func (w *Worker) connectPeers() {
	w.evHandler("worker: connectPeers: started")
	defer w.evHandler("worker: connectPeers: completed")

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(maxDialsInFlight)

	for _, url := range w.knownPeers {
		url := url
		g.Go(func() error {
			if err := w.relay.Dial(ctx, url); err != nil {
				w.evHandler("worker: connectPeers: %s: ERROR: %s", url, err)
				return nil
			}
			w.evHandler("worker: connectPeers: %s: connected", url)
			return nil
		})
	}

	g.Wait()
}
