package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"colocate/contact-agent/internal/model"
)

const saveTimeout = 2 * time.Second

// Worker persists finalized contact events off the scanning path. It fulfils
// the scanner's event-store port: Save returns immediately and the insert
// runs in its own goroutine. Failures are logged, never surfaced; the caller
// has nothing useful to do with them mid-scan.
type Worker struct {
	store  *Store
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewWorker wraps a store with asynchronous saving.
func NewWorker(store *Store, logger *slog.Logger) *Worker {
	return &Worker{store: store, logger: logger}
}

// Save persists the event asynchronously. The caller's context bounds the
// save: cancelling it abandons unfinished inserts, matching the scanner's
// stop semantics.
func (w *Worker) Save(ctx context.Context, event model.ContactEvent) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
		defer cancel()

		if err := w.store.InsertContactEvent(saveCtx, event); err != nil {
			w.logger.Error("failed to persist contact event", "peer", event.PeerID, "error", err)
			return
		}
		w.logger.Info("contact event persisted",
			"peer", event.PeerID,
			"samples", len(event.RSSIValues),
			"duration", event.DurationSeconds)
	}()
}

// Wait blocks until every save issued so far has finished.
func (w *Worker) Wait() {
	w.wg.Wait()
}
