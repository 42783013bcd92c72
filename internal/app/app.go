package app

import (
	"context"
	"log/slog"
	"time"

	"colocate/contact-agent/internal/ble"
	"colocate/contact-agent/internal/config"
	"colocate/contact-agent/internal/model"
	"colocate/contact-agent/internal/scanner"
	"colocate/contact-agent/internal/store"
	"colocate/contact-agent/internal/uplink"
)

const retentionSweepInterval = 12 * time.Hour

// App wires together the contact-agent services and manages their lifecycle.
type App struct {
	cfg       config.Config
	logger    *slog.Logger
	transport ble.Transport
	store     *store.Store
	publisher *uplink.Publisher
}

// New constructs a new application instance over the given transport.
func New(cfg config.Config, logger *slog.Logger, transport ble.Transport) *App {
	return &App{cfg: cfg, logger: logger, transport: transport}
}

// Run starts all configured services and blocks until the context is cancelled or an error occurs.
func (a *App) Run(ctx context.Context) error {
	db, err := store.Open(a.cfg.DatabasePath)
	if err != nil {
		return err
	}
	a.store = db

	if err := a.store.InitSchema(ctx); err != nil {
		return err
	}

	defer func() {
		if cerr := a.store.Close(); cerr != nil {
			a.logger.Error("close store", "error", cerr)
		}
	}()

	if a.cfg.MQTTBrokerAddress != "" {
		publisher, err := uplink.Dial(a.cfg.MQTTBrokerAddress, a.cfg.DeviceID, a.logger)
		if err != nil {
			return err
		}
		a.publisher = publisher
		defer a.publisher.Close()
	}

	worker := store.NewWorker(a.store, a.logger)
	sink := &contactSink{worker: worker, publisher: a.publisher, logger: a.logger}

	scan := scanner.New(a.transport, sink, a.logger, scanner.WithPeriod(a.cfg.ScanPeriod))
	if err := scan.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("proximity scanner started", "period", a.cfg.ScanPeriod)

	a.purgeExpired(ctx)

	sweep := time.NewTicker(retentionSweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			scan.Stop()
			a.logger.Info("proximity scanner stopped")
			worker.Wait()
			return nil
		case <-sweep.C:
			a.purgeExpired(ctx)
		}
	}
}

// purgeExpired drops contact events older than the retention window.
func (a *App) purgeExpired(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -a.cfg.RetentionDays)

	purgeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := a.store.PurgeContactEventsBefore(purgeCtx, cutoff)
	if err != nil {
		a.logger.Error("retention purge failed", "error", err)
		return
	}
	if n > 0 {
		a.logger.Info("purged expired contact events", "removed", n, "cutoff", cutoff)
	}
}

// contactSink fans a finalized contact event out to persistence and, when
// configured, the telemetry uplink.
type contactSink struct {
	worker    *store.Worker
	publisher *uplink.Publisher
	logger    *slog.Logger
}

func (s *contactSink) Save(ctx context.Context, event model.ContactEvent) {
	s.worker.Save(ctx, event)

	if s.publisher == nil {
		return
	}
	go func() {
		if err := s.publisher.PublishContactEvent(event); err != nil {
			s.logger.Warn("uplink publish failed", "peer", event.PeerID, "error", err)
		}
	}()
}
