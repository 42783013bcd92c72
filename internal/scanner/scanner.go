// Package scanner drives the long-lived connection scan: discover peers
// advertising the contact-tracing service, connect, read their identifier
// once and their signal strength periodically, and emit one finalized
// contact event per completed encounter.
package scanner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"colocate/contact-agent/internal/ble"
	"colocate/contact-agent/internal/ident"
	"colocate/contact-agent/internal/model"
)

// DefaultPeriod is the interval between signal-strength samples.
const DefaultPeriod = 10 * time.Second

// Clock returns the current instant. Injected so encounter timestamps and
// durations are deterministic under test.
type Clock func() time.Time

// EventStore receives finalized contact events. Save is fire-and-forget:
// the store owns durability and must not block the caller's scanning loop.
type EventStore interface {
	Save(ctx context.Context, event model.ContactEvent)
}

// Scanner owns the discovery loop and one capture pipeline per connected
// peer. Pipelines are fully independent; a failure in one never affects the
// discovery stream or any other peer.
type Scanner struct {
	transport ble.Transport
	events    EventStore
	filters   []ble.Filter
	clock     Clock
	period    time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	records map[string]*model.ContactEvent

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started atomic.Bool
}

// Option adjusts scanner construction.
type Option func(*Scanner)

// WithClock overrides the wall clock.
func WithClock(clock Clock) Option {
	return func(s *Scanner) { s.clock = clock }
}

// WithPeriod overrides the signal sampling period.
func WithPeriod(period time.Duration) Option {
	return func(s *Scanner) { s.period = period }
}

// WithFilters overrides the advertisement filters.
func WithFilters(filters []ble.Filter) Option {
	return func(s *Scanner) { s.filters = filters }
}

// New constructs a scanner over the given transport and event store.
func New(transport ble.Transport, events EventStore, logger *slog.Logger, opts ...Option) *Scanner {
	s := &Scanner{
		transport: transport,
		events:    events,
		filters:   ble.DefaultFilters(),
		clock:     time.Now,
		period:    DefaultPeriod,
		logger:    logger,
		records:   make(map[string]*model.ContactEvent),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins discovery. It returns once the discovery stream is running;
// capture pipelines are spawned as peers appear. Stop (or cancelling ctx)
// halts everything.
func (s *Scanner) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("scanner already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	adverts, err := s.transport.Scan(runCtx)
	if err != nil {
		cancel()
		s.started.Store(false)
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			var adv ble.Advertisement
			var ok bool
			select {
			case <-runCtx.Done():
				return
			case adv, ok = <-adverts:
				if !ok {
					return
				}
			}
			if !ble.MatchesAny(s.filters, adv) {
				continue
			}
			// Guard against re-triggering on a peer we are already
			// connected to or connecting to.
			if s.transport.ConnectionState(adv.Address) != ble.Disconnected {
				continue
			}
			s.wg.Add(1)
			go func(addr string) {
				defer s.wg.Done()
				s.captureEvents(runCtx, addr)
			}(adv.Address)
		}
	}()

	return nil
}

// Stop cancels discovery and every in-flight pipeline. In-flight records
// that have not reached finalization are abandoned, not flushed.
func (s *Scanner) Stop() {
	if !s.started.CompareAndSwap(true, false) {
		return
	}
	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	abandoned := len(s.records)
	s.records = make(map[string]*model.ContactEvent)
	s.mu.Unlock()

	if abandoned > 0 {
		s.logger.Warn("scanner stopped with open encounters", "abandoned", abandoned)
	}
}

// captureEvents runs one peer's pipeline: connect, read the identifier once
// while sampling signal strength on the period, and finalize on any error.
func (s *Scanner) captureEvents(ctx context.Context, addr string) {
	conn, err := s.transport.Connect(ctx, addr)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("connect failed", "peer", addr, "error", err)
		}
		return
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			s.logger.Debug("close connection", "peer", addr, "error", cerr)
		}
	}()

	join := &captureJoin{scanner: s, addr: addr}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		raw, err := conn.ReadCharacteristic(connCtx, ble.IdentityCharacteristicUUID)
		if err != nil {
			if connCtx.Err() == nil {
				s.logger.Warn("identifier read failed", "peer", addr, "error", err)
			}
			return
		}
		id, err := ident.FromBytes(raw)
		if err != nil {
			s.logger.Warn("identifier read garbled", "peer", addr, "error", err)
			return
		}
		join.onIdentifier(id, s.clock())
	}()

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		rssi, err := conn.ReadRSSI(connCtx)
		if err != nil {
			if errors.Is(err, context.Canceled) || connCtx.Err() != nil {
				// Global stop: the encounter is abandoned, not finalized.
				return
			}
			s.logger.Warn("lost connection to peer", "peer", addr, "error", err)
			s.finalize(ctx, addr)
			return
		}
		join.onRSSI(rssi)

		select {
		case <-connCtx.Done():
			return
		case <-ticker.C:
		}
	}
}

// finalize closes the encounter for an address: the record leaves the
// working set exactly once, gets its duration, and goes to the event store.
// A peer that was never identified has no record and stores nothing.
func (s *Scanner) finalize(ctx context.Context, addr string) {
	s.mu.Lock()
	record, ok := s.records[addr]
	delete(s.records, addr)
	s.mu.Unlock()

	if !ok {
		return
	}

	record.DurationSeconds = int64(s.clock().Sub(record.StartedAt) / time.Second)
	s.logger.Debug("contact event closed",
		"peer", addr,
		"id", record.PeerID,
		"samples", len(record.RSSIValues),
		"duration", record.DurationSeconds)
	s.events.Save(ctx, *record)
}

// createRecord inserts a new record into the working set at the moment the
// identifier-and-first-sample join completes.
func (s *Scanner) createRecord(addr string, id ident.Identifier, startedAt time.Time, rssi int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[addr]; exists {
		return
	}
	s.records[addr] = &model.ContactEvent{
		PeerID:     id,
		StartedAt:  startedAt,
		RSSIValues: []int{rssi},
	}
}

// appendSample adds a sample to an open record. Samples for an address with
// no record are dropped; finalization may have already removed it.
func (s *Scanner) appendSample(addr string, rssi int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[addr]
	if !ok {
		return
	}
	record.RSSIValues = append(record.RSSIValues, rssi)
}

// captureJoin is the rendezvous between the one-shot identifier read and the
// periodic signal reads. The record only becomes visible once both have
// produced a value; the first joint emission carries the latest signal
// sample, matching a combine-latest of the two streams.
type captureJoin struct {
	scanner *Scanner
	addr    string

	mu       sync.Mutex
	id       *ident.Identifier
	idAt     time.Time
	lastRSSI int
	hasRSSI  bool
	joined   bool
}

func (j *captureJoin) onIdentifier(id ident.Identifier, at time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.id = &id
	j.idAt = at
	j.emit()
}

func (j *captureJoin) onRSSI(rssi int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lastRSSI = rssi
	j.hasRSSI = true
	j.emit()
}

// emit is called with j.mu held.
func (j *captureJoin) emit() {
	if j.id == nil || !j.hasRSSI {
		return
	}
	if !j.joined {
		j.joined = true
		j.scanner.createRecord(j.addr, *j.id, j.idAt, j.lastRSSI)
		return
	}
	j.scanner.appendSample(j.addr, j.lastRSSI)
}
