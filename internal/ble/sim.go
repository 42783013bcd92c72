package ble

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// SimPeer describes one simulated device.
type SimPeer struct {
	Address    string
	Identifier []byte
	BaseRSSI   int
	RSSIJitter int
	// Lifetime bounds how long a connection stays readable. Once elapsed,
	// reads fail as if the peer went out of range. Zero means forever.
	Lifetime time.Duration
	// Backgrounded advertises the iPhone manufacturer-data fingerprint
	// instead of the service UUID.
	Backgrounded bool
}

// SimTransport is an in-memory Transport used by cmd/contact-sim and tests.
// Peers re-advertise on a fixed interval and drop off after their lifetime.
type SimTransport struct {
	peers          []SimPeer
	advertiseEvery time.Duration

	mu     sync.Mutex
	states map[string]ConnectionState
	rng    *rand.Rand
}

// NewSimTransport builds a transport over the given peers. advertiseEvery
// controls how often each peer re-advertises.
func NewSimTransport(peers []SimPeer, advertiseEvery time.Duration) *SimTransport {
	return &SimTransport{
		peers:          peers,
		advertiseEvery: advertiseEvery,
		states:         make(map[string]ConnectionState),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Scan emits one advertisement per peer immediately and then on every
// advertise interval until the context is cancelled.
func (t *SimTransport) Scan(ctx context.Context) (<-chan Advertisement, error) {
	out := make(chan Advertisement)

	go func() {
		defer close(out)

		ticker := time.NewTicker(t.advertiseEvery)
		defer ticker.Stop()

		for {
			for _, p := range t.peers {
				select {
				case out <- t.advertisement(p):
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return out, nil
}

func (t *SimTransport) advertisement(p SimPeer) Advertisement {
	adv := Advertisement{
		Address: p.Address,
		RSSI:    t.jittered(p),
	}
	if p.Backgrounded {
		adv.ManufacturerID = AppleCompanyID
		adv.ManufacturerData = BackgroundedIPhoneData()
	} else {
		adv.ServiceUUIDs = []string{ServiceUUID}
	}
	return adv
}

// ConnectionState reports the simulated link state for an address.
func (t *SimTransport) ConnectionState(addr string) ConnectionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[addr]
}

// Connect establishes a simulated connection.
func (t *SimTransport) Connect(ctx context.Context, addr string) (Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var peer *SimPeer
	for i := range t.peers {
		if t.peers[i].Address == addr {
			peer = &t.peers[i]
			break
		}
	}
	if peer == nil {
		return nil, fmt.Errorf("unknown peer %s", addr)
	}

	t.mu.Lock()
	t.states[addr] = Connected
	t.mu.Unlock()

	conn := &simConnection{transport: t, peer: *peer}
	if peer.Lifetime > 0 {
		conn.deadline = time.Now().Add(peer.Lifetime)
	}
	return conn, nil
}

func (t *SimTransport) disconnect(addr string) {
	t.mu.Lock()
	t.states[addr] = Disconnected
	t.mu.Unlock()
}

func (t *SimTransport) jittered(p SimPeer) int {
	if p.RSSIJitter <= 0 {
		return p.BaseRSSI
	}
	t.mu.Lock()
	delta := t.rng.Intn(p.RSSIJitter*2+1) - p.RSSIJitter
	t.mu.Unlock()
	return p.BaseRSSI + delta
}

type simConnection struct {
	transport *SimTransport
	peer      SimPeer
	deadline  time.Time
}

func (c *simConnection) ReadCharacteristic(ctx context.Context, uuid string) ([]byte, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	if uuid != IdentityCharacteristicUUID {
		return nil, fmt.Errorf("unknown characteristic %s", uuid)
	}
	out := make([]byte, len(c.peer.Identifier))
	copy(out, c.peer.Identifier)
	return out, nil
}

func (c *simConnection) ReadRSSI(ctx context.Context) (int, error) {
	if err := c.check(ctx); err != nil {
		return 0, err
	}
	return c.transport.jittered(c.peer), nil
}

func (c *simConnection) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.deadline.IsZero() && time.Now().After(c.deadline) {
		c.transport.disconnect(c.peer.Address)
		return fmt.Errorf("peer %s out of range", c.peer.Address)
	}
	return nil
}

func (c *simConnection) Close() error {
	c.transport.disconnect(c.peer.Address)
	return nil
}
