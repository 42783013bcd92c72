// Package ble defines the wireless transport boundary the proximity scanner
// drives. The agent itself never talks to a radio directly; a platform
// integration fulfils Transport, and SimTransport provides a scriptable
// in-memory implementation for simulation and tests.
package ble

import "context"

const (
	// ServiceUUID identifies peers advertising the contact-tracing service.
	ServiceUUID = "c1f5983c-fa94-4ac8-8e2e-bb86d6de9b21"

	// IdentityCharacteristicUUID is the characteristic holding the peer's
	// 64-byte identifier.
	IdentityCharacteristicUUID = "85bf337c-5b64-48eb-a5f7-a9fed135c972"

	// AppleCompanyID is the manufacturer id under which a backgrounded
	// iPhone advertises the service (see BackgroundedIPhoneFilter).
	AppleCompanyID = 76
)

// ConnectionState reflects the transport-level state of a peer address.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

// Advertisement is one observation from the discovery stream.
type Advertisement struct {
	Address          string
	ServiceUUIDs     []string
	ManufacturerID   uint16
	ManufacturerData []byte
	RSSI             int
}

// Transport is the port onto the short-range radio.
type Transport interface {
	// Scan starts discovery and yields advertisements until the context is
	// cancelled. The returned channel is closed when discovery ends.
	Scan(ctx context.Context) (<-chan Advertisement, error)

	// ConnectionState reports the current state of a peer address.
	ConnectionState(addr string) ConnectionState

	// Connect establishes a connection to a discovered peer. No retry is
	// attempted at this layer.
	Connect(ctx context.Context, addr string) (Connection, error)
}

// Connection is one established link to a peer.
type Connection interface {
	// ReadCharacteristic reads the value of a characteristic once.
	ReadCharacteristic(ctx context.Context, uuid string) ([]byte, error)

	// ReadRSSI samples the current signal strength. Callable repeatedly;
	// a transport error here means the link is gone.
	ReadRSSI(ctx context.Context) (int, error)

	Close() error
}
