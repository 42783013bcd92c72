// Package ident implements the fixed-width peer identifier exchanged over
// the wireless transport.
package ident

import (
	"encoding/base64"
	"fmt"
)

// Length is the wire length of a peer identifier in bytes.
const Length = 64

// Identifier is the opaque blob that names a peer for the duration of one
// encounter. Equality is byte-exact; values are immutable once constructed.
type Identifier struct {
	raw [Length]byte
}

// FromBytes decodes an identifier from its wire form. The transport
// guarantees the length; anything else is treated as a failed read by the
// caller.
func FromBytes(b []byte) (Identifier, error) {
	if len(b) != Length {
		return Identifier{}, fmt.Errorf("identifier must be %d bytes, got %d", Length, len(b))
	}
	var id Identifier
	copy(id.raw[:], b)
	return id, nil
}

// Bytes returns the wire form of the identifier.
func (id Identifier) Bytes() []byte {
	out := make([]byte, Length)
	copy(out, id.raw[:])
	return out
}

// MarshalText encodes the identifier as base64 for storage and JSON.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(base64.StdEncoding.EncodeToString(id.raw[:])), nil
}

// UnmarshalText decodes a base64 identifier produced by MarshalText.
func (id *Identifier) UnmarshalText(text []byte) error {
	b, err := base64.StdEncoding.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("decode identifier: %w", err)
	}
	decoded, err := FromBytes(b)
	if err != nil {
		return err
	}
	*id = decoded
	return nil
}

// String returns a short, lossy form for logs. Never use it for equality.
func (id Identifier) String() string {
	enc := base64.RawStdEncoding.EncodeToString(id.raw[:8])
	return enc + ".."
}
