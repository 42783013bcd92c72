package model

import (
	"time"

	"colocate/contact-agent/internal/ident"
)

// ContactEvent captures one encounter with a peer: its identifier, the
// moment it was first identified, every signal-strength sample read while
// the connection stayed open, and the elapsed duration computed when the
// encounter ended.
type ContactEvent struct {
	PeerID          ident.Identifier `json:"peer_id"`
	StartedAt       time.Time        `json:"started_at"`
	RSSIValues      []int            `json:"rssi_values"`
	DurationSeconds int64            `json:"duration_seconds"`
}

// StoredContactEvent extends ContactEvent with database metadata.
type StoredContactEvent struct {
	ContactEvent
	ID         int64     `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
}

// Registration is the device identity issued by the resident API after a
// confirmed activation.
type Registration struct {
	ID        string `json:"id"`
	SecretKey string `json:"secret_key"`
	PublicKey string `json:"public_key"`
}
