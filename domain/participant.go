// Package domain contains core concepts of the chat relay.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Participant represents a live member of the room.
// At most one record exists per distinct Name at any time.
type Participant struct {
	Name       string
	LastStatus time.Time
	Seq        uint64 // insertion order, assigned by the repository
}

// Stale reports whether the participant missed its heartbeat window.
func (p Participant) Stale(now time.Time, threshold time.Duration) bool {
	return now.Sub(p.LastStatus) > threshold
}
