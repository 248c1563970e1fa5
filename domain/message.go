// Package domain contains core concepts of the chat relay.
// This file defines Message events and the visibility rule.
// Messages are immutable once created.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Broadcast is the reserved "to" value addressing every participant.
// It is not a participant identity.
const Broadcast = "Todos"

// Room notice texts, stamped on system-generated status messages.
const (
	JoinedRoomText = "entra na sala..."
	LeftRoomText   = "sai da sala..."
)

type MessageType string

const (
	TypeMessage MessageType = "message"
	TypePrivate MessageType = "private_message"
	TypeStatus  MessageType = "status"
)

// Message represents an immutable chat event.
// Ordering is the store-assigned insertion sequence, never the formatted time.
type Message struct {
	ID   uuid.UUID
	From string
	To   string
	Text string
	Type MessageType
	At   time.Time
}

// VisibleTo decides whether reader may see the message:
// status events and broadcasts are public, targeted messages are
// visible to both ends. A private message between two other parties
// must never match.
func (m Message) VisibleTo(reader string) bool {
	return m.Type == TypeStatus ||
		m.To == Broadcast ||
		m.To == reader ||
		m.From == reader
}
