/*
Package messagelog stores direct messages so they can be replayed when a user logs in.

Messages are append-only. Each message is indexed under both participants, so one prefix
scan returns a user's whole conversation history in order.
*/
package messagelog

import (
	"context"
	"time"
)

// DefaultHistoryLimit caps how many messages are replayed at login.
const DefaultHistoryLimit = 200

// Message is one stored direct message. Participants are user IDs, so history survives renames.
type Message struct {
	ID     string    `json:"id"`
	FromID string    `json:"fromId"`
	ToID   string    `json:"toId"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

// Log is the message log collaborator of the direct-message relay.
type Log interface {
	// Append durably stores m under both participants.
	Append(ctx context.Context, m Message) error

	// History returns up to limit of the most recent messages involving userID, oldest first.
	History(ctx context.Context, userID string, limit int) ([]Message, error)

	// Close releases the underlying resources.
	Close() error
}
