/*
Package randx provides the identifiers used throughout the server.

User IDs are the stable primary keys of the directory; usernames are only a renameable index.
*/
package randx

import (
	"github.com/google/uuid"
)

// UserID generates a new stable user identifier (UUID v4).
func UserID() string {
	return uuid.NewString()
}

// MessageID generates a standard UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.NewString()
}

// IsValidUserID reports whether id looks like an identifier produced by UserID.
func IsValidUserID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
