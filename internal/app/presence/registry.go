/*
Package presence tracks which authenticated session currently represents each online user.

The registry is ephemeral: it starts empty with every process and holds at most one session
per user, last bind wins.
*/
package presence

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"linkhub/internal/pkg/logx"
)

// Session is a live client connection that can receive pushed events.
// Implementations must be comparable (pointer types).
type Session interface {
	// ConnID identifies the connection in logs.
	ConnID() string

	// Push queues an outbound event. It fails when the connection cannot accept more data.
	Push(event string, payload any) error

	// Kick closes the connection because a newer session replaced it.
	Kick(reason string)
}

// Registry maps user IDs to their bound session.
type Registry struct {
	mu sync.RWMutex

	byUser    map[string]Session
	bySession map[Session]string

	logger zerolog.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser:    make(map[string]Session),
		bySession: make(map[Session]string),
		logger:    logx.Component("Presence"),
	}
}

// Bind makes s the session of userID, overwriting any previous one, which is returned so the
// caller can close it. If s was bound to another user it is released from that user first.
func (r *Registry) Bind(userID string, s Session) (previous Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if oldUser, ok := r.bySession[s]; ok && oldUser != userID {
		if r.byUser[oldUser] == s {
			delete(r.byUser, oldUser)
		}
	}

	if prev, ok := r.byUser[userID]; ok && prev != s {
		delete(r.bySession, prev)
		previous = prev

		r.logger.Info().
			Str("user_id", userID).
			Str("old_conn", prev.ConnID()).
			Str("new_conn", s.ConnID()).
			Msg("Session replaced by a newer connection.")
	}

	r.byUser[userID] = s
	r.bySession[s] = userID

	return previous
}

// Unbind releases s. The entry is removed only if s is still the session bound for its user,
// so a late disconnect of a replaced connection never evicts the newer one.
func (r *Registry) Unbind(s Session) (userID string, removed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.bySession[s]
	if !ok {
		r.logger.Debug().Str("conn", s.ConnID()).Msg("Ignoring unbind for stale or anonymous session.")
		return "", false
	}

	delete(r.bySession, s)

	if r.byUser[userID] != s {
		return userID, false
	}

	delete(r.byUser, userID)
	return userID, true
}

// Lookup returns the session bound to userID.
func (r *Registry) Lookup(userID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byUser[userID]
	return s, ok
}

// Online reports whether userID has a bound session.
func (r *Registry) Online(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// UserOf returns the user ID s is bound to.
func (r *Registry) UserOf(s Session) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.bySession[s]
	return userID, ok
}

// OnlineUsers lists the user IDs with a bound session in sorted order.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.byUser))
	for id := range r.byUser {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// Count returns the number of online users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byUser)
}
