/*
Package social implements the relationship protocol, the direct-message relay and the shared
link feed on top of the user directory and the presence registry.

Every operation mutates the directory in a single transaction and then pushes events to the
affected parties that are online. Pushes are best-effort: offline parties are skipped, and
each operation reports who was reached and who was not in its Result.
*/
package social

import (
	"time"

	"github.com/rs/zerolog"

	"linkhub/internal/app/directory"
	"linkhub/internal/app/messagelog"
	"linkhub/internal/app/presence"
	"linkhub/internal/pkg/logx"
)

// Reasons reported by operations that turned into a no-op.
const (
	ReasonSenderNotFound   = "sender_not_found"
	ReasonTargetNotFound   = "target_not_found"
	ReasonSelf             = "self_relation"
	ReasonAlreadyFriends   = "already_friends"
	ReasonAlreadyRequested = "already_requested"
	ReasonNotRequested     = "not_requested"
	ReasonDuplicateLink    = "duplicate_link"
)

// Result describes what an operation did. RecipientOffline is not an error: offline parties
// are listed in Offline instead.
type Result struct {
	// Applied is true when state changed.
	Applied bool `json:"applied"`

	// Reason explains a no-op.
	Reason string `json:"reason,omitempty"`

	// Delivered lists the usernames that received a push.
	Delivered []string `json:"delivered,omitempty"`

	// Offline lists the usernames that were not online.
	Offline []string `json:"offline,omitempty"`

	// Dropped lists the usernames that were online but whose connection refused the push.
	Dropped []string `json:"dropped,omitempty"`

	// Stored is true when a direct message reached the message log.
	Stored bool `json:"stored,omitempty"`
}

// Broadcaster fans an event out to every connected session.
type Broadcaster interface {
	// BroadcastExcept pushes to all connections but except and returns how many were reached.
	BroadcastExcept(except presence.Session, event string, payload any) int
}

// Service wires the directory, presence, message log and link feed together.
type Service struct {
	dir         *directory.Directory
	presence    *presence.Registry
	log         messagelog.Log
	links       *LinkFeed
	broadcaster Broadcaster

	historyLimit int
	now          func() time.Time

	logger zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMessageLog enables store-then-forward delivery and login replay.
func WithMessageLog(l messagelog.Log) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithBroadcaster sets the fan-out used for shared links.
func WithBroadcaster(b Broadcaster) Option {
	return func(s *Service) {
		s.broadcaster = b
	}
}

// WithHistoryLimit caps the number of messages replayed at login.
func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		s.historyLimit = n
	}
}

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService constructs a Service.
func NewService(dir *directory.Directory, reg *presence.Registry, opts ...Option) *Service {
	s := &Service{
		dir:          dir,
		presence:     reg,
		links:        NewLinkFeed(DefaultMaxLinks),
		historyLimit: messagelog.DefaultHistoryLimit,
		now:          func() time.Time { return time.Now().UTC() },
		logger:       logx.Component("Social"),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Directory exposes the underlying directory for read-only lookups.
func (s *Service) Directory() *directory.Directory {
	return s.dir
}

// UserExists reports whether username is registered.
func (s *Service) UserExists(username string) bool {
	return s.dir.Exists(username)
}

// push delivers an event to userID if online and records the outcome in res.
func (s *Service) push(res *Result, userID, event string, payload any) {
	name, _ := s.dir.Username(userID)

	sess, ok := s.presence.Lookup(userID)
	if !ok {
		res.Offline = append(res.Offline, name)
		s.logger.Debug().
			Str("event", event).
			Str("recipient", name).
			Msg("Recipient offline. Push skipped.")
		return
	}

	if err := sess.Push(event, payload); err != nil {
		res.Dropped = append(res.Dropped, name)
		s.logger.Warn().
			Err(err).
			Str("event", event).
			Str("recipient", name).
			Str("conn", sess.ConnID()).
			Msg("Push refused by connection. Dropped.")
		return
	}

	res.Delivered = append(res.Delivered, name)
}
