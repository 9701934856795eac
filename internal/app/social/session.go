package social

import (
	"context"

	"linkhub/internal/app/directory"
	"linkhub/internal/app/presence"
)

// KickReason is sent to a connection replaced by a newer login of the same user.
const KickReason = "Signed in from another connection."

// LoginState is everything a freshly bound session needs to render its view.
type LoginState struct {
	Profile       directory.Profile
	OnlineFriends []string
	History       []DirectMessage
	Links         []string
}

// Register creates a new account. It does not log the caller in.
func (s *Service) Register(ctx context.Context, username, password string) (directory.Profile, error) {
	profile, err := s.dir.Register(ctx, username, password)
	if err != nil {
		return directory.Profile{}, err
	}

	s.logger.Info().Str("user_id", profile.ID).Str("username", profile.Username).Msg("User registered.")

	return profile, nil
}

// Login authenticates the credentials and binds sess to the user.
func (s *Service) Login(ctx context.Context, username, password string, sess presence.Session) (LoginState, error) {
	profile, err := s.dir.Authenticate(username, password)
	if err != nil {
		s.logger.Info().Str("username", username).Str("conn", sess.ConnID()).Msg("Login rejected.")
		return LoginState{}, err
	}

	return s.attach(ctx, profile, sess), nil
}

// Resume binds sess to an already authenticated user ID, e.g. one carried by a token.
func (s *Service) Resume(ctx context.Context, userID string, sess presence.Session) (LoginState, bool) {
	profile, ok := s.dir.GetByID(userID)
	if !ok {
		return LoginState{}, false
	}

	return s.attach(ctx, profile, sess), true
}

func (s *Service) attach(ctx context.Context, profile directory.Profile, sess presence.Session) LoginState {
	current, bound := s.presence.UserOf(sess)
	if bound && current != profile.ID {
		s.release(sess, "switch")
	}
	rebind := bound && current == profile.ID

	if prev := s.presence.Bind(profile.ID, sess); prev != nil {
		prev.Kick(KickReason)
	} else if !rebind {
		s.notifyFriends(profile.Friends, EventFriendOnline, FriendPresence{Username: profile.Username})
	}

	state := LoginState{
		Profile:       profile,
		OnlineFriends: s.onlineAmong(profile.Friends),
		History:       s.History(ctx, profile.ID),
		Links:         s.links.Snapshot(),
	}

	s.logger.Info().
		Str("user_id", profile.ID).
		Str("username", profile.Username).
		Str("conn", sess.ConnID()).
		Int("replayed", len(state.History)).
		Msg("Session bound.")

	return state
}

// Logout unbinds sess. It reports whether sess was the live session of its user.
func (s *Service) Logout(sess presence.Session) bool {
	return s.release(sess, "logout")
}

// Disconnect is Logout for a connection that went away.
func (s *Service) Disconnect(sess presence.Session) bool {
	return s.release(sess, "disconnect")
}

func (s *Service) release(sess presence.Session, cause string) bool {
	userID, removed := s.presence.Unbind(sess)
	if !removed {
		return false
	}

	profile, ok := s.dir.GetByID(userID)
	if ok {
		s.notifyFriends(profile.Friends, EventFriendOffline, FriendPresence{Username: profile.Username})
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("conn", sess.ConnID()).
		Str("cause", cause).
		Msg("Session released.")

	return true
}

// CurrentUser returns the profile bound to sess.
func (s *Service) CurrentUser(sess presence.Session) (directory.Profile, bool) {
	userID, ok := s.presence.UserOf(sess)
	if !ok {
		return directory.Profile{}, false
	}
	return s.dir.GetByID(userID)
}

// IsCurrent reports whether sess is still the live session of its user.
func (s *Service) IsCurrent(sess presence.Session) bool {
	userID, ok := s.presence.UserOf(sess)
	if !ok {
		return false
	}
	bound, ok := s.presence.Lookup(userID)
	return ok && bound == sess
}

// OnlineFriends lists the friends of profile that currently have a bound session.
func (s *Service) OnlineFriends(profile directory.Profile) []string {
	return s.onlineAmong(profile.Friends)
}

func (s *Service) notifyFriends(friends []string, event string, payload any) {
	var res Result
	for _, name := range friends {
		if id, ok := s.dir.IDOf(name); ok && s.presence.Online(id) {
			s.push(&res, id, event, payload)
		}
	}
}

func (s *Service) onlineAmong(names []string) []string {
	online := make([]string, 0, len(names))
	for _, name := range names {
		if id, ok := s.dir.IDOf(name); ok && s.presence.Online(id) {
			online = append(online, name)
		}
	}
	return online
}
