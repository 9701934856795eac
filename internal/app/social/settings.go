package social

import (
	"context"
	"regexp"
	"strings"

	"linkhub/internal/app/directory"
	"linkhub/internal/pkg/errs"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Rename changes the username of userID and tells online friends and pending requesters.
func (s *Service) Rename(ctx context.Context, userID, newName string) (directory.Profile, error) {
	oldName, ok := s.dir.Username(userID)
	if !ok {
		return directory.Profile{}, errs.NewError(errs.ErrNotLoggedIn)
	}

	profile, err := s.dir.Rename(ctx, oldName, strings.TrimSpace(newName))
	if err != nil {
		return directory.Profile{}, err
	}

	notice := FriendRenamed{OldName: oldName, NewName: profile.Username}
	s.notifyFriends(profile.Friends, EventFriendRenamed, notice)
	s.notifyFriends(s.requestedBy(profile.ID), EventFriendRenamed, notice)

	s.logger.Info().Str("user_id", userID).Str("old", oldName).Str("new", profile.Username).Msg("User renamed.")

	return profile, nil
}

// ChangePassword replaces the password of userID.
func (s *Service) ChangePassword(ctx context.Context, userID, password string) (directory.Profile, error) {
	if password == "" {
		return directory.Profile{}, errs.NewError(errs.ErrInvalidParams)
	}

	name, ok := s.dir.Username(userID)
	if !ok {
		return directory.Profile{}, errs.NewError(errs.ErrNotLoggedIn)
	}

	return s.dir.SetPassword(ctx, name, password)
}

// ChangeColor replaces the accent color of userID. Colors are #rrggbb.
func (s *Service) ChangeColor(ctx context.Context, userID, color string) (directory.Profile, error) {
	if !colorPattern.MatchString(color) {
		return directory.Profile{}, errs.NewError(errs.ErrColorInvalid)
	}

	name, ok := s.dir.Username(userID)
	if !ok {
		return directory.Profile{}, errs.NewError(errs.ErrNotLoggedIn)
	}

	return s.dir.SetColor(ctx, name, strings.ToLower(color))
}

// ChangePhoto replaces the photo of userID. An empty photo clears it.
func (s *Service) ChangePhoto(ctx context.Context, userID, photo string) (directory.Profile, error) {
	var value *string
	if photo != "" {
		if err := ValidatePhoto(photo); err != nil {
			return directory.Profile{}, err
		}
		value = &photo
	}

	name, ok := s.dir.Username(userID)
	if !ok {
		return directory.Profile{}, errs.NewError(errs.ErrNotLoggedIn)
	}

	return s.dir.SetPhoto(ctx, name, value)
}

// requestedBy lists users holding a pending request from userID.
func (s *Service) requestedBy(userID string) []string {
	var names []string
	for _, name := range s.dir.Usernames() {
		p, ok := s.dir.Get(name)
		if !ok {
			continue
		}
		for _, r := range p.Requests {
			if id, ok := s.dir.IDOf(r); ok && id == userID {
				names = append(names, name)
				break
			}
		}
	}
	return names
}
