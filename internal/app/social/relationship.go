package social

import (
	"context"

	"linkhub/internal/app/directory"
)

// SendRequest records a pending friend request from `from` on `to` and notifies `to`.
// Self requests, duplicates, requests between friends and unknown users are no-ops.
func (s *Service) SendRequest(ctx context.Context, from, to string) (Result, error) {
	var (
		res          Result
		fromID, toID string
	)

	err := s.dir.Update(ctx, func(tx *directory.Tx) error {
		sender, ok := tx.Lookup(from)
		if !ok {
			res.Reason = ReasonSenderNotFound
			return nil
		}
		target, ok := tx.Lookup(to)
		if !ok {
			res.Reason = ReasonTargetNotFound
			return nil
		}

		switch {
		case sender.ID == target.ID:
			res.Reason = ReasonSelf
		case tx.IsFriend(target, sender.ID):
			res.Reason = ReasonAlreadyFriends
		case tx.HasRequest(target, sender.ID):
			res.Reason = ReasonAlreadyRequested
		default:
			res.Applied = tx.AddRequest(target, sender.ID)
			fromID, toID = sender.ID, target.ID
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if !res.Applied {
		s.logger.Debug().Str("from", from).Str("to", to).Str("reason", res.Reason).Msg("Friend request ignored.")
		return res, nil
	}

	pub, _ := s.dir.Public(fromID)
	s.push(&res, toID, EventFriendRequestNotification, FriendRequestNotification{
		From:  pub.Username,
		Color: pub.Color,
		Photo: pub.Photo,
	})

	s.logger.Info().Str("from", from).Str("to", to).Msg("Friend request recorded.")

	return res, nil
}

// AcceptRequest is performed by `to` on a pending request from `from`. Both become friends
// of each other atomically, the request disappears, and both are told about the other.
func (s *Service) AcceptRequest(ctx context.Context, from, to string) (Result, error) {
	var (
		res          Result
		fromID, toID string
	)

	err := s.dir.Update(ctx, func(tx *directory.Tx) error {
		requester, ok := tx.Lookup(from)
		if !ok {
			res.Reason = ReasonTargetNotFound
			return nil
		}
		accepter, ok := tx.Lookup(to)
		if !ok {
			res.Reason = ReasonSenderNotFound
			return nil
		}
		if !tx.HasRequest(accepter, requester.ID) {
			res.Reason = ReasonNotRequested
			return nil
		}

		tx.Befriend(accepter, requester)
		res.Applied = true
		fromID, toID = requester.ID, accepter.ID
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if !res.Applied {
		s.logger.Debug().Str("from", from).Str("to", to).Str("reason", res.Reason).Msg("Accept ignored.")
		return res, nil
	}

	fromName, _ := s.dir.Username(fromID)
	toName, _ := s.dir.Username(toID)

	s.push(&res, fromID, EventFriendAccepted, FriendAccepted{From: toName})
	s.push(&res, toID, EventFriendAccepted, FriendAccepted{From: fromName})

	s.logger.Info().Str("from", fromName).Str("to", toName).Msg("Friend request accepted.")

	return res, nil
}

// RejectRequest is performed by `to` and drops the pending request from `from`.
// The requester is not notified.
func (s *Service) RejectRequest(ctx context.Context, from, to string) (Result, error) {
	var res Result

	err := s.dir.Update(ctx, func(tx *directory.Tx) error {
		requester, ok := tx.Lookup(from)
		if !ok {
			res.Reason = ReasonTargetNotFound
			return nil
		}
		rejecter, ok := tx.Lookup(to)
		if !ok {
			res.Reason = ReasonSenderNotFound
			return nil
		}

		res.Applied = tx.RemoveRequest(rejecter, requester.ID)
		if !res.Applied {
			res.Reason = ReasonNotRequested
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.logger.Debug().Str("from", from).Str("to", to).Bool("applied", res.Applied).Msg("Friend request rejected.")

	return res, nil
}
