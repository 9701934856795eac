package social

import (
	"context"
	"strings"
	"unicode/utf8"

	"linkhub/internal/app/messagelog"
	"linkhub/internal/pkg/errs"
	"linkhub/internal/pkg/randx"
)

// MaxMessageLength is the maximum number of characters in a direct message.
const MaxMessageLength = 5000

// SendDM relays text from the user fromID to the user named to. The message is appended to
// the message log before it is pushed. An unknown recipient is a no-op.
func (s *Service) SendDM(ctx context.Context, fromID, to, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, errs.NewError(errs.ErrInvalidParams)
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return Result{}, errs.NewError(errs.ErrMessageContentTooLong)
	}

	fromName, ok := s.dir.Username(fromID)
	if !ok {
		return Result{}, errs.NewError(errs.ErrNotLoggedIn)
	}

	toID, ok := s.dir.IDOf(to)
	if !ok {
		s.logger.Debug().Str("from", fromName).Str("to", to).Msg("Direct message to unknown user dropped.")
		return Result{Reason: ReasonTargetNotFound}, nil
	}

	msg := messagelog.Message{
		ID:     randx.MessageID(),
		FromID: fromID,
		ToID:   toID,
		Text:   text,
		At:     s.now(),
	}

	res := Result{Applied: true}

	if s.log != nil {
		if err := s.log.Append(ctx, msg); err != nil {
			s.logger.Error().
				Err(err).
				Str("from", fromName).
				Str("to", to).
				Msg("Failed to store direct message. Not delivered.")
			return Result{}, errs.Wrap(errs.ErrStorageWriteFailure, err)
		}
		res.Stored = true
	}

	s.push(&res, toID, EventDM, DirectMessage{
		ID:        msg.ID,
		From:      fromName,
		To:        to,
		Msg:       text,
		Timestamp: msg.At.UnixMilli(),
	})

	return res, nil
}

// History returns the most recent direct messages sent or received by userID, oldest first.
// Usernames are resolved at read time, so renamed users show their current name.
func (s *Service) History(ctx context.Context, userID string) []DirectMessage {
	if s.log == nil {
		return []DirectMessage{}
	}

	msgs, err := s.log.History(ctx, userID, s.historyLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to read message history.")
		return []DirectMessage{}
	}

	out := make([]DirectMessage, 0, len(msgs))
	for _, m := range msgs {
		from, _ := s.dir.Username(m.FromID)
		to, _ := s.dir.Username(m.ToID)
		out = append(out, DirectMessage{
			ID:        m.ID,
			From:      from,
			To:        to,
			Msg:       m.Text,
			Timestamp: m.At.UnixMilli(),
		})
	}

	return out
}
