package messagelog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"linkhub/internal/pkg/logx"
)

// BadgerLog is a Log persisted in BadgerDB.
//
// Keys are "dm:{user_id}:{unix_nano_padded}:{seq_padded}:{message_id}". The zero padding keeps
// lexicographic order chronological, and seq orders messages appended with equal timestamps.
type BadgerLog struct {
	db     *badger.DB
	seq    atomic.Uint64
	logger zerolog.Logger
}

// OpenBadger opens (or creates) a Badger message log in dir.
func OpenBadger(dir string) (*BadgerLog, error) {
	logger := logx.Component("MessageLog")

	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open message log at %s: %w", dir, err)
	}

	return &BadgerLog{db: db, logger: logger}, nil
}

func messageKey(userID string, m Message, seq uint64) []byte {
	return []byte(fmt.Sprintf("dm:%s:%019d:%020d:%s", userID, m.At.UnixNano(), seq, m.ID))
}

func userPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("dm:%s:", userID))
}

// Append implements Log. Both index entries are written in one transaction.
func (l *BadgerLog) Append(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	seq := l.seq.Add(1)

	return l.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(m.FromID, m, seq), data); err != nil {
			return err
		}
		if m.ToID == m.FromID {
			return nil
		}
		return txn.Set(messageKey(m.ToID, m, seq), data)
	})
}

// History implements Log. It walks the user's prefix backwards from the newest entry and
// returns the collected messages in chronological order.
func (l *BadgerLog) History(ctx context.Context, userID string, limit int) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var messages []Message

	err := l.db.View(func(txn *badger.Txn) error {
		prefix := userPrefix(userID)

		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999~")...)

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(messages) == limit {
				break
			}

			var m Message
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			})
			if err != nil {
				return err
			}
			messages = append(messages, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read history for %s: %w", userID, err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// Close implements Log.
func (l *BadgerLog) Close() error {
	return l.db.Close()
}

// badgerLogger routes Badger's internal logging into zerolog.
type badgerLogger struct {
	logger zerolog.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.logger.Error().Msgf(format, args...)
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.logger.Warn().Msgf(format, args...)
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.logger.Debug().Msgf(format, args...)
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.logger.Trace().Msgf(format, args...)
}
