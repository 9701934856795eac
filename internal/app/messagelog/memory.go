package messagelog

import (
	"context"
	"sync"
)

// MemoryLog is an in-process Log. Its contents are lost on restart.
type MemoryLog struct {
	mu        sync.RWMutex
	messages  []Message
	appendErr error
}

// NewMemory returns an empty MemoryLog.
func NewMemory() *MemoryLog {
	return &MemoryLog{}
}

// Append implements Log.
func (l *MemoryLog) Append(_ context.Context, m Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.appendErr != nil {
		return l.appendErr
	}

	l.messages = append(l.messages, m)
	return nil
}

// History implements Log.
func (l *MemoryLog) History(_ context.Context, userID string, limit int) ([]Message, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var out []Message
	for _, m := range l.messages {
		if m.FromID == userID || m.ToID == userID {
			out = append(out, m)
		}
	}

	if len(out) > limit {
		out = out[len(out)-limit:]
	}

	return out, nil
}

// FailAppends makes Append return err until called again with nil.
func (l *MemoryLog) FailAppends(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.appendErr = err
}

// Close implements Log.
func (l *MemoryLog) Close() error {
	return nil
}
