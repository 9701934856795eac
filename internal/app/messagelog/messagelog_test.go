package messagelog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestBadger(t *testing.T) *BadgerLog {
	t.Helper()

	l, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	return l
}

func conversation(at time.Time) []Message {
	return []Message{
		{ID: "m1", FromID: "alice", ToID: "bob", Text: "hi", At: at},
		{ID: "m2", FromID: "bob", ToID: "alice", Text: "hello", At: at.Add(time.Second)},
		{ID: "m3", FromID: "carol", ToID: "bob", Text: "yo", At: at.Add(2 * time.Second)},
	}
}

func eachLog(t *testing.T, fn func(t *testing.T, l Log)) {
	t.Run("badger", func(t *testing.T) { fn(t, openTestBadger(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
}

func Test_History_Is_Per_Participant_And_Chronological(t *testing.T) {
	eachLog(t, func(t *testing.T, l Log) {
		req := require.New(t)
		ctx := context.Background()
		at := time.Now().UTC()

		for _, m := range conversation(at) {
			req.NoError(l.Append(ctx, m))
		}

		bob, err := l.History(ctx, "bob", 0)
		req.NoError(err)
		req.Len(bob, 3)
		req.Equal([]string{"m1", "m2", "m3"}, []string{bob[0].ID, bob[1].ID, bob[2].ID})

		alice, err := l.History(ctx, "alice", 0)
		req.NoError(err)
		req.Len(alice, 2)
		req.Equal("hi", alice[0].Text)
		req.Equal("hello", alice[1].Text)

		nobody, err := l.History(ctx, "dave", 0)
		req.NoError(err)
		req.Empty(nobody)
	})
}

func Test_History_Limit_Keeps_Most_Recent(t *testing.T) {
	eachLog(t, func(t *testing.T, l Log) {
		req := require.New(t)
		ctx := context.Background()
		at := time.Now().UTC()

		for i := 0; i < 5; i++ {
			req.NoError(l.Append(ctx, Message{
				ID:     fmt.Sprintf("m%d", i),
				FromID: "alice",
				ToID:   "bob",
				Text:   fmt.Sprintf("msg %d", i),
				At:     at.Add(time.Duration(i) * time.Second),
			}))
		}

		got, err := l.History(ctx, "bob", 2)
		req.NoError(err)
		req.Len(got, 2)
		req.Equal("m3", got[0].ID)
		req.Equal("m4", got[1].ID)
	})
}

func Test_Badger_History_Survives_Reopen(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	l, err := OpenBadger(dir)
	req.NoError(err)
	req.NoError(l.Append(ctx, Message{ID: "m1", FromID: "alice", ToID: "bob", Text: "hi", At: time.Now().UTC()}))
	req.NoError(l.Close())

	reopened, err := OpenBadger(dir)
	req.NoError(err)
	defer reopened.Close()

	got, err := reopened.History(ctx, "bob", 0)
	req.NoError(err)
	req.Len(got, 1)
	req.Equal("hi", got[0].Text)
}

func Test_Equal_Timestamps_Keep_Append_Order(t *testing.T) {
	eachLog(t, func(t *testing.T, l Log) {
		req := require.New(t)
		ctx := context.Background()
		at := time.Now().UTC()

		for _, id := range []string{"z", "m", "a"} {
			req.NoError(l.Append(ctx, Message{ID: id, FromID: "alice", ToID: "bob", Text: id, At: at}))
		}

		bob, err := l.History(ctx, "bob", 0)
		req.NoError(err)
		req.Len(bob, 3)
		req.Equal([]string{"z", "m", "a"}, []string{bob[0].ID, bob[1].ID, bob[2].ID})
	})
}
