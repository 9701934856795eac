package presence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	id     string
	kicked bool
}

func (f *fakeSession) ConnID() string         { return f.id }
func (f *fakeSession) Push(string, any) error { return nil }
func (f *fakeSession) Kick(string)            { f.kicked = true }

func Test_Bind_And_Lookup(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	c1 := &fakeSession{id: "c1"}

	req.Nil(r.Bind("u1", c1))

	s, ok := r.Lookup("u1")
	req.True(ok)
	req.Same(c1, s)
	req.True(r.Online("u1"))
	req.Equal(1, r.Count())

	userID, ok := r.UserOf(c1)
	req.True(ok)
	req.Equal("u1", userID)
}

func Test_Bind_Overwrites_And_Returns_Previous(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	c1 := &fakeSession{id: "c1"}
	c2 := &fakeSession{id: "c2"}

	r.Bind("u1", c1)
	prev := r.Bind("u1", c2)
	req.Same(c1, prev)

	s, _ := r.Lookup("u1")
	req.Same(c2, s)
	req.Equal(1, r.Count())

	req.Nil(r.Bind("u1", c2))
}

func Test_Stale_Unbind_Does_Not_Evict_Newer_Session(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	c1 := &fakeSession{id: "c1"}
	c2 := &fakeSession{id: "c2"}

	r.Bind("u1", c1)
	r.Bind("u1", c2)

	_, removed := r.Unbind(c1)
	req.False(removed)

	s, ok := r.Lookup("u1")
	req.True(ok)
	req.Same(c2, s)

	userID, removed := r.Unbind(c2)
	req.True(removed)
	req.Equal("u1", userID)
	req.False(r.Online("u1"))
}

func Test_Rebinding_Session_To_Other_User_Releases_First(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	c1 := &fakeSession{id: "c1"}

	r.Bind("u1", c1)
	r.Bind("u2", c1)

	req.False(r.Online("u1"))
	req.True(r.Online("u2"))
	req.Equal([]string{"u2"}, r.OnlineUsers())
}

func Test_Unbind_Unknown_Session(t *testing.T) {
	r := NewRegistry()

	_, removed := r.Unbind(&fakeSession{id: "ghost"})
	require.False(t, removed)
}
