package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkhub/internal/app/directory"
	"linkhub/internal/app/hub"
	"linkhub/internal/app/messagelog"
	"linkhub/internal/app/presence"
	"linkhub/internal/app/social"
	"linkhub/internal/app/storage"
	"linkhub/internal/configs"
	"linkhub/internal/pkg/auth/jwt"
	"linkhub/internal/pkg/errs"
	"linkhub/internal/pkg/resp"
)

type envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

type testServer struct {
	srv  *httptest.Server
	deps *AppDeps
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := directory.New(storage.NewMemoryStore())
	require.NoError(t, dir.Load(context.Background()))

	wsHub := hub.NewHub()
	deps := &AppDeps{
		Service: social.NewService(dir, presence.NewRegistry(),
			social.WithMessageLog(messagelog.NewMemory()),
			social.WithBroadcaster(wsHub),
		),
		Hub:    wsHub,
		Tokens: jwt.NewIssuer("test-secret", time.Hour),
		Config: &configs.AppConfig{Environment: "development"},
	}

	router, stopLimiters := Router(deps)
	srv := httptest.NewServer(router)

	t.Cleanup(srv.Close)
	t.Cleanup(wsHub.Shutdown)
	t.Cleanup(stopLimiters)

	return &testServer{srv: srv, deps: deps}
}

func (s *testServer) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()

	u := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/ws"
	if token != "" {
		u += "?token=" + url.QueryEscape(token)
	}

	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, payload any, tempID string) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(hub.Inbound{Type: event, Payload: raw, TempID: tempID}))
}

// expect reads until an event of the given type arrives, skipping any other events.
func expect(t *testing.T, conn *websocket.Conn, event string) envelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg envelope
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", event)
		if msg.Type == event {
			return msg
		}
	}
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func login(t *testing.T, conn *websocket.Conn, username string) social.LoginSuccess {
	t.Helper()

	send(t, conn, hub.EventRegister, hub.CredentialsPayload{Username: username, Password: "pw"}, "")
	expect(t, conn, social.EventRegisterSuccess)

	send(t, conn, hub.EventLogin, hub.CredentialsPayload{Username: username, Password: "pw"}, "")
	success := decode[social.LoginSuccess](t, expect(t, conn, social.EventLoginSuccess).Payload)
	expect(t, conn, social.EventDMHistory)
	expect(t, conn, social.EventLinkHistory)

	return success
}

func Test_Alice_And_Bob_Over_WebSocket(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)

	alice := s.dial(t, "")
	bob := s.dial(t, "")

	aliceLogin := login(t, alice, "alice")
	req.NotEmpty(aliceLogin.Token)
	login(t, bob, "bob")

	send(t, alice, hub.EventFriendRequest, hub.RelationPayload{From: "alice", To: "bob"}, "t1")
	ack := decode[hub.AckPayload](t, expect(t, alice, hub.EventAck).Payload)
	req.Equal("t1", ack.TempID)
	req.True(ack.OK)

	note := decode[social.FriendRequestNotification](t, expect(t, bob, social.EventFriendRequestNotification).Payload)
	req.Equal("alice", note.From)
	req.Equal(directory.DefaultColor, note.Color)

	send(t, bob, hub.EventAcceptRequest, hub.RelationPayload{From: "alice", To: "bob"}, "")
	req.Equal("bob", decode[social.FriendAccepted](t, expect(t, alice, social.EventFriendAccepted).Payload).From)
	req.Equal("alice", decode[social.FriendAccepted](t, expect(t, bob, social.EventFriendAccepted).Payload).From)

	send(t, alice, hub.EventDM, hub.DMPayload{To: "bob", Msg: "hello"}, "")
	dm := decode[social.DirectMessage](t, expect(t, bob, social.EventDM).Payload)
	req.Equal("alice", dm.From)
	req.Equal("hello", dm.Msg)

	send(t, alice, hub.EventFriendRequest, hub.RelationPayload{From: "bob", To: "alice"}, "t2")
	ack = decode[hub.AckPayload](t, expect(t, alice, hub.EventAck).Payload)
	req.False(ack.OK)
	req.Equal(errs.ErrUnauthorized, ack.Code)

	httpReq, err := http.NewRequest(http.MethodGet, s.srv.URL+"/api/user/profile", nil)
	req.NoError(err)
	httpReq.Header.Set("Authorization", "Bearer "+aliceLogin.Token)

	res, err := http.DefaultClient.Do(httpReq)
	req.NoError(err)
	defer res.Body.Close()

	var body struct {
		Code int `json:"code"`
		Data struct {
			User          directory.Profile `json:"user"`
			OnlineFriends []string          `json:"onlineFriends"`
		} `json:"data"`
	}
	req.NoError(json.NewDecoder(res.Body).Decode(&body))
	req.Equal(0, body.Code)
	req.Equal([]string{"bob"}, body.Data.User.Friends)
	req.Equal([]string{"bob"}, body.Data.OnlineFriends)
}

func Test_Events_Require_Login(t *testing.T) {
	s := newTestServer(t)
	conn := s.dial(t, "")

	send(t, conn, hub.EventDM, hub.DMPayload{To: "bob", Msg: "hi"}, "")
	payload := decode[hub.ErrorPayload](t, expect(t, conn, hub.EventError).Payload)
	assert.Equal(t, errs.ErrNotLoggedIn, payload.Code)
	assert.Equal(t, hub.EventDM, payload.Event)

	send(t, conn, "teleport", map[string]string{}, "t1")
	ack := decode[hub.AckPayload](t, expect(t, conn, hub.EventAck).Payload)
	assert.Equal(t, errs.ErrUnsupportedEvent, ack.Code)
}

func Test_Login_Error_Event(t *testing.T) {
	s := newTestServer(t)
	conn := s.dial(t, "")

	send(t, conn, hub.EventLogin, hub.CredentialsPayload{Username: "ghost", Password: "pw"}, "")
	payload := decode[hub.ErrorPayload](t, expect(t, conn, social.EventLoginError).Payload)
	assert.Equal(t, errs.ErrInvalidCredentials, payload.Code)
}

func Test_Check_User_Exists(t *testing.T) {
	s := newTestServer(t)
	conn := s.dial(t, "")
	login(t, conn, "alice")

	send(t, conn, hub.EventCheckUserExists, "alice", "q1")
	ack := decode[hub.AckPayload](t, expect(t, conn, hub.EventAck).Payload)
	assert.True(t, ack.OK)
	assert.Equal(t, true, ack.Data)

	send(t, conn, hub.EventCheckUserExists, map[string]string{"username": "nobody"}, "q2")
	ack = decode[hub.AckPayload](t, expect(t, conn, hub.EventAck).Payload)
	assert.Equal(t, false, ack.Data)
}

func Test_Second_Login_Kicks_First_Connection(t *testing.T) {
	s := newTestServer(t)

	first := s.dial(t, "")
	login(t, first, "alice")

	second := s.dial(t, "")
	send(t, second, hub.EventLogin, hub.CredentialsPayload{Username: "alice", Password: "pw"}, "")
	expect(t, second, social.EventLoginSuccess)

	require.NoError(t, first.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, _, err := first.ReadMessage()
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, hub.WsCloseCodeSessionKicked), "unexpected error: %v", err)
			break
		}
	}

	send(t, second, hub.EventChangeColor, hub.ColorPayload{Color: "#112233"}, "")
	changed := decode[social.ColorChanged](t, expect(t, second, social.EventColorChanged).Payload)
	assert.Equal(t, "#112233", changed.Color)
}

func Test_Token_Resumes_Session_And_Links_Broadcast(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)

	body := strings.NewReader(`{"username":"carol","password":"pw"}`)
	res, err := http.Post(s.srv.URL+"/api/auth/register", "application/json", body)
	req.NoError(err)
	defer res.Body.Close()

	var reg struct {
		Code int          `json:"code"`
		Data AuthResponse `json:"data"`
	}
	req.NoError(json.NewDecoder(res.Body).Decode(&reg))
	req.Equal(0, reg.Code)
	req.Equal("carol", reg.Data.User.Username)

	carol := s.dial(t, reg.Data.Token)
	success := decode[social.LoginSuccess](t, expect(t, carol, social.EventLoginSuccess).Payload)
	req.Equal("carol", success.Profile.Username)

	dave := s.dial(t, "")
	login(t, dave, "dave")

	send(t, carol, hub.EventNewLink, "https://example.com/post", "")
	var link string
	req.NoError(json.Unmarshal(expect(t, dave, social.EventBroadcastLink).Payload, &link))
	req.Equal("https://example.com/post", link)
}

func Test_Register_Rejects_Bad_Body(t *testing.T) {
	s := newTestServer(t)

	res, err := http.Post(s.srv.URL+"/api/auth/register", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	defer res.Body.Close()

	var body resp.JSONResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, errs.ErrUnsupportedMediaType, body.Code)
}

func Test_Profile_Requires_Token(t *testing.T) {
	s := newTestServer(t)

	res, err := http.Get(s.srv.URL + "/api/user/profile")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
