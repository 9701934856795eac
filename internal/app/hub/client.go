/*
Package hub is the WebSocket transport of linkhub.

This file defines the Client struct, representing an active WebSocket connection. It manages the
connection lifecycle and the read and write loops (ReadPump and WritePump), and implements
presence.Session so the social service can push events to it.
*/
package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"linkhub/internal/app/social"
	"linkhub/internal/pkg/errs"
	"linkhub/internal/pkg/logx"
	"linkhub/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client. Photos travel inline.
	maxMessageSize = 1 << 20

	// number of outbound messages buffered per connection.
	sendBufferSize = 256

	// inbound events allowed per second per connection, and the burst on top.
	eventRate  = 20
	eventBurst = 40

	// WsCloseCodeSessionKicked is a custom WebSocket Close Code (4000-4999 range)
	// used to signal the client that the session was replaced by a new connection.
	WsCloseCodeSessionKicked = 4001

	// TokenRefreshWindow defines how much time before the token expires we should attempt to refresh it.
	TokenRefreshWindow = 2 * time.Minute
)

var (
	errClientClosed = errors.New("client connection closed")
	errQueueFull    = errors.New("client send queue full")
)

// TokenIssuer signs session tokens handed out at login.
type TokenIssuer interface {
	Issue(userID, username string) (token string, expiresAt time.Time, err error)
}

// Client struct represents an active WebSocket connection and the user bound to it, if any.
type Client struct {
	hub    *Hub
	svc    *social.Service
	tokens TokenIssuer

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// id identifies the connection in logs.
	id string

	// a buffered channel used to queue messages waiting to be sent to the client.
	send chan []byte

	// kick carries the close reason when a newer login replaces this connection.
	kick chan string

	// done is closed once the client stops accepting messages.
	done      chan struct{}
	closeOnce sync.Once

	kicked atomic.Bool

	// tokenExpiry is the expiry of the last issued token in Unix seconds, zero when logged out.
	tokenExpiry atomic.Int64

	limiter *rate.Limiter

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs and returns a new Client instance.
func NewClient(h *Hub, svc *social.Service, tokens TokenIssuer, wsConn *websocket.Conn) *Client {
	id := randx.MessageID()

	return &Client{
		hub:     h,
		svc:     svc,
		tokens:  tokens,
		conn:    wsConn,
		id:      id,
		send:    make(chan []byte, sendBufferSize),
		kick:    make(chan string, 1),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(rate.Limit(eventRate), eventBurst),
		logger:  logx.Logger().With().Str("conn", id).Logger(),
	}
}

// ConnID implements presence.Session.
func (c *Client) ConnID() string {
	return c.id
}

// Push implements presence.Session by queueing an event for the write loop.
func (c *Client) Push(event string, payload any) error {
	return c.sendMessage(NewMessage(event, payload))
}

// Kick implements presence.Session. The write loop sends a close frame with
// WsCloseCodeSessionKicked and shuts the connection down.
func (c *Client) Kick(reason string) {
	c.kicked.Store(true)

	select {
	case c.kick <- reason:
	default:
	}
}

// ReadPump handles reading messages from the WebSocket connection.
// It handles heartbeats (Pong), message dispatch, and performs cleanup upon connection closure.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		if !c.limiter.Allow() {
			c.SendError("", errs.NewError(errs.ErrRateLimitExceeded))
			continue
		}

		c.dispatch(messageBytes)
	}
}

// cleanupOnDisconnect handles the necessary cleanup steps when the client's ReadPump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.svc.Disconnect(c)
	c.hub.Unregister(c)
	c.close()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// close stops the client from accepting messages and ends the write loop.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// WritePump handles writing messages from the Client.send channel to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.close()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message := <-c.send:
			if !c.writeQueuedMessage(message) {
				return
			}

		case reason := <-c.kick:
			c.writeClose(WsCloseCodeSessionKicked, reason)
			return

		case <-c.done:
			c.writeClose(websocket.CloseGoingAway, "server closing connection")
			return

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}

			c.checkAndRefreshToken()
		}
	}
}

// writeQueuedMessage writes one queued message. It returns false if the loop should terminate.
func (c *Client) writeQueuedMessage(message []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// writeClose sends a close frame. Errors are logged only, the connection is closed right after.
func (c *Client) writeClose(code int, reason string) {
	c.logger.Info().
		Int("close_code", code).
		Str("reason", reason).
		Msg("Sending WS close message and closing connection.")

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return
	}

	closeMessage := websocket.FormatCloseMessage(code, reason)
	if err := c.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to send WS close message.")
	}
}

// checkAndRefreshToken issues a new token when the current one is close to expiry.
func (c *Client) checkAndRefreshToken() {
	expiry := c.tokenExpiry.Load()
	if expiry == 0 || c.tokens == nil {
		return
	}

	if time.Now().Before(time.Unix(expiry, 0).Add(-TokenRefreshWindow)) {
		return
	}

	profile, ok := c.svc.CurrentUser(c)
	if !ok {
		return
	}

	c.logger.Info().
		Time("current_expiry", time.Unix(expiry, 0)).
		Dur("refresh_window", TokenRefreshWindow).
		Msg("JWT token is nearing expiry, attempting refresh.")

	token, expiresAt, err := c.tokens.Issue(profile.ID, profile.Username)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to generate new token. Aborting refresh.")
		return
	}

	if err := c.Push(EventTokenUpdate, TokenUpdatePayload{Token: token}); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to send token update to client.")
		return
	}

	c.tokenExpiry.Store(expiresAt.Unix())
}

// issueToken signs a token for the bound user and starts tracking its expiry.
func (c *Client) issueToken(userID, username string) string {
	if c.tokens == nil {
		return ""
	}

	token, expiresAt, err := c.tokens.Issue(userID, username)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to issue session token.")
		return ""
	}

	c.tokenExpiry.Store(expiresAt.Unix())
	return token
}

// sendMessage marshals the data and attempts to send it to the client's send channel.
func (c *Client) sendMessage(data any) error {
	messageBytes, err := json.Marshal(data)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling data for client")
		return err
	}

	return c.enqueue(messageBytes)
}

// enqueue hands pre-encoded bytes to the write loop without blocking.
func (c *Client) enqueue(messageBytes []byte) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping message")
		return errQueueFull
	}
}

// SendError sends an error event. Errors without a business code are reported as ErrUnknown.
func (c *Client) SendError(event string, err error) {
	customErr := errs.From(err)
	if customErr.Code == errs.ErrUnknown {
		c.logger.Error().Err(err).Str("event", event).Msg("Unhandled error while processing event")
	}

	payload := ErrorPayload{
		Code:    customErr.Code,
		Message: customErr.Message,
		Event:   event,
	}

	if err := c.Push(EventError, payload); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to queue error message")
	}
}
