package hub

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"linkhub/internal/app/directory"
	"linkhub/internal/app/social"
	"linkhub/internal/pkg/errs"
	"linkhub/internal/pkg/req"
)

// eventTimeout bounds the storage work of a single inbound event.
const eventTimeout = 10 * time.Second

type eventHandler func(c *Client, ctx context.Context, in Inbound) (any, error)

var routes = map[string]eventHandler{
	EventRegister:        (*Client).handleRegister,
	EventLogin:           (*Client).handleLogin,
	EventLogout:          (*Client).handleLogout,
	EventCheckUserExists: (*Client).handleCheckUserExists,
	EventFriendRequest:   (*Client).handleFriendRequest,
	EventAcceptRequest:   (*Client).handleAcceptRequest,
	EventRejectRequest:   (*Client).handleRejectRequest,
	EventDM:              (*Client).handleDM,
	EventChangeName:      (*Client).handleChangeName,
	EventChangePassword:  (*Client).handleChangePassword,
	EventChangeColor:     (*Client).handleChangeColor,
	EventChangePhoto:     (*Client).handleChangePhoto,
	EventNewLink:         (*Client).handleNewLink,
}

// dispatch decodes one inbound frame, runs its handler and reports the outcome.
// Events of one connection are handled one at a time, in arrival order.
func (c *Client) dispatch(raw []byte) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		c.logger.Warn().Err(err).Int("size", len(raw)).Msg("Client sent invalid JSON")
		c.SendError("", errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	handler, ok := routes[in.Type]
	if !ok {
		c.logger.Warn().Str("event", in.Type).Msg("Client sent unsupported event")
		c.reply(in, nil, errs.NewError(errs.ErrUnsupportedEvent))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	data, err := handler(c, ctx, in)
	c.reply(in, data, err)
}

// reply acknowledges events that carried a tempId and reports failures of the others.
func (c *Client) reply(in Inbound, data any, err error) {
	if err != nil {
		switch in.Type {
		case EventRegister:
			c.pushError(social.EventRegisterError, err)
		case EventLogin:
			c.pushError(social.EventLoginError, err)
		default:
			if in.TempID == "" {
				c.SendError(in.Type, err)
			}
		}
	}

	if in.TempID == "" {
		return
	}

	ack := AckPayload{TempID: in.TempID, OK: err == nil, Data: data}
	if err != nil {
		customErr := errs.From(err)
		ack.Code = customErr.Code
		ack.Message = customErr.Message
		ack.Data = nil
	}

	if pushErr := c.Push(EventAck, ack); pushErr != nil {
		c.logger.Warn().Err(pushErr).Str("event", in.Type).Msg("Failed to queue ACK message")
	}
}

func (c *Client) pushError(event string, err error) {
	customErr := errs.From(err)
	if pushErr := c.Push(event, ErrorPayload{Code: customErr.Code, Message: customErr.Message}); pushErr != nil {
		c.logger.Warn().Err(pushErr).Str("event", event).Msg("Failed to queue error event")
	}
}

// currentUser returns the profile bound to this connection.
func (c *Client) currentUser() (directory.Profile, error) {
	if c.kicked.Load() {
		return directory.Profile{}, errs.NewError(errs.ErrSessionKicked)
	}

	profile, ok := c.svc.CurrentUser(c)
	if !ok {
		return directory.Profile{}, errs.NewError(errs.ErrNotLoggedIn)
	}

	return profile, nil
}

func (c *Client) handleRegister(ctx context.Context, in Inbound) (any, error) {
	var p CredentialsPayload
	if err := req.DecodePayload(in.Payload, &p); err != nil {
		return nil, err
	}

	profile, err := c.svc.Register(ctx, strings.TrimSpace(p.Username), p.Password)
	if err != nil {
		return nil, err
	}

	if err := c.Push(social.EventRegisterSuccess, profile); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to queue registerSuccess")
	}

	return profile, nil
}

func (c *Client) handleLogin(ctx context.Context, in Inbound) (any, error) {
	var p CredentialsPayload
	if err := req.DecodePayload(in.Payload, &p); err != nil {
		return nil, err
	}

	// A kicked connection is already closing. Binding it again would evict the newer session.
	if c.kicked.Load() {
		return nil, errs.NewError(errs.ErrSessionKicked)
	}

	state, err := c.svc.Login(ctx, strings.TrimSpace(p.Username), p.Password, c)
	if err != nil {
		return nil, err
	}

	return c.sendLoginState(state), nil
}

// sendLoginState pushes loginSuccess followed by the replayed direct messages and links.
func (c *Client) sendLoginState(state social.LoginState) social.LoginSuccess {
	success := social.LoginSuccess{
		Profile:       state.Profile,
		Token:         c.issueToken(state.Profile.ID, state.Profile.Username),
		OnlineFriends: state.OnlineFriends,
	}

	events := []struct {
		name    string
		payload any
	}{
		{social.EventLoginSuccess, success},
		{social.EventDMHistory, social.DMHistory{Messages: state.History}},
		{social.EventLinkHistory, social.LinkHistory{Links: state.Links}},
	}

	for _, e := range events {
		if err := c.Push(e.name, e.payload); err != nil {
			c.logger.Warn().Err(err).Str("event", e.name).Msg("Failed to queue login state")
		}
	}

	return success
}

// Resume binds the connection to userID without credentials, for a connection that presented
// a valid token at upgrade time. It reports false for unknown users.
func (c *Client) Resume(ctx context.Context, userID string) bool {
	state, ok := c.svc.Resume(ctx, userID, c)
	if !ok {
		return false
	}

	c.sendLoginState(state)
	return true
}

func (c *Client) handleLogout(_ context.Context, _ Inbound) (any, error) {
	if _, err := c.currentUser(); err != nil {
		return nil, err
	}

	c.svc.Logout(c)
	c.tokenExpiry.Store(0)

	if err := c.Push(social.EventLoggedOut, struct{}{}); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to queue loggedOut")
	}

	return nil, nil
}

func (c *Client) handleCheckUserExists(_ context.Context, in Inbound) (any, error) {
	username, err := stringPayload(in.Payload, "username")
	if err != nil {
		return nil, err
	}

	exists := c.svc.UserExists(username)

	if in.TempID == "" {
		payload := struct {
			Username string `json:"username"`
			Exists   bool   `json:"exists"`
		}{username, exists}

		if err := c.Push(social.EventUserExists, payload); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to queue userExists")
		}
	}

	return exists, nil
}

func (c *Client) handleFriendRequest(ctx context.Context, in Inbound) (any, error) {
	profile, err := c.currentUser()
	if err != nil {
		return nil, err
	}

	var p RelationPayload
	if err := req.DecodePayload(in.Payload, &p); err != nil {
		return nil, err
	}
	if p.From != profile.Username {
		return nil, errs.NewError(errs.ErrUnauthorized)
	}

	return c.svc.SendRequest(ctx, p.From, p.To)
}

func (c *Client) handleAcceptRequest(ctx context.Context, in Inbound) (any, error) {
	p, err := c.ownRelation(in)
	if err != nil {
		return nil, err
	}

	return c.svc.AcceptRequest(ctx, p.From, p.To)
}

func (c *Client) handleRejectRequest(ctx context.Context, in Inbound) (any, error) {
	p, err := c.ownRelation(in)
	if err != nil {
		return nil, err
	}

	return c.svc.RejectRequest(ctx, p.From, p.To)
}

// ownRelation decodes an accept or reject payload, whose `to` must be the bound user.
func (c *Client) ownRelation(in Inbound) (RelationPayload, error) {
	profile, err := c.currentUser()
	if err != nil {
		return RelationPayload{}, err
	}

	var p RelationPayload
	if err := req.DecodePayload(in.Payload, &p); err != nil {
		return RelationPayload{}, err
	}
	if p.To != profile.Username {
		return RelationPayload{}, errs.NewError(errs.ErrUnauthorized)
	}

	return p, nil
}

func (c *Client) handleDM(ctx context.Context, in Inbound) (any, error) {
	profile, err := c.currentUser()
	if err != nil {
		return nil, err
	}

	var p DMPayload
	if err := req.DecodePayload(in.Payload, &p); err != nil {
		return nil, err
	}

	return c.svc.SendDM(ctx, profile.ID, p.To, p.Msg)
}

func (c *Client) handleChangeName(ctx context.Context, in Inbound) (any, error) {
	profile, err := c.currentUser()
	if err != nil {
		return nil, err
	}

	var p NamePayload
	if err := req.DecodePayload(in.Payload, &p); err != nil {
		return nil, err
	}

	updated, err := c.svc.Rename(ctx, profile.ID, p.NewName)
	if err != nil {
		return nil, err
	}

	return c.confirm(social.EventNameChanged, social.NameChanged{Username: updated.Username})
}

func (c *Client) handleChangePassword(ctx context.Context, in Inbound) (any, error) {
	profile, err := c.currentUser()
	if err != nil {
		return nil, err
	}

	var p PasswordPayload
	if err := req.DecodePayload(in.Payload, &p); err != nil {
		return nil, err
	}

	if _, err := c.svc.ChangePassword(ctx, profile.ID, p.Password); err != nil {
		return nil, err
	}

	return c.confirm(social.EventPasswordChanged, struct{}{})
}

func (c *Client) handleChangeColor(ctx context.Context, in Inbound) (any, error) {
	profile, err := c.currentUser()
	if err != nil {
		return nil, err
	}

	var p ColorPayload
	if err := req.DecodePayload(in.Payload, &p); err != nil {
		return nil, err
	}

	updated, err := c.svc.ChangeColor(ctx, profile.ID, p.Color)
	if err != nil {
		return nil, err
	}

	return c.confirm(social.EventColorChanged, social.ColorChanged{Color: updated.Color})
}

func (c *Client) handleChangePhoto(ctx context.Context, in Inbound) (any, error) {
	profile, err := c.currentUser()
	if err != nil {
		return nil, err
	}

	var p PhotoPayload
	if err := req.DecodePayload(in.Payload, &p); err != nil {
		return nil, err
	}

	updated, err := c.svc.ChangePhoto(ctx, profile.ID, p.Photo)
	if err != nil {
		return nil, err
	}

	return c.confirm(social.EventPhotoChanged, social.PhotoChanged{Photo: updated.Photo})
}

func (c *Client) handleNewLink(_ context.Context, in Inbound) (any, error) {
	if _, err := c.currentUser(); err != nil {
		return nil, err
	}

	link, err := stringPayload(in.Payload, "url")
	if err != nil {
		return nil, err
	}

	return c.svc.ShareLink(c, link)
}

// confirm pushes a settings confirmation to this connection and returns it as ack data.
func (c *Client) confirm(event string, payload any) (any, error) {
	if err := c.Push(event, payload); err != nil {
		c.logger.Warn().Err(err).Str("event", event).Msg("Failed to queue confirmation")
	}
	return payload, nil
}

// stringPayload accepts either a bare JSON string or an object carrying it under field.
func stringPayload(raw json.RawMessage, field string) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return requireString(s)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if err := json.Unmarshal(obj[field], &s); err != nil {
		return "", errs.NewError(errs.ErrInvalidParams)
	}

	return requireString(s)
}

func requireString(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errs.NewError(errs.ErrInvalidParams)
	}
	return s, nil
}
