package social

import (
	"linkhub/internal/app/directory"
)

// Outbound event names.
const (
	EventRegisterSuccess           = "registerSuccess"
	EventRegisterError             = "registerError"
	EventLoginSuccess              = "loginSuccess"
	EventLoginError                = "loginError"
	EventLoggedOut                 = "loggedOut"
	EventUserExists                = "userExists"
	EventFriendRequestNotification = "friendRequestNotification"
	EventFriendAccepted            = "friendAccepted"
	EventFriendRenamed             = "friendRenamed"
	EventFriendOnline              = "friendOnline"
	EventFriendOffline             = "friendOffline"
	EventDM                        = "dm"
	EventDMHistory                 = "dmHistory"
	EventBroadcastLink             = "broadcastLink"
	EventLinkHistory               = "linkHistory"
	EventNameChanged               = "nameChanged"
	EventPasswordChanged           = "passwordChanged"
	EventColorChanged              = "colorChanged"
	EventPhotoChanged              = "photoChanged"
)

// FriendRequestNotification is pushed to the target of a friend request.
type FriendRequestNotification struct {
	From  string  `json:"from"`
	Color string  `json:"color"`
	Photo *string `json:"photo"`
}

// FriendAccepted is pushed to both parties of an accepted request; From is the other party.
type FriendAccepted struct {
	From string `json:"from"`
}

// FriendRenamed tells friends and pending requesters that a username changed.
type FriendRenamed struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
}

// FriendPresence announces a friend coming online or going offline.
type FriendPresence struct {
	Username string `json:"username"`
}

// DirectMessage is a relayed or replayed direct message.
type DirectMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Msg       string `json:"msg"`
	Timestamp int64  `json:"timestamp"`
}

// DMHistory carries the messages replayed at login, oldest first.
type DMHistory struct {
	Messages []DirectMessage `json:"messages"`
}

// LinkHistory carries the shared links replayed at login.
type LinkHistory struct {
	Links []string `json:"links"`
}

// LoginSuccess is the payload of a successful login.
type LoginSuccess struct {
	Profile       directory.Profile `json:"profile"`
	Token         string            `json:"token,omitempty"`
	OnlineFriends []string          `json:"onlineFriends"`
}

// NameChanged confirms a rename to the acting session.
type NameChanged struct {
	Username string `json:"username"`
}

// ColorChanged confirms a color change.
type ColorChanged struct {
	Color string `json:"color"`
}

// PhotoChanged confirms a photo change.
type PhotoChanged struct {
	Photo *string `json:"photo"`
}
