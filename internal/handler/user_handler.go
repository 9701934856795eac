package handler

import (
	"net/http"
	"strings"

	"linkhub/internal/pkg/errs"
	"linkhub/internal/pkg/logx"
	"linkhub/internal/pkg/resp"
)

// HandleGetUserProfile returns the profile of the token holder, with friends and requests
// resolved to current usernames and the online state of each friend.
func HandleGetUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFrom(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		profile, ok := deps.Service.Directory().GetByID(identity.ID)
		if !ok {
			logx.Warn("get_user_profile: user not found", "id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user":          profile,
			"onlineFriends": deps.Service.OnlineFriends(profile),
		})
	}
}

// HandleUserExists answers whether a username is registered.
func HandleUserExists(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := strings.TrimSpace(r.URL.Query().Get("username"))
		if username == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"username": username,
			"exists":   deps.Service.UserExists(username),
		})
	}
}
