/*
Package handler provides HTTP handler functions for user authentication and management.
*/
package handler

import (
	"net/http"
	"strings"

	"linkhub/internal/app/directory"
	"linkhub/internal/pkg/auth/jwt"
	"linkhub/internal/pkg/errs"
	"linkhub/internal/pkg/logx"
	"linkhub/internal/pkg/req"
	"linkhub/internal/pkg/resp"
)

// CredentialsInput is the body of the register and login endpoints.
type CredentialsInput struct {
	Username string `json:"username" validate:"required,max=32"`
	Password string `json:"password" validate:"required,max=128"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string            `json:"token"`
	User  directory.Profile `json:"user"`
}

// HandleRegister creates a new account and returns a session token for it.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CredentialsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		profile, err := deps.Service.Register(r.Context(), strings.TrimSpace(input.Username), input.Password)
		if err != nil {
			logx.Info("register rejected", "username", input.Username, "code", errs.CodeOf(err))
			resp.RespondErr(w, r, err)
			return
		}

		respondWithToken(w, r, deps, profile)
	}
}

// HandleLogin verifies user credentials and issues a JWT token. It does not bind a session;
// the token is presented on the WebSocket upgrade for that.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CredentialsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		profile, err := deps.Service.Directory().Authenticate(strings.TrimSpace(input.Username), input.Password)
		if err != nil {
			logx.Warn("login: invalid credentials", "username", input.Username)
			resp.RespondErr(w, r, err)
			return
		}

		respondWithToken(w, r, deps, profile)
	}
}

func respondWithToken(w http.ResponseWriter, r *http.Request, deps *AppDeps, profile directory.Profile) {
	token, _, err := deps.Tokens.Issue(profile.ID, profile.Username)
	if err != nil {
		logx.Error(err, "jwt generation failed", "user_id", profile.ID)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	resp.RespondSuccess(w, r, AuthResponse{Token: token, User: profile})
}

// identityFrom returns the token identity of r, or nil for anonymous requests.
func identityFrom(r *http.Request) *jwt.Payload {
	return jwt.GetPayloadFromContext(r)
}
