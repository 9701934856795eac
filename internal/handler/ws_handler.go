package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"linkhub/internal/app/hub"
	"linkhub/internal/pkg/auth/jwt"
	"linkhub/internal/pkg/errs"
	"linkhub/internal/pkg/limiter"
	"linkhub/internal/pkg/logx"
	"linkhub/internal/pkg/resp"
)

// HandleWebSocket upgrades the connection and runs the client loops. A valid token, in the
// Authorization header or the token query parameter, resumes the session without a login event.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", logx.AnonymizeIP(ip))
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		var identity *jwt.Payload
		if token := jwt.TokenFromRequest(r); token != "" {
			identity, err = deps.Tokens.Parse(token)
			if err != nil {
				logx.Info("WebSocket request rejected: invalid token")
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := hub.NewClient(deps.Hub, deps.Service, deps.Tokens, conn)

		if !deps.Hub.Register(client) {
			logx.Info("WebSocket connection refused: hub is shutting down")
			_ = conn.Close()
			return
		}

		go client.WritePump()

		if identity != nil && !client.Resume(r.Context(), identity.ID) {
			logx.Info("Token refers to an unknown user. Connection stays anonymous.", "user_id", identity.ID)
		}

		logx.Debug("WebSocket connection established", "conn", client.ConnID())

		client.ReadPump()
	}
}
