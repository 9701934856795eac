package handler

import (
	"linkhub/internal/app/hub"
	"linkhub/internal/app/social"
	"linkhub/internal/configs"
	"linkhub/internal/pkg/auth/jwt"
)

// AppDeps bundles what the HTTP and WebSocket handlers need.
type AppDeps struct {
	Service *social.Service
	Hub     *hub.Hub
	Tokens  *jwt.Issuer
	Config  *configs.AppConfig
}
