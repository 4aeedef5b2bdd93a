package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/signage/internal/auth"
	"github.com/Nixie-Tech-LLC/signage/internal/db"
	"github.com/Nixie-Tech-LLC/signage/internal/http/api"
	authapi "github.com/Nixie-Tech-LLC/signage/internal/http/api/admin/auth/endpoints"
	adminapi "github.com/Nixie-Tech-LLC/signage/internal/http/api/admin/control/endpoints"
	playerapi "github.com/Nixie-Tech-LLC/signage/internal/http/api/player/endpoints"
	"github.com/Nixie-Tech-LLC/signage/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/signage/internal/pairing"
	"github.com/Nixie-Tech-LLC/signage/internal/realtime"
	"github.com/Nixie-Tech-LLC/signage/internal/storage"
)

// Deps is everything the router needs.
type Deps struct {
	JWTSecret     string
	Store         db.Store
	Storage       storage.Storage
	Pairing       *pairing.Service
	Authenticator *auth.TokenAuthenticator
	Hub           *realtime.Hub
	Dispatcher    *realtime.Dispatcher
	LinkLimiter   middleware.Limiter // nil disables throttling
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, deps Deps) {
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
	},
		authapi.AuthPublicModule(deps.JWTSecret, deps.Store),
		adminapi.MediaFileModule(deps.Store, deps.Storage),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: deps.JWTSecret,
		Users:     deps.Store,
	},
		authapi.AuthSessionModule(deps.JWTSecret, deps.Store),
		adminapi.DisplayModule(deps.Store, deps.Pairing, deps.Hub.Registry()),
		adminapi.MediaModule(deps.Store, deps.Storage),
		adminapi.PlaylistModule(deps.Store, deps.Dispatcher),
		adminapi.ScheduleModule(deps.Store, deps.Dispatcher),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:      "/api/player",
		DisplayAuth: deps.Authenticator,
	},
		playerapi.PlayerModule(deps.Store, deps.Pairing, middleware.RateLimitByIP(deps.LinkLimiter)),
	)

	api.MountGroup(r, api.GroupConfig{},
		playerapi.ChannelModule(deps.Hub),
	)
}
