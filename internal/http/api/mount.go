package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/signage/internal/http/middleware"
)

// Module is a pluggable feature that attaches its endpoints to a Controller (a gin group).
type Module interface {
	Mount(c *Controller)
}

// ModuleFunc lets you define a Module with a simple function.
type ModuleFunc func(c *Controller)

func (f ModuleFunc) Mount(c *Controller) { f(c) }

// Controller wraps a gin group so modules register typed handlers instead of raw
// gin.HandlerFuncs. GET/POST/PUT/DELETE are the operator (JWT) variants.
type Controller struct {
	Group       *gin.RouterGroup
	displayAuth gin.HandlerFunc
}

func (c *Controller) GET(path string, h HandlerFuncWithAuth) {
	c.Group.GET(path, ResolveEndpointWithAuth(h))
}

func (c *Controller) POST(path string, h HandlerFuncWithAuth) {
	c.Group.POST(path, ResolveEndpointWithAuth(h))
}

func (c *Controller) PUT(path string, h HandlerFuncWithAuth) {
	c.Group.PUT(path, ResolveEndpointWithAuth(h))
}

func (c *Controller) DELETE(path string, h HandlerFuncWithAuth) {
	c.Group.DELETE(path, ResolveEndpointWithAuth(h))
}

func (c *Controller) PUBLIC_GET(path string, h HandlerFunc, mw ...gin.HandlerFunc) {
	c.Group.GET(path, append(mw, ResolveEndpoint(h))...)
}

func (c *Controller) PUBLIC_POST(path string, h HandlerFunc, mw ...gin.HandlerFunc) {
	c.Group.POST(path, append(mw, ResolveEndpoint(h))...)
}

// DISPLAY_GET and DISPLAY_POST run the group's display token check first.
func (c *Controller) DISPLAY_GET(path string, h HandlerFuncWithDisplay) {
	c.Group.GET(path, c.requireDisplayAuth(), ResolveEndpointWithDisplay(h))
}

func (c *Controller) DISPLAY_POST(path string, h HandlerFuncWithDisplay) {
	c.Group.POST(path, c.requireDisplayAuth(), ResolveEndpointWithDisplay(h))
}

// RAW registers an untyped handler, for endpoints that stream files or upgrade.
func (c *Controller) RAW(method, path string, handlers ...gin.HandlerFunc) {
	c.Group.Handle(method, path, handlers...)
}

func (c *Controller) requireDisplayAuth() gin.HandlerFunc {
	if c.displayAuth == nil {
		log.Fatal().Str("prefix", c.Group.BasePath()).Msg("api.Controller: display route mounted without DisplayAuth")
	}
	return c.displayAuth
}

// GroupConfig tells the api package how to mount a group.
type GroupConfig struct {
	Prefix      string
	Auth        bool
	SecretKey   string                          // required if Auth == true
	Users       middleware.UserLoader           // required if Auth == true
	DisplayAuth middleware.DisplayAuthenticator // enables DISPLAY_* routes
	Middleware  []gin.HandlerFunc               // optional additional middleware
}

// MountGroup mounts one or more Modules under a prefix with optional auth.
func MountGroup(parent gin.IRoutes, cfg GroupConfig, modules ...Module) {
	var grp *gin.RouterGroup

	switch v := parent.(type) {
	case *gin.Engine:
		grp = v.Group(cfg.Prefix)
	case *gin.RouterGroup:
		if cfg.Prefix != "" {
			grp = v.Group(cfg.Prefix)
		} else {
			grp = v
		}
	default:
		log.Fatal().Str("type", fmt.Sprintf("%T", parent)).Msg("api.MountGroup: unsupported router type")
	}

	// Apply middleware in a deterministic order.
	for _, mw := range cfg.Middleware {
		grp.Use(mw)
	}
	if cfg.Auth {
		if cfg.SecretKey == "" || cfg.Users == nil {
			log.Fatal().Msg("api.MountGroup: Auth enabled but SecretKey or Users is missing")
		}
		grp.Use(middleware.JWTMiddleware(cfg.SecretKey, cfg.Users))
	}

	controller := &Controller{Group: grp}
	if cfg.DisplayAuth != nil {
		controller.displayAuth = middleware.DisplayTokenMiddleware(cfg.DisplayAuth)
	}

	for _, m := range modules {
		m.Mount(controller)
	}
}
