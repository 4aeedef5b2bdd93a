package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/signage/internal/db"
	"github.com/Nixie-Tech-LLC/signage/internal/http/api"
	"github.com/Nixie-Tech-LLC/signage/internal/http/api/player/packets"
	"github.com/Nixie-Tech-LLC/signage/internal/model"
	"github.com/Nixie-Tech-LLC/signage/internal/pairing"
	"github.com/Nixie-Tech-LLC/signage/internal/realtime"
)

type PlayerController struct {
	store   db.Store
	pairing *pairing.Service
	now     func() time.Time
}

func newPlayerController(store db.Store, svc *pairing.Service) *PlayerController {
	return &PlayerController{store: store, pairing: svc, now: time.Now}
}

// PlayerModule mounts the device-facing endpoints. linkGuard runs before link
// (the attempt throttle); the other routes need the group's display auth.
func PlayerModule(store db.Store, svc *pairing.Service, linkGuard ...gin.HandlerFunc) api.Module {
	ctl := newPlayerController(store, svc)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/link", ctl.link, linkGuard...)
		c.DISPLAY_POST("/checkin", ctl.checkIn)
		c.DISPLAY_GET("/playlist/:displayId", ctl.playlist)
	})
}

// ChannelModule mounts the live update channel.
func ChannelModule(hub *realtime.Hub) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.RAW(http.MethodGet, "/ws", gin.WrapF(hub.ServeWS))
	})
}

// POST /api/player/link
func (p *PlayerController) link(ctx *gin.Context) (any, *api.APIError) {
	var request packets.LinkRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest("invalid request body")
	}

	result, err := p.pairing.Link(ctx.Request.Context(), request.InviteCode)
	switch {
	case errors.Is(err, pairing.ErrInviteCodeRequired):
		return nil, api.BadRequest("Invite code is required")
	case errors.Is(err, pairing.ErrInviteCodeNotFound):
		return nil, api.NotFound("Invalid invite code")
	case err != nil:
		log.Error().Err(err).Msg("link display failed")
		return nil, api.Internal("Failed to link display")
	}

	return packets.LinkResponse{
		DisplayID:   result.DisplayID,
		AccessToken: result.AccessToken,
		Message:     packets.LinkedMessage,
	}, nil
}

// POST /api/player/checkin
func (p *PlayerController) checkIn(ctx *gin.Context, display *model.Display) (any, *api.APIError) {
	err := p.store.UpdateLastCheckIn(ctx.Request.Context(), display.ID, p.now())
	if errors.Is(err, db.ErrNotFound) {
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "unauthorized"}
	}
	if err != nil {
		log.Error().Err(err).Str("display_id", display.ID).Msg("check-in failed")
		return nil, api.Internal("Failed to check in")
	}
	return packets.CheckInResponse{Success: true}, nil
}

// GET /api/player/playlist/:displayId
func (p *PlayerController) playlist(ctx *gin.Context, display *model.Display) (any, *api.APIError) {
	if ctx.Param("displayId") != display.ID {
		log.Warn().Str("display_id", display.ID).Str("requested", ctx.Param("displayId")).
			Msg("playlist requested for another display")
		return nil, api.Forbidden("Forbidden - token does not match display")
	}

	items, err := p.store.GetAssignedPlaylistItems(ctx.Request.Context(), display.ID)
	if err != nil {
		log.Error().Err(err).Str("display_id", display.ID).Msg("playlist fetch failed")
		return nil, api.Internal("Failed to fetch playlist")
	}
	if items == nil {
		items = []model.ActivePlaylistItem{}
	}
	return items, nil
}
