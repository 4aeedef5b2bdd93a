package endpoints

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/signage/internal/db"
	"github.com/Nixie-Tech-LLC/signage/internal/http/api"
	"github.com/Nixie-Tech-LLC/signage/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/signage/internal/model"
	"github.com/Nixie-Tech-LLC/signage/internal/pairing"
)

// ChannelDropper closes a display's live channel. *realtime.Registry satisfies it.
type ChannelDropper interface {
	Drop(displayID string)
}

type DisplayController struct {
	store    db.Store
	pairing  *pairing.Service
	channels ChannelDropper
	now      func() time.Time
}

func newDisplayController(store db.Store, svc *pairing.Service, channels ChannelDropper) *DisplayController {
	return &DisplayController{store: store, pairing: svc, channels: channels, now: time.Now}
}

// DisplayModule mounts all authenticated /displays endpoints.
func DisplayModule(store db.Store, svc *pairing.Service, channels ChannelDropper) api.Module {
	ctl := newDisplayController(store, svc, channels)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/displays", ctl.listDisplays)
		c.POST("/displays", ctl.createDisplay)
		c.GET("/displays/:id", ctl.getDisplay)
		c.DELETE("/displays/:id", ctl.deleteDisplay)
	})
}

// ownedDisplay loads a display and checks it belongs to user.
func (d *DisplayController) ownedDisplay(ctx *gin.Context, id string, user *model.User) (model.Display, *api.APIError) {
	display, err := d.store.GetDisplay(ctx.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return model.Display{}, api.NotFound("Display not found")
	}
	if err != nil {
		log.Error().Err(err).Str("display_id", id).Msg("[displays] lookup failed")
		return model.Display{}, api.Internal("Failed to fetch display")
	}
	if display.ClientID != user.ID {
		log.Warn().Int("owner", display.ClientID).Int("user", user.ID).Msg("[displays] forbidden")
		return model.Display{}, api.Forbidden("Forbidden")
	}
	return display, nil
}

// GET /api/admin/displays
func (d *DisplayController) listDisplays(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := d.store.ListDisplays(ctx.Request.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Int("user", user.ID).Msg("[displays] list failed")
		return nil, api.Internal("Failed to fetch displays")
	}

	now := d.now()
	out := make([]packets.DisplayResponse, 0, len(all))
	for _, display := range all {
		out = append(out, packets.NewDisplayResponse(display, now))
	}
	return out, nil
}

// POST /api/admin/displays
func (d *DisplayController) createDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateDisplayRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if request.Resolution == "" {
		request.Resolution = model.DefaultResolution
	}

	display, err := d.pairing.CreateDisplay(ctx.Request.Context(), request.Name, request.Resolution, user.ID)
	if err != nil {
		log.Error().Err(err).Int("user", user.ID).Msg("[displays] create failed")
		return nil, api.Internal("Failed to create display")
	}
	return packets.NewDisplayResponse(display, d.now()), nil
}

// GET /api/admin/displays/:id
func (d *DisplayController) getDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	display, apiErr := d.ownedDisplay(ctx, ctx.Param("id"), user)
	if apiErr != nil {
		return nil, apiErr
	}
	return packets.NewDisplayResponse(display, d.now()), nil
}

// DELETE /api/admin/displays/:id
func (d *DisplayController) deleteDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	display, apiErr := d.ownedDisplay(ctx, ctx.Param("id"), user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := d.store.DeleteDisplay(ctx.Request.Context(), display.ID); err != nil {
		log.Error().Err(err).Str("display_id", display.ID).Msg("[displays] delete failed")
		return nil, api.Internal("Failed to delete display")
	}
	d.channels.Drop(display.ID)

	log.Info().Str("display_id", display.ID).Msg("display deleted")
	return packets.SuccessResponse{Success: true}, nil
}
