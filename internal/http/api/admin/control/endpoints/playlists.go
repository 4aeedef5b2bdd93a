package endpoints

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/signage/internal/db"
	"github.com/Nixie-Tech-LLC/signage/internal/http/api"
	"github.com/Nixie-Tech-LLC/signage/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

// Refresher pushes a reload signal to one display. *realtime.Dispatcher satisfies it.
type Refresher interface {
	NotifyRefresh(ctx context.Context, displayID string) bool
}

type PlaylistController struct {
	store     db.Store
	refresher Refresher
}

func newPlaylistController(store db.Store, refresher Refresher) *PlaylistController {
	return &PlaylistController{store: store, refresher: refresher}
}

// PlaylistModule mounts all authenticated /playlists and /playlist-items endpoints.
func PlaylistModule(store db.Store, refresher Refresher) api.Module {
	ctl := newPlaylistController(store, refresher)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/playlists", ctl.listPlaylists)
		c.POST("/playlists", ctl.createPlaylist)
		c.GET("/playlists/:id", ctl.getPlaylist)

		c.POST("/playlist-items", ctl.addItem)
		c.GET("/playlist-items/:playlistId", ctl.listItems)
		c.DELETE("/playlist-items/:id", ctl.removeItem)
	})
}

// notifyDisplaysPlaylistUpdated refreshes every display currently showing playlistID.
func (p *PlaylistController) notifyDisplaysPlaylistUpdated(ctx context.Context, playlistID string) {
	displays, err := p.store.ListDisplaysByPlaylist(ctx, playlistID)
	if err != nil {
		log.Error().Err(err).Str("playlist_id", playlistID).
			Msg("failed to get displays for playlist notification")
		return
	}
	if len(displays) == 0 {
		log.Debug().Str("playlist_id", playlistID).Msg("no displays assigned to playlist")
		return
	}

	delivered := 0
	for _, d := range displays {
		if p.refresher.NotifyRefresh(ctx, d.ID) {
			delivered++
		}
	}
	log.Info().Str("playlist_id", playlistID).Int("affected_displays", len(displays)).
		Int("delivered", delivered).Msg("playlist updated - refreshed assigned displays")
}

// ownedPlaylist loads a playlist and checks it belongs to user. A missing
// playlist is reported as forbidden, like a foreign one.
func (p *PlaylistController) ownedPlaylist(ctx *gin.Context, id string, user *model.User) (model.Playlist, *api.APIError) {
	pl, err := p.store.GetPlaylist(ctx.Request.Context(), id)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		log.Error().Err(err).Str("playlist_id", id).Msg("[playlists] lookup failed")
		return model.Playlist{}, api.Internal("Failed to fetch playlist")
	}
	if err != nil || pl.ClientID != user.ID {
		return model.Playlist{}, api.Forbidden("Forbidden")
	}
	return pl, nil
}

// ===== Handlers (AuthHandlerFunc signatures) =====

// GET /api/admin/playlists
func (p *PlaylistController) listPlaylists(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	list, err := p.store.ListPlaylists(ctx.Request.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Int("user", user.ID).Msg("[playlists] list failed")
		return nil, api.Internal("Failed to fetch playlists")
	}
	return list, nil
}

// POST /api/admin/playlists
func (p *PlaylistController) createPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreatePlaylistRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	pl, err := p.store.CreatePlaylist(ctx.Request.Context(), request.Name, user.ID)
	if err != nil {
		log.Error().Err(err).Int("user", user.ID).Msg("[playlists] create failed")
		return nil, api.Internal("Failed to create playlist")
	}
	return pl, nil
}

// GET /api/admin/playlists/:id
func (p *PlaylistController) getPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, err := p.store.GetPlaylist(ctx.Request.Context(), ctx.Param("id"))
	if errors.Is(err, db.ErrNotFound) {
		return nil, api.NotFound("Playlist not found")
	}
	if err != nil {
		log.Error().Err(err).Msg("[playlists] get failed")
		return nil, api.Internal("Failed to fetch playlist")
	}
	if pl.ClientID != user.ID {
		return nil, api.Forbidden("Forbidden")
	}
	return pl, nil
}

// POST /api/admin/playlist-items
func (p *PlaylistController) addItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreatePlaylistItemRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	if _, apiErr := p.ownedPlaylist(ctx, request.PlaylistID, user); apiErr != nil {
		return nil, apiErr
	}

	media, err := p.store.GetMedia(ctx.Request.Context(), request.MediaID)
	if err != nil || media.ClientID != user.ID {
		return nil, api.Forbidden("Forbidden - media not found or access denied")
	}

	duration := request.Duration
	if duration == 0 {
		duration = model.DefaultItemDuration
	}

	item, err := p.store.CreatePlaylistItem(ctx.Request.Context(), model.PlaylistItem{
		PlaylistID: request.PlaylistID,
		MediaID:    request.MediaID,
		Order:      request.Order,
		Duration:   duration,
	})
	if err != nil {
		log.Error().Err(err).Str("playlist_id", request.PlaylistID).Msg("[playlists] add item failed")
		return nil, api.Internal("Failed to create playlist item")
	}

	p.notifyDisplaysPlaylistUpdated(ctx.Request.Context(), request.PlaylistID)
	return item, nil
}

// GET /api/admin/playlist-items/:playlistId
func (p *PlaylistController) listItems(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.ownedPlaylist(ctx, ctx.Param("playlistId"), user)
	if apiErr != nil {
		return nil, apiErr
	}

	items, err := p.store.ListPlaylistItems(ctx.Request.Context(), pl.ID)
	if err != nil {
		log.Error().Err(err).Str("playlist_id", pl.ID).Msg("[playlists] list items failed")
		return nil, api.Internal("Failed to fetch playlist items")
	}
	return items, nil
}

// DELETE /api/admin/playlist-items/:id
func (p *PlaylistController) removeItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	item, err := p.store.GetPlaylistItem(ctx.Request.Context(), ctx.Param("id"))
	if errors.Is(err, db.ErrNotFound) {
		return nil, api.NotFound("Playlist item not found")
	}
	if err != nil {
		log.Error().Err(err).Msg("[playlists] get item failed")
		return nil, api.Internal("Failed to delete playlist item")
	}

	if _, apiErr := p.ownedPlaylist(ctx, item.PlaylistID, user); apiErr != nil {
		return nil, apiErr
	}

	if err := p.store.DeletePlaylistItem(ctx.Request.Context(), item.ID); err != nil {
		log.Error().Err(err).Str("item_id", item.ID).Msg("[playlists] delete item failed")
		return nil, api.Internal("Failed to delete playlist item")
	}

	p.notifyDisplaysPlaylistUpdated(ctx.Request.Context(), item.PlaylistID)
	return packets.SuccessResponse{Success: true}, nil
}
