package endpoints

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/signage/internal/db"
	"github.com/Nixie-Tech-LLC/signage/internal/http/api"
	"github.com/Nixie-Tech-LLC/signage/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

type ScheduleController struct {
	store     db.Store
	refresher Refresher
}

func NewScheduleController(store db.Store, refresher Refresher) *ScheduleController {
	return &ScheduleController{store: store, refresher: refresher}
}

func ScheduleModule(store db.Store, refresher Refresher) api.Module {
	ctl := NewScheduleController(store, refresher)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/schedules", ctl.listSchedules)
		c.POST("/schedules", ctl.createSchedule)
		c.DELETE("/schedules/:id", ctl.deleteSchedule)
	})
}

// ownsDisplay reports whether displayID exists and belongs to user.
func (s *ScheduleController) ownsDisplay(ctx *gin.Context, displayID string, user *model.User) (bool, error) {
	display, err := s.store.GetDisplay(ctx.Request.Context(), displayID)
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return display.ClientID == user.ID, nil
}

func (s *ScheduleController) listSchedules(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	list, err := s.store.ListSchedules(ctx.Request.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Int("user", user.ID).Msg("[schedules] list failed")
		return nil, api.Internal("Failed to fetch schedules")
	}
	return list, nil
}

// createSchedule stores the schedule, which also assigns the playlist to the
// display, then tells the display to reload before responding.
func (s *ScheduleController) createSchedule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateScheduleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if request.StartDate != nil && request.EndDate != nil && request.EndDate.Before(*request.StartDate) {
		return nil, api.BadRequest("endDate must not be before startDate")
	}

	owned, err := s.ownsDisplay(ctx, request.DisplayID, user)
	if err != nil {
		log.Error().Err(err).Str("display_id", request.DisplayID).Msg("[schedules] display lookup failed")
		return nil, api.Internal("Failed to create schedule")
	}
	if !owned {
		return nil, api.Forbidden("Forbidden")
	}

	playlist, err := s.store.GetPlaylist(ctx.Request.Context(), request.PlaylistID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		log.Error().Err(err).Str("playlist_id", request.PlaylistID).Msg("[schedules] playlist lookup failed")
		return nil, api.Internal("Failed to create schedule")
	}
	if err != nil || playlist.ClientID != user.ID {
		return nil, api.Forbidden("Forbidden - playlist not found or access denied")
	}

	sc, err := s.store.CreateSchedule(ctx.Request.Context(), model.Schedule{
		DisplayID:  request.DisplayID,
		PlaylistID: request.PlaylistID,
		StartDate:  request.StartDate,
		EndDate:    request.EndDate,
		AlwaysOn:   request.AlwaysOn,
		Priority:   request.Priority,
	})
	if err != nil {
		log.Error().Err(err).Str("display_id", request.DisplayID).Msg("[schedules] create failed")
		return nil, api.Internal("Failed to create schedule")
	}

	notified := s.refresher.NotifyRefresh(ctx.Request.Context(), sc.DisplayID)
	log.Info().Str("schedule_id", sc.ID).Str("display_id", sc.DisplayID).
		Str("playlist_id", sc.PlaylistID).Bool("notified", notified).Msg("schedule created")

	return packets.ScheduleResponse{Schedule: sc, Notified: notified}, nil
}

func (s *ScheduleController) deleteSchedule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	sc, err := s.store.GetSchedule(ctx.Request.Context(), ctx.Param("id"))
	if errors.Is(err, db.ErrNotFound) {
		return nil, api.NotFound("Schedule not found")
	}
	if err != nil {
		log.Error().Err(err).Msg("[schedules] get failed")
		return nil, api.Internal("Failed to delete schedule")
	}

	owned, err := s.ownsDisplay(ctx, sc.DisplayID, user)
	if err != nil {
		log.Error().Err(err).Str("display_id", sc.DisplayID).Msg("[schedules] display lookup failed")
		return nil, api.Internal("Failed to delete schedule")
	}
	if !owned {
		return nil, api.Forbidden("Forbidden")
	}

	if err := s.store.DeleteSchedule(ctx.Request.Context(), sc.ID); err != nil {
		log.Error().Err(err).Str("schedule_id", sc.ID).Msg("[schedules] delete failed")
		return nil, api.Internal("Failed to delete schedule")
	}
	return packets.SuccessResponse{Success: true}, nil
}
