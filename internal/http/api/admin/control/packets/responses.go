package packets

import (
	"time"

	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

// RESPONSES FOR /api/admin/*

// DisplayResponse adds the derived online flag to a display.
type DisplayResponse struct {
	model.Display
	IsOnline bool `json:"isOnline"`
}

func NewDisplayResponse(d model.Display, now time.Time) DisplayResponse {
	return DisplayResponse{Display: d, IsOnline: d.IsOnline(now)}
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// ScheduleResponse reports whether the refresh reached a live display.
type ScheduleResponse struct {
	model.Schedule
	Notified bool `json:"notified"`
}
