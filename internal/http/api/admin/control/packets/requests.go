package packets

import "time"

// REQUESTS FOR /api/admin/*

type CreateDisplayRequest struct {
	Name       string `json:"name" binding:"required,max=255"`
	Resolution string `json:"resolution" binding:"max=20"`
}

type CreatePlaylistRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// Duration is in seconds and only applies to images; zero means the default.
type CreatePlaylistItemRequest struct {
	PlaylistID string `json:"playlistId" binding:"required"`
	MediaID    string `json:"mediaId" binding:"required"`
	Order      int    `json:"order" binding:"min=0"`
	Duration   int    `json:"duration" binding:"min=0"`
}

// Dates are RFC3339. Priority is stored for future use; the latest schedule wins.
type CreateScheduleRequest struct {
	DisplayID  string     `json:"displayId" binding:"required"`
	PlaylistID string     `json:"playlistId" binding:"required"`
	StartDate  *time.Time `json:"startDate"`
	EndDate    *time.Time `json:"endDate"`
	AlwaysOn   bool       `json:"alwaysOn"`
	Priority   int        `json:"priority"`
}
