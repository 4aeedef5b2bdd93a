package model

import "time"

// Schedule assigns a playlist to a display. The most recently created schedule
// decides the display's assigned playlist.
type Schedule struct {
	ID         string     `db:"id"          json:"id"`
	DisplayID  string     `db:"display_id"  json:"displayId"`
	PlaylistID string     `db:"playlist_id" json:"playlistId"`
	StartDate  *time.Time `db:"start_date"  json:"startDate"`
	EndDate    *time.Time `db:"end_date"    json:"endDate"`
	AlwaysOn   bool       `db:"always_on"   json:"alwaysOn"`
	Priority   int        `db:"priority"    json:"priority"`
	CreatedAt  time.Time  `db:"created_at"  json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at"  json:"updatedAt"`
}
