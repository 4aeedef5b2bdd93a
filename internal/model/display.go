package model

import "time"

// OnlineThreshold is how recent a check-in must be for a display to count as online.
const OnlineThreshold = 10 * time.Minute

const DefaultResolution = "1080p"

// Display represents a player device owned by an operator account.
type Display struct {
	ID                 string     `db:"id"                   json:"id"`
	Name               string     `db:"name"                 json:"name"`
	InviteCode         string     `db:"invite_code"          json:"inviteCode"`
	AccessToken        *string    `db:"access_token"         json:"-"`
	ClientID           int        `db:"client_id"            json:"clientId"`
	IsLinked           bool       `db:"is_linked"            json:"isLinked"`
	LastCheckIn        *time.Time `db:"last_check_in"        json:"lastCheckIn"`
	AssignedPlaylistID *string    `db:"assigned_playlist_id" json:"assignedPlaylistId"`
	Resolution         string     `db:"resolution"           json:"resolution"`
	CreatedAt          time.Time  `db:"created_at"           json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at"           json:"updatedAt"`
}

// IsOnline reports whether the last check-in happened less than OnlineThreshold before now.
// A display that never checked in is offline.
func (d *Display) IsOnline(now time.Time) bool {
	if d.LastCheckIn == nil {
		return false
	}
	return now.Sub(*d.LastCheckIn) < OnlineThreshold
}
