package model

import "time"

// DefaultItemDuration is the display time in seconds for an image item when none is given.
const DefaultItemDuration = 10

type Playlist struct {
	ID        string    `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	ClientID  int       `db:"client_id"  json:"clientId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// PlaylistItem places a media entry in a playlist. Duration only applies to images;
// videos play to their natural end.
type PlaylistItem struct {
	ID         string    `db:"id"          json:"id"`
	PlaylistID string    `db:"playlist_id" json:"playlistId"`
	MediaID    string    `db:"media_id"    json:"mediaId"`
	Order      int       `db:"item_order"  json:"order"`
	Duration   int       `db:"duration"    json:"duration"`
	CreatedAt  time.Time `db:"created_at"  json:"createdAt"`
}

// ActivePlaylistItem is a playlist item joined with its media, as served to players.
type ActivePlaylistItem struct {
	PlaylistItem
	Media Media `db:"media" json:"media"`
}
