package model

import "time"

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Media is an uploaded image or video. Filename addresses the blob in storage.
type Media struct {
	ID        string    `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Type      string    `db:"type"       json:"type"`
	Filename  string    `db:"filename"   json:"filename"`
	FileSize  int64     `db:"file_size"  json:"fileSize"`
	MimeType  string    `db:"mime_type"  json:"mimeType"`
	ClientID  int       `db:"client_id"  json:"clientId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
