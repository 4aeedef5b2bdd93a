package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

// @ PLAYLIST
func (s *PostgresStore) CreatePlaylist(ctx context.Context, name string, clientID int) (model.Playlist, error) {
	var p model.Playlist
	const q = `
	INSERT INTO playlists (id, name, client_id, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING id, name, client_id, created_at, updated_at;`

	if err := s.db.GetContext(ctx, &p, q, uuid.NewString(), name, clientID); err != nil {
		log.Error().Err(err).Msg("[db] CreatePlaylist: failed to insert playlist")
		return model.Playlist{}, translateError(err)
	}
	return p, nil
}

func (s *PostgresStore) ListPlaylists(ctx context.Context, clientID int) ([]model.Playlist, error) {
	out := []model.Playlist{}
	const q = `
	SELECT id, name, client_id, created_at, updated_at
	FROM playlists
	WHERE client_id = $1
	ORDER BY created_at DESC;`

	if err := s.db.SelectContext(ctx, &out, q, clientID); err != nil {
		log.Error().Err(err).Msg("[db] ListPlaylists: failed to select playlists")
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) GetPlaylist(ctx context.Context, id string) (model.Playlist, error) {
	var p model.Playlist
	const q = `SELECT id, name, client_id, created_at, updated_at FROM playlists WHERE id = $1;`
	if err := s.db.GetContext(ctx, &p, q, id); err != nil {
		return model.Playlist{}, translateError(err)
	}
	return p, nil
}

// @ PLAYLIST ITEMS
func (s *PostgresStore) CreatePlaylistItem(ctx context.Context, item model.PlaylistItem) (model.PlaylistItem, error) {
	var it model.PlaylistItem
	const q = `
	INSERT INTO playlist_items
	(id, playlist_id, media_id, item_order, duration, created_at)
	VALUES
	($1, $2,          $3,       $4,         $5,       now())
	RETURNING
	id, playlist_id, media_id, item_order, duration, created_at;`

	if err := s.db.GetContext(ctx, &it, q,
		uuid.NewString(), item.PlaylistID, item.MediaID, item.Order, item.Duration,
	); err != nil {
		log.Error().Err(err).Msg("[db] CreatePlaylistItem: failed to add item to playlist")
		return model.PlaylistItem{}, translateError(err)
	}
	return it, nil
}

func (s *PostgresStore) ListPlaylistItems(ctx context.Context, playlistID string) ([]model.PlaylistItem, error) {
	list := []model.PlaylistItem{}
	const q = `
	SELECT id, playlist_id, media_id, item_order, duration, created_at
	FROM playlist_items
	WHERE playlist_id = $1
	ORDER BY item_order;`

	if err := s.db.SelectContext(ctx, &list, q, playlistID); err != nil {
		log.Error().Err(err).Str("playlist_id", playlistID).Msg("[db] ListPlaylistItems: failed to list items")
		return nil, err
	}
	return list, nil
}

func (s *PostgresStore) GetPlaylistItem(ctx context.Context, id string) (model.PlaylistItem, error) {
	var it model.PlaylistItem
	const q = `
	SELECT id, playlist_id, media_id, item_order, duration, created_at
	FROM playlist_items
	WHERE id = $1;`
	if err := s.db.GetContext(ctx, &it, q, id); err != nil {
		return model.PlaylistItem{}, translateError(err)
	}
	return it, nil
}

func (s *PostgresStore) DeletePlaylistItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlist_items WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Str("item_id", id).Msg("[db] DeletePlaylistItem: failed to remove item")
		return err
	}
	return requireRow(res)
}

// GetAssignedPlaylistItems returns the items of the display's assigned playlist in
// ascending order, each joined with its media. A display without an assigned
// playlist yields an empty slice.
func (s *PostgresStore) GetAssignedPlaylistItems(ctx context.Context, displayID string) ([]model.ActivePlaylistItem, error) {
	items := []model.ActivePlaylistItem{}
	const q = `
	SELECT
	pi.id, pi.playlist_id, pi.media_id, pi.item_order, pi.duration, pi.created_at,
	m.id         AS "media.id",
	m.name       AS "media.name",
	m.type       AS "media.type",
	m.filename   AS "media.filename",
	m.file_size  AS "media.file_size",
	m.mime_type  AS "media.mime_type",
	m.client_id  AS "media.client_id",
	m.created_at AS "media.created_at",
	m.updated_at AS "media.updated_at"
	FROM displays d
	JOIN playlist_items pi ON pi.playlist_id = d.assigned_playlist_id
	JOIN media m ON m.id = pi.media_id
	WHERE d.id = $1
	ORDER BY pi.item_order;`

	if err := s.db.SelectContext(ctx, &items, q, displayID); err != nil {
		log.Error().Err(err).Str("display_id", displayID).Msg("[db] GetAssignedPlaylistItems: failed to resolve playlist")
		return nil, err
	}
	return items, nil
}
