package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

const mediaColumns = `id, name, type, filename, file_size, mime_type, client_id, created_at, updated_at`

func (s *PostgresStore) CreateMedia(ctx context.Context, m model.Media) (model.Media, error) {
	var out model.Media
	query := `
	INSERT INTO media (id, name, type, filename, file_size, mime_type, client_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
	RETURNING ` + mediaColumns + `;`

	if err := s.db.GetContext(ctx, &out, query,
		uuid.NewString(), m.Name, m.Type, m.Filename, m.FileSize, m.MimeType, m.ClientID,
	); err != nil {
		log.Error().Err(err).Msg("[db] CreateMedia: failed to insert media")
		return model.Media{}, translateError(err)
	}
	return out, nil
}

func (s *PostgresStore) ListMedia(ctx context.Context, clientID int) ([]model.Media, error) {
	media := []model.Media{}
	query := `SELECT ` + mediaColumns + ` FROM media WHERE client_id = $1 ORDER BY created_at DESC;`
	if err := s.db.SelectContext(ctx, &media, query, clientID); err != nil {
		log.Error().Err(err).Int("client_id", clientID).Msg("[db] ListMedia: failed to select media")
		return nil, err
	}
	return media, nil
}

func (s *PostgresStore) GetMedia(ctx context.Context, id string) (model.Media, error) {
	var m model.Media
	query := `SELECT ` + mediaColumns + ` FROM media WHERE id = $1;`
	if err := s.db.GetContext(ctx, &m, query, id); err != nil {
		return model.Media{}, translateError(err)
	}
	return m, nil
}
