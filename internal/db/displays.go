package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

const displayColumns = `id, name, invite_code, access_token, client_id, is_linked,
	last_check_in, assigned_playlist_id, resolution, created_at, updated_at`

func (s *PostgresStore) CreateDisplay(ctx context.Context, name, inviteCode, resolution string, clientID int) (model.Display, error) {
	var d model.Display
	query := `
	INSERT INTO displays (id, name, invite_code, client_id, is_linked, resolution, created_at, updated_at)
	VALUES ($1, $2, $3, $4, false, $5, now(), now())
	RETURNING ` + displayColumns + `;`

	if err := s.db.GetContext(ctx, &d, query, uuid.NewString(), name, inviteCode, clientID, resolution); err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrDuplicate) {
			log.Error().Err(err).Msg("[db] CreateDisplay: failed to insert display")
		}
		return model.Display{}, err
	}
	return d, nil
}

func (s *PostgresStore) ListDisplays(ctx context.Context, clientID int) ([]model.Display, error) {
	displays := []model.Display{}
	query := `SELECT ` + displayColumns + ` FROM displays WHERE client_id = $1 ORDER BY created_at DESC;`
	if err := s.db.SelectContext(ctx, &displays, query, clientID); err != nil {
		log.Error().Err(err).Int("client_id", clientID).Msg("[db] ListDisplays: failed to select displays")
		return nil, err
	}
	return displays, nil
}

// ListDisplaysByPlaylist returns the displays whose assigned playlist is playlistID.
func (s *PostgresStore) ListDisplaysByPlaylist(ctx context.Context, playlistID string) ([]model.Display, error) {
	displays := []model.Display{}
	query := `SELECT ` + displayColumns + ` FROM displays WHERE assigned_playlist_id = $1;`
	if err := s.db.SelectContext(ctx, &displays, query, playlistID); err != nil {
		log.Error().Err(err).Str("playlist_id", playlistID).Msg("[db] ListDisplaysByPlaylist: failed to select displays")
		return nil, err
	}
	return displays, nil
}

func (s *PostgresStore) GetDisplay(ctx context.Context, id string) (model.Display, error) {
	return s.getDisplayWhere(ctx, "id", id)
}

func (s *PostgresStore) FindDisplayByInviteCode(ctx context.Context, code string) (model.Display, error) {
	return s.getDisplayWhere(ctx, "invite_code", code)
}

func (s *PostgresStore) FindDisplayByAccessToken(ctx context.Context, token string) (model.Display, error) {
	return s.getDisplayWhere(ctx, "access_token", token)
}

// column is always a package constant, never caller input.
func (s *PostgresStore) getDisplayWhere(ctx context.Context, column, value string) (model.Display, error) {
	var d model.Display
	query := `SELECT ` + displayColumns + ` FROM displays WHERE ` + column + ` = $1;`
	if err := s.db.GetContext(ctx, &d, query, value); err != nil {
		return model.Display{}, translateError(err)
	}
	return d, nil
}

func (s *PostgresStore) SetDisplayLinked(ctx context.Context, id, accessToken string, checkIn time.Time) (model.Display, error) {
	var d model.Display
	query := `
	UPDATE displays
	SET is_linked = TRUE,
	access_token = $2,
	last_check_in = $3,
	updated_at = now()
	WHERE id = $1
	RETURNING ` + displayColumns + `;`

	if err := s.db.GetContext(ctx, &d, query, id, accessToken, checkIn); err != nil {
		log.Error().Err(err).Str("display_id", id).Msg("[db] SetDisplayLinked: failed to link display")
		return model.Display{}, translateError(err)
	}
	return d, nil
}

func (s *PostgresStore) UpdateLastCheckIn(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE displays SET last_check_in = $2 WHERE id = $1;`, id, at)
	if err != nil {
		log.Error().Err(err).Str("display_id", id).Msg("[db] UpdateLastCheckIn: failed to update")
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) DeleteDisplay(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM displays WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Str("display_id", id).Msg("[db] DeleteDisplay: failed to delete")
		return err
	}
	return requireRow(res)
}
