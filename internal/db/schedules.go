package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

const scheduleColumns = `id, display_id, playlist_id, start_date, end_date, always_on, priority, created_at, updated_at`

func (s *PostgresStore) CreateSchedule(ctx context.Context, in model.Schedule) (out model.Schedule, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Schedule{}, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("[db] CreateSchedule: rollback failed")
			}
			return
		}
		err = tx.Commit()
	}()

	query := `
	INSERT INTO schedules (id, display_id, playlist_id, start_date, end_date, always_on, priority, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
	RETURNING ` + scheduleColumns + `;`

	if err = tx.GetContext(ctx, &out, query,
		uuid.NewString(), in.DisplayID, in.PlaylistID, in.StartDate, in.EndDate, in.AlwaysOn, in.Priority,
	); err != nil {
		log.Error().Err(err).Str("display_id", in.DisplayID).Msg("[db] CreateSchedule: failed to insert schedule")
		return model.Schedule{}, translateError(err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE displays
		SET assigned_playlist_id = $2,
		updated_at = now()
		WHERE id = $1;`, in.DisplayID, in.PlaylistID)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("assign playlist to display: %w", err)
	}
	if err = requireRow(res); err != nil {
		return model.Schedule{}, err
	}
	return out, nil
}

// ListSchedules returns every schedule that targets one of the client's displays.
func (s *PostgresStore) ListSchedules(ctx context.Context, clientID int) ([]model.Schedule, error) {
	out := []model.Schedule{}
	const q = `
	SELECT s.id, s.display_id, s.playlist_id, s.start_date, s.end_date, s.always_on, s.priority,
	s.created_at, s.updated_at
	FROM schedules s
	JOIN displays d ON d.id = s.display_id
	WHERE d.client_id = $1
	ORDER BY s.created_at DESC;`

	if err := s.db.SelectContext(ctx, &out, q, clientID); err != nil {
		log.Error().Err(err).Int("client_id", clientID).Msg("[db] ListSchedules: failed to select schedules")
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) GetSchedule(ctx context.Context, id string) (model.Schedule, error) {
	var sc model.Schedule
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1;`
	if err := s.db.GetContext(ctx, &sc, query, id); err != nil {
		return model.Schedule{}, translateError(err)
	}
	return sc, nil
}

func (s *PostgresStore) DeleteSchedule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Str("schedule_id", id).Msg("[db] DeleteSchedule: failed to delete")
		return err
	}
	return requireRow(res)
}
