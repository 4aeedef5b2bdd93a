// exposes a Store interface that is passed to API calls w/ param requirements
package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("db: not found")
	// ErrDuplicate is returned when an insert or update violates a unique constraint.
	ErrDuplicate = errors.New("db: duplicate key")
)

// Store is the persistence boundary for the whole service.
type Store interface {
	// user functions
	CreateUser(ctx context.Context, email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int) (*model.User, error)

	// display functions
	CreateDisplay(ctx context.Context, name, inviteCode, resolution string, clientID int) (model.Display, error)
	ListDisplays(ctx context.Context, clientID int) ([]model.Display, error)
	GetDisplay(ctx context.Context, id string) (model.Display, error)
	DeleteDisplay(ctx context.Context, id string) error
	FindDisplayByInviteCode(ctx context.Context, code string) (model.Display, error)
	FindDisplayByAccessToken(ctx context.Context, token string) (model.Display, error)
	SetDisplayLinked(ctx context.Context, id, accessToken string, checkIn time.Time) (model.Display, error)
	UpdateLastCheckIn(ctx context.Context, id string, at time.Time) error
	ListDisplaysByPlaylist(ctx context.Context, playlistID string) ([]model.Display, error)

	// media functions
	CreateMedia(ctx context.Context, m model.Media) (model.Media, error)
	ListMedia(ctx context.Context, clientID int) ([]model.Media, error)
	GetMedia(ctx context.Context, id string) (model.Media, error)

	// playlist functions
	CreatePlaylist(ctx context.Context, name string, clientID int) (model.Playlist, error)
	ListPlaylists(ctx context.Context, clientID int) ([]model.Playlist, error)
	GetPlaylist(ctx context.Context, id string) (model.Playlist, error)
	CreatePlaylistItem(ctx context.Context, item model.PlaylistItem) (model.PlaylistItem, error)
	ListPlaylistItems(ctx context.Context, playlistID string) ([]model.PlaylistItem, error)
	GetPlaylistItem(ctx context.Context, id string) (model.PlaylistItem, error)
	DeletePlaylistItem(ctx context.Context, id string) error
	GetAssignedPlaylistItems(ctx context.Context, displayID string) ([]model.ActivePlaylistItem, error)

	// schedule functions

	// CreateSchedule persists the schedule and points the display's assigned
	// playlist at it in the same transaction.
	CreateSchedule(ctx context.Context, s model.Schedule) (model.Schedule, error)
	ListSchedules(ctx context.Context, clientID int) ([]model.Schedule, error)
	GetSchedule(ctx context.Context, id string) (model.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// translateError maps driver errors onto the package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
