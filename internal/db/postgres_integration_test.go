package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

// TestPostgresStoreIntegration runs against TEST_DATABASE_URL and is skipped without it.
func TestPostgresStoreIntegration(t *testing.T) {
	ctx := context.Background()
	store, err := ConnectTestStore(ctx, "../../migrations")
	if errors.Is(err, ErrNoTestDatabase) {
		t.Skip(err.Error())
	}
	require.NoError(t, err)

	suffix := time.Now().UnixNano()
	userID, err := store.CreateUser(ctx, fmt.Sprintf("op-%d@example.com", suffix), "hash", nil)
	require.NoError(t, err)

	code := fmt.Sprintf("%06X", suffix&0xFFFFFF)

	t.Run("Display Pairing", func(t *testing.T) {
		d, err := store.CreateDisplay(ctx, "Lobby", code, "1080p", userID)
		require.NoError(t, err)
		assert.False(t, d.IsLinked)

		_, err = store.CreateDisplay(ctx, "Lobby 2", code, "1080p", userID)
		assert.ErrorIs(t, err, ErrDuplicate)

		found, err := store.FindDisplayByInviteCode(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, d.ID, found.ID)

		token := fmt.Sprintf("%064x", suffix)
		linked, err := store.SetDisplayLinked(ctx, d.ID, token, time.Now())
		require.NoError(t, err)
		assert.True(t, linked.IsLinked)

		byToken, err := store.FindDisplayByAccessToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, d.ID, byToken.ID)

		_, err = store.FindDisplayByInviteCode(ctx, "ZZZZZZ-missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Playlist Resolution", func(t *testing.T) {
		d, err := store.FindDisplayByInviteCode(ctx, code)
		require.NoError(t, err)

		p, err := store.CreatePlaylist(ctx, "Morning", userID)
		require.NoError(t, err)
		m, err := store.CreateMedia(ctx, model.Media{
			Name: "logo.png", Type: model.MediaTypeImage, Filename: "logo.png",
			FileSize: 10, MimeType: "image/png", ClientID: userID,
		})
		require.NoError(t, err)
		_, err = store.CreatePlaylistItem(ctx, model.PlaylistItem{PlaylistID: p.ID, MediaID: m.ID, Order: 1, Duration: 10})
		require.NoError(t, err)

		_, err = store.CreateSchedule(ctx, model.Schedule{DisplayID: d.ID, PlaylistID: p.ID, AlwaysOn: true})
		require.NoError(t, err)

		items, err := store.GetAssignedPlaylistItems(ctx, d.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, m.ID, items[0].Media.ID)

		require.NoError(t, store.DeleteDisplay(ctx, d.ID))
	})
}
