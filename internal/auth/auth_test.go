package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/signage/internal/db"
	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"Bearer   abc  ", "abc", false},
		{"", "", true},
		{"Bearer", "", true},
		{"Bearer ", "", true},
		{"Basic abc", "", true},
		{"bearer abc", "", true},
	}
	for _, tc := range cases {
		got, err := BearerToken(tc.header)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrUnauthenticated, "header %q", tc.header)
			continue
		}
		require.NoError(t, err, "header %q", tc.header)
		assert.Equal(t, tc.want, got)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	d, err := store.CreateDisplay(ctx, "Lobby", "ABC123", "1080p", 1)
	require.NoError(t, err)
	_, err = store.SetDisplayLinked(ctx, d.ID, "good-token", time.Now())
	require.NoError(t, err)

	authenticator := NewTokenAuthenticator(store)

	got, err := authenticator.Authenticate(ctx, "good-token")
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	_, err = authenticator.Authenticate(ctx, "good-toke")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = authenticator.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

type brokenFinder struct{}

func (brokenFinder) FindDisplayByAccessToken(context.Context, string) (model.Display, error) {
	return model.Display{}, errors.New("connection refused")
}

func TestAuthenticate_StoreFailureIsNotUnauthenticated(t *testing.T) {
	_, err := NewTokenAuthenticator(brokenFinder{}).Authenticate(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}
