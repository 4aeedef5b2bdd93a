// Package auth resolves display bearer credentials to display identities.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Nixie-Tech-LLC/signage/internal/db"
	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

// ErrUnauthenticated covers a missing header, a malformed header and an unknown
// token alike, so callers cannot tell them apart.
var ErrUnauthenticated = errors.New("unauthenticated")

// DisplayFinder is the slice of db.Store the authenticator needs.
type DisplayFinder interface {
	FindDisplayByAccessToken(ctx context.Context, token string) (model.Display, error)
}

// TokenAuthenticator looks a token up on every call. Nothing is cached.
type TokenAuthenticator struct {
	displays DisplayFinder
}

func NewTokenAuthenticator(displays DisplayFinder) *TokenAuthenticator {
	return &TokenAuthenticator{displays: displays}
}

// Authenticate returns the display whose access token equals token exactly.
func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (model.Display, error) {
	if token == "" {
		return model.Display{}, ErrUnauthenticated
	}
	display, err := a.displays.FindDisplayByAccessToken(ctx, token)
	if errors.Is(err, db.ErrNotFound) {
		return model.Display{}, ErrUnauthenticated
	}
	if err != nil {
		return model.Display{}, fmt.Errorf("lookup access token: %w", err)
	}
	return display, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" {
		return "", ErrUnauthenticated
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrUnauthenticated
	}
	return token, nil
}
