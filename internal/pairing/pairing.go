// Package pairing turns a typed invite code into a durable display credential.
package pairing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/signage/internal/credentials"
	"github.com/Nixie-Tech-LLC/signage/internal/db"
	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

// maxMintAttempts bounds the generate-and-insert loop when a freshly minted
// secret collides with one already stored.
const maxMintAttempts = 5

var (
	ErrInviteCodeRequired = errors.New("invite code is required")
	// ErrInviteCodeNotFound is deliberately generic; callers must not reveal more.
	ErrInviteCodeNotFound = errors.New("invalid invite code")
	// ErrCredentialsExhausted means every minted candidate collided.
	ErrCredentialsExhausted = errors.New("could not mint a unique credential")
)

// Minter is the credential source. *credentials.Issuer satisfies it.
type Minter interface {
	MintInviteCode() (string, error)
	MintAccessToken() (string, error)
}

// RevokeFunc is called with the display id after every successful link. Any
// token issued before it no longer works, so live channels authenticated with
// one can be dropped.
type RevokeFunc func(displayID string)

type Service struct {
	store    db.Store
	minter   Minter
	now      func() time.Time
	onRevoke RevokeFunc
}

type Option func(*Service)

// WithRevokeHook registers fn to run after each successful link. The
// pre-link read cannot tell whether a concurrent link already issued a token,
// so fn runs on first links too and must tolerate a display with no channel.
func WithRevokeHook(fn RevokeFunc) Option {
	return func(s *Service) { s.onRevoke = fn }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store db.Store, minter Minter, opts ...Option) *Service {
	s := &Service{store: store, minter: minter, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LinkResult is what the device persists locally after pairing.
type LinkResult struct {
	DisplayID   string
	AccessToken string
}

// CreateDisplay stores a new unlinked display with a freshly minted invite code,
// retrying with a new code when the code is already taken.
func (s *Service) CreateDisplay(ctx context.Context, name, resolution string, clientID int) (model.Display, error) {
	for attempt := 1; attempt <= maxMintAttempts; attempt++ {
		code, err := s.minter.MintInviteCode()
		if err != nil {
			return model.Display{}, err
		}

		display, err := s.store.CreateDisplay(ctx, name, code, resolution, clientID)
		if err == nil {
			log.Info().Str("display_id", display.ID).Int("client_id", clientID).
				Str("invite_code", display.InviteCode).Msg("display created")
			return display, nil
		}
		if !errors.Is(err, db.ErrDuplicate) {
			return model.Display{}, fmt.Errorf("create display: %w", err)
		}
		log.Warn().Int("attempt", attempt).Msg("invite code collision, minting another")
	}
	return model.Display{}, ErrCredentialsExhausted
}

// Link pairs the display owning code. The code is matched case-insensitively.
// Linking an already linked display mints a new token and the old one stops
// working immediately.
func (s *Service) Link(ctx context.Context, code string) (LinkResult, error) {
	code = credentials.NormalizeInviteCode(code)
	if code == "" {
		return LinkResult{}, ErrInviteCodeRequired
	}

	display, err := s.store.FindDisplayByInviteCode(ctx, code)
	if errors.Is(err, db.ErrNotFound) {
		log.Warn().Str("invite_code", code).Msg("link attempted with unknown invite code")
		return LinkResult{}, ErrInviteCodeNotFound
	}
	if err != nil {
		return LinkResult{}, fmt.Errorf("find display by invite code: %w", err)
	}

	relink := display.IsLinked

	for attempt := 1; attempt <= maxMintAttempts; attempt++ {
		token, err := s.minter.MintAccessToken()
		if err != nil {
			return LinkResult{}, err
		}

		linked, err := s.store.SetDisplayLinked(ctx, display.ID, token, s.now())
		if errors.Is(err, db.ErrDuplicate) {
			continue
		}
		if err != nil {
			return LinkResult{}, fmt.Errorf("link display: %w", err)
		}

		if relink {
			log.Warn().Str("display_id", linked.ID).Msg("display re-paired, previous access token revoked")
		} else {
			log.Info().Str("display_id", linked.ID).Msg("display linked")
		}
		if s.onRevoke != nil {
			s.onRevoke(linked.ID)
		}
		return LinkResult{DisplayID: linked.ID, AccessToken: token}, nil
	}
	return LinkResult{}, ErrCredentialsExhausted
}
