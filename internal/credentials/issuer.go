// Package credentials mints the two secrets a display ever holds: the short
// invite code typed in during pairing and the bearer access token issued after it.
package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

const (
	// InviteCodeLength is the number of characters in an invite code.
	InviteCodeLength = 6
	// AccessTokenBytes is the entropy of an access token (256 bits).
	AccessTokenBytes = 32
)

// Issuer generates invite codes and access tokens from a random source.
type Issuer struct {
	random io.Reader
}

// NewIssuer returns an Issuer backed by crypto/rand.
func NewIssuer() *Issuer {
	return &Issuer{random: rand.Reader}
}

// NewIssuerWithSource returns an Issuer reading from r. Intended for tests.
func NewIssuerWithSource(r io.Reader) *Issuer {
	return &Issuer{random: r}
}

// MintInviteCode returns six uppercase hex characters.
func (i *Issuer) MintInviteCode() (string, error) {
	b := make([]byte, InviteCodeLength/2)
	if _, err := io.ReadFull(i.random, b); err != nil {
		return "", fmt.Errorf("read invite code entropy: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// MintAccessToken returns a 64-character lowercase hex token.
func (i *Issuer) MintAccessToken() (string, error) {
	b := make([]byte, AccessTokenBytes)
	if _, err := io.ReadFull(i.random, b); err != nil {
		return "", fmt.Errorf("read access token entropy: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NormalizeInviteCode trims surrounding whitespace and uppercases user input.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
