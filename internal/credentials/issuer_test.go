package credentials

import (
	"bytes"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	inviteCodePattern  = regexp.MustCompile(`^[0-9A-F]{6}$`)
	accessTokenPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

func TestMintInviteCode(t *testing.T) {
	issuer := NewIssuer()
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := issuer.MintInviteCode()
		require.NoError(t, err)
		assert.Regexp(t, inviteCodePattern, code)
		seen[code] = struct{}{}
	}
	// 200 draws from 16^6 codes should essentially never collide more than a couple of times.
	assert.Greater(t, len(seen), 195)
}

func TestMintInviteCode_Deterministic(t *testing.T) {
	issuer := NewIssuerWithSource(bytes.NewReader([]byte{0x7f, 0x3a, 0x2b}))
	code, err := issuer.MintInviteCode()
	require.NoError(t, err)
	assert.Equal(t, "7F3A2B", code)
}

func TestMintAccessToken(t *testing.T) {
	issuer := NewIssuer()
	a, err := issuer.MintAccessToken()
	require.NoError(t, err)
	b, err := issuer.MintAccessToken()
	require.NoError(t, err)

	assert.Regexp(t, accessTokenPattern, a)
	assert.Regexp(t, accessTokenPattern, b)
	assert.NotEqual(t, a, b)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestMint_SourceFailure(t *testing.T) {
	issuer := NewIssuerWithSource(failingReader{})

	_, err := issuer.MintInviteCode()
	assert.Error(t, err)

	_, err = issuer.MintAccessToken()
	assert.Error(t, err)
}

func TestNormalizeInviteCode(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizeInviteCode(" abc123 "))
	assert.Equal(t, "7F3A2B", NormalizeInviteCode("7f3A2b"))
}
