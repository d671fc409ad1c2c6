package authbypass

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcgradar/signal-engine/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		BypassSigningKey: []byte("test-signing-key"),
		BypassSessionTTL: time.Minute,
	}
}

func TestIssueAndVerify_RoundTrips(t *testing.T) {
	cfg := testConfig()
	tok, err := Issue(cfg, "operator-1")
	require.NoError(t, err)

	operator, err := Verify(cfg, tok)
	require.NoError(t, err)
	assert.Equal(t, "operator-1", operator)
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.BypassSessionTTL = -time.Minute
	tok, err := Issue(cfg, "operator-1")
	require.NoError(t, err)

	_, err = Verify(cfg, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsWrongSigningKey(t *testing.T) {
	cfg := testConfig()
	tok, err := Issue(cfg, "operator-1")
	require.NoError(t, err)

	wrongCfg := testConfig()
	wrongCfg.BypassSigningKey = []byte("a-different-key")
	_, err = Verify(wrongCfg, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsWrongScope(t *testing.T) {
	cfg := testConfig()
	now := time.Now().UTC()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Scope: "not-admin-bypass",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "operator-1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	})
	signed, err := tok.SignedString(cfg.BypassSigningKey)
	require.NoError(t, err)

	_, err = Verify(cfg, signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsWhenSigningKeyUnconfigured(t *testing.T) {
	cfg := testConfig()
	tok, err := Issue(cfg, "operator-1")
	require.NoError(t, err)

	cfg.BypassSigningKey = nil
	_, err = Verify(cfg, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsGarbageToken(t *testing.T) {
	_, err := Verify(testConfig(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
