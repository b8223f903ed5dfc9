package session_test

import (
	"testing"
	"time"

	"github.com/linemk/tallow-shop/internal/session"
	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")

	token, err := session.NewToken("sid-123", time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	sid, err := session.ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "sid-123", sid)
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret-one")
	token, err := session.NewToken("sid-123", time.Hour)
	assert.NoError(t, err)

	// Токен, подписанный другим секретом, не принимается
	t.Setenv("SESSION_SECRET", "secret-two")
	_, err = session.ParseToken(token)
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")
	token, err := session.NewToken("sid-123", -time.Minute)
	assert.NoError(t, err)

	_, err = session.ParseToken(token)
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")
	_, err := session.ParseToken("not-a-token")
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}

func TestNewToken_NoSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	_, err := session.NewToken("sid-123", time.Hour)
	assert.Error(t, err)
}
