package jwtauth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(now *time.Time) *Manager {
	m := NewManager("test-secret", time.Hour)
	m.now = func() time.Time { return *now }
	return m
}

func TestManager_IssueAndVerify(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(&now)

	token, err := m.Issue("u1", "Uma", "uma@example.com")
	require.NoError(t, err)

	claims, err := m.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Uma", claims.Name)
	assert.Equal(t, "uma@example.com", claims.Email)
}

func TestManager_RejectsExpiredAndForeignTokens(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(&now)

	token, err := m.Issue("u1", "", "")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = m.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewManager("other-secret", time.Hour)
	foreign, err := other.Issue("u1", "", "")
	require.NoError(t, err)
	_, err = NewManager("test-secret", time.Hour).Verify(context.Background(), foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RejectsNoneAlgorithm(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u1"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RevokeEndsEarlierSessions(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(&now)
	ctx := context.Background()

	old, err := m.Issue("u1", "", "")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	require.NoError(t, m.Revoke(ctx, "u1"))

	_, err = m.Verify(ctx, old)
	assert.ErrorIs(t, err, ErrRevoked)

	now = now.Add(time.Minute)
	fresh, err := m.Issue("u1", "", "")
	require.NoError(t, err)
	_, err = m.Verify(ctx, fresh)
	assert.NoError(t, err)
}
