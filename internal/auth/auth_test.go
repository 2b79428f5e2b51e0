package auth

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_SignVerify(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, issued, err := svc.Sign(Identity{ID: "admin-1", Email: "admin@clinic.com", Role: "ADMIN"})
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", got.ID)
	assert.Equal(t, "admin@clinic.com", got.Email)
	assert.Equal(t, "ADMIN", got.Role)
	assert.Equal(t, issued.TokenID, got.TokenID)
	assert.WithinDuration(t, issued.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	start := time.Now()
	svc.now = func() time.Time { return start }

	token, _, err := svc.Sign(Identity{ID: "admin-1", Role: "ADMIN"})
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	other := NewTokenService("other-secret", time.Hour)

	foreign, _, err := other.Sign(Identity{ID: "x"})
	require.NoError(t, err)
	_, err = svc.Verify(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "x", ID: "y"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryRevocations(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRevocations()
	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Revoke(ctx, "jti-1", time.Minute))
	revoked, err := m.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = m.IsRevoked(ctx, "jti-2")
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = m.IsRevoked(ctx, "jti-1")
	assert.False(t, revoked)

	require.NoError(t, m.Revoke(ctx, "jti-3", 0))
	revoked, _ = m.IsRevoked(ctx, "jti-3")
	assert.False(t, revoked)
}

func TestRedisRevocations_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	r := NewRedisRevocations(client)
	_, err := r.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
	assert.Error(t, r.Revoke(context.Background(), "jti", time.Minute))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "admin123"))
	assert.False(t, CheckPassword(hash, "admin124"))
}
