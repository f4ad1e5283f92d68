package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginWithDefaultCredentials(t *testing.T) {
	svc := NewAuthService()

	resp, err := svc.Login("admin", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.HostID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService()

	_, err := svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHostTokenRoundTrip(t *testing.T) {
	svc := NewAuthService()

	resp, err := svc.Login("admin", "password123")
	require.NoError(t, err)

	claims, err := svc.ValidateHostToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.HostID, claims.HostID)
}

func TestPlayerTokenRoundTrip(t *testing.T) {
	svc := NewAuthService()

	token, err := svc.GeneratePlayerToken("host_abc123", "p_xyz")
	require.NoError(t, err)

	claims, err := svc.ValidatePlayerToken(token)
	require.NoError(t, err)
	assert.Equal(t, "host_abc123", claims.GameID)
	assert.Equal(t, "p_xyz", claims.PlayerID)
}

func TestValidateRejectsGarbageToken(t *testing.T) {
	svc := NewAuthService()

	_, err := svc.ValidateHostToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidatePlayerToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
