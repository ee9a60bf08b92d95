package jwtService

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	secret := []byte("secret")
	j := New(secret)

	timestamp := time.Now()
	tokenString, err := j.NewToken("admin@nurvideo.com", time.Hour)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	token, err := jwt.NewParser().ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"uid", "exp"}, keys)

	// give some gap for TTL
	const deltaSeconds = 1
	assert.Equal(t, "admin@nurvideo.com", claims["uid"])
	assert.InDelta(t, timestamp.Add(time.Hour).Unix(), claims["exp"].(float64), deltaSeconds)
}

func TestExpiredToken(t *testing.T) {
	secret := []byte("secret")
	j := New(secret)
	j.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tokenString, err := j.NewToken("admin@nurvideo.com", time.Hour)
	require.NoError(t, err)

	_, err = jwt.Parse(tokenString, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}
