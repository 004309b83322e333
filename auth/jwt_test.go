package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndExtractJWT(t *testing.T) {
	token, err := GenerateJWT("test_secret", "alice", true, 10)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	c, err := ExtractClaims(req, "test_secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Username())
	assert.True(t, c.Admin)
	assert.False(t, c.HasCredential())
}

func TestSignClaimsCarriesCredential(t *testing.T) {
	token, err := SignClaims("s", &Claims{
		Credential:       "v^1.1#abc",
		MarketplaceUser:  "seller1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "bob"},
	}, 5)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c, err := ExtractClaims(req, "s")
	require.NoError(t, err)
	assert.Equal(t, "bob", c.Username())
	assert.True(t, c.HasCredential())
	assert.Equal(t, "v^1.1#abc", c.Credential)
	assert.Equal(t, "seller1", c.MarketplaceUser)
}

func TestExtractClaimsRejects(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	_, err := ExtractClaims(req, "s")
	assert.ErrorIs(t, err, ErrNoBearer)

	req.Header.Set("Authorization", "Bearer invalidtoken")
	_, err = ExtractClaims(req, "s")
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err := GenerateJWT("other", "eve", false, 10)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	_, err = ExtractClaims(req, "s")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredJWT(t *testing.T) {
	token, err := GenerateJWT("s", "bob", false, -1)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	_, err = ExtractClaims(req, "s")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
