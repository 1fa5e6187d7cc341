package auth

import (
	"testing"
	"time"

	"pulse-lab/domain"
	"pulse-lab/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const secret = "a_test_secret_long_enough_for_hs256"

func TestTokenManager_Generate_And_Verify(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager(secret, time.Hour)
	identity := domain.Identity{UserID: "u-1", DisplayName: "Alice"}

	// Given a freshly generated token
	token, err := manager.GenerateToken(identity)
	req.NoError(err)

	// When verifying it
	got, err := manager.Verify(token)

	// Then the identity is restored
	req.NoError(err)
	req.Equal(identity, got)
}

func TestTokenManager_Rejects_Foreign_Key(t *testing.T) {
	req := require.New(t)
	token, err := NewTokenManager("another_secret_entirely_different", time.Hour).
		GenerateToken(domain.Identity{UserID: "u-1", DisplayName: "Alice"})
	req.NoError(err)

	_, err = NewTokenManager(secret, time.Hour).Verify(token)

	req.ErrorIs(err, errors.ErrAuth)
}

func TestTokenManager_Rejects_Expired_Token(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager(secret, -time.Minute)
	token, err := manager.GenerateToken(domain.Identity{UserID: "u-1", DisplayName: "Alice"})
	req.NoError(err)

	_, err = manager.Verify(token)

	req.ErrorIs(err, errors.ErrAuth)
}

func TestTokenManager_Rejects_Malformed_Token(t *testing.T) {
	req := require.New(t)
	_, err := NewTokenManager(secret, time.Hour).Verify("not.a.jwt")
	req.ErrorIs(err, errors.ErrAuth)
}

func TestTokenManager_Rejects_Missing_Identity(t *testing.T) {
	req := require.New(t)
	// Given a correctly signed token without a display name
	claims := &CustomClaims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    issuer,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	req.NoError(err)

	// When verifying it
	_, err = NewTokenManager(secret, time.Hour).Verify(token)

	// Then the handshake is refused
	req.ErrorIs(err, errors.ErrAuth)
}

func TestTokenManager_Rejects_None_Algorithm(t *testing.T) {
	req := require.New(t)
	claims := &CustomClaims{
		UserID:      "u-1",
		DisplayName: "Alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    issuer,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	req.NoError(err)

	_, err = NewTokenManager(secret, time.Hour).Verify(token)

	req.ErrorIs(err, errors.ErrAuth)
}
