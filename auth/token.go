package auth

import (
	"fmt"
	"time"

	"pulse-lab/domain"
	"pulse-lab/errors"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "pulse-lab"

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID      string `json:"user_id" validate:"required,max=128"`
	DisplayName string `json:"display_name" validate:"required,max=64"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens with a single shared key.
type TokenManager struct {
	key      []byte
	duration time.Duration
}

func NewTokenManager(secret string, duration time.Duration) *TokenManager {
	return &TokenManager{key: []byte(secret), duration: duration}
}

// GenerateToken creates a signed JWT carrying the identity.
func (m *TokenManager) GenerateToken(identity domain.Identity) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID:      string(identity.UserID),
		DisplayName: identity.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

// Verify checks the signature, expiration and claims of a token.
// Any failure is reported as errors.ErrAuth.
func (m *TokenManager) Verify(tokenString string) (domain.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", errors.ErrAuth, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return domain.Identity{}, fmt.Errorf("%w: %v", errors.ErrAuth, jwt.ErrSignatureInvalid)
	}
	if err = validateClaims(*claims); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", errors.ErrAuth, err)
	}
	return domain.Identity{
		UserID:      domain.UserID(claims.UserID),
		DisplayName: claims.DisplayName,
	}, nil
}
