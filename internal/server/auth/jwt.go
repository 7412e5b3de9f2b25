package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered JWT claims plus the admin flag. The subject
// carries the user ID.
type Claims struct {
	jwt.RegisteredClaims
	IsAdm bool `json:"isAdm"`
}

// Identity returns the request identity carried by c.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.Subject, IsAdm: c.IsAdm}
}

// TokenService issues and verifies HS256 bearer tokens with a process-wide
// secret.
type TokenService struct {
	secretKey        []byte
	validityDuration time.Duration
	now              func() time.Time
}

func NewTokenService(secretKey []byte, validityDuration time.Duration) (*TokenService, error) {
	if len(secretKey) == 0 {
		return nil, common.ErrorEmptySecret
	}
	return &TokenService{
		secretKey:        secretKey,
		validityDuration: validityDuration,
		now:              time.Now,
	}, nil
}

// Issue signs a token for userID that expires after the configured validity.
func (s *TokenService) Issue(userID string, isAdm bool) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validityDuration)),
		},
		IsAdm: isAdm,
	})

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks signature, algorithm and expiry. Every failure is reported
// as common.ErrInvalidToken wrapping the parser error.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
