package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"haldoor-backend/internal/models"
)

// TokenTTL is the fixed lifetime of a session token. There is no
// revocation: a token stays valid until expiry regardless of later account
// changes, which is why privileged checks re-read the persisted role.
const TokenTTL = 24 * time.Hour

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the payload carried by a session token. The embedded role is a
// snapshot at issue time; authorization for admin surfaces does not trust it.
type Claims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed session tokens. The signing
// secret is process-wide configuration, loaded once and never mutated.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a token service with the given signing secret
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue produces an HS256-signed token for the user with the fixed 24h expiry
func (t *TokenService) Issue(userID string, role models.Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses and validates a token. Expired tokens yield ErrTokenExpired,
// anything else wrong with the token yields ErrTokenInvalid.
func (t *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
