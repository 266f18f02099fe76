package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/radassist/radassist/internal/platform/apperr"
)

// Claims is the JWT payload for a session token. The subject is the account
// id; role is carried so authorization does not need a database round trip.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 session tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

// Sign issues a time-boxed token for the given account.
func (t *TokenCodec) Sign(accountID uuid.UUID, username, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the resolved principal.
// Expired, malformed, or badly signed tokens all map to ErrUnauthenticated.
func (t *TokenCodec) Verify(tokenStr string) (Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, apperr.ErrUnauthenticated
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, apperr.ErrUnauthenticated
	}

	return Principal{
		AccountID: accountID,
		Username:  claims.Username,
		Role:      claims.Role,
	}, nil
}
