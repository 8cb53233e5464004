package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MaxTokenTTL bounds IssueToken lifetimes.
const MaxTokenTTL = 24 * time.Hour

// IssueToken mints an HS256 bearer token accepted by Authenticator.
// subject identifies the caller in logs of the issuing side; it is not checked.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("secret is required")
	}
	if ttl <= 0 || ttl > MaxTokenTTL {
		return "", errors.New("ttl must be positive and at most 24h")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
