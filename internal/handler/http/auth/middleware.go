// Package auth authenticates callers of the relay.
//
// Two credentials are accepted, both derived from the single shared secret
// (VPS_SECRET):
//
//   - X-API-Secret: <secret>, compared in constant time
//   - Authorization: Bearer <JWT>, HS256-signed with the secret and carrying exp
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"streaky-relay/internal/handler/http/respond"
	"streaky-relay/internal/observability/logging"
	"streaky-relay/internal/observability/metrics"
)

// APISecretHeader carries the shared secret.
const APISecretHeader = "X-API-Secret"

// Auth method labels used in logs and metrics.
const (
	MethodAPISecret = "api_secret"
	MethodJWT       = "jwt"
	MethodNone      = "none"
)

var (
	errMissingCredentials = errors.New("unauthorized: missing credentials")
	errInvalidCredentials = errors.New("unauthorized: invalid credentials")
)

// Authenticator validates requests against the shared secret.
type Authenticator struct {
	secret     []byte
	secretHash [sha256.Size]byte
	now        func() time.Time
}

// NewAuthenticator creates an Authenticator for secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{
		secret:     []byte(secret),
		secretHash: sha256.Sum256([]byte(secret)),
		now:        time.Now,
	}
}

// Middleware rejects unauthenticated requests to non-public paths with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsPublicEndpoint(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		method, err := a.authenticate(r)
		metrics.RecordAuth(method, err == nil)
		if err != nil {
			logging.FromContext(r.Context()).Warn("unauthorized request",
				slog.String("auth_method", method),
				slog.String("path", r.URL.Path),
				slog.String("reason", err.Error()))
			w.Header().Set("WWW-Authenticate", `Bearer realm="streaky-relay"`)
			respond.SafeError(w, http.StatusUnauthorized, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authenticate returns the method used and nil on success.
// X-API-Secret takes precedence when both headers are present.
func (a *Authenticator) authenticate(r *http.Request) (string, error) {
	if provided := r.Header.Get(APISecretHeader); provided != "" {
		if !a.secretMatches(provided) {
			return MethodAPISecret, errInvalidCredentials
		}
		return MethodAPISecret, nil
	}

	if authz := r.Header.Get("Authorization"); authz != "" {
		if err := a.validateJWT(authz); err != nil {
			return MethodJWT, err
		}
		return MethodJWT, nil
	}

	return MethodNone, errMissingCredentials
}

// secretMatches compares digests so neither content nor length leaks through timing.
func (a *Authenticator) secretMatches(provided string) bool {
	sum := sha256.Sum256([]byte(provided))
	return subtle.ConstantTimeCompare(sum[:], a.secretHash[:]) == 1
}

func (a *Authenticator) validateJWT(authz string) error {
	const prefix = "Bearer "
	if len(authz) <= len(prefix) || !strings.EqualFold(authz[:len(prefix)], prefix) {
		return errInvalidCredentials
	}

	_, err := jwt.Parse(authz[len(prefix):],
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return errInvalidCredentials
	}
	return nil
}
