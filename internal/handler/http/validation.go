package http

import (
	"errors"
	"net/http"

	"streaky-relay/internal/handler/http/auth"
	"streaky-relay/internal/handler/http/respond"
)

const (
	// maxCredentialHeaderBytes caps X-API-Secret and Authorization.
	// Bearer tokens issued by the relay stay well under 1KB.
	maxCredentialHeaderBytes = 8 << 10
	maxPathBytes             = 2 << 10
)

// InputValidation rejects oversized credential headers and paths before they
// reach authentication.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.Header.Get("Authorization")) > maxCredentialHeaderBytes ||
				len(r.Header.Get(auth.APISecretHeader)) > maxCredentialHeaderBytes {
				respond.SafeError(w, http.StatusRequestHeaderFieldsTooLarge, errors.New("credential header too large"))
				return
			}

			if len(r.URL.Path) > maxPathBytes {
				respond.SafeError(w, http.StatusRequestURITooLong, errors.New("request path too long"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
