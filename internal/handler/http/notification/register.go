package notification

import (
	"net/http"

	notifyUC "streaky-relay/internal/usecase/notify"
)

// Register registers the notification routes with the given mux.
// Authentication is applied by the caller.
func Register(mux *http.ServeMux, svc notifyUC.Service) {
	mux.Handle("POST /send-notification", SendHandler{Svc: svc, Validate: NewValidator()})
}
