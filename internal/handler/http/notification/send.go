package notification

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"streaky-relay/internal/handler/http/respond"
	"streaky-relay/internal/observability/logging"
	notifyUC "streaky-relay/internal/usecase/notify"
)

// SendHandler decrypts the caller's credentials and forwards one notification.
type SendHandler struct {
	Svc      notifyUC.Service
	Validate *validator.Validate
}

// ServeHTTP 通知送信
// @Summary      Send a streak notification
// @Description  Decrypts the provider credentials in the request and delivers one alert.
// @Description  Every dispatch outcome, including provider errors, is reported with HTTP 200.
// @Tags         notifications
// @Security     APISecret
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body SendRequest true "Notification request"
// @Success      200 {object} SendResponse "Dispatch outcome"
// @Failure      400 {object} ErrorResponse "Malformed JSON or missing fields"
// @Failure      401 {object} ErrorResponse "Missing or invalid API secret"
// @Failure      413 {object} ErrorResponse "Request body too large"
// @Failure      429 {object} ErrorResponse "Too many requests"
// @Router       /send-notification [post]
func (h SendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(w, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
			return
		}
		logger.Warn("failed to decode request body", slog.String("error", err.Error()))
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		verr := validationError(err)
		logger.Warn("invalid notification request", slog.String("error", verr.Error()))
		respond.SafeError(w, http.StatusBadRequest, verr)
		return
	}

	result := h.Svc.Dispatch(r.Context(), req.toEntity())
	respond.JSON(w, http.StatusOK, fromResult(result))
}
