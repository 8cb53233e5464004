// Package notification provides the HTTP handler for dispatching streak notifications.
package notification

import (
	"streaky-relay/internal/domain/entity"
)

// SendRequest is the JSON body of POST /send-notification.
// Only the encrypted fields required by Type need to be present.
type SendRequest struct {
	Type             string      `json:"type" validate:"required" example:"discord"`
	EncryptedWebhook string      `json:"encrypted_webhook,omitempty" example:"q83vEjRWeJq83vEjR...=="`
	EncryptedToken   string      `json:"encrypted_token,omitempty"`
	EncryptedChatID  string      `json:"encrypted_chat_id,omitempty"`
	Message          *MessageDTO `json:"message" validate:"required"`
}

// MessageDTO carries the streak event.
type MessageDTO struct {
	Username           string `json:"username" validate:"required" example:"octocat"`
	CurrentStreak      *int   `json:"current_streak" validate:"required" example:"42"`
	ContributionsToday *int   `json:"contributions_today,omitempty" example:"0"`
	Message            string `json:"message" example:"Your streak ends in 3 hours!"`
}

// SendResponse is returned with HTTP 200 for every dispatch outcome.
type SendResponse struct {
	Success bool    `json:"success" example:"false"`
	Error   *string `json:"error" example:"Discord API error: 404 Not Found - Unknown Webhook"`
}

// ErrorResponse is returned for requests that never reach dispatch.
type ErrorResponse struct {
	Error string `json:"error" example:"validation failed: message.username is required"`
}

// toEntity converts a validated request. Message and CurrentStreak are non-nil
// after validation.
func (r *SendRequest) toEntity() *entity.NotificationRequest {
	return &entity.NotificationRequest{
		Type:             entity.NotificationKind(r.Type),
		EncryptedWebhook: r.EncryptedWebhook,
		EncryptedToken:   r.EncryptedToken,
		EncryptedChatID:  r.EncryptedChatID,
		Message: entity.NotificationMessage{
			Username:           r.Message.Username,
			CurrentStreak:      *r.Message.CurrentStreak,
			ContributionsToday: r.Message.ContributionsToday,
			Message:            r.Message.Message,
		},
	}
}

func fromResult(res entity.DispatchResult) SendResponse {
	return SendResponse{Success: res.Success, Error: res.Error}
}
