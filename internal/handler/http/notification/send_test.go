package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streaky-relay/internal/domain/entity"
	notifyUC "streaky-relay/internal/usecase/notify"
)

// stubService records dispatched requests and returns a fixed result.
type stubService struct {
	mu       sync.Mutex
	requests []*entity.NotificationRequest
	result   entity.DispatchResult
}

func (s *stubService) Dispatch(_ context.Context, req *entity.NotificationRequest) entity.DispatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.result
}

func (s *stubService) ProviderHealth() []notifyUC.ProviderHealthStatus { return nil }

func (s *stubService) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func newMux(svc notifyUC.Service) *http.ServeMux {
	mux := http.NewServeMux()
	Register(mux, svc)
	return mux
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/send-notification", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func intPtr(v int) *int { return &v }

func TestSendHandler_Dispatches(t *testing.T) {
	svc := &stubService{result: entity.Succeeded()}
	body := `{
		"type": "discord",
		"encrypted_webhook": "Y2lwaGVydGV4dA==",
		"message": {"username": "octocat", "current_streak": 42, "contributions_today": 0, "message": "keep going"}
	}`

	rr := post(t, newMux(svc), body)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success": true, "error": null}`, rr.Body.String())

	require.Equal(t, 1, svc.calls())
	want := &entity.NotificationRequest{
		Type:             entity.NotificationDiscord,
		EncryptedWebhook: "Y2lwaGVydGV4dA==",
		Message: entity.NotificationMessage{
			Username:           "octocat",
			CurrentStreak:      42,
			ContributionsToday: intPtr(0),
			Message:            "keep going",
		},
	}
	if diff := cmp.Diff(want, svc.requests[0]); diff != "" {
		t.Errorf("dispatched request mismatch (-want +got):\n%s", diff)
	}
}

func TestSendHandler_FailureIsStill200(t *testing.T) {
	svc := &stubService{result: entity.Failed(&entity.DispatchError{
		Kind:       entity.ProviderRejected,
		Provider:   "Discord",
		StatusCode: http.StatusNotFound,
		Body:       "Unknown Webhook",
	})}

	rr := post(t, newMux(svc), `{"type":"discord","encrypted_webhook":"x","message":{"username":"a","current_streak":1}}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp SendResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Discord API error: 404 Not Found - Unknown Webhook", *resp.Error)
}

func TestSendHandler_UnknownTypeReachesService(t *testing.T) {
	svc := &stubService{result: entity.Failed(&entity.DispatchError{Kind: entity.UnsupportedType, Type: "slack"})}

	rr := post(t, newMux(svc), `{"type":"slack","message":{"username":"a","current_streak":1}}`)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, svc.calls())
	assert.Equal(t, entity.NotificationKind("slack"), svc.requests[0].Type)
	assert.Contains(t, rr.Body.String(), `Invalid notification type: \"slack\"`)
}

func TestSendHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "malformed json",
			body:    `{"type":`,
			wantErr: "invalid request body",
		},
		{
			name:    "missing type",
			body:    `{"message":{"username":"a","current_streak":1}}`,
			wantErr: "validation failed: type is required",
		},
		{
			name:    "missing message",
			body:    `{"type":"discord"}`,
			wantErr: "validation failed: message is required",
		},
		{
			name:    "missing username",
			body:    `{"type":"discord","message":{"current_streak":1}}`,
			wantErr: "validation failed: message.username is required",
		},
		{
			name:    "missing streak",
			body:    `{"type":"discord","message":{"username":"a"}}`,
			wantErr: "validation failed: message.current_streak is required",
		},
		{
			name:    "wrong field type",
			body:    `{"type":"discord","message":{"username":"a","current_streak":"many"}}`,
			wantErr: "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			rr := post(t, newMux(svc), tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantErr, resp.Error)
			assert.Zero(t, svc.calls(), "nothing may be dispatched")
		})
	}
}

func TestSendHandler_ZeroStreakIsValid(t *testing.T) {
	svc := &stubService{result: entity.Succeeded()}

	rr := post(t, newMux(svc), `{"type":"telegram","encrypted_token":"t","encrypted_chat_id":"c","message":{"username":"a","current_streak":0}}`)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, svc.calls())
	assert.Zero(t, svc.requests[0].Message.CurrentStreak)
	assert.Nil(t, svc.requests[0].Message.ContributionsToday)
}

func TestSendHandler_BodyTooLarge(t *testing.T) {
	svc := &stubService{}
	mux := newMux(svc)
	limited := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 16)
		mux.ServeHTTP(w, r)
	})

	rr := post(t, limited, `{"type":"discord","message":{"username":"a","current_streak":1}}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.JSONEq(t, `{"error":"request body too large"}`, rr.Body.String())
	assert.Zero(t, svc.calls())
}

func TestRegister_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/send-notification", nil)
	rr := httptest.NewRecorder()
	newMux(&stubService{}).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
