package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/therapy-booking/internal/config"
)

func newTestMailer(t *testing.T, handler http.HandlerFunc) *BrevoMailer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBrevoMailer(config.BrevoConfig{
		APIKey:      "xkeysib-test",
		APIURL:      srv.URL + "/v3",
		SenderEmail: "noreply@clinic.example",
		SenderName:  "Clinic",
	})
}

func TestBrevoMailer_Send(t *testing.T) {
	var got brevoEmail
	m := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/smtp/email", r.URL.Path)
		assert.Equal(t, "xkeysib-test", r.Header.Get("api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<1@smtp-relay.mailin.fr>"}`))
	})

	err := m.Send(context.Background(), []string{"jane@example.com", "smith@example.com"}, "Session cancelled", "body text")
	require.NoError(t, err)

	assert.Equal(t, "noreply@clinic.example", got.Sender.Email)
	assert.Equal(t, "Clinic", got.Sender.Name)
	require.Len(t, got.To, 2)
	assert.Equal(t, "jane@example.com", got.To[0].Email)
	assert.Equal(t, "smith@example.com", got.To[1].Email)
	assert.Equal(t, "Session cancelled", got.Subject)
	assert.Equal(t, "body text", got.TextContent)
}

func TestBrevoMailer_SendErrorStatus(t *testing.T) {
	m := newTestMailer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized","message":"Key not found"}`))
	})

	err := m.Send(context.Background(), []string{"jane@example.com"}, "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Key not found")
}

func TestBrevoMailer_NoRecipients(t *testing.T) {
	m := newTestMailer(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	})

	assert.NoError(t, m.Send(context.Background(), nil, "s", "b"))
}
