package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlackWebhook_Send(t *testing.T) {
	receivedMessage := ""
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var payload map[string]any
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
		receivedMessage, _ = payload["text"].(string)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := NewSlackWebhook(server.URL).Send(context.Background(), "Wiki sync finished")
	require.NoError(t, err)
	assert.Equal(t, "Wiki sync finished", receivedMessage)
}

func TestSlackWebhook_Send_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewSlackWebhook(server.URL).Send(context.Background(), "test")
	assert.Error(t, err)
}

func TestSlackWebhook_Send_MissingURL(t *testing.T) {
	err := NewSlackWebhook("").Send(context.Background(), "test")
	assert.EqualError(t, err, "slack webhook URL is not configured")
}
