package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pecunia-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIChat(t *testing.T) {
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"test-model",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Keep an emergency fund."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	backend := &recordingGateway{}
	gw := NewOpenAIChat(backend, "test-key", srv.URL+"/v1", "test-model", time.Second)

	payload := models.ChatPayload{
		Message: "any tips?",
		UserContext: models.ChatContext{
			Profile: models.DefaultProfile(),
			History: []models.ChatTurn{
				{Origin: models.OriginUser, Body: "hello"},
				{Origin: models.OriginAssistant, Body: "hi!"},
			},
			Page: "budget",
		},
	}
	res, err := gw.Chat(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "Keep an emergency fund.", res.Response)

	assert.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 4)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[0].Content, "$6,500")
	assert.Contains(t, gotReq.Messages[0].Content, "viewing the budget page")
	assert.Equal(t, "assistant", gotReq.Messages[2].Role)
	assert.Equal(t, "any tips?", gotReq.Messages[3].Content)

	// Other categories still go to the analysis backend.
	_, err = gw.BudgetOptimization(context.Background(), models.DefaultProfile())
	require.NoError(t, err)
	assert.Equal(t, models.CategoryBudgetOptimization, backend.called)
}

func TestOpenAIChatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	gw := NewOpenAIChat(&recordingGateway{}, "bad", srv.URL+"/v1", "test-model", time.Second)
	_, err := gw.Chat(context.Background(), models.ChatPayload{Message: "hi"})
	gwErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, models.CategoryGeneralChat, gwErr.Category)
	assert.Equal(t, http.StatusUnauthorized, gwErr.StatusCode)
}

func TestOpenAIChatTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	gw := NewOpenAIChat(&recordingGateway{}, "test-key", srv.URL+"/v1", "test-model", 100*time.Millisecond)
	start := time.Now()
	_, err := gw.Chat(context.Background(), models.ChatPayload{Message: "hi"})
	elapsed := time.Since(start)

	gwErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, models.CategoryGeneralChat, gwErr.Category)
	assert.Zero(t, gwErr.StatusCode)
	assert.Less(t, elapsed, 2*time.Second)
}
