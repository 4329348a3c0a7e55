package llmsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darslik/core/llm"
)

func newTestAnthropicClient(t *testing.T, handler http.HandlerFunc) *AnthropicClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := newAnthropicClient("test-key", server.URL, "claude-sonnet-4-5")
	require.NoError(t, err)
	return c
}

func anthropicMessage(text, stopReason string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-sonnet-4-5",
		"stop_reason": stopReason,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func TestAnthropicClient_Generate(t *testing.T) {
	var body map[string]any
	c := newTestAnthropicClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(anthropicMessage(`{"x":3,"y":"c"}`, "end_turn"))
	})

	req := llm.UserPrompt("You draw points.", "point", 256)
	req.Schema = pointSchema
	resp, err := c.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, `{"x":3,"y":"c"}`, resp.Content)
	assert.Equal(t, llm.Usage{InputTokens: 50, OutputTokens: 30, TotalTokens: 80}, resp.Usage)
	assert.Equal(t, "end", resp.StopReason)
	assert.Equal(t, "claude-sonnet-4-5", body["model"])
	assert.EqualValues(t, 256, body["max_tokens"])
	assert.NotNil(t, body["system"])
}

func TestAnthropicClient_Errors(t *testing.T) {
	tests := []struct {
		status  int
		errType string
		check   func(t *testing.T, err error)
	}{
		{http.StatusTooManyRequests, "rate_limit_error", func(t *testing.T, err error) {
			var target *llm.ErrRateLimit
			if assert.ErrorAs(t, err, &target) {
				assert.Equal(t, 7*time.Second, target.RetryAfter)
				assert.Contains(t, target.Error(), "retry after 7s")
			}
		}},
		{http.StatusUnauthorized, "authentication_error", func(t *testing.T, err error) {
			var target *llm.ErrAuthentication
			assert.ErrorAs(t, err, &target)
		}},
		{http.StatusInternalServerError, "api_error", func(t *testing.T, err error) {
			var target *llm.ErrProviderUnavailable
			assert.ErrorAs(t, err, &target)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.errType, func(t *testing.T) {
			c := newTestAnthropicClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				if tc.status == http.StatusTooManyRequests {
					w.Header().Set("Retry-After", "7")
				}
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"type":  "error",
					"error": map[string]any{"type": tc.errType, "message": "nope"},
				})
			})
			_, err := c.Generate(context.Background(), llm.UserPrompt("", "test", 10))
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestAnthropicClient_Truncated(t *testing.T) {
	c := newTestAnthropicClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(anthropicMessage(`{"x":`, "max_tokens"))
	})
	req := llm.UserPrompt("", "point", 5)
	req.Schema = pointSchema
	_, err := c.Generate(context.Background(), req)
	var truncated *llm.ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &truncated)
}
