package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient creates an sdkClient pointing at a local test server.
func newTestClient(baseURL string) *sdkClient {
	return NewClient("test-key", option.WithBaseURL(baseURL)).(*sdkClient)
}

func TestSDKClient_CreateMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id":   "msg_test_001",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "Which procedure are you considering?"},
			},
			"model":       "claude-sonnet-4-5-20250929",
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":  10,
				"output_tokens": 5,
			},
		})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	resp, err := client.CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 1024,
		Messages:  []Message{{Role: "user", Content: "Hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "msg_test_001", resp.ID)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, "Which procedure are you considering?", resp.Text())
	assert.Equal(t, int64(10), resp.Usage.InputTokens)
}

func TestSDKClient_CreateMessage_ToolUse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		tools, ok := body["tools"].([]any)
		require.True(t, ok)
		require.Len(t, tools, 1)
		tool := tools[0].(map[string]any)
		assert.Equal(t, "create_journey", tool["name"])
		schema := tool["input_schema"].(map[string]any)
		assert.Equal(t, "object", schema["type"])
		assert.ElementsMatch(t, []any{"procedure", "timeline"}, schema["required"])

		system := body["system"].([]any)
		require.Len(t, system, 1)
		assert.NotNil(t, system[0].(map[string]any)["cache_control"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id":   "msg_tool",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "Great choice."},
				{"type": "tool_use", "id": "toolu_01", "name": "create_journey",
					"input": map[string]any{"procedure": "Hip Replacement", "timeline": "flexible"}},
			},
			"model":       "claude-sonnet-4-5-20250929",
			"stop_reason": "tool_use",
			"usage":       map[string]any{"input_tokens": 200, "output_tokens": 40},
		})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	resp, err := client.CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 1024,
		System:    BuildCachedSystemBlocks("You are a concierge.", ""),
		Messages:  []Message{{Role: "user", Content: "Hip replacement, flexible timing"}},
		Tools: []Tool{{
			Name:        "create_journey",
			Description: "Create a medical journey",
			Properties: map[string]any{
				"procedure": map[string]any{"type": "string"},
				"timeline":  map[string]any{"type": "string", "enum": []string{"urgent", "flexible", "planning"}},
			},
			Required: []string{"procedure", "timeline"},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "tool_use", resp.StopReason)

	block, ok := resp.ToolUse("create_journey")
	require.True(t, ok)
	assert.Equal(t, "toolu_01", block.ID)
	assert.JSONEq(t, `{"procedure":"Hip Replacement","timeline":"flexible"}`, string(block.Input))
}

func TestSDKClient_CreateMessage_ErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"type": "error",
			"error": map[string]any{
				"type":    "api_error",
				"message": "Internal server error",
			},
		})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	_, err := client.CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 1024,
		Messages:  []Message{{Role: "user", Content: "Hello"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic: create message")
	assert.Equal(t, int32(1), calls.Load())
}
