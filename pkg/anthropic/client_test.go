package anthropic

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MessageResponse), args.Error(1)
}

func TestCreateMessage_MockClient(t *testing.T) {
	m := new(MockClient)
	req := MessageRequest{
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 1024,
		Messages:  []Message{{Role: "user", Content: "I need a knee replacement"}},
	}
	m.On("CreateMessage", mock.Anything, req).Return(&MessageResponse{
		ID:      "msg_1",
		Content: []ContentBlock{{Type: "text", Text: "What is your budget?"}},
	}, nil)

	resp, err := m.CreateMessage(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "What is your budget?", resp.Text())
	m.AssertExpectations(t)
}

func TestMessageResponse_Text(t *testing.T) {
	r := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "First."},
		{Type: "tool_use", Name: "create_journey"},
		{Type: "text", Text: "Second."},
	}}
	assert.Equal(t, "First.\nSecond.", r.Text())
	assert.Equal(t, "", (&MessageResponse{}).Text())
}

func TestMessageResponse_ToolUse(t *testing.T) {
	r := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "Setting things up."},
		{Type: "tool_use", ID: "toolu_1", Name: "create_journey", Input: json.RawMessage(`{"procedure":"Knee Replacement"}`)},
	}}

	b, ok := r.ToolUse("create_journey")
	require.True(t, ok)
	assert.Equal(t, "toolu_1", b.ID)
	assert.JSONEq(t, `{"procedure":"Knee Replacement"}`, string(b.Input))

	_, ok = r.ToolUse("other_tool")
	assert.False(t, ok)
}

func TestToSDKMessages_Roles(t *testing.T) {
	out := toSDKMessages([]Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "system", Content: "treated as user"},
	})
	require.Len(t, out, 3)
	assert.Equal(t, "user", string(out[0].Role))
	assert.Equal(t, "assistant", string(out[1].Role))
	assert.Equal(t, "user", string(out[2].Role))
}

func TestToSDKTools(t *testing.T) {
	tools := toSDKTools([]Tool{{
		Name:        "create_journey",
		Description: "Create a journey",
		Properties:  map[string]any{"procedure": map[string]any{"type": "string"}},
		Required:    []string{"procedure"},
	}})

	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "create_journey", tools[0].OfTool.Name)
	assert.Equal(t, []string{"procedure"}, tools[0].OfTool.InputSchema.Required)
}

func TestEstimateCost_Sonnet(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 18.0, u.EstimateCost("claude-sonnet-4-5-20250929"), 0.0001)
}

func TestEstimateCost_WithCache(t *testing.T) {
	u := TokenUsage{CacheCreationInputTokens: 1_000_000, CacheReadInputTokens: 1_000_000}
	// 3.00*1.25 + 3.00*0.1
	assert.InDelta(t, 4.05, u.EstimateCost("claude-sonnet-4-5-20250929"), 0.0001)
}

func TestEstimateCost_UnknownModel(t *testing.T) {
	u := TokenUsage{InputTokens: 1000, OutputTokens: 1000}
	assert.Zero(t, u.EstimateCost("unknown-model"))
}

func TestLogCost_DoesNotPanic(t *testing.T) {
	u := TokenUsage{InputTokens: 100, OutputTokens: 50}
	assert.NotPanics(t, func() { u.LogCost("claude-sonnet-4-5-20250929", "intake") })
}
