// Package intake serves the conversational journey intake endpoint.
package intake

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/galtpos/oasara-sub004/internal/model"
	"github.com/galtpos/oasara-sub004/pkg/anthropic"
)

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 1024
	defaultReply     = "Great! I'm setting up your personalized journey now..."
	requestTimeout   = 60 * time.Second
)

// ChatRequest is the body of POST /api/onboarding-chat. Messages holds the
// prior conversation; the server keeps no state between calls.
type ChatRequest struct {
	Messages    []anthropic.Message `json:"messages"`
	UserMessage string              `json:"userMessage"`
}

// ChatResponse is a successful reply. CreateJourney is null until the model
// calls the tool with valid input.
type ChatResponse struct {
	Message       string         `json:"message"`
	CreateJourney *model.Journey `json:"createJourney"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Handler answers intake chat turns.
type Handler struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewHandler creates a Handler. Empty model and zero maxTokens use defaults.
func NewHandler(client anthropic.Client, model string, maxTokens int64) *Handler {
	if model == "" {
		model = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Handler{client: client, model: model, maxTokens: maxTokens}
}

// Router mounts the intake routes with permissive CORS.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.With(middleware.Timeout(requestTimeout)).Post("/api/onboarding-chat", h.Chat)
	return r
}

// Chat handles one conversation turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request", Message: "Request body must be JSON"})
		return
	}
	if strings.TrimSpace(req.UserMessage) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request", Message: "userMessage is required"})
		return
	}

	messages := make([]anthropic.Message, 0, len(req.Messages)+1)
	messages = append(messages, req.Messages...)
	messages = append(messages, anthropic.Message{Role: "user", Content: req.UserMessage})

	resp, err := h.client.CreateMessage(r.Context(), anthropic.MessageRequest{
		Model:     h.model,
		MaxTokens: h.maxTokens,
		System:    anthropic.BuildCachedSystemBlocks(SystemPrompt, ""),
		Messages:  messages,
		Tools:     []anthropic.Tool{JourneyTool},
	})
	if err != nil {
		zap.L().Error("intake: model call failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to process chat request",
			Message: err.Error(),
		})
		return
	}
	resp.Usage.LogCost(h.model, "intake")

	out := ChatResponse{Message: resp.Text()}
	if call, ok := resp.ToolUse(ToolName); ok {
		journey, verr := ValidateJourney(call.Input)
		if verr != nil {
			zap.L().Info("intake: journey rejected",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("reason", verr.Message),
			)
			writeJSON(w, verr.Status(), verr)
			return
		}
		out.CreateJourney = journey
	}
	if out.Message == "" {
		out.Message = defaultReply
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
