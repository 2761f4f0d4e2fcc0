package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sereno-app/sereno-api/internal/api/middleware"
	"github.com/sereno-app/sereno-api/internal/api/response"
	"github.com/sereno-app/sereno-api/internal/service"
)

// AIChatHandler serves the assistant bootstrap and health endpoints
type AIChatHandler struct {
	chatService *service.ChatService
}

// NewAIChatHandler creates a new AI chat handler
func NewAIChatHandler(chatService *service.ChatService) *AIChatHandler {
	return &AIChatHandler{chatService: chatService}
}

// Bootstrap returns the caller's AI chat, creating one seeded with a
// welcome message when none exists.
func (h *AIChatHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Please authenticate.")
		return
	}

	session, err := h.chatService.BootstrapAIChat(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to bootstrap AI chat")
		response.InternalError(w, "Failed to get AI chat")
		return
	}

	response.OK(w, map[string]any{"chat": session})
}

// Health probes both AI backends and reports chain status
func (h *AIChatHandler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.chatService.HealthCheck(r.Context())

	response.OK(w, map[string]any{
		"health":    health,
		"services":  h.chatService.Status(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
