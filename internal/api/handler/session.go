package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sereno-app/sereno-api/internal/api/middleware"
	"github.com/sereno-app/sereno-api/internal/api/response"
	"github.com/sereno-app/sereno-api/internal/domain"
	"github.com/sereno-app/sereno-api/internal/service"
)

// SessionHandler serves the chat-session endpoints
type SessionHandler struct {
	chatService *service.ChatService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(chatService *service.ChatService) *SessionHandler {
	return &SessionHandler{chatService: chatService}
}

// sessionSummary is the list-view projection of a session.
type sessionSummary struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"sessionId"`
	Name         string    `json:"name"`
	LastMessage  string    `json:"lastMessage"`
	Time         time.Time `json:"time"`
	MessageCount int       `json:"messageCount"`
	UnreadCount  int       `json:"unreadCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

func summarize(s *domain.ChatSession) sessionSummary {
	lastMessage := "No messages yet"
	if s.LastMessage != nil {
		lastMessage = s.LastMessage.Content
	}
	return sessionSummary{
		ID:           s.ID,
		SessionID:    s.ID,
		Name:         s.Name,
		LastMessage:  lastMessage,
		Time:         s.UpdatedAt,
		MessageCount: len(s.Messages),
		UnreadCount:  s.UnreadCount(),
		CreatedAt:    s.CreatedAt,
	}
}

// List returns the caller's sessions, most recent activity first
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Please authenticate.")
		return
	}

	sessions, err := h.chatService.ListSessions(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list sessions")
		response.InternalError(w, "Failed to fetch chat sessions")
		return
	}

	summaries := make([]sessionSummary, 0, len(sessions))
	for i := range sessions {
		summaries = append(summaries, summarize(&sessions[i]))
	}

	response.OK(w, map[string]any{"sessions": summaries})
}

// Create starts a new empty session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Please authenticate.")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	// Body is optional; an absent or invalid body means a default name.
	_ = json.NewDecoder(r.Body).Decode(&req)

	session, err := h.chatService.CreateSession(r.Context(), userID, req.Name)
	if err != nil {
		log.Error().Err(err).Msg("failed to create session")
		response.BadRequest(w, "Failed to create chat session")
		return
	}

	response.Created(w, map[string]any{"session": summarize(session)})
}

// GetMessages returns the full message log of a session
func (h *SessionHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Please authenticate.")
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	messages, err := h.chatService.GetMessages(r.Context(), userID, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "Chat session not found")
			return
		}
		log.Error().Err(err).Msg("failed to fetch session messages")
		response.InternalError(w, "Failed to fetch session messages")
		return
	}

	response.OK(w, map[string]any{"messages": messages})
}

// SendMessage runs the resolution pipeline for one user message. The
// reply always carries HTTP 200; provider failures degrade the reply,
// they never become HTTP errors.
func (h *SessionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Please authenticate.")
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	var req struct {
		Content string `json:"content"`
		Sender  string `json:"sender"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	exchange, err := h.chatService.SendMessage(r.Context(), userID, sessionID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			response.BadRequest(w, "Message content is required")
		case errors.Is(err, domain.ErrNotFound):
			response.NotFound(w, "Chat session not found")
		default:
			log.Error().Err(err).Msg("failed to send message")
			response.InternalError(w, "Failed to send message")
		}
		return
	}

	response.OK(w, exchange)
}

// Delete removes a session permanently
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Please authenticate.")
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	if err := h.chatService.DeleteSession(r.Context(), userID, sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "Chat session not found")
			return
		}
		log.Error().Err(err).Msg("failed to delete session")
		response.InternalError(w, "Failed to delete chat session")
		return
	}

	response.OK(w, map[string]string{"message": "Chat session deleted successfully"})
}
