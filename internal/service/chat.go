package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sereno-app/sereno-api/internal/ai"
	"github.com/sereno-app/sereno-api/internal/domain"
)

const welcomeMessage = "Hello! I'm your mental health assistant. How are you feeling today?"

// Exchange is the outcome of one resolution round trip: the stored user
// message, the stored assistant reply and the provenance tag.
type Exchange struct {
	UserMessage domain.Message `json:"message"`
	AIMessage   domain.Message `json:"aiResponse"`
	Provider    string         `json:"provider"`
}

// ChatService owns session lifecycle and the message-append use case
// that drives the resolution pipeline. The resolver itself performs no
// persistence; both messages are appended here after resolution.
type ChatService struct {
	sessions      domain.SessionRepository
	resolver      *ai.Resolver
	historyWindow int
}

// NewChatService creates a new chat service
func NewChatService(sessions domain.SessionRepository, resolver *ai.Resolver, historyWindow int) *ChatService {
	if historyWindow <= 0 {
		historyWindow = 10
	}
	return &ChatService{
		sessions:      sessions,
		resolver:      resolver,
		historyWindow: historyWindow,
	}
}

// CreateSession starts an empty session for the user.
func (s *ChatService) CreateSession(ctx context.Context, ownerID uuid.UUID, name string) (*domain.ChatSession, error) {
	now := time.Now().UTC()
	if name == "" {
		name = "Chat Session - " + now.Format("1/2/2006")
	}

	session := &domain.ChatSession{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Messages:  []domain.Message{},
		Topics:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ListSessions returns the user's sessions, most recent activity first.
func (s *ChatService) ListSessions(ctx context.Context, ownerID uuid.UUID) ([]domain.ChatSession, error) {
	return s.sessions.ListByOwner(ctx, ownerID)
}

// GetMessages returns the full message log of an owned session.
func (s *ChatService) GetMessages(ctx context.Context, ownerID, sessionID uuid.UUID) ([]domain.Message, error) {
	session, err := s.sessions.Get(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}
	return session.Messages, nil
}

// DeleteSession removes the whole session. Irreversible.
func (s *ChatService) DeleteSession(ctx context.Context, ownerID, sessionID uuid.UUID) error {
	return s.sessions.Delete(ctx, sessionID, ownerID)
}

// SendMessage runs the resolution pipeline for one user message and
// appends both sides of the exchange. Provider failures never surface
// here; the resolver always yields a usable reply.
func (s *ChatService) SendMessage(ctx context.Context, ownerID, sessionID uuid.UUID, content string) (*Exchange, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", domain.ErrValidation)
	}

	session, err := s.sessions.Get(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}

	history := historyWindow(session.Messages, s.historyWindow)
	reply := s.resolver.Resolve(ctx, ownerID.String(), content, history)

	log.Info().
		Str("session_id", sessionID.String()).
		Str("provider", reply.Provider).
		Strs("categories", reply.Categories).
		Msg("message resolved")

	now := time.Now().UTC()

	// The user message carries the pipeline's post-response tags, not a
	// property of the raw text alone.
	userMsg := domain.Message{
		ID:         uuid.New(),
		Sender:     domain.UserSender(ownerID),
		Content:    content,
		Timestamp:  now,
		Read:       false,
		Sentiment:  reply.Sentiment,
		Categories: reply.Categories,
	}
	aiMsg := domain.Message{
		ID:         uuid.New(),
		Sender:     domain.Assistant,
		Content:    reply.Content,
		Timestamp:  now,
		Read:       true,
		Sentiment:  reply.Sentiment,
		Categories: reply.Categories,
	}

	if err := s.sessions.AppendExchange(ctx, sessionID, ownerID, userMsg, aiMsg, reply.Categories); err != nil {
		return nil, err
	}

	return &Exchange{
		UserMessage: userMsg,
		AIMessage:   aiMsg,
		Provider:    reply.Provider,
	}, nil
}

// BootstrapAIChat returns the user's most recent session, creating one
// seeded with a welcome message when none exists yet.
func (s *ChatService) BootstrapAIChat(ctx context.Context, ownerID uuid.UUID) (*domain.ChatSession, error) {
	sessions, err := s.sessions.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(sessions) > 0 {
		return &sessions[0], nil
	}

	now := time.Now().UTC()
	welcome := domain.Message{
		ID:         uuid.New(),
		Sender:     domain.Assistant,
		Content:    welcomeMessage,
		Timestamp:  now,
		Read:       true,
		Sentiment:  domain.SentimentPositive,
		Categories: []string{"general"},
	}

	session := &domain.ChatSession{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        "Chat Session - " + now.Format("1/2/2006"),
		Messages:    []domain.Message{welcome},
		Topics:      []string{"general"},
		LastMessage: &welcome,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// HealthCheck reports the status of the resolution chain.
func (s *ChatService) HealthCheck(ctx context.Context) ai.Health {
	return s.resolver.CheckHealth(ctx)
}

// ServiceStatus describes which backends are configured.
type ServiceStatus struct {
	Primary   bool   `json:"primary"`
	Secondary bool   `json:"secondary"`
	Active    string `json:"active"`
}

// Status reports which chain branch currently answers first.
func (s *ChatService) Status() ServiceStatus {
	status := ServiceStatus{
		Primary: s.resolver.PrimaryConfigured(),
		// The dialogue engine is assumed reachable until a call proves
		// otherwise; CheckHealth gives the live answer.
		Secondary: true,
	}
	if status.Primary {
		status.Active = s.resolver.PrimaryName()
	} else {
		status.Active = s.resolver.SecondaryName()
	}
	return status
}

// historyWindow projects the last n messages to role-tagged pairs,
// oldest first. This bounded view is the only conversation state the
// primary provider receives.
func historyWindow(messages []domain.Message, n int) []ai.HistoryMessage {
	if len(messages) > n {
		messages = messages[len(messages)-n:]
	}

	history := make([]ai.HistoryMessage, 0, len(messages))
	for _, m := range messages {
		if m.Content == "" {
			continue
		}
		role := ai.RoleUser
		if m.Sender.IsAssistant() {
			role = ai.RoleAssistant
		}
		history = append(history, ai.HistoryMessage{Role: role, Content: m.Content})
	}
	return history
}
