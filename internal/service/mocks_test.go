package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sereno-app/sereno-api/internal/ai"
	"github.com/sereno-app/sereno-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockSessionRepository mocks the domain.SessionRepository interface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, id, ownerID uuid.UUID) (*domain.ChatSession, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatSession), args.Error(1)
}

func (m *MockSessionRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.ChatSession, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatSession), args.Error(1)
}

func (m *MockSessionRepository) AppendExchange(ctx context.Context, id, ownerID uuid.UUID, userMsg, aiMsg domain.Message, topics []string) error {
	args := m.Called(ctx, id, ownerID, userMsg, aiMsg, topics)
	return args.Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

// stubProvider is a canned ai.Provider for driving the resolver in
// service tests.
type stubProvider struct {
	name       string
	configured bool
	reply      string
	err        error
	gotHistory []ai.HistoryMessage
	calls      int
}

func (s *stubProvider) Name() string       { return s.name }
func (s *stubProvider) IsConfigured() bool { return s.configured }

func (s *stubProvider) Complete(ctx context.Context, message string, history []ai.HistoryMessage) (string, error) {
	s.calls++
	s.gotHistory = history
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// stubEngine is a canned ai.DialogueEngine.
type stubEngine struct {
	reply ai.DialogueReply
	err   error
	calls int
}

func (s *stubEngine) Name() string { return "rasa" }

func (s *stubEngine) Converse(ctx context.Context, senderID, message string) (ai.DialogueReply, error) {
	s.calls++
	if s.err != nil {
		return ai.DialogueReply{}, s.err
	}
	return s.reply, nil
}
