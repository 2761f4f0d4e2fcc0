package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sereno-app/sereno-api/internal/domain"
)

// SessionRepository is an in-memory domain.SessionRepository used in
// tests and local development. Appends to the same session are
// serialized by the store mutex, matching the atomicity the Mongo
// backend gets from single-document updates.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.ChatSession
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[uuid.UUID]*domain.ChatSession),
	}
}

func (r *SessionRepository) Create(_ context.Context, session *domain.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneSession(session)
	r.sessions[session.ID] = &stored
	return nil
}

func (r *SessionRepository) Get(_ context.Context, id, ownerID uuid.UUID) (*domain.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok || session.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	out := cloneSession(session)
	return &out, nil
}

func (r *SessionRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []domain.ChatSession
	for _, s := range r.sessions {
		if s.OwnerID == ownerID {
			sessions = append(sessions, cloneSession(s))
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

func (r *SessionRepository) AppendExchange(_ context.Context, id, ownerID uuid.UUID, userMsg, aiMsg domain.Message, topics []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok || session.OwnerID != ownerID {
		return domain.ErrNotFound
	}

	session.Messages = append(session.Messages, userMsg, aiMsg)
	last := aiMsg
	session.LastMessage = &last
	session.UpdatedAt = time.Now().UTC()

	for _, topic := range topics {
		if !contains(session.Topics, topic) {
			session.Topics = append(session.Topics, topic)
		}
	}
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok || session.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(r.sessions, session.ID)
	return nil
}

func cloneSession(s *domain.ChatSession) domain.ChatSession {
	out := *s
	out.Messages = append([]domain.Message(nil), s.Messages...)
	out.Topics = append([]string(nil), s.Topics...)
	if s.LastMessage != nil {
		last := *s.LastMessage
		out.LastMessage = &last
	}
	return out
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
