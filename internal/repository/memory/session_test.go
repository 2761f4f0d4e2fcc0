package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sereno-app/sereno-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(ownerID uuid.UUID, name string, updatedAt time.Time) *domain.ChatSession {
	return &domain.ChatSession{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Messages:  []domain.Message{},
		Topics:    []string{},
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func TestGetScopesByOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()

	owner := uuid.New()
	other := uuid.New()
	session := newSession(owner, "mine", time.Now())
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.Get(ctx, session.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	// Another user's lookup of an existing session must be
	// indistinguishable from a missing session.
	_, err = repo.Get(ctx, session.ID, other)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.Get(ctx, uuid.New(), owner)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListByOwnerOrdersByActivity(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	owner := uuid.New()

	base := time.Now().Add(-time.Hour)
	first := newSession(owner, "first", base)
	second := newSession(owner, "second", base.Add(10*time.Minute))
	third := newSession(owner, "third", base.Add(5*time.Minute))
	foreign := newSession(uuid.New(), "foreign", base.Add(20*time.Minute))

	for _, s := range []*domain.ChatSession{first, second, third, foreign} {
		require.NoError(t, repo.Create(ctx, s))
	}

	sessions, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "second", sessions[0].Name)
	assert.Equal(t, "third", sessions[1].Name)
	assert.Equal(t, "first", sessions[2].Name)
}

func TestAppendExchange(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	owner := uuid.New()

	session := newSession(owner, "chat", time.Now().Add(-time.Hour))
	require.NoError(t, repo.Create(ctx, session))

	userMsg := domain.Message{ID: uuid.New(), Sender: domain.UserSender(owner), Content: "I can't sleep"}
	aiMsg := domain.Message{ID: uuid.New(), Sender: domain.Assistant, Content: "Tell me more"}

	require.NoError(t, repo.AppendExchange(ctx, session.ID, owner, userMsg, aiMsg, []string{"sleep"}))
	require.NoError(t, repo.AppendExchange(ctx, session.ID, owner, userMsg, aiMsg, []string{"sleep", "stress"}))

	got, err := repo.Get(ctx, session.ID, owner)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 4)
	require.NotNil(t, got.LastMessage)
	assert.Equal(t, aiMsg.ID, got.LastMessage.ID)
	// Topics are a set: the repeated "sleep" must not duplicate.
	assert.Equal(t, []string{"sleep", "stress"}, got.Topics)
	assert.True(t, got.UpdatedAt.After(session.UpdatedAt))
}

func TestAppendExchangeWrongOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	owner := uuid.New()

	session := newSession(owner, "chat", time.Now())
	require.NoError(t, repo.Create(ctx, session))

	err := repo.AppendExchange(ctx, session.ID, uuid.New(),
		domain.Message{ID: uuid.New()}, domain.Message{ID: uuid.New()}, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := repo.Get(ctx, session.ID, owner)
	require.NoError(t, err)
	assert.Empty(t, got.Messages)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	owner := uuid.New()

	session := newSession(owner, "chat", time.Now())
	require.NoError(t, repo.Create(ctx, session))

	assert.ErrorIs(t, repo.Delete(ctx, session.ID, uuid.New()), domain.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, session.ID, owner))
	assert.ErrorIs(t, repo.Delete(ctx, session.ID, owner), domain.ErrNotFound)
}

func TestGetReturnsACopy(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	owner := uuid.New()

	session := newSession(owner, "chat", time.Now())
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.Get(ctx, session.ID, owner)
	require.NoError(t, err)
	got.Name = "mutated"
	got.Topics = append(got.Topics, "anxiety")

	again, err := repo.Get(ctx, session.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "chat", again.Name)
	assert.Empty(t, again.Topics)
}
