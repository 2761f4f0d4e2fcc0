package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChatSession is an append-only conversation between one user and the
// assistant. The whole session is stored as a single document so that a
// message append is one atomic write.
type ChatSession struct {
	ID          uuid.UUID `bson:"_id" json:"id"`
	OwnerID     uuid.UUID `bson:"owner_id" json:"-"`
	Name        string    `bson:"name" json:"name"`
	Messages    []Message `bson:"messages" json:"messages"`
	Topics      []string  `bson:"topics" json:"topics"`
	LastMessage *Message  `bson:"last_message,omitempty" json:"lastMessage,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

// UnreadCount returns the number of user messages not yet consumed by
// the client.
func (s *ChatSession) UnreadCount() int {
	n := 0
	for _, m := range s.Messages {
		if !m.Read && !m.Sender.IsAssistant() {
			n++
		}
	}
	return n
}

// SessionRepository defines the session store contract. Every operation
// that takes a session ID is scoped by owner; a session that exists but
// belongs to someone else behaves exactly like a missing one
// (ErrNotFound).
type SessionRepository interface {
	Create(ctx context.Context, session *ChatSession) error
	Get(ctx context.Context, id, ownerID uuid.UUID) (*ChatSession, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]ChatSession, error)

	// AppendExchange appends the user message and the assistant reply in
	// one atomic update, refreshes the last-message cache and unions the
	// given topics into the session's topic set.
	AppendExchange(ctx context.Context, id, ownerID uuid.UUID, userMsg, aiMsg Message, topics []string) error

	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}
