package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AssistantSenderID is the wire value used for assistant-authored messages.
const AssistantSenderID = "ai-assistant"

// Sender identifies the author of a message: either a user or the
// assistant. The zero value is not valid; use UserSender or Assistant.
type Sender struct {
	UserID    uuid.UUID `bson:"user_id,omitempty" json:"-"`
	Assistant bool      `bson:"assistant,omitempty" json:"-"`
}

// Assistant is the sender for AI-authored messages.
var Assistant = Sender{Assistant: true}

// UserSender returns the sender for a message authored by the given user.
func UserSender(id uuid.UUID) Sender {
	return Sender{UserID: id}
}

// IsAssistant reports whether the message was authored by the assistant.
func (s Sender) IsAssistant() bool {
	return s.Assistant
}

// String returns the wire representation: the user ID or "ai-assistant".
func (s Sender) String() string {
	if s.Assistant {
		return AssistantSenderID
	}
	return s.UserID.String()
}

// MarshalJSON keeps the original client wire format where sender is a
// plain string.
func (s Sender) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts either "ai-assistant" or a user UUID.
func (s *Sender) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == AssistantSenderID {
		*s = Assistant
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return err
	}
	*s = UserSender(id)
	return nil
}

// Sentiment is a coarse emotional label attached to messages.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Message is one entry in a chat session. Messages are immutable once
// appended; there is no edit operation.
type Message struct {
	ID         uuid.UUID `bson:"id" json:"id"`
	Sender     Sender    `bson:"sender" json:"sender"`
	Content    string    `bson:"content" json:"content"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
	Read       bool      `bson:"read" json:"read"`
	Sentiment  Sentiment `bson:"sentiment" json:"sentiment"`
	Categories []string  `bson:"categories" json:"categories"`
}
