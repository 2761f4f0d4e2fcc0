package ai

import (
	"context"
	"fmt"

	"github.com/sereno-app/sereno-api/internal/domain"
)

// HistoryMessage is one entry of the bounded conversation window handed
// to the primary provider, oldest first.
type HistoryMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Provider is a conversational completion backend. Implementations wrap
// one remote service and classify their failures with ProviderError.
type Provider interface {
	// Name returns the provider identifier used as the provenance tag.
	Name() string

	// IsConfigured checks if the provider has a usable credential.
	IsConfigured() bool

	// Complete sends the message with bounded history and returns the
	// reply text.
	Complete(ctx context.Context, message string, history []HistoryMessage) (string, error)
}

// Link is a resource suggestion attached to a reply: either an external
// URL or an in-app route.
type Link struct {
	Text     string `json:"text"`
	URL      string `json:"url,omitempty"`
	Route    string `json:"route,omitempty"`
	Category string `json:"category,omitempty"`
}

// ResolvedReply is the orchestrator's output. It is never persisted
// directly; its fields are copied into a new assistant message.
type ResolvedReply struct {
	Content    string           `json:"content"`
	Sentiment  domain.Sentiment `json:"sentiment"`
	Categories []string         `json:"categories"`
	Links      []Link           `json:"links,omitempty"`
	Provider   string           `json:"provider"`
}

// ErrorKind classifies provider failures. The resolver treats every
// kind the same way (advance to the next strategy); the distinction
// exists for logging and the health endpoint.
type ErrorKind string

const (
	// KindAuth means the remote rejected our credential. This indicates
	// misconfiguration, not transient unavailability, and must never be
	// retried.
	KindAuth ErrorKind = "auth"

	// KindRateLimited means a 429-equivalent response.
	KindRateLimited ErrorKind = "rate_limited"

	// KindUnavailable means a 5xx-equivalent response or an empty reply.
	KindUnavailable ErrorKind = "unavailable"

	// KindNetwork means DNS or connection failure, including timeout.
	KindNetwork ErrorKind = "network"

	// KindUnreachable means the secondary dialogue engine could not be
	// reached or returned a non-2xx status.
	KindUnreachable ErrorKind = "unreachable"
)

// ProviderError wraps a provider failure with its classification.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err with provider and kind metadata.
func NewProviderError(provider string, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}
