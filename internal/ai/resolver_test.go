package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sereno-app/sereno-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

type stubProvider struct {
	name       string
	configured bool
	reply      string
	err        error
	calls      int
}

func (s *stubProvider) Name() string       { return s.name }
func (s *stubProvider) IsConfigured() bool { return s.configured }

func (s *stubProvider) Complete(ctx context.Context, message string, history []HistoryMessage) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type stubEngine struct {
	reply DialogueReply
	err   error
	calls int
}

func (s *stubEngine) Name() string { return "rasa" }

func (s *stubEngine) Converse(ctx context.Context, senderID, message string) (DialogueReply, error) {
	s.calls++
	if s.err != nil {
		return DialogueReply{}, s.err
	}
	return s.reply, nil
}

func TestResolverPrimarySuccess(t *testing.T) {
	primary := &stubProvider{name: "openai", configured: true, reply: "That sounds hard, tell me more about your sleep."}
	secondary := &stubEngine{}
	r := NewResolver(primary, secondary, time.Second)

	reply := r.Resolve(context.Background(), "user-1", "I can't sleep", nil)

	assert.Equal(t, "openai", reply.Provider)
	assert.Equal(t, primary.reply, reply.Content)
	assert.Contains(t, reply.Categories, "sleep")
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls, "secondary must not run when primary succeeds")
}

func TestResolverFallsBackToDialogueEngine(t *testing.T) {
	primary := &stubProvider{name: "openai", configured: true, err: NewProviderError("openai", KindRateLimited, errors.New("429"))}
	secondary := &stubEngine{reply: DialogueReply{
		Utterances: []string{"I hear you.", "Would you like some resources?"},
		Links:      []Link{{Text: "Breathing exercise", Route: "/exercises/breathing"}},
	}}
	r := NewResolver(primary, secondary, time.Second)

	reply := r.Resolve(context.Background(), "user-1", "help", nil)

	assert.Equal(t, "rasa", reply.Provider)
	assert.Equal(t, "I hear you.\n\nWould you like some resources?", reply.Content)
	assert.Len(t, reply.Links, 1)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestResolverSkipsUnconfiguredPrimary(t *testing.T) {
	primary := &stubProvider{name: "openai", configured: false}
	secondary := &stubEngine{reply: DialogueReply{Utterances: []string{"hello"}}}
	r := NewResolver(primary, secondary, time.Second)

	reply := r.Resolve(context.Background(), "user-1", "hi", nil)

	assert.Equal(t, "rasa", reply.Provider)
	assert.Equal(t, 0, primary.calls)
}

func TestResolverNilPrimary(t *testing.T) {
	secondary := &stubEngine{reply: DialogueReply{Utterances: []string{"hello"}}}
	r := NewResolver(nil, secondary, time.Second)

	reply := r.Resolve(context.Background(), "user-1", "hi", nil)
	assert.Equal(t, "rasa", reply.Provider)
}

func TestResolverStaticFallback(t *testing.T) {
	primary := &stubProvider{name: "openai", configured: true, err: errors.New("boom")}
	secondary := &stubEngine{err: NewProviderError("rasa", KindUnreachable, errors.New("connection refused"))}
	r := NewResolver(primary, secondary, time.Second)

	reply := r.Resolve(context.Background(), "user-1", "hi", nil)

	assert.Equal(t, "fallback", reply.Provider)
	assert.Equal(t, FallbackContent, reply.Content)
	assert.Equal(t, domain.SentimentNeutral, reply.Sentiment)
	assert.Equal(t, []string{"general"}, reply.Categories)
	assert.Len(t, reply.Links, 2)
	for _, l := range reply.Links {
		assert.Equal(t, "crisis", l.Category)
	}
}

func TestResolverCheckHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		r := NewResolver(
			&stubProvider{name: "openai", configured: true, reply: "ok"},
			&stubEngine{reply: DialogueReply{Utterances: []string{"ok"}}},
			time.Second,
		)
		h := r.CheckHealth(context.Background())
		assert.Equal(t, "healthy", h.Overall)
		assert.True(t, h.Primary.Available)
		assert.True(t, h.Secondary.Available)
	})

	t.Run("degraded when primary down", func(t *testing.T) {
		r := NewResolver(
			&stubProvider{name: "openai", configured: true, err: errors.New("boom")},
			&stubEngine{reply: DialogueReply{Utterances: []string{"ok"}}},
			time.Second,
		)
		h := r.CheckHealth(context.Background())
		assert.Equal(t, "degraded", h.Overall)
		assert.False(t, h.Primary.Available)
		assert.NotEmpty(t, h.Primary.Error)
	})

	t.Run("down when both fail", func(t *testing.T) {
		r := NewResolver(
			&stubProvider{name: "openai", configured: false},
			&stubEngine{err: errors.New("unreachable")},
			time.Second,
		)
		h := r.CheckHealth(context.Background())
		assert.Equal(t, "down", h.Overall)
		assert.Equal(t, "API key not configured", h.Primary.Error)
	})
}
