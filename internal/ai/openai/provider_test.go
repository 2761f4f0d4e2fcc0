package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sereno-app/sereno-api/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(url string) *Provider {
	return NewProvider(Config{APIKey: "sk-test", BaseURL: url})
}

func completionResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
}

func TestCompleteSuccess(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(completionResponse("  That sounds difficult.  "))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	history := []ai.HistoryMessage{
		{Role: ai.RoleUser, Content: "hi"},
		{Role: ai.RoleAssistant, Content: "hello"},
	}

	content, err := p.Complete(context.Background(), "I feel stressed", history)

	require.NoError(t, err)
	assert.Equal(t, "That sounds difficult.", content)

	// system prompt + 2 history entries + current message
	require.Len(t, gotReq.Messages, 4)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.Equal(t, "assistant", gotReq.Messages[2].Role)
	assert.Equal(t, "I feel stressed", gotReq.Messages[3].Content)
}

func TestCompleteErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   ai.ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, ai.KindAuth},
		{"rate limited", http.StatusTooManyRequests, ai.KindRateLimited},
		{"server error", http.StatusInternalServerError, ai.KindUnavailable},
		{"bad gateway", http.StatusBadGateway, ai.KindUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			p := newTestProvider(srv.URL)
			_, err := p.Complete(context.Background(), "hi", nil)

			var provErr *ai.ProviderError
			require.True(t, errors.As(err, &provErr))
			assert.Equal(t, tt.kind, provErr.Kind)
			assert.Equal(t, "openai", provErr.Provider)
		})
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	_, err := p.Complete(context.Background(), "hi", nil)

	var provErr *ai.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, ai.KindUnavailable, provErr.Kind)
}

func TestIsConfigured(t *testing.T) {
	assert.False(t, NewProvider(Config{}).IsConfigured())
	assert.False(t, NewProvider(Config{APIKey: placeholderKey}).IsConfigured())
	assert.True(t, NewProvider(Config{APIKey: "sk-real"}).IsConfigured())
}

func TestCompleteNotConfigured(t *testing.T) {
	p := NewProvider(Config{})
	_, err := p.Complete(context.Background(), "hi", nil)

	var provErr *ai.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, ai.KindAuth, provErr.Kind)
}
