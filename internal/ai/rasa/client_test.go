package rasa

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

func TestConverse(t *testing.T) {
	var gotReq webhookRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webhooks/rest/webhook", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode([]map[string]any{
			{"text": "I hear you."},
			{"text": "Here are some resources.", "custom": map[string]any{
				"links": []map[string]string{
					{"text": "Breathing exercise", "route": "/exercises/breathing"},
				},
			}},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL})
	reply, err := c.Converse(context.Background(), "user-42", "I feel anxious")

	require.NoError(t, err)
	assert.Equal(t, "user-42", gotReq.Sender)
	assert.Equal(t, "I feel anxious", gotReq.Message)
	assert.Equal(t, []string{"I hear you.", "Here are some resources."}, reply.Utterances)
	require.Len(t, reply.Links, 1)
	assert.Equal(t, "Breathing exercise", reply.Links[0].Text)
	assert.Equal(t, "/exercises/breathing", reply.Links[0].Route)
}

func TestConverseEmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL})
	reply, err := c.Converse(context.Background(), "user-42", "???")

	require.NoError(t, err)
	assert.Equal(t, []string{clarificationReply}, reply.Utterances)
}

func TestConverseServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL})
	_, err := c.Converse(context.Background(), "user-42", "hi")

	var provErr *ai.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, ai.KindUnreachable, provErr.Kind)
	assert.Equal(t, "rasa", provErr.Provider)
}

func TestConverseUnreachable(t *testing.T) {
	// Bind then close to get a port nothing is listening on.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Config{URL: url})
	_, err := c.Converse(context.Background(), "user-42", "hi")

	var provErr *ai.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, ai.KindUnreachable, provErr.Kind)
}
