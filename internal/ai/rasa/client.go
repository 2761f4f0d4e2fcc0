package rasa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sereno-app/sereno-api/internal/ai"
)

// clarificationReply is substituted when the engine answers with zero
// text fragments, so the user never sees an empty bubble.
const clarificationReply = "I'm not sure how to respond to that. Could you rephrase?"

// Client implements ai.DialogueEngine over the Rasa REST webhook.
type Client struct {
	baseURL string
	client  *http.Client
}

// Config holds the Rasa adapter settings.
type Config struct {
	URL     string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	url := cfg.URL
	if url == "" {
		url = "http://127.0.0.1:5005"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(url, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string {
	return "rasa"
}

type webhookRequest struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// webhookMessage is one reply fragment. Fragments may carry free text
// and/or a structured links payload under "custom".
type webhookMessage struct {
	Text   string `json:"text"`
	Custom struct {
		Links []ai.Link `json:"links"`
	} `json:"custom"`
}

// Converse sends the message to the webhook and normalizes the fragment
// list: non-empty texts are collected in order, links are flattened
// across fragments.
func (c *Client) Converse(ctx context.Context, senderID, message string) (ai.DialogueReply, error) {
	body, err := json.Marshal(webhookRequest{Sender: senderID, Message: message})
	if err != nil {
		return ai.DialogueReply{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/webhooks/rest/webhook", bytes.NewReader(body))
	if err != nil {
		return ai.DialogueReply{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return ai.DialogueReply{}, ai.NewProviderError(c.Name(), ai.KindUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ai.DialogueReply{}, ai.NewProviderError(c.Name(), ai.KindUnreachable,
			fmt.Errorf("rasa returned status %d", resp.StatusCode))
	}

	var fragments []webhookMessage
	if err := json.NewDecoder(resp.Body).Decode(&fragments); err != nil {
		return ai.DialogueReply{}, ai.NewProviderError(c.Name(), ai.KindUnreachable,
			fmt.Errorf("failed to decode response: %w", err))
	}

	var reply ai.DialogueReply
	for _, f := range fragments {
		if f.Text != "" {
			reply.Utterances = append(reply.Utterances, f.Text)
		}
		reply.Links = append(reply.Links, f.Custom.Links...)
	}

	if len(reply.Utterances) == 0 {
		reply.Utterances = []string{clarificationReply}
	}

	return reply, nil
}
