package openai

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

const placeholderKey = "your_openai_api_key_here"

// systemPrompt frames the assistant as a supportive, non-diagnostic
// companion. Self-harm disclosures must be escalated to professional
// help, never handled by the model alone.
const systemPrompt = `You are a compassionate mental health assistant. Your role is to:
- Provide emotional support and guidance
- Listen actively and respond empathetically
- Offer coping strategies and mental health resources
- Encourage professional help when appropriate
- Maintain a warm, non-judgmental tone
- Keep responses concise but meaningful
- Never provide medical diagnoses or replace professional therapy

Always prioritize the user's wellbeing and safety. If someone expresses thoughts of self-harm, encourage them to seek immediate professional help.`

// Provider implements ai.Provider for the OpenAI chat completions API.
type Provider struct {
	apiKey      string
	model       string
	client      *http.Client
	baseURL     string
	maxTokens   int
	temperature float64
}

// Config holds the OpenAI adapter settings. Passed in explicitly so
// tests can point the adapter at a fake server without touching the
// environment.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// NewProvider creates a new OpenAI provider
func NewProvider(cfg Config) *Provider {
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	return &Provider{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "openai"
}

// IsConfigured checks if provider has a real credential
func (p *Provider) IsConfigured() bool {
	return p.apiKey != "" && p.apiKey != placeholderKey
}

type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	MaxTokens        int           `json:"max_tokens"`
	Temperature      float64       `json:"temperature"`
	PresencePenalty  float64       `json:"presence_penalty"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the message with bounded history and returns the reply
// text. Failures are classified so the health endpoint can distinguish
// misconfiguration from transient outage; the resolver treats them all
// as "try next strategy".
func (p *Provider) Complete(ctx context.Context, message string, history []ai.HistoryMessage) (string, error) {
	if !p.IsConfigured() {
		return "", ai.NewProviderError(p.Name(), ai.KindAuth, fmt.Errorf("API key not configured"))
	}

	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, h := range history {
		messages = append(messages, chatMessage{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})

	body, err := json.Marshal(chatRequest{
		Model:            p.model,
		Messages:         messages,
		MaxTokens:        p.maxTokens,
		Temperature:      p.temperature,
		PresencePenalty:  0.1,
		FrequencyPenalty: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", ai.NewProviderError(p.Name(), ai.KindNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", ai.NewProviderError(p.Name(), ai.KindAuth, fmt.Errorf("invalid API key"))
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ai.NewProviderError(p.Name(), ai.KindRateLimited, fmt.Errorf("rate limit exceeded"))
	case resp.StatusCode != http.StatusOK:
		return "", ai.NewProviderError(p.Name(), ai.KindUnavailable, fmt.Errorf("openai returned status %d", resp.StatusCode))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", ai.NewProviderError(p.Name(), ai.KindUnavailable, fmt.Errorf("failed to decode response: %w", err))
	}

	if len(chatResp.Choices) == 0 {
		return "", ai.NewProviderError(p.Name(), ai.KindUnavailable, fmt.Errorf("no choices in response"))
	}

	content := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if content == "" {
		return "", ai.NewProviderError(p.Name(), ai.KindUnavailable, fmt.Errorf("empty response content"))
	}

	return content, nil
}
