package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sereno-app/sereno-api/internal/ai"
	"google.golang.org/api/option"
)

const systemPrompt = `You are a compassionate mental health assistant. Provide emotional support,
coping strategies and mental health resources in a warm, non-judgmental tone.
Keep responses concise. Never provide medical diagnoses or replace professional
therapy. If someone expresses thoughts of self-harm, encourage them to seek
immediate professional help.`

// Provider implements ai.Provider over the Gemini API. Registered as an
// alternative primary backend selectable via ai.primary_provider.
type Provider struct {
	apiKey      string
	model       string
	maxTokens   int32
	temperature float32
}

// Config holds the Gemini adapter settings.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
}

func NewProvider(cfg Config) *Provider {
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	maxTokens := int32(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &Provider{
		apiKey:      cfg.APIKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: 0.7,
	}
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// Complete sends the message with the history window replayed as
// alternating chat turns.
func (p *Provider) Complete(ctx context.Context, message string, history []ai.HistoryMessage) (string, error) {
	if !p.IsConfigured() {
		return "", ai.NewProviderError(p.Name(), ai.KindAuth, fmt.Errorf("API key not configured"))
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return "", ai.NewProviderError(p.Name(), ai.KindNetwork, fmt.Errorf("failed to create client: %w", err))
	}
	defer client.Close()

	model := client.GenerativeModel(p.model)
	model.SetTemperature(p.temperature)
	model.SetMaxOutputTokens(p.maxTokens)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	session := model.StartChat()
	for _, h := range history {
		role := "user"
		if h.Role == ai.RoleAssistant {
			role = "model"
		}
		session.History = append(session.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(h.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", ai.NewProviderError(p.Name(), ai.KindUnavailable, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ai.NewProviderError(p.Name(), ai.KindUnavailable, fmt.Errorf("no candidates in response"))
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", ai.NewProviderError(p.Name(), ai.KindUnavailable, fmt.Errorf("empty response content"))
	}
	return content, nil
}
