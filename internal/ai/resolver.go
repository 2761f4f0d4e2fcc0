package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sereno-app/sereno-api/internal/domain"
)

// DialogueEngine is the secondary intent-based backend. Unlike Provider
// it tracks conversation state per sender on the remote side, so it
// receives the sender ID instead of a history window.
type DialogueEngine interface {
	Name() string
	Converse(ctx context.Context, senderID, message string) (DialogueReply, error)
}

// DialogueReply is the normalized secondary response: the engine may
// answer with several utterances and structured resource links.
type DialogueReply struct {
	Utterances []string
	Links      []Link
}

// FallbackContent is the terminal reply used when both providers fail.
// A support surface must never answer with nothing, so this branch has
// no failure mode of its own.
const FallbackContent = "I'm experiencing some technical difficulties right now. " +
	"Please try again in a moment, or if this continues, you might want to " +
	"reach out to a mental health professional for immediate support."

// FallbackLinks returns the fixed crisis resources attached to the
// terminal reply.
func FallbackLinks() []Link {
	return []Link{
		{Text: "Crisis Text Line", URL: "https://www.crisistextline.org/", Category: "crisis"},
		{Text: "National Suicide Prevention Lifeline", URL: "https://suicidepreventionlifeline.org/", Category: "crisis"},
	}
}

// Resolver runs the provider-fallback chain: primary completion backend
// first, then the dialogue engine, then the static terminal payload.
type Resolver struct {
	primary        Provider
	secondary      DialogueEngine
	primaryTimeout time.Duration
}

// NewResolver creates a resolver. primary may be nil when no completion
// backend is configured.
func NewResolver(primary Provider, secondary DialogueEngine, primaryTimeout time.Duration) *Resolver {
	if primaryTimeout <= 0 {
		primaryTimeout = 30 * time.Second
	}
	return &Resolver{
		primary:        primary,
		secondary:      secondary,
		primaryTimeout: primaryTimeout,
	}
}

// Resolve produces a reply for the user message. It never fails: every
// provider error advances the chain, and the terminal branch is static.
// The two provider calls are strictly sequential; the secondary is only
// worth invoking after a confirmed primary failure.
func (r *Resolver) Resolve(ctx context.Context, userID, message string, history []HistoryMessage) ResolvedReply {
	if r.primary != nil && r.primary.IsConfigured() {
		primaryCtx, cancel := context.WithTimeout(ctx, r.primaryTimeout)
		content, err := r.primary.Complete(primaryCtx, message, history)
		cancel()

		if err == nil {
			return ResolvedReply{
				Content:    content,
				Sentiment:  AnalyzeSentiment(content),
				Categories: ExtractCategories(message, content),
				Provider:   r.primary.Name(),
			}
		}
		log.Warn().Err(err).Str("provider", r.primary.Name()).
			Msg("primary provider failed, falling back to dialogue engine")
	} else {
		log.Debug().Msg("primary provider not configured, using dialogue engine")
	}

	reply, err := r.secondary.Converse(ctx, userID, message)
	if err == nil {
		content := joinUtterances(reply.Utterances)
		return ResolvedReply{
			Content:    content,
			Sentiment:  AnalyzeSentiment(content),
			Categories: ExtractCategories(message, content),
			Links:      reply.Links,
			Provider:   r.secondary.Name(),
		}
	}
	log.Error().Err(err).Str("provider", r.secondary.Name()).
		Msg("dialogue engine failed, using static fallback")

	return ResolvedReply{
		Content:    FallbackContent,
		Sentiment:  domain.SentimentNeutral,
		Categories: []string{"general"},
		Links:      FallbackLinks(),
		Provider:   "fallback",
	}
}

func joinUtterances(utterances []string) string {
	out := ""
	for _, u := range utterances {
		if u == "" {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += u
	}
	return out
}

// ServiceHealth describes one backend in the health report.
type ServiceHealth struct {
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// Health is the aggregate status of the resolution chain.
type Health struct {
	Primary   ServiceHealth `json:"primary"`
	Secondary ServiceHealth `json:"secondary"`
	Overall   string        `json:"overall"` // healthy, degraded or down
}

// CheckHealth probes both backends with a throwaway message and reports
// which branches of the chain are live.
func (r *Resolver) CheckHealth(ctx context.Context) Health {
	var h Health

	if r.primary == nil || !r.primary.IsConfigured() {
		h.Primary.Error = "API key not configured"
	} else {
		probeCtx, cancel := context.WithTimeout(ctx, r.primaryTimeout)
		_, err := r.primary.Complete(probeCtx, "Hello", nil)
		cancel()
		if err != nil {
			h.Primary.Error = err.Error()
		} else {
			h.Primary.Available = true
		}
	}

	if _, err := r.secondary.Converse(ctx, "health-check", "Hello"); err != nil {
		h.Secondary.Error = err.Error()
	} else {
		h.Secondary.Available = true
	}

	switch {
	case h.Primary.Available && h.Secondary.Available:
		h.Overall = "healthy"
	case h.Primary.Available || h.Secondary.Available:
		h.Overall = "degraded"
	default:
		h.Overall = "down"
	}
	return h
}

// PrimaryName returns the provenance tag of the configured primary, or
// empty when none is set.
func (r *Resolver) PrimaryName() string {
	if r.primary == nil {
		return ""
	}
	return r.primary.Name()
}

// PrimaryConfigured reports whether the primary branch can be attempted.
func (r *Resolver) PrimaryConfigured() bool {
	return r.primary != nil && r.primary.IsConfigured()
}

// SecondaryName returns the dialogue engine's provenance tag.
func (r *Resolver) SecondaryName() string {
	return r.secondary.Name()
}
