package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inxsource/whatsapp-sales-bot/internal/core/session"
)

var (
	// ErrAITimeout means the provider did not answer within the configured
	// deadline. Recoverable: the router falls back to a templated reply.
	ErrAITimeout = errors.New("ai responder timed out")

	// ErrAIUnavailable covers every other provider failure.
	ErrAIUnavailable = errors.New("ai responder unavailable")
)

// Responder wraps a provider with the configured per-call timeout and the
// prompt construction for sales conversations.
type Responder struct {
	provider Provider
	timeout  time.Duration
}

// NewResponder creates a responder with the provider from environment.
func NewResponder(timeout time.Duration) (*Responder, error) {
	cfg, err := LoadProviderFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load LLM config: %w", err)
	}

	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	return NewResponderWithProvider(provider, timeout), nil
}

// NewResponderWithProvider creates a responder with a custom provider (for testing)
func NewResponderWithProvider(provider Provider, timeout time.Duration) *Responder {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Responder{provider: provider, timeout: timeout}
}

// GenerateReply produces candidate reply text from the business profile, the
// bounded turn history, the current stage, and an optional catalog snippet.
func (r *Responder) GenerateReply(ctx context.Context, profile *BusinessProfile, turns session.Turns, stage session.Stage, catalogSnippet string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	systemPrompt := BuildSystemPrompt(profile, stage, catalogSnippet)
	userPrompt := BuildUserPrompt(turns)

	reply, err := r.provider.GenerateResponse(callCtx, systemPrompt, userPrompt)
	if err != nil {
		return "", r.classifyError(callCtx, err)
	}

	return strings.TrimSpace(reply), nil
}

// ClassifyIntent asks the provider for a single intent label when keyword
// rules were inconclusive. The reply is constrained to one word.
func (r *Responder) ClassifyIntent(ctx context.Context, text string, stage session.Stage) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	systemPrompt := fmt.Sprintf(
		"You classify WhatsApp shopping messages. The conversation is in the %q phase. "+
			"Reply with exactly one word from: browse, select_product, confirm, abandon, other. "+
			"No punctuation, no explanation.", string(stage))

	label, err := r.provider.GenerateResponse(callCtx, systemPrompt, text)
	if err != nil {
		return "", r.classifyError(callCtx, err)
	}

	return strings.ToLower(strings.TrimSpace(label)), nil
}

// GetProviderName returns current provider name
func (r *Responder) GetProviderName() string {
	return r.provider.GetProviderName()
}

func (r *Responder) classifyError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrAITimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrAIUnavailable, err)
}
