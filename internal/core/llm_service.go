package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/kiraleos/wodcoach/internal/config"
)

// FallbackText replaces the model's reply whenever a call does not succeed.
const FallbackText = "Sorry, I couldn't process that prompt."

const (
	defaultOpenAIModel    = "gpt-3.5-turbo"
	defaultGeminiModel    = "gemini-1.5-flash-latest"
	defaultAnthropicModel = "claude-3-haiku-20240307"

	systemInstruction = "You are a helpful assistant."
	maxOutputTokens   = 1000
	temperature       = 0.7
)

var (
	ErrRateLimited = errors.New("llm: rate limited")
	ErrBadResponse = errors.New("llm: bad response")
	ErrUnreachable = errors.New("llm: unreachable")
)

type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeUnreachable
	OutcomeBadResponse
	OutcomeRateLimited
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeUnreachable:
		return "unreachable"
	case OutcomeBadResponse:
		return "bad_response"
	case OutcomeRateLimited:
		return "rate_limited"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Completion is the result of one model call. Text is FallbackText unless Outcome is OutcomeOK.
type Completion struct {
	Text    string
	Outcome Outcome
}

// Provider sends a single prompt to a hosted model. Implementations wrap their
// failures in ErrRateLimited, ErrBadResponse or ErrUnreachable.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewProvider builds the provider named in cfg.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.Model, cfg.BaseURL), nil
	case config.ProviderGemini:
		return NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.Model)
	case config.ProviderAnthropic:
		return NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

type LLMService struct {
	provider Provider
}

func NewLLMService(provider Provider) *LLMService {
	return &LLMService{provider: provider}
}

func (s *LLMService) Close() {
	if c, ok := s.provider.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Printf("Error closing %s client: %v", s.provider.Name(), err)
		} else {
			log.Printf("%s client closed.", s.provider.Name())
		}
	}
}

// Query makes exactly one call and never fails; errors become a fallback Completion.
func (s *LLMService) Query(ctx context.Context, prompt string) Completion {
	text, err := s.provider.Complete(ctx, prompt)
	if err == nil {
		return Completion{Text: text, Outcome: OutcomeOK}
	}

	outcome := OutcomeUnreachable
	switch {
	case errors.Is(err, ErrRateLimited):
		outcome = OutcomeRateLimited
	case errors.Is(err, ErrBadResponse):
		outcome = OutcomeBadResponse
	}
	log.Printf("Error querying %s (%s): %v", s.provider.Name(), outcome, err)
	return Completion{Text: FallbackText, Outcome: outcome}
}

// classifyStatus maps a non-2xx HTTP status onto the sentinel errors.
func classifyStatus(status int) error {
	if status == 429 {
		return ErrRateLimited
	}
	return ErrBadResponse
}
