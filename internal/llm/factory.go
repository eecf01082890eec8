package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/cognitio-libera/cognitio/internal/store"
)

const tracerName = "github.com/cognitio-libera/cognitio/internal/llm"

// NewProvider creates a Provider from configuration, wrapped with a call
// timeout, tracing, retry and (when eventRepo is non-nil) diagnostics
// logging:
//
//	caller → timeout → tracing → retry → logging → base
//
// Spans go to the global tracer provider, which is a no-op unless tracing
// was enabled at startup.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger zerolog.Logger) (Provider, error) {
	base, err := newBaseProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	p := base
	if eventRepo != nil {
		p = WithLogging(p, eventRepo)
	}
	p = WithRetry(p, cfg.Retry, logger)
	p = WithTracing(p, otel.Tracer(tracerName))
	if cfg.Timeout > 0 {
		p = WithTimeout(p, cfg.Timeout)
	}

	return p, nil
}

type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout bounds every Generate call, retries included, by d.
func WithTimeout(p Provider, d time.Duration) Provider {
	return &timeoutProvider{inner: p, timeout: d}
}

func (p *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	resp, err := p.inner.Generate(callCtx, req)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, &ErrTimeout{After: p.timeout, Err: err}
	}
	return resp, err
}

func (p *timeoutProvider) ModelID() string {
	return p.inner.ModelID()
}

func newBaseProvider(ctx context.Context, cfg Config) (Provider, error) {
	var (
		base Provider
		err  error
	)

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return base, nil
}

// ModelLister is implemented by providers that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// NewModelLister returns a lister for the configured provider. Only Gemini
// exposes model listing.
func NewModelLister(ctx context.Context, cfg Config) (ModelLister, error) {
	if cfg.Provider != "gemini" {
		return nil, fmt.Errorf("model listing is only supported for the gemini provider, not %q", cfg.Provider)
	}
	return NewGeminiProvider(ctx, cfg.Gemini)
}
