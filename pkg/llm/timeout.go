package llm

import (
	"context"
	"time"
)

type timeoutProvider struct {
	inner   LLMProvider
	timeout time.Duration
}

// WithCallTimeout bounds every call to the wrapped provider with its
// own deadline. A non-positive duration returns the provider unwrapped.
func WithCallTimeout(p LLMProvider, d time.Duration) LLMProvider {
	if d <= 0 {
		return p
	}
	return &timeoutProvider{inner: p, timeout: d}
}

func (p *timeoutProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.inner.Chat(callCtx, history, options...)
}

func (p *timeoutProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.inner.Generate(callCtx, prompt, options...)
}
