// Package solver orchestrates the two provider gateways: prompt assembly,
// fan-out, normalization and the per-provider outcome record. One provider
// failing never blocks the other's result.
package solver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"solver-relay/internal/format"
	"solver-relay/internal/llm"
	"solver-relay/internal/prompt"
)

const defaultMaxTokens = 1000

// AnswerCache is the optional per-provider answer cache consulted by Solve.
// A miss is reported as a non-nil error; any cache failure is treated as a
// miss and never blocks the request.
type AnswerCache interface {
	Find(ctx context.Context, domain, question, provider string, maxAge time.Duration) (string, error)
	Upsert(ctx context.Context, domain, question, provider, answer string) error
}

type Service struct {
	providers *llm.Providers
	pipeline  format.Pipeline
	maxTokens int
	log       *slog.Logger

	cache       AnswerCache // nil disables caching
	cacheMaxAge time.Duration
}

func New(providers *llm.Providers, pipeline format.Pipeline, maxTokens int, log *slog.Logger) (*Service, error) {
	if providers == nil || providers.Claude == nil || providers.GPT4 == nil {
		return nil, errors.New("solver: both providers must be configured")
	}
	if log == nil {
		log = slog.Default()
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Service{
		providers: providers,
		pipeline:  pipeline,
		maxTokens: maxTokens,
		log:       log,
	}, nil
}

// WithCache enables the answer cache. Entries older than maxAge are treated
// as misses; maxAge <= 0 disables the freshness check.
func (s *Service) WithCache(c AnswerCache, maxAge time.Duration) *Service {
	s.cache = c
	s.cacheMaxAge = maxAge
	return s
}

// Outcome is one provider's result: exactly one of Text or Err is set.
type Outcome struct {
	Text string
	Err  error
}

// Render serializes the outcome using the historical wire convention:
// failures become an "Error: <cause>" string inside a successful payload.
func (o Outcome) Render() string {
	if o.Err != nil {
		cause := o.Err.Error()
		var pe *llm.ProviderError
		if errors.As(o.Err, &pe) {
			cause = pe.Cause()
		}
		return "Error: " + cause
	}
	return o.Text
}

type SolveResult struct {
	Domain   string
	Question string
	Claude   Outcome
	GPT4     Outcome
}

// Solve validates the request, then asks both providers concurrently. The
// returned error is only ever a validation failure; provider failures are
// carried per outcome.
func (s *Service) Solve(ctx context.Context, domain, question string) (SolveResult, error) {
	domain = strings.TrimSpace(domain)
	question = strings.TrimSpace(question)
	if domain == "" {
		return SolveResult{}, newError(ErrorInvalidInput, "empty_domain", nil)
	}
	if question == "" {
		return SolveResult{}, newError(ErrorInvalidInput, "empty_question", nil)
	}

	res := SolveResult{Domain: domain, Question: question}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.Claude = s.solveWith(ctx, s.providers.Claude, prompt.TargetClaude, domain, question)
	}()
	go func() {
		defer wg.Done()
		res.GPT4 = s.solveWith(ctx, s.providers.GPT4, prompt.TargetGPT4, domain, question)
	}()
	wg.Wait()
	return res, nil
}

func (s *Service) solveWith(ctx context.Context, p llm.Provider, target prompt.Target, domain, question string) Outcome {
	if cached, ok := s.findCached(ctx, domain, question, p.Name()); ok {
		return Outcome{Text: cached}
	}

	raw, err := p.Complete(ctx, prompt.Solve(target, domain, question), s.maxTokens)
	if err != nil {
		s.log.Error("provider completion failed", "provider", p.Name(), "err", err)
		return Outcome{Err: err}
	}

	text := s.pipeline.Normalize(raw)
	s.storeCached(ctx, domain, question, p.Name(), text)
	return Outcome{Text: text}
}

// Chat dispatches to exactly one provider. Validation failures return a
// typed error before any gateway call; a gateway failure is rendered into
// the result text, matching Solve's convention.
func (s *Service) Chat(ctx context.Context, selector, message, chatContext, domain string) (string, error) {
	selector = strings.TrimSpace(selector)
	message = strings.TrimSpace(message)
	if selector == "" {
		return "", newError(ErrorInvalidInput, "empty_model", nil)
	}
	if message == "" {
		return "", newError(ErrorInvalidInput, "empty_message", nil)
	}

	p, err := s.providers.Get(selector)
	if err != nil {
		return "", newError(ErrorUnknownProvider, "invalid_model", err)
	}

	raw, err := p.Complete(ctx, prompt.Chat(prompt.Target(selector), domain, chatContext, message), s.maxTokens)
	if err != nil {
		s.log.Error("provider chat failed", "provider", p.Name(), "err", err)
		return Outcome{Err: err}.Render(), nil
	}
	return s.pipeline.Normalize(raw), nil
}

func (s *Service) findCached(ctx context.Context, domain, question, provider string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	answer, err := s.cache.Find(ctx, domain, question, provider, s.cacheMaxAge)
	if err != nil {
		return "", false
	}
	s.log.Debug("answer cache hit", "provider", provider, "domain", domain)
	return answer, true
}

func (s *Service) storeCached(ctx context.Context, domain, question, provider, answer string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Upsert(ctx, domain, question, provider, answer); err != nil {
		s.log.Debug("answer cache write failed", "provider", provider, "err", err)
	}
}
