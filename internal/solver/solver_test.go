package solver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"solver-relay/internal/format"
	"solver-relay/internal/llm"
	"solver-relay/internal/prompt"
)

type mockProvider struct {
	name      string
	reply     string
	err       error
	callCount int
	lastArgs  prompt.Prompt
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Complete(_ context.Context, p prompt.Prompt, _ int) (string, error) {
	m.callCount++
	m.lastArgs = p
	return m.reply, m.err
}

type mockCache struct {
	answers  map[string]string
	findErr  error
	upserted map[string]string
}

func cacheKey(domain, question, provider string) string {
	return domain + "|" + question + "|" + provider
}

func (m *mockCache) Find(_ context.Context, domain, question, provider string, _ time.Duration) (string, error) {
	if m.findErr != nil {
		return "", m.findErr
	}
	a, ok := m.answers[cacheKey(domain, question, provider)]
	if !ok {
		return "", errors.New("not found")
	}
	return a, nil
}

func (m *mockCache) Upsert(_ context.Context, domain, question, provider, answer string) error {
	if m.upserted == nil {
		m.upserted = map[string]string{}
	}
	m.upserted[cacheKey(domain, question, provider)] = answer
	return nil
}

func newService(t *testing.T, claude, gpt4 *mockProvider) *Service {
	t.Helper()
	svc, err := New(
		&llm.Providers{Claude: claude, GPT4: gpt4},
		format.LegacyStepList(),
		1000,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	require.NoError(t, err)
	return svc
}

func TestSolveBothProvidersSucceed(t *testing.T) {
	claude := &mockProvider{name: "claude", reply: "1. Add the numbers.\nFinal answer: 4"}
	gpt4 := &mockProvider{name: "gpt4", reply: "The answer is 4"}
	svc := newService(t, claude, gpt4)

	res, err := svc.Solve(context.Background(), "math", "2+2")
	require.NoError(t, err)
	require.Equal(t, "math", res.Domain)
	require.Equal(t, "2+2", res.Question)

	require.NoError(t, res.Claude.Err)
	require.Contains(t, res.Claude.Text, "<ol>")
	require.Contains(t, res.Claude.Text, "<strong>Final Answer: 4</strong>")
	require.Equal(t, "<strong>Final Answer: 4</strong>", res.GPT4.Text)

	require.Equal(t, 1, claude.callCount)
	require.Equal(t, 1, gpt4.callCount)
	require.NotEmpty(t, claude.lastArgs.Raw, "claude gets the turn-delimited prompt")
	require.NotEmpty(t, gpt4.lastArgs.System, "gpt4 gets a system role")
}

func TestSolveBothProvidersFail(t *testing.T) {
	claude := &mockProvider{name: "claude", err: errors.New("mock cause")}
	gpt4 := &mockProvider{name: "gpt4", err: errors.New("mock cause")}
	svc := newService(t, claude, gpt4)

	res, err := svc.Solve(context.Background(), "math", "2+2")
	require.NoError(t, err, "provider failure must not surface as a solve error")
	require.Equal(t, "Error: mock cause", res.Claude.Render())
	require.Equal(t, "Error: mock cause", res.GPT4.Render())
}

func TestSolveOneProviderFailureIsIsolated(t *testing.T) {
	claude := &mockProvider{name: "claude", err: errors.New("boom")}
	gpt4 := &mockProvider{name: "gpt4", reply: "Result: fine"}
	svc := newService(t, claude, gpt4)

	res, err := svc.Solve(context.Background(), "science", "why is the sky blue?")
	require.NoError(t, err)
	require.Equal(t, "Error: boom", res.Claude.Render())
	require.Equal(t, "<strong>Final Answer: fine</strong>", res.GPT4.Render())
	require.Equal(t, 1, gpt4.callCount)
}

func TestSolveValidation(t *testing.T) {
	claude := &mockProvider{name: "claude", reply: "x"}
	gpt4 := &mockProvider{name: "gpt4", reply: "x"}
	svc := newService(t, claude, gpt4)

	for _, tc := range []struct{ domain, question string }{
		{"", "2+2"},
		{"   ", "2+2"},
		{"math", ""},
		{"math", "  "},
	} {
		_, err := svc.Solve(context.Background(), tc.domain, tc.question)
		var serr *Error
		require.ErrorAs(t, err, &serr)
		require.Equal(t, ErrorInvalidInput, serr.Code)
	}
	require.Zero(t, claude.callCount, "no gateway call on validation failure")
	require.Zero(t, gpt4.callCount)
}

func TestOutcomeRenderUnwrapsProviderError(t *testing.T) {
	o := Outcome{Err: &llm.ProviderError{Provider: "claude", Err: errors.New("mock cause")}}
	require.Equal(t, "Error: mock cause", o.Render())
}

func TestChatDispatchesToSingleProvider(t *testing.T) {
	claude := &mockProvider{name: "claude", reply: "further explanation"}
	gpt4 := &mockProvider{name: "gpt4", reply: "unused"}
	svc := newService(t, claude, gpt4)

	out, err := svc.Chat(context.Background(), "claude", "why?", "earlier answer", "math")
	require.NoError(t, err)
	require.Equal(t, "further explanation", out)
	require.Equal(t, 1, claude.callCount)
	require.Zero(t, gpt4.callCount, "the sibling provider is never called")
	require.Contains(t, claude.lastArgs.Raw, "Context: earlier answer")
}

func TestChatUnknownProvider(t *testing.T) {
	claude := &mockProvider{name: "claude"}
	gpt4 := &mockProvider{name: "gpt4"}
	svc := newService(t, claude, gpt4)

	_, err := svc.Chat(context.Background(), "unknown", "hi", "", "")
	var serr *Error
	require.ErrorAs(t, err, &serr)
	require.Equal(t, ErrorUnknownProvider, serr.Code)
	require.ErrorIs(t, err, llm.ErrUnknownProvider)
	require.Zero(t, claude.callCount)
	require.Zero(t, gpt4.callCount)
}

func TestChatValidation(t *testing.T) {
	svc := newService(t, &mockProvider{name: "claude"}, &mockProvider{name: "gpt4"})

	_, err := svc.Chat(context.Background(), "", "hi", "", "")
	var serr *Error
	require.ErrorAs(t, err, &serr)
	require.Equal(t, ErrorInvalidInput, serr.Code)

	_, err = svc.Chat(context.Background(), "claude", "", "", "")
	require.ErrorAs(t, err, &serr)
	require.Equal(t, ErrorInvalidInput, serr.Code)
}

func TestChatProviderFailureRenderedAsText(t *testing.T) {
	claude := &mockProvider{name: "claude", err: errors.New("mock cause")}
	svc := newService(t, claude, &mockProvider{name: "gpt4"})

	out, err := svc.Chat(context.Background(), "claude", "hi", "", "")
	require.NoError(t, err)
	require.Equal(t, "Error: mock cause", out)
}

func TestSolveCacheHitSkipsProvider(t *testing.T) {
	claude := &mockProvider{name: "claude", reply: "fresh claude"}
	gpt4 := &mockProvider{name: "gpt4", reply: "Result: fresh"}
	cache := &mockCache{answers: map[string]string{
		cacheKey("math", "2+2", "claude"): "cached claude answer",
	}}
	svc := newService(t, claude, gpt4).WithCache(cache, time.Hour)

	res, err := svc.Solve(context.Background(), "math", "2+2")
	require.NoError(t, err)
	require.Equal(t, "cached claude answer", res.Claude.Text)
	require.Zero(t, claude.callCount, "cache hit must skip the gateway")

	require.Equal(t, 1, gpt4.callCount)
	require.Equal(t, "<strong>Final Answer: fresh</strong>", cache.upserted[cacheKey("math", "2+2", "gpt4")],
		"the miss leg stores its normalized answer")
}

func TestSolveCacheFailureIsTreatedAsMiss(t *testing.T) {
	claude := &mockProvider{name: "claude", reply: "Result: 4"}
	gpt4 := &mockProvider{name: "gpt4", reply: "Result: 4"}
	cache := &mockCache{findErr: errors.New("db down")}
	svc := newService(t, claude, gpt4).WithCache(cache, time.Hour)

	res, err := svc.Solve(context.Background(), "math", "2+2")
	require.NoError(t, err)
	require.NoError(t, res.Claude.Err)
	require.Equal(t, 1, claude.callCount)
	require.Equal(t, 1, gpt4.callCount)
}

func TestNewRequiresBothProviders(t *testing.T) {
	_, err := New(&llm.Providers{Claude: &mockProvider{name: "claude"}}, format.LegacyStepList(), 0, nil)
	require.Error(t, err)

	_, err = New(nil, format.LegacyStepList(), 0, nil)
	require.Error(t, err)
}
