package observer

import (
	"context"
	"errors"
	"testing"

	caravan "github.com/nevindra/caravan"
)

// mockProvider for observer tests.
type mockProvider struct {
	name     string
	chatResp caravan.ChatResponse
	chatErr  error
	requests int
}

func (m *mockProvider) Name() string { return m.name }
func (m *mockProvider) Chat(_ context.Context, _ caravan.ChatRequest) (caravan.ChatResponse, error) {
	m.requests++
	return m.chatResp, m.chatErr
}

// mockRunner for flow wrapper tests.
type mockRunner struct {
	err  error
	runs int
}

func (m *mockRunner) Run(_ context.Context, _ caravan.PlanRequest) error {
	m.runs++
	return m.err
}

// testInstruments creates Instruments on the global OTEL providers, which
// are no-ops by default. Safe for testing delegation without a backend.
func testInstruments(t *testing.T) *Instruments {
	t.Helper()
	inst, err := newInstruments()
	if err != nil {
		t.Fatalf("newInstruments: %v", err)
	}
	return inst
}

func TestObservedProviderName(t *testing.T) {
	inner := &mockProvider{name: "openrouter"}
	p := WrapProvider(inner, caravan.Sonnet4, testInstruments(t))
	if p.Name() != "openrouter" {
		t.Fatalf("Name = %q", p.Name())
	}
}

func TestObservedProviderChat(t *testing.T) {
	inner := &mockProvider{
		name:     "openai",
		chatResp: caravan.ChatResponse{Content: "hi", Usage: caravan.Usage{InputTokens: 3, OutputTokens: 5}},
	}
	p := WrapProvider(inner, caravan.GPT41, testInstruments(t))

	resp, err := p.Chat(context.Background(), caravan.ChatRequest{
		Messages: caravan.OneShot("sys", "user"),
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content != "hi" {
		t.Fatalf("content = %q", resp.Content)
	}
	if inner.requests != 1 {
		t.Fatalf("inner calls = %d", inner.requests)
	}
}

func TestObservedProviderChatError(t *testing.T) {
	inner := &mockProvider{name: "openai", chatErr: errors.New("rate limited")}
	p := WrapProvider(inner, caravan.GPT41, testInstruments(t))

	if _, err := p.Chat(context.Background(), caravan.ChatRequest{}); err == nil {
		t.Fatal("error swallowed by the wrapper")
	}
}

func TestObservedProviderChatWithTools(t *testing.T) {
	inner := &mockProvider{
		name: "openrouter",
		chatResp: caravan.ChatResponse{
			FinishReason: caravan.FinishReasonToolCalls,
			ToolCalls:    []caravan.ToolCall{{ID: "call-1", Name: "get_transit_time"}},
		},
	}
	p := WrapProvider(inner, caravan.Sonnet4, testInstruments(t))

	resp, err := p.Chat(context.Background(), caravan.ChatRequest{
		Tools: []caravan.ToolDefinition{{Name: "get_transit_time"}},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "get_transit_time" {
		t.Fatalf("tool calls = %+v", resp.ToolCalls)
	}
}

func TestObservedFlowRun(t *testing.T) {
	inner := &mockRunner{}
	f := WrapFlow(inner, testInstruments(t))

	if err := f.Run(context.Background(), caravan.PlanRequest{ChannelID: "chan-1"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if inner.runs != 1 {
		t.Fatalf("inner runs = %d", inner.runs)
	}
}

func TestObservedFlowRunError(t *testing.T) {
	inner := &mockRunner{err: errors.New("planner down")}
	f := WrapFlow(inner, testInstruments(t))

	if err := f.Run(context.Background(), caravan.PlanRequest{}); err == nil {
		t.Fatal("error swallowed by the wrapper")
	}
}
