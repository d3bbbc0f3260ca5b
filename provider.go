package caravan

import "context"

// Provider abstracts an LLM backend.
type Provider interface {
	// Chat sends a request and returns a complete response. When
	// req.Tools is non-empty the response may contain tool calls.
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// Name returns the provider name (e.g. "openai", "openrouter").
	Name() string
}

// Model pairs a model identifier with the provider that serves it. The
// fan-out pool, the agent consolidation call, and the planner/synthesizer
// are all expressed as Models so dumps can record which backend produced
// each output.
type Model struct {
	ID       ModelID
	Provider Provider
}
