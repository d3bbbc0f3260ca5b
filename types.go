package caravan

import "encoding/json"

// --- LLM protocol types ---

type ChatMessage struct {
	Role       string     `json:"role"` // "system", "user", "assistant", "tool"
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type ToolCall struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// ToolChoice values accepted by ChatRequest.
const (
	ToolChoiceAuto     = "auto"
	ToolChoiceRequired = "required"
	ToolChoiceNone     = "none"
)

type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	// Tools, when non-empty, are offered to the model; the response may
	// then contain ToolCalls.
	Tools []ToolDefinition `json:"tools,omitempty"`
	// ToolChoice controls tool selection ("auto", "required", "none").
	// Empty means provider default.
	ToolChoice string `json:"tool_choice,omitempty"`
	// ResponseSchema, when set, constrains the output to strict JSON.
	ResponseSchema *ResponseSchema `json:"response_schema,omitempty"`
	// GenerationParams override provider defaults for this request.
	GenerationParams *GenerationParams `json:"generation_params,omitempty"`
}

type ChatResponse struct {
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Usage        Usage      `json:"usage"`
}

// FinishReasonToolCalls is the finish reason signaling that the model
// requested tool execution rather than producing a final answer.
const FinishReasonToolCalls = "tool_calls"

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Strict      bool            `json:"strict,omitempty"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema
}

// ResponseSchema describes a strict JSON schema the model output must match.
type ResponseSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Schema      json.RawMessage `json:"schema"`
}

// GenerationParams are per-request sampling overrides. Nil fields keep the
// provider's defaults.
type GenerationParams struct {
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	// ReasoningEffort applies to reasoning models on the responses API
	// ("low", "medium", "high").
	ReasoningEffort string `json:"reasoning_effort,omitempty"`
}

// --- ChatMessage constructors ---

func UserMessage(text string) ChatMessage {
	return ChatMessage{Role: "user", Content: text}
}

func SystemMessage(text string) ChatMessage {
	return ChatMessage{Role: "system", Content: text}
}

func AssistantMessage(text string) ChatMessage {
	return ChatMessage{Role: "assistant", Content: text}
}

func ToolResultMessage(callID, content string) ChatMessage {
	return ChatMessage{Role: "tool", Content: content, ToolCallID: callID}
}

// OneShot builds the (system, user) message pair used by every single-turn
// call in the plan pipeline.
func OneShot(systemPrompt, userPrompt string) []ChatMessage {
	return []ChatMessage{SystemMessage(systemPrompt), UserMessage(userPrompt)}
}

// Float64 returns a pointer to v, for GenerationParams literals.
func Float64(v float64) *float64 { return &v }
