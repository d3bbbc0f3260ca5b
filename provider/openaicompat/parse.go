package openaicompat

import (
	"encoding/json"

	caravan "github.com/nevindra/caravan"
)

// ParseResponse converts an OpenAI-format ChatResponse to a caravan
// ChatResponse. It extracts content, tool calls, finish reason, and usage
// from choices[0].
func ParseResponse(resp ChatResponse) (caravan.ChatResponse, error) {
	var out caravan.ChatResponse

	if len(resp.Choices) == 0 {
		return out, nil
	}

	choice := resp.Choices[0]
	out.FinishReason = choice.FinishReason
	if choice.Message != nil {
		out.Content = choice.Message.Content
		out.ToolCalls = ParseToolCalls(choice.Message.ToolCalls)
	}

	if resp.Usage != nil {
		out.Usage = caravan.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		}
	}

	return out, nil
}

// ParseToolCalls converts OpenAI tool call requests to caravan ToolCalls.
// OpenAI returns function.arguments as a JSON string; we parse it into
// json.RawMessage.
func ParseToolCalls(tcs []ToolCallRequest) []caravan.ToolCall {
	if len(tcs) == 0 {
		return nil
	}

	out := make([]caravan.ToolCall, 0, len(tcs))
	for _, tc := range tcs {
		args := json.RawMessage(tc.Function.Arguments)
		if !json.Valid(args) {
			args = json.RawMessage(`{}`)
		}
		out = append(out, caravan.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		})
	}
	return out
}
