package caravan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// synthesisSchema is the strict output schema for the final synthesis call.
var synthesisSchema = &ResponseSchema{
	Name:        "synthesize_tasks",
	Description: "Synthesize the results of subtasks into the final response.",
	Schema: json.RawMessage(`{
		"type": "object",
		"properties": {
			"final_result": {
				"type": "string",
				"description": "The combined and synthesized result to respond to the user's request."
			}
		},
		"required": ["final_result"],
		"additionalProperties": false
	}`),
}

// Synthesizer combines the completed subtask contexts into the final
// itinerary by replaying the plan's conversation trace with the synthesis
// prompt appended.
type Synthesizer struct {
	Model  Model
	Logger *slog.Logger
}

// Synthesize runs the final call and returns the final result text. The
// record gains the synthesis user message, the assistant response, and a
// dump flagged as the final result. Any failure here is fatal to the plan.
func (s *Synthesizer) Synthesize(ctx context.Context, record *PlanRecord, synthesisPrompt string, results []Context) (string, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	byTask := make(map[string]Context, len(results))
	for _, c := range results {
		byTask[c.TaskID] = c
	}
	prompt := fill(synthesisPrompt, "$RESULTS", mustPrettyJSON(byTask))

	messages := make([]ChatMessage, 0, len(record.Messages)+1)
	for _, m := range record.Messages {
		messages = append(messages, m.ToChatMessage())
	}
	messages = append(messages, UserMessage(prompt))
	record.Messages = append(record.Messages, RecordMessage{Role: RoleUser, Content: PlainContent(prompt)})

	resp, err := s.Model.Provider.Chat(ctx, ChatRequest{
		Messages:         messages,
		ResponseSchema:   synthesisSchema,
		GenerationParams: &GenerationParams{Temperature: Float64(TemperatureLow)},
	})
	if err != nil {
		return "", fmt.Errorf("synthesis call: %w", err)
	}

	var final FinalResult
	if err := json.Unmarshal([]byte(resp.Content), &final); err != nil {
		return "", fmt.Errorf("decode final result: %w", err)
	}

	dynamic, err := DynamicContent(final)
	if err != nil {
		return "", err
	}
	record.Messages = append(record.Messages, RecordMessage{Role: RoleAssistant, Content: dynamic})
	record.Dumps = append(record.Dumps, GenerationDump{Model: s.Model.ID, Content: resp.Content, IsFinalResult: true})

	logger.Info("final result synthesized", "length", len(final.FinalResult))
	return final.FinalResult, nil
}
