package caravan

import (
	"bytes"
	"context"
	"encoding/json"
)

// Role is a chat role as stored in a PlanRecord.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageContent is either a plain string or a structured JSON value (the
// orchestration plan and the final result are stored structured). It
// serializes untagged: structured content as the raw value, plain content
// as a JSON string.
type MessageContent struct {
	Plain   string
	Dynamic json.RawMessage
}

func PlainContent(s string) MessageContent {
	return MessageContent{Plain: s}
}

// DynamicContent marshals v and stores it as structured content.
func DynamicContent(v any) (MessageContent, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return MessageContent{}, err
	}
	return MessageContent{Dynamic: raw}, nil
}

// Text renders the content as prompt text: plain content verbatim,
// structured content pretty-printed.
func (c MessageContent) Text() string {
	if c.Dynamic == nil {
		return c.Plain
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, c.Dynamic, "", "  "); err != nil {
		return string(c.Dynamic)
	}
	return buf.String()
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.Dynamic != nil {
		return c.Dynamic, nil
	}
	return json.Marshal(c.Plain)
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = MessageContent{Plain: s}
		return nil
	}
	*c = MessageContent{Dynamic: append(json.RawMessage(nil), data...)}
	return nil
}

// RecordMessage is one chronological entry of a plan's conversation trace.
type RecordMessage struct {
	Role    Role           `json:"role"`
	Content MessageContent `json:"content"`
}

// ToChatMessage converts a record entry back into a provider message, used
// when the synthesizer replays the trace.
func (m RecordMessage) ToChatMessage() ChatMessage {
	return ChatMessage{Role: string(m.Role), Content: m.Content.Text()}
}

// GenerationDump is one raw model output captured during a plan: one per
// fan-out provider response, one per agent consolidation, one for the
// planner, and one (flagged) for the final result.
type GenerationDump struct {
	Model         ModelID `json:"model"`
	Content       string  `json:"content"`
	IsFinalResult bool    `json:"is_final_result"`
}

// PlanRecord is the persisted trace of one plan: the ordered conversation
// messages and every raw generation. It is owned by the plan flow and
// written once at the end.
type PlanRecord struct {
	ID       string           `json:"id"`
	Language Language         `json:"language"`
	Messages []RecordMessage  `json:"messages"`
	Dumps    []GenerationDump `json:"dumps"`
}

// PlanMapping links a persisted plan to the Discord surface it ran on.
type PlanMapping struct {
	PlanID            string `json:"plan_id"`
	ThreadID          string `json:"thread_id"`
	ChannelID         string `json:"channel_id"`
	OriginalMessageID string `json:"original_message_id"`
}

// RecordStore persists plan records and their surface mappings. Both writes
// happen once per plan; either failure is fatal to the plan and is not
// retried.
type RecordStore interface {
	PutPlan(ctx context.Context, record PlanRecord) error
	PutMapping(ctx context.Context, mapping PlanMapping) error
}

// Collection names in the document store.
const (
	PlanCollectionName        = "travel_agency_plans"
	PlanMappingCollectionName = "travel_agency_plan_mappings"
)
