package caravan

import "encoding/json"

// Agent names one of the fixed specialist roles a subtask can be assigned
// to. The wire value matches the planner's output schema enum.
type Agent string

const (
	AgentFood      Agent = "Food"
	AgentTransport Agent = "Transport"
	AgentHistory   Agent = "History"
	AgentModern    Agent = "Modern"
	AgentNature    Agent = "Nature"
)

// Agents lists every specialist role, in prompt-pack order.
var Agents = []Agent{AgentFood, AgentHistory, AgentModern, AgentNature, AgentTransport}

func (a Agent) String() string { return string(a) }

// Language is the classified language of a planning request. It selects the
// prompt pack and the maps response language for the whole plan.
type Language string

const (
	LanguageEnglish  Language = "English"
	LanguageChinese  Language = "Chinese"
	LanguageJapanese Language = "Japanese"
	LanguageOther    Language = "Other"
)

func (l Language) String() string { return string(l) }

// languageTriageArgs is the argument payload of the forced get_language
// tool call.
type languageTriageArgs struct {
	Language Language `json:"language"`
}

// getLanguageTool is the single tool offered to the classifier, with the
// schema restricted to the four supported values.
var getLanguageTool = ToolDefinition{
	Name:        "get_language",
	Description: "Determine the language of the user's prompt.",
	Strict:      true,
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"language": {
				"type": "string",
				"description": "The language of the user's prompt, e.g. Simplified Chinese, English, Japanese, etc.",
				"enum": ["English", "Chinese", "Japanese", "Other"]
			}
		},
		"required": ["language"],
		"additionalProperties": false
	}`),
}
