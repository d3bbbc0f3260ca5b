package caravan

import (
	"context"
	"encoding/json"
	"log/slog"
)

// LanguageClassifier determines the language of a planning request with a
// single forced tool call. Classification is best-effort: any failure falls
// back to English so the plan can proceed.
type LanguageClassifier struct {
	Model  Model
	Prompt string // language triage system prompt
	Logger *slog.Logger
}

// Classify returns the language of userPrompt. The model must answer
// through the get_language tool; a provider error, a missing tool call, or
// undecodable arguments all degrade to English.
func (c *LanguageClassifier) Classify(ctx context.Context, userPrompt string) Language {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	resp, err := c.Model.Provider.Chat(ctx, ChatRequest{
		Messages:         OneShot(c.Prompt, userPrompt),
		Tools:            []ToolDefinition{getLanguageTool},
		ToolChoice:       ToolChoiceRequired,
		GenerationParams: &GenerationParams{Temperature: Float64(TemperatureLow)},
	})
	if err != nil {
		logger.Error("language triage call failed, falling back to English", "error", err)
		return LanguageEnglish
	}

	if len(resp.ToolCalls) == 0 {
		logger.Warn("language triage returned no tool call, falling back to English")
		return LanguageEnglish
	}

	var args languageTriageArgs
	if err := json.Unmarshal(resp.ToolCalls[0].Args, &args); err != nil {
		logger.Warn("language triage arguments undecodable, falling back to English", "error", err)
		return LanguageEnglish
	}

	switch args.Language {
	case LanguageEnglish, LanguageChinese, LanguageJapanese, LanguageOther:
		return args.Language
	default:
		return LanguageEnglish
	}
}
