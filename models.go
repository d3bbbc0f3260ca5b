package caravan

// ModelID identifies a specific LLM backend endpoint. The string value is
// the model name sent on the wire.
type ModelID string

const (
	GPT41           ModelID = "gpt-4.1"
	ChatGPT4oLatest ModelID = "chatgpt-4o-latest"
	O3              ModelID = "o3"
	O3Pro           ModelID = "o3-pro"
	Gemini25Pro     ModelID = "google/gemini-2.5-pro"
	Gemini25Flash   ModelID = "google/gemini-2.5-flash"
	Sonnet4         ModelID = "anthropic/claude-sonnet-4"
	Opus4           ModelID = "anthropic/claude-opus-4"
	Grok3           ModelID = "x-ai/grok-3"
	Grok4           ModelID = "x-ai/grok-4"
	DeepSeekV3      ModelID = "deepseek-chat"
	DeepSeekR1      ModelID = "deepseek-reasoner"
	GLM4Plus        ModelID = "GLM-4-Plus"
	Step216K        ModelID = "step-2-16k"
	QwenMax         ModelID = "qwen/qwen-max"
	Qwen3_235B      ModelID = "qwen/qwen3-235b-a22b"
	DoubaoSeed16    ModelID = "doubao-seed-1-6-250615"
	KimiLatest      ModelID = "kimi-latest"
	MistralLarge    ModelID = "mistralai/mistral-large-2411"
	MinimaxM1       ModelID = "minimax/minimax-m1"
	Ernie45         ModelID = "baidu/ernie-4.5-300b-a47b"
)

const (
	TemperatureLow    = 0.3
	TemperatureMedium = 0.7
	TemperatureHigh   = 1.0
)

// FanoutParams returns the sampling parameters used when this model is
// queried as part of the subtask fan-out. Most models run hot; Kimi is
// pinned low and DeepSeek V3 follows its vendor's recommended 1.8/0.98.
// O3-class models take a reasoning effort instead of a temperature.
func FanoutParams(id ModelID) *GenerationParams {
	switch id {
	case KimiLatest:
		return &GenerationParams{Temperature: Float64(TemperatureLow)}
	case DeepSeekV3:
		return &GenerationParams{Temperature: Float64(1.8), TopP: Float64(0.98)}
	case O3, O3Pro:
		return &GenerationParams{ReasoningEffort: "high"}
	default:
		return &GenerationParams{Temperature: Float64(TemperatureHigh), TopP: Float64(1.0)}
	}
}
