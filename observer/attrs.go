package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys shared by spans and metrics.
var (
	AttrLLMModel     = attribute.Key("llm.model")
	AttrLLMProvider  = attribute.Key("llm.provider")
	AttrLLMMethod    = attribute.Key("llm.method")
	AttrTokensInput  = attribute.Key("llm.tokens.input")
	AttrTokensOutput = attribute.Key("llm.tokens.output")
	AttrToolCount    = attribute.Key("llm.tool.count")
	AttrToolNames    = attribute.Key("llm.tool.names")
)
