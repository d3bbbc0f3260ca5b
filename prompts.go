package caravan

import "strings"

// AgentPrompts is the (system, user) prompt pair for one specialist agent in
// one language. The user prompt carries the $INSTRUCTION, $CONTEXT and
// $AGENT placeholders.
type AgentPrompts struct {
	System string
	User   string
}

// LanguagePack holds every prompt the pipeline needs for one language.
type LanguagePack struct {
	// Orchestrator is the planner's system prompt.
	Orchestrator string
	// Naming is the thread-naming system prompt.
	Naming string
	// Synthesis is the final-synthesis prompt template ($RESULTS).
	Synthesis string
	// Agent is the consolidation prompt template ($RESULTS,
	// $AGENT_TRANSPORT).
	Agent string
	// TransportAgent is the transport sub-prompt template ($RETRY_COUNT,
	// $MAXIMUM_RETRY_REACHED).
	TransportAgent string
	// TransportMaximumTry replaces $MAXIMUM_RETRY_REACHED on the last tool
	// loop iteration.
	TransportMaximumTry string
	// Agents maps each specialist to its prompt pair.
	Agents map[Agent]AgentPrompts
}

// PromptSet resolves a language to its pack. Other falls back to English.
type PromptSet struct {
	English  LanguagePack
	Chinese  LanguagePack
	Japanese LanguagePack
	// Triage is the language classifier's system prompt, shared across
	// languages.
	Triage string
}

func (s *PromptSet) ForLanguage(language Language) LanguagePack {
	switch language {
	case LanguageChinese:
		return s.Chinese
	case LanguageJapanese:
		return s.Japanese
	default:
		return s.English
	}
}

// fill replaces one placeholder in a prompt template.
func fill(template, placeholder, value string) string {
	return strings.ReplaceAll(template, placeholder, value)
}
