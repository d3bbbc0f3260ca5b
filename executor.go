package caravan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// maxToolRetries bounds the transport tool-call loop: at most this many
// provider calls beyond the initial consolidation call.
const maxToolRetries = 3

// defaultCallTimeout is the per-provider-call ceiling during fan-out. Slow
// reasoning models routinely take minutes; anything past ten is gone.
const defaultCallTimeout = 600 * time.Second

// Executor runs one subtask end to end: wait for dependencies, fan the
// prompt out to every configured model, consolidate the survivors with the
// designated agent model, and for Transport drive the transit-time tool
// loop. One Executor is built per task and runs on its own goroutine.
type Executor struct {
	TaskID       string
	AgentType    Agent
	Dependencies []string

	SystemPrompt string
	// UserPrompt has $INSTRUCTION already substituted; $CONTEXT and $AGENT
	// remain for Execute to fill.
	UserPrompt string
	// AgentPrompt is the consolidation template ($RESULTS,
	// $AGENT_TRANSPORT).
	AgentPrompt string
	// TransportPrompt and TransportMaximumTry are set for Transport tasks
	// only.
	TransportPrompt     string
	TransportMaximumTry string
	Tool                *ToolDefinition

	// FanoutModels are queried concurrently with per-model tuning.
	FanoutModels []Model
	// AgentModel answers the consolidation call and the tool loop.
	AgentModel Model

	Maps     MapsClient
	Language Language

	// CallTimeout bounds each fan-out call. Zero means defaultCallTimeout.
	CallTimeout time.Duration
	Logger      *slog.Logger
}

// Execute runs the subtask. On success it inserts the resulting Context
// into contexts and returns it; a Transport task that exhausts its tool
// retries, or a consolidation that yields no content, returns a nil
// Context with no error. The returned dumps hold every raw model output
// produced along the way.
func (e *Executor) Execute(ctx context.Context, contexts *ContextMap) (*Context, []GenerationDump, error) {
	logger := e.logger().With("task", e.TaskID, "agent", e.AgentType)

	if err := contexts.WaitFor(ctx, e.Dependencies); err != nil {
		return nil, nil, fmt.Errorf("waiting for dependencies of task %s: %w", e.TaskID, err)
	}

	depJSON := ""
	if len(e.Dependencies) > 0 {
		depJSON = mustPrettyJSON(contexts.ContentsOf(e.Dependencies))
	}
	resolvedUser := fill(e.UserPrompt, "$CONTEXT", depJSON)

	survivors, dumps := e.fanOut(ctx, logger, fill(resolvedUser, "$AGENT", ""))

	resp, loopTemplate, err := e.consolidate(ctx, resolvedUser, survivors)
	if err != nil {
		return nil, dumps, err
	}
	dumps = append(dumps, GenerationDump{Model: e.AgentModel.ID, Content: resp.Content})

	var content string
	if e.AgentType == AgentTransport && resp.FinishReason == FinishReasonToolCalls && len(resp.ToolCalls) > 0 {
		content = e.toolLoop(ctx, logger, loopTemplate, resp)
		if content == "" {
			logger.Warn("transport tool loop exhausted without a final answer")
			return nil, dumps, nil
		}
	} else {
		content = resp.Content
		if content == "" {
			logger.Warn("consolidation returned empty content, skipping context")
			return nil, dumps, nil
		}
	}

	result := Context{TaskID: e.TaskID, AgentType: e.AgentType, Content: content}
	contexts.Insert(result)
	logger.Info("subtask completed")
	return &result, dumps, nil
}

// fanOut queries every configured model concurrently with the same prompt
// and per-model sampling. Failures become "Fail…" strings so they are kept
// in the dump trail but dropped from the consensus set. The survivors are
// returned pretty-printed as a JSON array.
func (e *Executor) fanOut(ctx context.Context, logger *slog.Logger, userPrompt string) (string, []GenerationDump) {
	timeout := e.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	outputs := make([]string, len(e.FanoutModels))
	dumps := make([]GenerationDump, len(e.FanoutModels))

	var wg sync.WaitGroup
	for i, model := range e.FanoutModels {
		wg.Add(1)
		go func(i int, model Model) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			resp, err := model.Provider.Chat(callCtx, ChatRequest{
				Messages:         OneShot(e.SystemPrompt, userPrompt),
				GenerationParams: FanoutParams(model.ID),
			})
			if err != nil {
				logger.Warn("fan-out call failed", "model", model.ID, "error", err)
				msg := fmt.Sprintf("Failed to get a response from %s: %v", model.ID, err)
				outputs[i] = msg
				dumps[i] = GenerationDump{Model: model.ID, Content: msg}
				return
			}
			outputs[i] = resp.Content
			dumps[i] = GenerationDump{Model: model.ID, Content: resp.Content}
		}(i, model)
	}
	wg.Wait()

	survivors := make([]string, 0, len(outputs))
	for _, out := range outputs {
		if strings.HasPrefix(out, "Fail") {
			continue
		}
		survivors = append(survivors, out)
	}
	logger.Info("fan-out finished", "models", len(e.FanoutModels), "survivors", len(survivors))

	return mustPrettyJSON(survivors), dumps
}

// consolidate sends the fan-out survivors to the designated agent model. It
// returns the response together with the fully resolved user prompt still
// carrying the $RETRY_COUNT and $MAXIMUM_RETRY_REACHED placeholders, which
// the transport tool loop refills per iteration.
func (e *Executor) consolidate(ctx context.Context, resolvedUser, survivors string) (ChatResponse, string, error) {
	agentPrompt := fill(e.AgentPrompt, "$RESULTS", survivors)
	agentPrompt = fill(agentPrompt, "$AGENT_TRANSPORT", e.TransportPrompt)
	loopTemplate := fill(resolvedUser, "$AGENT", agentPrompt)

	userPrompt := fill(loopTemplate, "$RETRY_COUNT", strconv.Itoa(maxToolRetries))
	userPrompt = strings.TrimSpace(fill(userPrompt, "$MAXIMUM_RETRY_REACHED", ""))

	req := ChatRequest{
		Messages:         OneShot(e.SystemPrompt, userPrompt),
		GenerationParams: &GenerationParams{Temperature: Float64(TemperatureMedium)},
	}
	if e.Tool != nil {
		req.Tools = []ToolDefinition{*e.Tool}
		req.ToolChoice = ToolChoiceRequired
	}

	resp, err := e.AgentModel.Provider.Chat(ctx, req)
	if err != nil {
		return ChatResponse{}, "", fmt.Errorf("agent consolidation for task %s: %w", e.TaskID, err)
	}
	return resp, loopTemplate, nil
}

// toolLoop drives the transport agent until it stops asking for transit
// times or the retry budget runs out. Each iteration rebuilds the one-shot
// with the current retry count, executes the requested lookups, and feeds
// the results back with the tool attached. Returns "" when the budget is
// exhausted.
func (e *Executor) toolLoop(ctx context.Context, logger *slog.Logger, loopTemplate string, first ChatResponse) string {
	assistant := ChatMessage{Role: "assistant", Content: first.Content, ToolCalls: first.ToolCalls}
	toolCall := first.ToolCalls[0]

	for retry := 0; retry < maxToolRetries; retry++ {
		maxTry := ""
		if retry == maxToolRetries-1 {
			maxTry = e.TransportMaximumTry
		}
		userPrompt := fill(loopTemplate, "$RETRY_COUNT", strconv.Itoa(retry))
		userPrompt = strings.TrimSpace(fill(userPrompt, "$MAXIMUM_RETRY_REACHED", maxTry))

		var plan TransferPlan
		if err := json.Unmarshal(toolCall.Args, &plan); err != nil {
			logger.Error("transit tool arguments undecodable", "error", err)
			continue
		}
		results, err := resolveTransferPlan(ctx, e.Maps, plan, e.Language)
		if err != nil {
			logger.Error("transit lookup failed", "error", err)
			continue
		}

		messages := OneShot(e.SystemPrompt, userPrompt)
		messages = append(messages, assistant, ToolResultMessage(toolCall.ID, mustPrettyJSON(results)))

		req := ChatRequest{
			Messages:         messages,
			GenerationParams: &GenerationParams{Temperature: Float64(TemperatureMedium)},
		}
		if e.Tool != nil {
			req.Tools = []ToolDefinition{*e.Tool}
		}
		resp, err := e.AgentModel.Provider.Chat(ctx, req)
		if err != nil {
			logger.Error("transport follow-up call failed", "error", err)
			continue
		}

		if resp.FinishReason != FinishReasonToolCalls {
			return resp.Content
		}
		if len(resp.ToolCalls) == 0 {
			logger.Error("tool_calls finish reason without a tool call")
			return resp.Content
		}
		assistant = ChatMessage{Role: "assistant", Content: resp.Content, ToolCalls: resp.ToolCalls}
		toolCall = resp.ToolCalls[0]
	}
	return ""
}

func (e *Executor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// mustPrettyJSON renders v as indented JSON for prompt embedding. The
// values marshalled here are maps and slices of strings, which cannot fail.
func mustPrettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
