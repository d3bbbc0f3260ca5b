package caravan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// defaultPlanAttempts bounds the resample loop on logically invalid plans.
// The model occasionally emits a dangling dependency; resampling with the
// same inputs usually fixes it, but the loop must not spin forever.
const defaultPlanAttempts = 5

// orchestrationSchema is the strict output schema for the planning call.
var orchestrationSchema = &ResponseSchema{
	Name:        "orchestrate_tasks",
	Description: "Break the user's request into subtasks and orchestrate in order to get the final result.",
	Schema: json.RawMessage(`{
		"type": "object",
		"properties": {
			"greeting_message": {
				"type": "string",
				"description": "Greeting message to greet the user and inform the user that you have received their request and is now planning the itinerary."
			},
			"analysis": {
				"type": "string",
				"description": "Brief analysis of what the user wants."
			},
			"tasks": {
				"type": "array",
				"description": "A list of tasks to assign to agents.",
				"items": {
					"type": "object",
					"properties": {
						"task_id": {
							"type": "string",
							"description": "A unique task ID for each task."
						},
						"agent": {
							"type": "string",
							"description": "Agent name to assign this task to.",
							"enum": ["Food", "History", "Modern", "Nature", "Transport"]
						},
						"instruction": {
							"type": "string",
							"description": "Specific instruction for the agent to complete."
						},
						"dependencies": {
							"type": "array",
							"description": "List of task IDs that must complete before this task. All task IDs in this list have to be task_ids of other tasks in the tasks and must not include your own tasks.",
							"items": {"type": "string"}
						}
					},
					"required": ["task_id", "agent", "instruction", "dependencies"],
					"additionalProperties": false
				}
			},
			"synthesis_plan": {
				"type": "string",
				"description": "How you'll combine the results."
			}
		},
		"required": ["greeting_message", "analysis", "tasks", "synthesis_plan"],
		"additionalProperties": false
	}`),
}

// Planner produces a validated OrchestrationPlan from the orchestrator
// system prompt and the user's request via a structured-output call to a
// strong reasoning model.
type Planner struct {
	Model Model
	// MaxAttempts caps the resample loop on invalid plans. Zero means
	// defaultPlanAttempts.
	MaxAttempts int
	Logger      *slog.Logger
}

// Plan issues the planning request and validates the returned DAG. A
// provider error fails fast; an invalid DAG (dangling reference, self-dep,
// cycle) triggers a resample with the same inputs, up to MaxAttempts. Both
// failure modes return an *ErrPlanner.
func (p *Planner) Plan(ctx context.Context, systemPrompt, userPrompt string) (OrchestrationPlan, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = defaultPlanAttempts
	}

	req := ChatRequest{
		Messages:         OneShot(systemPrompt, userPrompt),
		ResponseSchema:   orchestrationSchema,
		GenerationParams: &GenerationParams{Temperature: Float64(TemperatureLow)},
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := p.Model.Provider.Chat(ctx, req)
		if err != nil {
			logger.Error("planner provider call failed", "model", p.Model.ID, "error", err)
			return OrchestrationPlan{}, &ErrPlanner{Attempts: attempt, Err: err}
		}

		var plan OrchestrationPlan
		if err := json.Unmarshal([]byte(resp.Content), &plan); err != nil {
			return OrchestrationPlan{}, &ErrPlanner{Attempts: attempt, Err: fmt.Errorf("decode plan: %w", err)}
		}

		if err := plan.Validate(); err != nil {
			logger.Warn("planner returned invalid plan, resampling", "attempt", attempt, "error", err)
			lastErr = err
			continue
		}

		logger.Info("orchestration plan ready", "tasks", len(plan.Tasks))
		return plan, nil
	}

	return OrchestrationPlan{}, &ErrPlanner{Attempts: attempts, Err: lastErr}
}
