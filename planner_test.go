package caravan

import (
	"context"
	"errors"
	"testing"
)

const validPlanJSON = `{
	"greeting_message": "On it!",
	"analysis": "weekend food trip",
	"tasks": [
		{"task_id": "t1", "agent": "Food", "instruction": "find restaurants", "dependencies": []}
	],
	"synthesis_plan": "merge everything"
}`

const danglingPlanJSON = `{
	"greeting_message": "On it!",
	"analysis": "weekend food trip",
	"tasks": [
		{"task_id": "t1", "agent": "Food", "instruction": "find restaurants", "dependencies": ["t9"]}
	],
	"synthesis_plan": "merge everything"
}`

func TestPlannerResamplesInvalidPlan(t *testing.T) {
	provider := &fakeProvider{responses: []ChatResponse{
		{Content: danglingPlanJSON},
		{Content: validPlanJSON},
	}}
	planner := &Planner{Model: fakeModel(Gemini25Pro, provider)}

	plan, err := planner.Plan(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if got := provider.calls(); got != 2 {
		t.Fatalf("provider calls = %d, want 2", got)
	}
	if len(plan.Tasks) != 1 || plan.Tasks[0].TaskID != "t1" {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestPlannerFailsFastOnProviderError(t *testing.T) {
	provider := &fakeProvider{errs: []error{&ErrLLM{Provider: "fake", Message: "boom"}}}
	planner := &Planner{Model: fakeModel(Gemini25Pro, provider)}

	_, err := planner.Plan(context.Background(), "sys", "user")
	var perr *ErrPlanner
	if !errors.As(err, &perr) {
		t.Fatalf("error is %T, want *ErrPlanner", err)
	}
	if got := provider.calls(); got != 1 {
		t.Fatalf("provider calls = %d, want 1 (no retry on provider error)", got)
	}
}

func TestPlannerGivesUpAfterMaxAttempts(t *testing.T) {
	provider := &fakeProvider{fn: func(ChatRequest) (ChatResponse, error) {
		return ChatResponse{Content: danglingPlanJSON}, nil
	}}
	planner := &Planner{Model: fakeModel(Gemini25Pro, provider), MaxAttempts: 3}

	_, err := planner.Plan(context.Background(), "sys", "user")
	var perr *ErrPlanner
	if !errors.As(err, &perr) {
		t.Fatalf("error is %T, want *ErrPlanner", err)
	}
	if perr.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", perr.Attempts)
	}
	if got := provider.calls(); got != 3 {
		t.Fatalf("provider calls = %d, want 3", got)
	}
}

func TestPlannerRequestShape(t *testing.T) {
	provider := &fakeProvider{responses: []ChatResponse{{Content: validPlanJSON}}}
	planner := &Planner{Model: fakeModel(Gemini25Pro, provider)}

	if _, err := planner.Plan(context.Background(), "sys", "user"); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	req := provider.request(0)
	if req.ResponseSchema == nil || req.ResponseSchema.Name != "orchestrate_tasks" {
		t.Fatalf("response schema = %+v, want orchestrate_tasks", req.ResponseSchema)
	}
	if req.GenerationParams == nil || *req.GenerationParams.Temperature != TemperatureLow {
		t.Fatal("planner must run at low temperature")
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
		t.Fatalf("messages = %+v, want one-shot", req.Messages)
	}
}
