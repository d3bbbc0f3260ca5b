package caravan

import (
	"errors"
	"testing"
)

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		tasks   []Task
		wantErr bool
	}{
		{
			name: "valid chain",
			tasks: []Task{
				{TaskID: "t1", Agent: AgentFood},
				{TaskID: "t2", Agent: AgentHistory, Dependencies: []string{"t1"}},
			},
		},
		{
			name:  "empty plan",
			tasks: nil,
		},
		{
			name: "duplicate id",
			tasks: []Task{
				{TaskID: "t1", Agent: AgentFood},
				{TaskID: "t1", Agent: AgentNature},
			},
			wantErr: true,
		},
		{
			name: "self dependency",
			tasks: []Task{
				{TaskID: "t1", Agent: AgentFood, Dependencies: []string{"t1"}},
			},
			wantErr: true,
		},
		{
			name: "dangling dependency",
			tasks: []Task{
				{TaskID: "t1", Agent: AgentFood, Dependencies: []string{"missing"}},
			},
			wantErr: true,
		},
		{
			name: "two-task cycle",
			tasks: []Task{
				{TaskID: "t1", Agent: AgentFood, Dependencies: []string{"t2"}},
				{TaskID: "t2", Agent: AgentNature, Dependencies: []string{"t1"}},
			},
			wantErr: true,
		},
		{
			name: "diamond is acyclic",
			tasks: []Task{
				{TaskID: "a", Agent: AgentFood},
				{TaskID: "b", Agent: AgentNature, Dependencies: []string{"a"}},
				{TaskID: "c", Agent: AgentModern, Dependencies: []string{"a"}},
				{TaskID: "d", Agent: AgentTransport, Dependencies: []string{"b", "c"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := OrchestrationPlan{Tasks: tt.tasks}
			err := plan.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr {
				var invalid *ErrInvalidPlan
				if !errors.As(err, &invalid) {
					t.Fatalf("error is %T, want *ErrInvalidPlan", err)
				}
			}
		})
	}
}
