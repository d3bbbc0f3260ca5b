package caravan

import "fmt"

// Task is one subtask of an orchestration plan. Dependencies name the
// task_ids whose contexts must be present before this task's fan-out
// begins.
type Task struct {
	TaskID       string   `json:"task_id"`
	Agent        Agent    `json:"agent"`
	Instruction  string   `json:"instruction"`
	Dependencies []string `json:"dependencies"`
}

// OrchestrationPlan is the planner's structured decomposition of a user
// request: a greeting, a short analysis, the task DAG, and a synthesis
// strategy.
type OrchestrationPlan struct {
	GreetingMessage string `json:"greeting_message"`
	Analysis        string `json:"analysis"`
	Tasks           []Task `json:"tasks"`
	SynthesisPlan   string `json:"synthesis_plan"`
}

// FinalResult is the synthesizer's strict output shape.
type FinalResult struct {
	FinalResult string `json:"final_result"`
}

// Validate checks that the task list forms a DAG: every dependency names
// another task in the plan, no task depends on itself, and no dependency
// cycle exists. A nil return means the plan is safe to schedule.
func (p *OrchestrationPlan) Validate() error {
	ids := make(map[string]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		if ids[t.TaskID] {
			return &ErrInvalidPlan{Reason: fmt.Sprintf("duplicate task id %q", t.TaskID)}
		}
		ids[t.TaskID] = true
	}

	for _, t := range p.Tasks {
		for _, dep := range t.Dependencies {
			if dep == t.TaskID {
				return &ErrInvalidPlan{Reason: fmt.Sprintf("task %q depends on itself", t.TaskID)}
			}
			if !ids[dep] {
				return &ErrInvalidPlan{Reason: fmt.Sprintf("task %q depends on unknown task %q", t.TaskID, dep)}
			}
		}
	}

	if cycle := findCycle(p.Tasks); cycle != "" {
		return &ErrInvalidPlan{Reason: "dependency cycle through task " + cycle}
	}
	return nil
}

// findCycle runs Kahn's algorithm over the dependency edges and returns a
// task id on a cycle, or "" when the graph is acyclic. A cyclic plan would
// pass reference validation yet deadlock the scheduler, so it is rejected
// here.
func findCycle(tasks []Task) string {
	indegree := make(map[string]int, len(tasks))
	dependents := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		indegree[t.TaskID] += 0
		for _, dep := range t.Dependencies {
			indegree[t.TaskID]++
			dependents[dep] = append(dependents[dep], t.TaskID)
		}
	}

	var ready []string
	for id, n := range indegree {
		if n == 0 {
			ready = append(ready, id)
		}
	}

	removed := 0
	for len(ready) > 0 {
		id := ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		removed++
		for _, next := range dependents[id] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if removed == len(tasks) {
		return ""
	}
	for id, n := range indegree {
		if n > 0 {
			return id
		}
	}
	return ""
}
