package caravan

import "fmt"

type ErrLLM struct {
	Provider string
	Message  string
}

func (e *ErrLLM) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

type ErrHTTP struct {
	Status int
	Body   string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}

// ErrInvalidPlan reports an orchestration plan that fails DAG validation:
// a dependency naming no task in the plan, a self-dependency, or a cycle.
type ErrInvalidPlan struct {
	Reason string
}

func (e *ErrInvalidPlan) Error() string {
	return "invalid plan: " + e.Reason
}

// ErrPlanner reports a fatal planning failure: a provider error, an
// unparseable response, or resample attempts exhausted on invalid plans.
type ErrPlanner struct {
	Attempts int
	Err      error
}

func (e *ErrPlanner) Error() string {
	return fmt.Sprintf("planner failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ErrPlanner) Unwrap() error { return e.Err }
