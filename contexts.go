package caravan

import (
	"context"
	"sync"
)

// Context is the successful output of a completed subtask, shared with its
// dependents through the plan's ContextMap.
type Context struct {
	TaskID    string `json:"task_id"`
	AgentType Agent  `json:"agent_type"`
	Content   string `json:"content"`
}

// ContextMap is the write-once map of completed subtask contexts shared by
// all workers of one plan. Inserts broadcast to waiters, so a dependent
// task wakes as soon as its last dependency lands instead of polling.
type ContextMap struct {
	mu      sync.Mutex
	cond    *sync.Cond
	entries map[string]Context
}

func NewContextMap() *ContextMap {
	m := &ContextMap{entries: make(map[string]Context)}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Insert records a completed task's context. Entries are write-once: a
// second insert for the same task id is ignored.
func (m *ContextMap) Insert(c Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[c.TaskID]; ok {
		return
	}
	m.entries[c.TaskID] = c
	m.cond.Broadcast()
}

// Get returns the context for taskID, if present.
func (m *ContextMap) Get(taskID string) (Context, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.entries[taskID]
	return c, ok
}

// Len returns the number of completed contexts.
func (m *ContextMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// WaitFor blocks until every id in deps is present, or ctx is done. This is
// the dependency gate for subtask workers: a worker whose dependencies can
// never be satisfied is bounded by the plan deadline carried in ctx.
func (m *ContextMap) WaitFor(ctx context.Context, deps []string) error {
	if len(deps) == 0 {
		return nil
	}

	// Wake all waiters when ctx is cancelled so they can observe the error.
	stop := context.AfterFunc(ctx, func() {
		m.mu.Lock()
		m.cond.Broadcast()
		m.mu.Unlock()
	})
	defer stop()

	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		if m.allPresentLocked(deps) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		m.cond.Wait()
	}
}

func (m *ContextMap) allPresentLocked(deps []string) bool {
	for _, d := range deps {
		if _, ok := m.entries[d]; !ok {
			return false
		}
	}
	return true
}

// ContentsOf returns dep id → content for the given dependency ids. Missing
// ids are skipped; call after WaitFor to get a complete view.
func (m *ContextMap) ContentsOf(deps []string) map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(deps))
	for _, d := range deps {
		if c, ok := m.entries[d]; ok {
			out[d] = c.Content
		}
	}
	return out
}
