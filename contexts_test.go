package caravan

import (
	"context"
	"testing"
	"time"
)

func TestContextMapInsertIsWriteOnce(t *testing.T) {
	m := NewContextMap()
	m.Insert(Context{TaskID: "t1", AgentType: AgentFood, Content: "first"})
	m.Insert(Context{TaskID: "t1", AgentType: AgentFood, Content: "second"})

	c, ok := m.Get("t1")
	if !ok {
		t.Fatal("t1 missing")
	}
	if c.Content != "first" {
		t.Fatalf("content = %q, want the first insert kept", c.Content)
	}
	if m.Len() != 1 {
		t.Fatalf("len = %d, want 1", m.Len())
	}
}

func TestWaitForReturnsWhenDepsArrive(t *testing.T) {
	m := NewContextMap()
	done := make(chan error, 1)
	go func() {
		done <- m.WaitFor(context.Background(), []string{"a", "b"})
	}()

	m.Insert(Context{TaskID: "a", Content: "ra"})
	select {
	case err := <-done:
		t.Fatalf("WaitFor returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	m.Insert(Context{TaskID: "b", Content: "rb"})
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitFor: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitFor did not wake after the last dependency arrived")
	}
}

func TestWaitForHonorsCancellation(t *testing.T) {
	m := NewContextMap()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- m.WaitFor(ctx, []string{"never"})
	}()

	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("WaitFor returned nil after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitFor did not observe cancellation")
	}
}

func TestWaitForNoDeps(t *testing.T) {
	m := NewContextMap()
	if err := m.WaitFor(context.Background(), nil); err != nil {
		t.Fatalf("WaitFor with no deps: %v", err)
	}
}

func TestContentsOf(t *testing.T) {
	m := NewContextMap()
	m.Insert(Context{TaskID: "t1", Content: "alpha"})
	m.Insert(Context{TaskID: "t2", Content: "beta"})

	got := m.ContentsOf([]string{"t1", "t2"})
	if got["t1"] != "alpha" || got["t2"] != "beta" {
		t.Fatalf("ContentsOf = %v", got)
	}
}
