package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func testHandler(commands map[string]CommandFunc) *Handler {
	return &Handler{commands: commands, logger: discardLogger()}
}

func postInteraction(t *testing.T, h *Handler, payload string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/discord/interaction", strings.NewReader(payload))
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerPong(t *testing.T) {
	rec := postInteraction(t, testHandler(nil), `{"type":1}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp InteractionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Type != ResponsePong {
		t.Fatalf("response type = %d, want pong", resp.Type)
	}
}

func TestHandlerDefersAndDispatchesCommand(t *testing.T) {
	var (
		mu     sync.Mutex
		gotReq Interaction
	)
	done := make(chan struct{})
	h := testHandler(map[string]CommandFunc{
		"plan": func(_ context.Context, interaction Interaction) error {
			mu.Lock()
			gotReq = interaction
			mu.Unlock()
			close(done)
			return nil
		},
	})

	payload := `{
		"type": 2,
		"token": "tok-1",
		"channel_id": "chan-1",
		"data": {"name": "plan", "options": [{"name": "prompt", "value": "a weekend in Kyoto"}]}
	}`
	rec := postInteraction(t, h, payload)

	var resp InteractionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Type != ResponseDeferredChannelMessage {
		t.Fatalf("response type = %d, want deferred", resp.Type)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("command was not dispatched")
	}

	mu.Lock()
	defer mu.Unlock()
	if gotReq.Token != "tok-1" || gotReq.ChannelID != "chan-1" {
		t.Fatalf("interaction = %+v", gotReq)
	}
	if gotReq.Data.Options[0].StringValue() != "a weekend in Kyoto" {
		t.Fatalf("prompt option = %q", gotReq.Data.Options[0].StringValue())
	}
}

func TestHandlerRejectsUnknownCommand(t *testing.T) {
	h := testHandler(map[string]CommandFunc{})
	rec := postInteraction(t, h, `{"type":2,"data":{"name":"weather"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerRejectsUnknownType(t *testing.T) {
	rec := postInteraction(t, testHandler(nil), `{"type":9}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerRejectsMalformedBody(t *testing.T) {
	rec := postInteraction(t, testHandler(nil), `{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCommandOptionStringValue(t *testing.T) {
	opt := CommandOption{Name: "prompt", Value: json.RawMessage(`"hello"`)}
	if got := opt.StringValue(); got != "hello" {
		t.Fatalf("StringValue = %q", got)
	}
	opt = CommandOption{Name: "count", Value: json.RawMessage(`3`)}
	if got := opt.StringValue(); got != "" {
		t.Fatalf("StringValue = %q, want empty for non-string", got)
	}
}
