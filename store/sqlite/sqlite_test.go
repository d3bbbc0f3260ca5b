package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	caravan "github.com/nevindra/caravan"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutAndGetPlan(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	record := caravan.PlanRecord{
		ID:       caravan.NewID(),
		Language: caravan.LanguageChinese,
		Messages: []caravan.RecordMessage{
			{Role: caravan.RoleSystem, Content: caravan.PlainContent("orchestrate")},
			{Role: caravan.RoleUser, Content: caravan.PlainContent("plan a trip")},
		},
		Dumps: []caravan.GenerationDump{
			{Model: caravan.Gemini25Pro, Content: "the plan"},
			{Model: caravan.Gemini25Pro, Content: "the result", IsFinalResult: true},
		},
	}
	if err := store.PutPlan(ctx, record); err != nil {
		t.Fatalf("PutPlan: %v", err)
	}

	got, err := store.GetPlan(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if got.ID != record.ID || got.Language != record.Language {
		t.Fatalf("got = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Content.Text() != "orchestrate" {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if len(got.Dumps) != 2 || !got.Dumps[1].IsFinalResult {
		t.Fatalf("dumps = %+v", got.Dumps)
	}
}

func TestPutPlanDuplicateID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	record := caravan.PlanRecord{ID: caravan.NewID()}
	if err := store.PutPlan(ctx, record); err != nil {
		t.Fatalf("PutPlan: %v", err)
	}
	if err := store.PutPlan(ctx, record); err == nil {
		t.Fatal("want error on duplicate plan id")
	}
}

func TestPutMapping(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	mapping := caravan.PlanMapping{
		PlanID:            caravan.NewID(),
		ThreadID:          "thread-1",
		ChannelID:         "chan-1",
		OriginalMessageID: "msg-1",
	}
	if err := store.PutMapping(ctx, mapping); err != nil {
		t.Fatalf("PutMapping: %v", err)
	}
	if err := store.PutMapping(ctx, mapping); err == nil {
		t.Fatal("want error on duplicate mapping")
	}
}

func TestGetPlanMissing(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetPlan(context.Background(), "absent"); err == nil {
		t.Fatal("want error for a missing plan")
	}
}
