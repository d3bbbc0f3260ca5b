package caravan

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestSynthesizeCombinesResults(t *testing.T) {
	provider := &fakeProvider{responses: []ChatResponse{
		{Content: `{"final_result": "three perfect days"}`},
	}}
	s := &Synthesizer{Model: fakeModel(Gemini25Pro, provider)}

	record := &PlanRecord{
		ID:       NewID(),
		Language: LanguageEnglish,
		Messages: []RecordMessage{
			{Role: RoleSystem, Content: PlainContent("orchestrate")},
			{Role: RoleUser, Content: PlainContent("plan my trip")},
		},
	}

	results := []Context{
		{TaskID: "t1", AgentType: AgentFood, Content: "ramen crawl"},
		{TaskID: "t2", AgentType: AgentNature, Content: "garden walk"},
	}

	final, err := s.Synthesize(context.Background(), record, testPack().Synthesis, results)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if final != "three perfect days" {
		t.Fatalf("final = %q", final)
	}

	// The synthesis prompt embeds every completed context by task id.
	req := provider.request(0)
	prompt := req.Messages[len(req.Messages)-1].Content
	for _, want := range []string{`"t1"`, "ramen crawl", `"t2"`, "garden walk"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("synthesis prompt missing %q:\n%s", want, prompt)
		}
	}

	// The call replays the recorded trace before the synthesis prompt.
	if len(req.Messages) != 3 {
		t.Fatalf("messages = %d, want replayed trace + prompt", len(req.Messages))
	}
	if req.ResponseSchema == nil || req.ResponseSchema.Name != "synthesize_tasks" {
		t.Fatalf("schema = %+v", req.ResponseSchema)
	}
	if req.GenerationParams == nil || req.GenerationParams.Temperature == nil || *req.GenerationParams.Temperature != TemperatureLow {
		t.Fatalf("params = %+v", req.GenerationParams)
	}
}

func TestSynthesizeExtendsRecord(t *testing.T) {
	provider := &fakeProvider{responses: []ChatResponse{
		{Content: `{"final_result": "done"}`},
	}}
	s := &Synthesizer{Model: fakeModel(Gemini25Pro, provider)}

	record := &PlanRecord{
		ID: NewID(),
		Messages: []RecordMessage{
			{Role: RoleSystem, Content: PlainContent("orchestrate")},
		},
	}

	if _, err := s.Synthesize(context.Background(), record, "combine: $RESULTS", nil); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if len(record.Messages) != 3 {
		t.Fatalf("messages = %d, want synthesis user + assistant appended", len(record.Messages))
	}
	if record.Messages[1].Role != RoleUser {
		t.Fatalf("second message role = %s", record.Messages[1].Role)
	}
	assistant := record.Messages[2]
	if assistant.Role != RoleAssistant || assistant.Content.Dynamic == nil {
		t.Fatalf("assistant message = %+v", assistant)
	}
	var final FinalResult
	if err := json.Unmarshal(assistant.Content.Dynamic, &final); err != nil {
		t.Fatalf("decode assistant content: %v", err)
	}
	if final.FinalResult != "done" {
		t.Fatalf("assistant content = %+v", final)
	}

	if len(record.Dumps) != 1 || !record.Dumps[0].IsFinalResult {
		t.Fatalf("dumps = %+v, want one final-result dump", record.Dumps)
	}
}

func TestSynthesizeFailsOnUndecodableOutput(t *testing.T) {
	provider := &fakeProvider{responses: []ChatResponse{{Content: "not json"}}}
	s := &Synthesizer{Model: fakeModel(Gemini25Pro, provider)}

	record := &PlanRecord{ID: NewID()}
	if _, err := s.Synthesize(context.Background(), record, "combine: $RESULTS", nil); err == nil {
		t.Fatal("want error for undecodable synthesis output")
	}
}
