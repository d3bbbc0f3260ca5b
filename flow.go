package caravan

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// defaultPlanDeadline bounds a whole plan run. Without it a worker stuck on
// an unsatisfiable dependency would hold its goroutine forever.
const defaultPlanDeadline = 30 * time.Minute

// PlanRequest carries everything the flow needs from a received slash
// command interaction.
type PlanRequest struct {
	InteractionToken string
	ChannelID        string
	UserPrompt       string
}

// Flow is the full lifecycle of one travel plan: classify, plan, greet,
// open a thread, execute, synthesize, persist, deliver. One Flow serves all
// plans; each Run call is independent.
type Flow struct {
	Classifier  *LanguageClassifier
	Planner     *Planner
	NamingModel Model
	Scheduler   *Scheduler
	Synthesizer *Synthesizer
	Surface     ChatSurface
	Store       RecordStore
	Prompts     *PromptSet

	// Deadline bounds the whole run. Zero means defaultPlanDeadline.
	Deadline time.Duration
	Logger   *slog.Logger
}

// Run executes one plan to completion. It is called on its own goroutine
// after the interaction has been acknowledged; errors are returned for the
// caller to log, nothing is retried.
func (f *Flow) Run(ctx context.Context, req PlanRequest) error {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}

	deadline := f.Deadline
	if deadline <= 0 {
		deadline = defaultPlanDeadline
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	language := f.Classifier.Classify(ctx, req.UserPrompt)
	pack := f.Prompts.ForLanguage(language)
	logger = logger.With("language", language)

	plan, err := f.Planner.Plan(ctx, pack.Orchestrator, req.UserPrompt)
	greeting := plan.GreetingMessage
	if err != nil {
		logger.Error("planning failed", "error", err)
		greeting = err.Error()
		plan = OrchestrationPlan{}
	}

	record := &PlanRecord{
		ID:       NewID(),
		Language: language,
		Messages: []RecordMessage{
			{Role: RoleSystem, Content: PlainContent(pack.Orchestrator)},
			{Role: RoleUser, Content: PlainContent(req.UserPrompt)},
		},
		Dumps: []GenerationDump{
			{Model: f.Planner.Model.ID, Content: mustPrettyJSON(plan)},
		},
	}
	planContent, err := DynamicContent(plan)
	if err != nil {
		return err
	}
	record.Messages = append(record.Messages, RecordMessage{Role: RoleAssistant, Content: planContent})

	edited, err := f.Surface.EditOriginal(ctx, req.InteractionToken, greeting)
	if err != nil {
		return fmt.Errorf("editing greeting: %w", err)
	}

	title, err := f.nameThread(ctx, pack, greeting)
	if err != nil {
		return fmt.Errorf("naming thread: %w", err)
	}
	threadID, err := f.Surface.CreateThread(ctx, edited.ChannelID, edited.ID, title)
	if err != nil {
		return fmt.Errorf("creating thread: %w", err)
	}
	logger = logger.With("plan", record.ID, "thread", threadID)

	results, dumps, err := f.Scheduler.Run(ctx, plan, pack, language, threadID)
	if err != nil {
		return fmt.Errorf("executing plan: %w", err)
	}
	record.Dumps = append(record.Dumps, dumps...)

	if len(plan.Tasks) == 0 {
		logger.Info("plan had no tasks, nothing to synthesize")
		return nil
	}

	final, err := f.Synthesizer.Synthesize(ctx, record, pack.Synthesis, results)
	if err != nil {
		return fmt.Errorf("synthesizing: %w", err)
	}

	if err := f.Store.PutPlan(ctx, *record); err != nil {
		return fmt.Errorf("persisting plan record: %w", err)
	}
	mapping := PlanMapping{
		PlanID:            record.ID,
		ThreadID:          threadID,
		ChannelID:         edited.ChannelID,
		OriginalMessageID: edited.ID,
	}
	if err := f.Store.PutMapping(ctx, mapping); err != nil {
		return fmt.Errorf("persisting plan mapping: %w", err)
	}

	for _, chunk := range SplitMessage(final, messageChunkLimit) {
		if _, err := f.Surface.SendMessage(ctx, threadID, chunk); err != nil {
			return fmt.Errorf("sending final result: %w", err)
		}
	}

	logger.Info("plan delivered")
	return nil
}

// nameThread produces the working thread's title from the greeting in the
// user's language.
func (f *Flow) nameThread(ctx context.Context, pack LanguagePack, greeting string) (string, error) {
	resp, err := f.NamingModel.Provider.Chat(ctx, ChatRequest{
		Messages:         OneShot(pack.Naming, greeting),
		GenerationParams: &GenerationParams{Temperature: Float64(TemperatureMedium)},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
