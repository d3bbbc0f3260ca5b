package caravan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// defaultStagger spaces out worker launches to avoid bursting every
// provider at once.
const defaultStagger = time.Second

// progressBoard owns the single status embed posted to the working thread.
// Every mutation appends a line to the description under the mutex and
// pushes the edit to the surface.
type progressBoard struct {
	surface   ChatSurface
	channelID string
	messageID string

	mu    sync.Mutex
	embed Embed
}

func (b *progressBoard) appendLine(ctx context.Context, line string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.embed.Description += "\n" + line
	return b.surface.EditEmbed(ctx, b.channelID, b.messageID, b.embed)
}

// Scheduler runs every task of a validated plan concurrently, gated only by
// each task's dependency set, and narrates progress into the thread's
// status embed.
type Scheduler struct {
	Surface      ChatSurface
	FanoutModels []Model
	AgentModel   Model
	Maps         MapsClient
	App          AppInfo

	// Stagger is the delay between worker launches. Zero means
	// defaultStagger.
	Stagger time.Duration
	// CallTimeout is forwarded to each Executor.
	CallTimeout time.Duration
	Logger      *slog.Logger
}

// Run executes the plan's tasks in the given thread and returns the
// completed contexts plus every generation dump. An empty task list returns
// immediately with no progress message.
func (s *Scheduler) Run(ctx context.Context, plan OrchestrationPlan, pack LanguagePack, language Language, threadID string) ([]Context, []GenerationDump, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(plan.Tasks) == 0 {
		return nil, nil, nil
	}

	board, err := s.postBoard(ctx, plan, threadID)
	if err != nil {
		return nil, nil, err
	}

	contexts := NewContextMap()
	stagger := s.Stagger
	if stagger <= 0 {
		stagger = defaultStagger
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		results  []Context
		allDumps []GenerationDump
	)

	for i, task := range plan.Tasks {
		executor := s.buildExecutor(task, pack, language, logger)

		if err := board.appendLine(ctx, fmt.Sprintf("Executing %s with %s Agent...", task.TaskID, task.Agent)); err != nil {
			cancel()
			wg.Wait()
			return nil, nil, fmt.Errorf("updating progress embed: %w", err)
		}

		wg.Add(1)
		go func(executor *Executor) {
			defer wg.Done()
			result, dumps, err := executor.Execute(runCtx, contexts)

			mu.Lock()
			allDumps = append(allDumps, dumps...)
			if result != nil {
				results = append(results, *result)
			}
			mu.Unlock()

			if err != nil {
				logger.Error("subtask failed", "task", executor.TaskID, "agent", executor.AgentType, "error", err)
				return
			}
			if result != nil {
				if err := board.appendLine(runCtx, fmt.Sprintf("✅ %s completed.", executor.TaskID)); err != nil {
					logger.Warn("progress embed update failed", "task", executor.TaskID, "error", err)
				}
			}
		}(executor)

		if i < len(plan.Tasks)-1 {
			select {
			case <-time.After(stagger):
			case <-ctx.Done():
			}
		}
	}
	wg.Wait()

	if err := board.appendLine(ctx, "🔄 Synthesizing final result..."); err != nil {
		return nil, nil, fmt.Errorf("updating progress embed: %w", err)
	}

	return results, allDumps, nil
}

func (s *Scheduler) postBoard(ctx context.Context, plan OrchestrationPlan, threadID string) (*progressBoard, error) {
	embed := Embed{
		Title: "Execution Plan",
		Description: fmt.Sprintf("- Analysis: %s\n- Number of tasks: %d\n\n🚀 Executing tasks...",
			plan.Analysis, len(plan.Tasks)),
		Color:      EmbedColor,
		AuthorName: s.App.Name,
		AuthorIcon: s.App.AvatarURL(),
	}
	messageID, err := s.Surface.SendEmbed(ctx, threadID, embed)
	if err != nil {
		return nil, fmt.Errorf("posting execution plan embed: %w", err)
	}
	return &progressBoard{surface: s.Surface, channelID: threadID, messageID: messageID, embed: embed}, nil
}

func (s *Scheduler) buildExecutor(task Task, pack LanguagePack, language Language, logger *slog.Logger) *Executor {
	prompts := pack.Agents[task.Agent]
	executor := &Executor{
		TaskID:       task.TaskID,
		AgentType:    task.Agent,
		Dependencies: task.Dependencies,
		SystemPrompt: prompts.System,
		UserPrompt:   fill(prompts.User, "$INSTRUCTION", task.Instruction),
		AgentPrompt:  pack.Agent,
		FanoutModels: s.FanoutModels,
		AgentModel:   s.AgentModel,
		Maps:         s.Maps,
		Language:     language,
		CallTimeout:  s.CallTimeout,
		Logger:       logger,
	}
	if task.Agent == AgentTransport {
		executor.TransportPrompt = pack.TransportAgent
		executor.TransportMaximumTry = pack.TransportMaximumTry
		tool := getTransitTimeTool
		executor.Tool = &tool
	}
	return executor
}
