// Command caravan runs the travel-planning Discord service: a signed
// interaction endpoint in front of the multi-agent planning pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	caravan "github.com/nevindra/caravan"
	"github.com/nevindra/caravan/discord"
	"github.com/nevindra/caravan/internal/config"
	"github.com/nevindra/caravan/maps/googlemaps"
	"github.com/nevindra/caravan/observer"
	"github.com/nevindra/caravan/provider/openaicompat"
	"github.com/nevindra/caravan/provider/openairesponses"
	mongostore "github.com/nevindra/caravan/store/mongo"
	"github.com/nevindra/caravan/store/sqlite"
)

// API bases for the configured model vendors.
const (
	openAIBaseURL     = "https://api.openai.com/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	deepSeekBaseURL   = "https://api.deepseek.com"
	moonshotBaseURL   = "https://api.moonshot.cn/v1"
	stepFunBaseURL    = "https://api.stepfun.com/v1"
	zhipuBaseURL      = "https://open.bigmodel.cn/api/paas/v4"
	volcEngineBaseURL = "https://ark.cn-beijing.volces.com/api/v3"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var inst *observer.Instruments
	if cfg.Observer.Enabled {
		instruments, shutdown, err := observer.Init(ctx)
		if err != nil {
			return fmt.Errorf("init observability: %w", err)
		}
		inst = instruments
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Warn("observability shutdown failed", "error", err)
			}
		}()
	}

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client := discord.NewClient(cfg.Discord.BotToken, cfg.Discord.ApplicationID)
	app, err := client.AppInfo(ctx)
	if err != nil {
		return fmt.Errorf("fetching application info: %w", err)
	}
	slog.Info("authenticated", "application", app.Name)

	mapsClient := googlemaps.NewClient(cfg.Keys.Google)
	prompts := buildPromptSet(cfg)

	wrap := func(p caravan.Provider, id caravan.ModelID) caravan.Provider {
		if inst == nil {
			return p
		}
		return observer.WrapProvider(p, id, inst)
	}
	openRouter := func(id caravan.ModelID, opts ...openaicompat.Option) caravan.Model {
		p := openaicompat.NewProvider(cfg.Keys.OpenRouter, string(id), openRouterBaseURL,
			openaicompat.WithName("openrouter"), openaicompat.WithOptions(opts...))
		return caravan.Model{ID: id, Provider: wrap(p, id)}
	}
	compat := func(id caravan.ModelID, key, baseURL, name string) caravan.Model {
		p := openaicompat.NewProvider(key, string(id), baseURL, openaicompat.WithName(name))
		return caravan.Model{ID: id, Provider: wrap(p, id)}
	}

	classifierModel := compat(caravan.GPT41, cfg.Keys.OpenAI, openAIBaseURL, "openai")
	plannerModel := openRouter(caravan.Gemini25Pro)
	namingModel := openRouter(caravan.Gemini25Flash)
	agentModel := openRouter(caravan.Sonnet4)

	o3 := openairesponses.NewProvider(cfg.Keys.OpenAI, string(caravan.O3), openAIBaseURL)
	fanout := []caravan.Model{
		compat(caravan.ChatGPT4oLatest, cfg.Keys.OpenAI, openAIBaseURL, "openai"),
		{ID: caravan.O3, Provider: wrap(o3, caravan.O3)},
		openRouter(caravan.Grok4),
		openRouter(caravan.QwenMax),
		openRouter(caravan.MistralLarge),
		openRouter(caravan.MinimaxM1),
		openRouter(caravan.Ernie45),
		// DeepSeek through OpenRouter must not silently fall back to
		// other upstreams.
		openRouter(caravan.DeepSeekV3, openaicompat.WithProviderOrder("DeepSeek")),
		compat(caravan.DeepSeekR1, cfg.Keys.DeepSeek, deepSeekBaseURL, "deepseek"),
		compat(caravan.KimiLatest, cfg.Keys.Moonshot, moonshotBaseURL, "moonshot"),
		compat(caravan.Step216K, cfg.Keys.StepFun, stepFunBaseURL, "stepfun"),
		compat(caravan.GLM4Plus, cfg.Keys.Zhipu, zhipuBaseURL, "zhipu"),
		compat(caravan.DoubaoSeed16, cfg.Keys.VolcEngine, volcEngineBaseURL, "volcengine"),
	}

	flow := &caravan.Flow{
		Classifier: &caravan.LanguageClassifier{
			Model:  classifierModel,
			Prompt: prompts.Triage,
		},
		Planner:     &caravan.Planner{Model: plannerModel},
		NamingModel: namingModel,
		Scheduler: &caravan.Scheduler{
			Surface:      client,
			FanoutModels: fanout,
			AgentModel:   agentModel,
			Maps:         mapsClient,
			App:          app,
		},
		Synthesizer: &caravan.Synthesizer{Model: plannerModel},
		Surface:     client,
		Store:       store,
		Prompts:     prompts,
	}

	var runner discord.PlanRunner = flow
	if inst != nil {
		runner = observer.WrapFlow(flow, inst)
	}
	handler := discord.NewHandler(runner, client, slog.Default())
	mux := http.NewServeMux()
	mux.Handle("POST /api/discord/interaction",
		discord.VerifySignature(cfg.Discord.ApplicationPublicKey, slog.Default(), handler))

	addr := net.JoinHostPort(cfg.ServerBindPoint, cfg.ServerAddress)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func buildStore(ctx context.Context, cfg config.Config) (caravan.RecordStore, func(), error) {
	if cfg.Database.Driver == "mongo" {
		client, err := mongodriver.Connect(options.Client().ApplyURI(cfg.Database.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to mongo: %w", err)
		}
		store, err := mongostore.NewStore(mongostore.Options{Client: client, Database: cfg.Database.Database})
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		return store, closer, nil
	}

	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func buildPromptSet(cfg config.Config) *caravan.PromptSet {
	return &caravan.PromptSet{
		English:  buildLanguagePack(cfg.English),
		Chinese:  buildLanguagePack(cfg.Chinese),
		Japanese: buildLanguagePack(cfg.Japanese),
		Triage:   cfg.LanguageTriagePrompt,
	}
}

func buildLanguagePack(lc config.LanguageConfig) caravan.LanguagePack {
	return caravan.LanguagePack{
		Orchestrator:        lc.Orchestrator.Prompt,
		Naming:              lc.Naming.Prompt,
		Synthesis:           lc.Synthesis.Prompt,
		Agent:               lc.Agent.Prompt,
		TransportAgent:      lc.TransportAgent.Prompt,
		TransportMaximumTry: lc.TransportAgentMaximumTry.Prompt,
		Agents: map[caravan.Agent]caravan.AgentPrompts{
			caravan.AgentFood:      {System: lc.Food.SystemPrompt, User: lc.Food.UserPrompt},
			caravan.AgentHistory:   {System: lc.History.SystemPrompt, User: lc.History.UserPrompt},
			caravan.AgentModern:    {System: lc.Modern.SystemPrompt, User: lc.Modern.UserPrompt},
			caravan.AgentNature:    {System: lc.Nature.SystemPrompt, User: lc.Nature.UserPrompt},
			caravan.AgentTransport: {System: lc.Transport.SystemPrompt, User: lc.Transport.UserPrompt},
		},
	}
}
