// Package config loads the service configuration: defaults, then the TOML
// file, then environment variables (env wins).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full service configuration.
type Config struct {
	ServerBindPoint      string `toml:"server_bind_point"`
	ServerAddress        string `toml:"server_address"`
	LogLevel             string `toml:"log_level"`
	LanguageTriagePrompt string `toml:"language_triage_prompt"`

	English  LanguageConfig `toml:"english"`
	Chinese  LanguageConfig `toml:"chinese"`
	Japanese LanguageConfig `toml:"japanese"`

	Discord  DiscordConfig  `toml:"discord"`
	Keys     KeysConfig     `toml:"keys"`
	Database DatabaseConfig `toml:"database"`
	Observer ObserverConfig `toml:"observer"`
}

// LanguageConfig is one language's prompt pack.
type LanguageConfig struct {
	Orchestrator             Prompt `toml:"orchestrator"`
	Naming                   Prompt `toml:"naming"`
	Synthesis                Prompt `toml:"synthesis"`
	Agent                    Prompt `toml:"agent"`
	TransportAgent           Prompt `toml:"transport_agent"`
	TransportAgentMaximumTry Prompt `toml:"transport_agent_maximum_try"`

	Food      AgentPrompts `toml:"food"`
	History   AgentPrompts `toml:"history"`
	Modern    AgentPrompts `toml:"modern"`
	Nature    AgentPrompts `toml:"nature"`
	Transport AgentPrompts `toml:"transport"`
}

// Prompt is a single named prompt.
type Prompt struct {
	Prompt string `toml:"prompt"`
}

// AgentPrompts is an agent's system/user prompt pair.
type AgentPrompts struct {
	SystemPrompt string `toml:"system_prompt"`
	UserPrompt   string `toml:"user_prompt"`
}

// DiscordConfig identifies the bot.
type DiscordConfig struct {
	BotToken             string `toml:"bot_token"`
	ApplicationID        string `toml:"application_id"`
	ApplicationPublicKey string `toml:"application_public_key"`
}

// KeysConfig holds the upstream API keys.
type KeysConfig struct {
	Google     string `toml:"google_api_key"`
	OpenAI     string `toml:"openai_api_key"`
	OpenRouter string `toml:"open_router_api_key"`
	VolcEngine string `toml:"volc_engine_api_key"`
	Moonshot   string `toml:"moonshot_api_key"`
	StepFun    string `toml:"step_fun_api_key"`
	Zhipu      string `toml:"zhipu_api_key"`
	DeepSeek   string `toml:"deep_seek_api_key"`
}

// DatabaseConfig selects the record store. Driver is "sqlite" or "mongo".
type DatabaseConfig struct {
	Driver   string `toml:"driver"`
	Path     string `toml:"path"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ObserverConfig toggles OTEL export.
type ObserverConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		ServerBindPoint: "0.0.0.0",
		ServerAddress:   "8080",
		LogLevel:        "info",
		Database:        DatabaseConfig{Driver: "sqlite", Path: "caravan.db"},
	}
}

// Load reads the config file named by CONFIG_DIRECTORY and
// CONFIG_FILE_NAME (falling back to ./config.toml) and applies environment
// overrides. The file must exist; the prompt packs cannot be defaulted.
func Load() (Config, error) {
	dir := os.Getenv("CONFIG_DIRECTORY")
	name := os.Getenv("CONFIG_FILE_NAME")
	if name == "" {
		name = "config.toml"
	}
	return LoadFile(filepath.Join(dir, name))
}

// LoadFile reads the config at path and applies environment overrides.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	// Env overrides
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SERVER_BIND_POINT"); v != "" {
		cfg.ServerBindPoint = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.ServerAddress = v
	}
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Discord.BotToken = v
	}
	if v := os.Getenv("APPLICATION_ID"); v != "" {
		cfg.Discord.ApplicationID = v
	}
	if v := os.Getenv("APPLICATION_PUBLIC_KEY"); v != "" {
		cfg.Discord.ApplicationPublicKey = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.Keys.Google = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Keys.OpenAI = v
	}
	if v := os.Getenv("OPEN_ROUTER_API_KEY"); v != "" {
		cfg.Keys.OpenRouter = v
	}
	if v := os.Getenv("VOLC_ENGINE_API_KEY"); v != "" {
		cfg.Keys.VolcEngine = v
	}
	if v := os.Getenv("MOONSHOT_API_KEY"); v != "" {
		cfg.Keys.Moonshot = v
	}
	if v := os.Getenv("STEP_FUN_API_KEY"); v != "" {
		cfg.Keys.StepFun = v
	}
	if v := os.Getenv("ZHIPU_API_KEY"); v != "" {
		cfg.Keys.Zhipu = v
	}
	if v := os.Getenv("DEEP_SEEK_API_KEY"); v != "" {
		cfg.Keys.DeepSeek = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		cfg.Database.Driver = "mongo"
		cfg.Database.MongoURI = v
	}
	if v := os.Getenv("PROJECT_ID"); v != "" && cfg.Database.Database == "" {
		cfg.Database.Database = v
	}
	if cfg.Database.Database == "" {
		cfg.Database.Database = "travel_agency"
	}

	return cfg, nil
}
