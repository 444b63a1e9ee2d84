// Package config loads pneuma settings from an optional YAML file, then the
// environment. Environment variables win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/autopneuma/pneuma/internal/apiclient"
	"github.com/autopneuma/pneuma/internal/contracts"
	"github.com/autopneuma/pneuma/internal/llm"
	"github.com/autopneuma/pneuma/internal/moderation"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	LLM        LLMConfig        `yaml:"llm"`
	Features   FeatureConfig    `yaml:"features"`
	Moderation ModerationConfig `yaml:"moderation"`
	Scripture  ScriptureConfig  `yaml:"scripture"`
	Supabase   SupabaseConfig   `yaml:"supabase"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Build      BuildConfig      `yaml:"build"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
	// APIURL is where clients reach the AI backend.
	APIURL string `yaml:"api_url"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LLMConfig struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	AnthropicKey string `yaml:"anthropic_api_key"`
	GeminiKey    string `yaml:"gemini_api_key"`
}

type FeatureConfig struct {
	AIModeration       bool `yaml:"ai_moderation"`
	ScriptureAssistant bool `yaml:"scripture_assistant"`
	CommunityAITools   bool `yaml:"community_ai_tools"`
}

type ModerationConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

type ScriptureConfig struct {
	DefaultBibleVersion string `yaml:"default_bible_version"`
}

type SupabaseConfig struct {
	URL            string `yaml:"url"`
	AnonKey        string `yaml:"anon_key"`
	ServiceRoleKey string `yaml:"service_role_key"`
}

type EmbeddingsConfig struct {
	VoyageKey string `yaml:"voyage_api_key"`
}

type BuildConfig struct {
	SHA  string `yaml:"sha"`
	Time string `yaml:"time"`
	Beta bool   `yaml:"beta"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func DefaultConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8000, APIURL: apiclient.DefaultBaseURL},
		Database: DatabaseConfig{Path: "pneuma.db"},
		LLM:      LLMConfig{Provider: "anthropic"},
		Features: FeatureConfig{
			AIModeration:       true,
			ScriptureAssistant: true,
			CommunityAITools:   true,
		},
		Moderation: ModerationConfig{ConfidenceThreshold: moderation.DefaultThreshold},
		Scripture:  ScriptureConfig{DefaultBibleVersion: contracts.DefaultBibleVersion},
		Logging:    LoggingConfig{Level: "info"},
	}
}

// Load reads path when it exists, then applies the environment. An empty
// path means defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("NEXT_PUBLIC_API_URL"); v != "" {
		c.Server.APIURL = v
	}
	if v := os.Getenv("PNEUMA_DB"); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.LLM.AnthropicKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.GeminiKey = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}

	for env, dst := range map[string]*bool{
		"ENABLE_AI_MODERATION":       &c.Features.AIModeration,
		"ENABLE_SCRIPTURE_ASSISTANT": &c.Features.ScriptureAssistant,
		"ENABLE_COMMUNITY_AI_TOOLS":  &c.Features.CommunityAITools,
		"NEXT_PUBLIC_BETA":           &c.Build.Beta,
	} {
		if v := os.Getenv(env); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", env, err)
			}
			*dst = b
		}
	}

	if v := os.Getenv("MODERATION_CONFIDENCE_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MODERATION_CONFIDENCE_THRESHOLD: %w", err)
		}
		c.Moderation.ConfidenceThreshold = f
	}
	if v := os.Getenv("DEFAULT_BIBLE_VERSION"); v != "" {
		c.Scripture.DefaultBibleVersion = v
	}

	if v := os.Getenv("NEXT_PUBLIC_SUPABASE_URL"); v != "" {
		c.Supabase.URL = v
	}
	if v := os.Getenv("NEXT_PUBLIC_SUPABASE_ANON_KEY"); v != "" {
		c.Supabase.AnonKey = v
	}
	if v := os.Getenv("SUPABASE_SERVICE_ROLE_KEY"); v != "" {
		c.Supabase.ServiceRoleKey = v
	}
	if v := os.Getenv("VOYAGE_API_KEY"); v != "" {
		c.Embeddings.VoyageKey = v
	}

	if v := os.Getenv("NEXT_PUBLIC_VERCEL_GIT_COMMIT_SHA"); v != "" {
		c.Build.SHA = v
	}
	if v := os.Getenv("NEXT_PUBLIC_BUILD_TIME"); v != "" {
		c.Build.Time = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if t := c.Moderation.ConfidenceThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("moderation confidence threshold %v must be in (0, 1]", t)
	}
	switch c.LLM.Provider {
	case "anthropic", "gemini":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	return nil
}

// LLMClientConfig returns the settings of the selected provider
func (c *Config) LLMClientConfig() llm.Config {
	cfg := llm.Config{Provider: c.LLM.Provider, Model: c.LLM.Model, APIKey: c.LLM.AnthropicKey}
	if c.LLM.Provider == "gemini" {
		cfg.APIKey = c.LLM.GeminiKey
	}
	return cfg
}

// AIEnabled reports whether any LLM-backed feature is on
func (c *Config) AIEnabled() bool {
	return c.Features.AIModeration || c.Features.ScriptureAssistant
}
