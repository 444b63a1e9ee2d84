package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 0.7, cfg.Moderation.ConfidenceThreshold)
	assert.Equal(t, "ESV", cfg.Scripture.DefaultBibleVersion)
	assert.True(t, cfg.Features.AIModeration)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pneuma.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
llm:
  provider: gemini
  gemini_api_key: file-key
features:
  scripture_assistant: false
moderation:
  confidence_threshold: 0.8
`), 0o644))

	t.Setenv("PORT", "9100")
	t.Setenv("ENABLE_AI_MODERATION", "false")
	t.Setenv("DEFAULT_BIBLE_VERSION", "NIV")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.False(t, cfg.Features.AIModeration)
	assert.False(t, cfg.Features.ScriptureAssistant)
	assert.True(t, cfg.Features.CommunityAITools)
	assert.Equal(t, 0.8, cfg.Moderation.ConfidenceThreshold)
	assert.Equal(t, "NIV", cfg.Scripture.DefaultBibleVersion)

	llmCfg := cfg.LLMClientConfig()
	assert.Equal(t, "gemini", llmCfg.Provider)
	assert.Equal(t, "file-key", llmCfg.APIKey)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("anthropic key is used for the anthropic provider", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "ant-key")

		cfg := DefaultConfig()
		require.NoError(t, cfg.applyEnvOverrides())
		assert.Equal(t, "ant-key", cfg.LLMClientConfig().APIKey)
	})

	t.Run("build info", func(t *testing.T) {
		t.Setenv("NEXT_PUBLIC_VERCEL_GIT_COMMIT_SHA", "0123456789")
		t.Setenv("NEXT_PUBLIC_BETA", "true")

		cfg := DefaultConfig()
		require.NoError(t, cfg.applyEnvOverrides())
		assert.Equal(t, "0123456789", cfg.Build.SHA)
		assert.True(t, cfg.Build.Beta)
	})

	t.Run("bad boolean", func(t *testing.T) {
		t.Setenv("ENABLE_COMMUNITY_AI_TOOLS", "sometimes")

		cfg := DefaultConfig()
		assert.Error(t, cfg.applyEnvOverrides())
	})
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Moderation.ConfidenceThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.LLM.Provider = "openai"
	assert.Error(t, cfg.Validate())
}
