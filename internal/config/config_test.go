package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(AgentIDEnv, "")
	t.Setenv(AgentKeyEnv, "")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.Root))
	assert.Equal(t, "index.html", cfg.Entry.Name)
	assert.Equal(t, []string{"index.html", "demo2/index.html"}, cfg.Entry.Candidates)
	assert.Equal(t, "phaser", cfg.Engine.Marker)
	assert.Equal(t, "main.js", cfg.MainScript.Marker)
	assert.Equal(t, []string{"BootScene", "MainScene", "GameOverScene"}, cfg.MainScript.Identifiers)
	assert.Equal(t, []string{"http://", "https://"}, cfg.RemoteSchemes)
	assert.Equal(t, 30*time.Second, cfg.Agent.Timeout)
	assert.Equal(t, "text", cfg.Format)
	assert.Empty(t, cfg.Agent.ID)
	assert.Empty(t, cfg.Agent.APIKey)
	assert.Equal(t, filepath.Join(cfg.Root, "cursor_agent_followup.txt"), cfg.FallbackPath())
}

func TestLoadAgentCredentialsFromEnv(t *testing.T) {
	t.Setenv(AgentIDEnv, "bc-123")
	t.Setenv(AgentKeyEnv, "key_abc")
	t.Setenv("GAMECHECK_AGENT_TIMEOUT", "5s")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "bc-123", cfg.Agent.ID)
	assert.Equal(t, "key_abc", cfg.Agent.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Agent.Timeout)
}

func TestReadFileOptional(t *testing.T) {
	fs := afero.NewMemMapFs()
	v := New()

	require.NoError(t, ReadFile(v, fs, "", "/game"))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "phaser", cfg.Engine.Marker)
}

func TestReadFileOverrides(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/game/gamecheck.yaml", []byte(`
root: /game
engine:
  name: Pixi
  marker: pixi
main_script:
  marker: app.js
  identifiers: [Boot, Play, End]
escalation:
  fallback_file: /tmp/followup.txt
`), 0644))

	v := New()
	require.NoError(t, ReadFile(v, fs, "", "/game"))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/game", cfg.Root)
	assert.Equal(t, "Pixi", cfg.EngineLabel())
	assert.Equal(t, "app.js", cfg.MainScript.Marker)
	assert.Equal(t, []string{"Boot", "Play", "End"}, cfg.MainScript.Identifiers)
	assert.Equal(t, "/tmp/followup.txt", cfg.FallbackPath())
}

func TestReadFileExplicitMissing(t *testing.T) {
	err := ReadFile(New(), afero.NewMemMapFs(), "/nope/gamecheck.yaml", "/game")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg, err := Load(New())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty entry name", func(c *Config) { c.Entry.Name = "" }, "entry.name"},
		{"no candidates", func(c *Config) { c.Entry.Candidates = nil }, "entry.candidates"},
		{"no engine marker", func(c *Config) { c.Engine.Marker = "" }, "engine.marker"},
		{"two identifiers", func(c *Config) { c.MainScript.Identifiers = []string{"A", "B"} }, "exactly 3"},
		{"zero timeout", func(c *Config) { c.Agent.Timeout = 0 }, "agent.timeout"},
		{"bad format", func(c *Config) { c.Format = "xml" }, "invalid output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestEngineLabelFallsBackToMarker(t *testing.T) {
	cfg := Config{Engine: EngineConfig{Marker: "phaser"}}
	assert.Equal(t, "phaser", cfg.EngineLabel())
}
