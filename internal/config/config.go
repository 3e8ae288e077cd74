package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. GAMECHECK_ROOT.
	EnvPrefix = "GAMECHECK"

	// AgentIDEnv and AgentKeyEnv are the prerequisites for remote escalation.
	AgentIDEnv  = "CURSOR_AGENT_ID"
	AgentKeyEnv = "CURSOR_API_KEY"

	configName = "gamecheck"
)

// Config is the resolved configuration of a single self-test run.
type Config struct {
	Root          string           `mapstructure:"root"`
	Entry         EntryConfig      `mapstructure:"entry"`
	Engine        EngineConfig     `mapstructure:"engine"`
	MainScript    MainScriptConfig `mapstructure:"main_script"`
	Scripts       ScriptsConfig    `mapstructure:"scripts"`
	RemoteSchemes []string         `mapstructure:"remote_schemes"`
	Escalation    EscalationConfig `mapstructure:"escalation"`
	Agent         AgentConfig      `mapstructure:"agent"`
	Format        string           `mapstructure:"format"`
	NoEscalate    bool             `mapstructure:"no_escalate"`
}

type EntryConfig struct {
	Name       string   `mapstructure:"name"`
	Candidates []string `mapstructure:"candidates"`
}

type EngineConfig struct {
	Name   string `mapstructure:"name"`
	Marker string `mapstructure:"marker"`
}

type MainScriptConfig struct {
	Marker      string   `mapstructure:"marker"`
	Identifiers []string `mapstructure:"identifiers"`
}

type ScriptsConfig struct {
	Extension string `mapstructure:"extension"`
}

type EscalationConfig struct {
	FallbackFile string `mapstructure:"fallback_file"`
}

// AgentConfig holds the remote follow-up settings. ID and APIKey normally
// come from CURSOR_AGENT_ID and CURSOR_API_KEY.
type AgentConfig struct {
	ID      string        `mapstructure:"id"`
	APIKey  string        `mapstructure:"api_key"`
	APIURL  string        `mapstructure:"api_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// New returns a viper instance carrying defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// explicit names are used verbatim, without the prefix
	_ = v.BindEnv("agent.id", AgentIDEnv)
	_ = v.BindEnv("agent.api_key", AgentKeyEnv)

	return v
}

// SetDefaults registers the conventional project layout.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("root", ".")
	v.SetDefault("entry.name", "index.html")
	v.SetDefault("entry.candidates", []string{"index.html", "demo2/index.html"})
	v.SetDefault("engine.name", "Phaser")
	v.SetDefault("engine.marker", "phaser")
	v.SetDefault("main_script.marker", "main.js")
	v.SetDefault("main_script.identifiers", []string{"BootScene", "MainScene", "GameOverScene"})
	v.SetDefault("scripts.extension", ".js")
	v.SetDefault("remote_schemes", []string{"http://", "https://"})
	v.SetDefault("escalation.fallback_file", "cursor_agent_followup.txt")
	v.SetDefault("agent.api_url", "https://api.cursor.com")
	v.SetDefault("agent.timeout", "30s")
	v.SetDefault("format", "text")
	v.SetDefault("no_escalate", false)
}

// ReadFile merges an optional YAML config file. An explicit path must exist;
// otherwise gamecheck.yaml is looked up in root and silently skipped when absent.
func ReadFile(v *viper.Viper, fs afero.Fs, explicitPath, root string) error {
	v.SetFs(fs)
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(root)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitPath == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load decodes and validates the configuration. Root is made absolute.
func Load(v *viper.Viper) (Config, error) {
	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}

	root, err := filepath.Abs(out.Root)
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve game root: %w", err)
	}
	out.Root = root
	out.Format = strings.ToLower(out.Format)

	if err := out.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return out, nil
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	switch {
	case c.Entry.Name == "":
		return errors.New("entry.name must not be empty")
	case len(c.Entry.Candidates) == 0:
		return errors.New("entry.candidates must list at least one location")
	case c.Engine.Marker == "":
		return errors.New("engine.marker must not be empty")
	case c.MainScript.Marker == "":
		return errors.New("main_script.marker must not be empty")
	case len(c.MainScript.Identifiers) != 3:
		return fmt.Errorf("main_script.identifiers must list exactly 3 identifiers, got %d", len(c.MainScript.Identifiers))
	case c.Escalation.FallbackFile == "":
		return errors.New("escalation.fallback_file must not be empty")
	case c.Agent.Timeout <= 0:
		return errors.New("agent.timeout must be positive")
	}

	switch strings.ToLower(c.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output format: %s (supported: json, text)", c.Format)
	}
	return nil
}

// FallbackPath is where the remediation prompt is saved when it cannot be sent.
func (c Config) FallbackPath() string {
	if filepath.IsAbs(c.Escalation.FallbackFile) {
		return c.Escalation.FallbackFile
	}
	return filepath.Join(c.Root, c.Escalation.FallbackFile)
}

// EngineLabel is the display name used in engine check messages.
func (c Config) EngineLabel() string {
	if c.Engine.Name != "" {
		return c.Engine.Name
	}
	return c.Engine.Marker
}
