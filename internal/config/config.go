package config

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/agentflow/internal/runner"
	"github.com/JaimeStill/agentflow/pkg/client"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvAgentflowEnv             = "AGENTFLOW_ENV"
	EnvAgentflowShutdownTimeout = "AGENTFLOW_SHUTDOWN_TIMEOUT"
	EnvAgentflowVersion         = "AGENTFLOW_VERSION"
)

var engineEnv = &client.Env{
	BaseURL: "AGENTFLOW_ENGINE_URL",
	Timeout: "AGENTFLOW_ENGINE_TIMEOUT",
}

var runnerEnv = &runner.Env{
	Mode:          "AGENTFLOW_RUNNER_MODE",
	SkipPreflight: "AGENTFLOW_RUNNER_SKIP_PREFLIGHT",
}

// Config is the root configuration for the AgentFlow editor service.
type Config struct {
	Server          ServerConfig  `toml:"server"`
	Engine          client.Config `toml:"engine"`
	Runner          runner.Config `toml:"runner"`
	Editor          EditorConfig  `toml:"editor"`
	API             APIConfig     `toml:"api"`
	ShutdownTimeout string        `toml:"shutdown_timeout"`
	Version         string        `toml:"version"`
}

// Env returns the AGENTFLOW_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvAgentflowEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Engine.Merge(&overlay.Engine)
	c.Runner.Merge(&overlay.Runner)
	c.Editor.Merge(&overlay.Editor)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Engine.Finalize(engineEnv); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.Runner.Finalize(runnerEnv); err != nil {
		return fmt.Errorf("runner: %w", err)
	}
	if err := c.Editor.Finalize(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAgentflowShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvAgentflowVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvAgentflowEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
