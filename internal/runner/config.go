package runner

import (
	"fmt"
	"os"
	"strconv"
)

// Modes select how a run receives node results from the engine.
const (
	ModeStream = "stream"
	ModeBatch  = "batch"
)

// Config holds run orchestration settings.
type Config struct {
	Mode          string `toml:"mode"`
	SkipPreflight bool   `toml:"skip_preflight"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Mode          string
	SkipPreflight string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.SkipPreflight {
		c.SkipPreflight = true
	}
}

func (c *Config) loadDefaults() {
	if c.Mode == "" {
		c.Mode = ModeStream
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Mode != "" {
		if v := os.Getenv(env.Mode); v != "" {
			c.Mode = v
		}
	}
	if env.SkipPreflight != "" {
		if v := os.Getenv(env.SkipPreflight); v != "" {
			if skip, err := strconv.ParseBool(v); err == nil {
				c.SkipPreflight = skip
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Mode != ModeStream && c.Mode != ModeBatch {
		return fmt.Errorf("invalid mode %q: must be %s or %s", c.Mode, ModeStream, ModeBatch)
	}
	return nil
}
