package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvEditorSnapGrid         = "AGENTFLOW_EDITOR_SNAP_GRID"
	EnvEditorSubscriberBuffer = "AGENTFLOW_EDITOR_SUBSCRIBER_BUFFER"
	EnvEditorEdgeValidation   = "AGENTFLOW_EDITOR_EDGE_VALIDATION"
)

// EditorConfig holds graph store and palette settings. A zero snap_grid
// leaves dropped node positions unsnapped.
type EditorConfig struct {
	SnapGrid         float64 `toml:"snap_grid"`
	SubscriberBuffer int     `toml:"subscriber_buffer"`
	EdgeValidation   *bool   `toml:"edge_validation"`
}

// EdgeValidationEnabled reports whether AddEdge rejects invalid connections.
func (c *EditorConfig) EdgeValidationEnabled() bool {
	return c.EdgeValidation == nil || *c.EdgeValidation
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EditorConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *EditorConfig) Merge(overlay *EditorConfig) {
	if overlay.SnapGrid != 0 {
		c.SnapGrid = overlay.SnapGrid
	}
	if overlay.SubscriberBuffer != 0 {
		c.SubscriberBuffer = overlay.SubscriberBuffer
	}
	if overlay.EdgeValidation != nil {
		v := *overlay.EdgeValidation
		c.EdgeValidation = &v
	}
}

func (c *EditorConfig) loadDefaults() {
	if c.SubscriberBuffer == 0 {
		c.SubscriberBuffer = 16
	}
}

func (c *EditorConfig) loadEnv() {
	if v := os.Getenv(EnvEditorSnapGrid); v != "" {
		if grid, err := strconv.ParseFloat(v, 64); err == nil {
			c.SnapGrid = grid
		}
	}
	if v := os.Getenv(EnvEditorSubscriberBuffer); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			c.SubscriberBuffer = size
		}
	}
	if v := os.Getenv(EnvEditorEdgeValidation); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.EdgeValidation = &enabled
		}
	}
}

func (c *EditorConfig) validate() error {
	if c.SnapGrid < 0 {
		return fmt.Errorf("snap_grid cannot be negative")
	}
	if c.SubscriberBuffer < 1 {
		return fmt.Errorf("subscriber_buffer must be positive")
	}
	return nil
}
