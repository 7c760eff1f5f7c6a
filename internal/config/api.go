package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/agentflow/pkg/formatting"
	"github.com/JaimeStill/agentflow/pkg/middleware"
	"github.com/JaimeStill/agentflow/pkg/openapi"
	"github.com/JaimeStill/agentflow/pkg/pagination"
)

const (
	EnvAPIBasePath    = "AGENTFLOW_API_BASE_PATH"
	EnvAPIMaxBodySize = "AGENTFLOW_API_MAX_BODY_SIZE"

	defaultMaxBodySize = 4 * 1024 * 1024
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "AGENTFLOW_CORS_ENABLED",
	Origins:          "AGENTFLOW_CORS_ORIGINS",
	AllowedMethods:   "AGENTFLOW_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "AGENTFLOW_CORS_ALLOWED_HEADERS",
	AllowCredentials: "AGENTFLOW_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "AGENTFLOW_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "AGENTFLOW_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "AGENTFLOW_PAGINATION_MAX_PAGE_SIZE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "AGENTFLOW_OPENAPI_TITLE",
	Description: "AGENTFLOW_OPENAPI_DESCRIPTION",
}

// APIConfig holds API routing, request limits, CORS, pagination, and OpenAPI settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`
	OpenAPI     openapi.Config        `toml:"openapi"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes, falling back to 4MB when unparsable.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return defaultMaxBodySize
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "4MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxBodySize); v != "" {
		c.MaxBodySize = v
	}
}

func (c *APIConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxBodySize); err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	return nil
}
