package config

import (
	"fmt"
	"os"

	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/bamboo"
)

// Config holds all configuration for the MCP server
type Config struct {
	// BambooHR credentials
	APIToken      string
	CompanyDomain string
	BaseURL       string // derived from CompanyDomain
	Debug         bool   // log every BambooHR request and response

	// Server configuration
	Mode     string // "stdio" or "http"
	Profile  string // Profile to expose: "employees", "all", etc.
	LogLevel string // "debug", "info", "warn", "error"

	// HTTP server configuration
	HTTPPort  int
	HTTPToken string // optional bearer token required on /mcp
}

// Load loads configuration from environment variables.
// Missing credentials are reported one at a time, token first.
func Load() (*Config, error) {
	apiToken := os.Getenv("BAMBOO_API_TOKEN")
	if apiToken == "" {
		return nil, fmt.Errorf("BAMBOO_API_TOKEN environment variable is required")
	}

	companyDomain := os.Getenv("BAMBOO_COMPANY_DOMAIN")
	if companyDomain == "" {
		return nil, fmt.Errorf("BAMBOO_COMPANY_DOMAIN environment variable is required")
	}

	cfg := &Config{
		APIToken:      apiToken,
		CompanyDomain: companyDomain,
		BaseURL:       BaseURLFor(companyDomain),
		// Only the literal "true" enables debug output
		Debug: os.Getenv("DEBUG") == "true",

		Mode:     getEnv("MCP_MODE", "stdio"),
		Profile:  getEnv("MCP_PROFILE", "all"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPPort:  getIntEnv("PORT", 8080),
		HTTPToken: os.Getenv("MCP_HTTP_TOKEN"),
	}

	// Mode and the other server settings are checked by Validate, after any
	// command-line overrides are applied.
	return cfg, nil
}

// BaseURLFor returns the API root for a company subdomain
func BaseURLFor(companyDomain string) string {
	return fmt.Sprintf("https://%s.bamboohr.com/api/v1", companyDomain)
}

// Bamboo returns the client configuration
func (c *Config) Bamboo() bamboo.Config {
	return bamboo.Config{
		APIToken: c.APIToken,
		BaseURL:  c.BaseURL,
		Debug:    c.Debug,
	}
}

// EffectiveLogLevel is the configured level, raised to debug when BambooHR
// request diagnostics are on so they are not filtered out.
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getIntEnv gets an integer environment variable
func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	_, err := fmt.Sscanf(value, "%d", &intValue)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Mode != "stdio" && c.Mode != "http" {
		return fmt.Errorf("invalid mode: %s (must be 'stdio' or 'http')", c.Mode)
	}

	validProfiles := map[string]bool{
		"employees": true,
		"time_off":  true,
		"company":   true,
		"all":       true,
	}

	if !validProfiles[c.Profile] {
		return fmt.Errorf("invalid profile: %s", c.Profile)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.Mode == "http" && (c.HTTPPort <= 0 || c.HTTPPort > 65535) {
		return fmt.Errorf("invalid PORT: %d", c.HTTPPort)
	}

	return nil
}
