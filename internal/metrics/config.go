package metrics

import (
	"os"
	"strings"
	"time"
)

const (
	defaultReportInterval = 60 * time.Second
	// Cloud Monitoring rejects points written more often than every few seconds
	minReportInterval = 10 * time.Second
)

// Config holds configuration for GCP metrics reporting
type Config struct {
	Enabled        bool
	ProjectID      string // empty = auto-detect
	ReportInterval time.Duration

	// Series labels identifying this deployment; empty values are omitted
	Company string
	Profile string
}

// LoadConfig loads metrics configuration from environment variables
func LoadConfig() *Config {
	interval := getDurationEnv("METRICS_REPORT_INTERVAL", defaultReportInterval)
	if interval < minReportInterval {
		interval = minReportInterval
	}
	return &Config{
		Enabled:        getBoolEnv("ENABLE_METRICS", false),
		ProjectID:      os.Getenv("METRICS_PROJECT_ID"),
		ReportInterval: interval,
	}
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
