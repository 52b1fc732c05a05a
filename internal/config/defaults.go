package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL           = "https://generativelanguage.googleapis.com/v1beta"
	DefaultAPITimeout        = 90 * time.Second
	DefaultMaxRetries        = 3
	DefaultRequestsPerMinute = 30
	DefaultTemperature       = 0.3
	DefaultStatusTTL         = 30 * time.Minute
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultServerPort        = 8080
	DefaultRequestTimeout    = 4 * time.Minute
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultSendBuffer        = 256
	DefaultRefreshInterval   = 10 * time.Minute
)

// DefaultModels is the fallback order used when the file lists no
// models, newest first with lite variants as the safety net.
var DefaultModels = []ModelCandidate{
	{Name: "gemini-2.5-flash"},
	{Name: "gemini-2.5-flash-lite"},
	{Name: "gemini-2.0-flash"},
	{Name: "gemini-2.0-flash-lite"},
}

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RequestsPerMinute == 0 {
		c.API.RequestsPerMinute = DefaultRequestsPerMinute
	}

	// Model fallback order
	if len(c.Models) == 0 {
		c.Models = append([]ModelCandidate(nil), DefaultModels...)
	}

	// Insights defaults
	if c.Insights.Temperature == 0 {
		c.Insights.Temperature = DefaultTemperature
	}
	if c.Insights.StatusTTL == 0 {
		c.Insights.StatusTTL = DefaultStatusTTL
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = DefaultRequestTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Push defaults
	if c.Push.SendBuffer == 0 {
		c.Push.SendBuffer = DefaultSendBuffer
	}

	// Refresher defaults
	if c.Refresher.Interval == 0 {
		c.Refresher.Interval = DefaultRefreshInterval
	}
}
