package config

import (
	"strings"
	"time"
)

// Config is the root configuration for the insight service.
type Config struct {
	API       APIConfig        `yaml:"api"`
	Models    []ModelCandidate `yaml:"models"`
	Insights  InsightsConfig   `yaml:"insights"`
	Database  DBConfig         `yaml:"database"`
	Server    ServerConfig     `yaml:"server"`
	Push      PushConfig       `yaml:"push"`
	Refresher RefresherConfig  `yaml:"refresher"`
}

// APIConfig holds Generative Language API settings.
type APIConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Key               string        `yaml:"key"` // Usually ${GEMINI_API_KEY}
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	RequestsPerMinute float64       `yaml:"requests_per_minute"`
}

// ModelCandidate is one entry in the model fallback order. Candidates
// are tried top to bottom, so the file lists the preferred model first.
type ModelCandidate struct {
	Name string `yaml:"name"`

	// StructuredOutput declares whether the model honors response
	// schemas. Leave unset to infer it from the model name.
	StructuredOutput *bool `yaml:"structured_output"`
}

// Structured reports whether the candidate honors response schemas.
// When the file does not say, "lite" variants are assumed not to.
func (m ModelCandidate) Structured() bool {
	if m.StructuredOutput != nil {
		return *m.StructuredOutput
	}
	return !strings.Contains(m.Name, "lite")
}

// InsightsConfig holds insight generation settings.
type InsightsConfig struct {
	Temperature float64       `yaml:"temperature"`
	StatusTTL   time.Duration `yaml:"status_ttl"` // Market-status cache window
}

// DBConfig holds the optional Postgres connection for the insight
// audit log. Leaving host empty runs the service without history.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether a database is configured at all.
func (db DBConfig) Enabled() bool {
	return db.Host != ""
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RequestTimeout  time.Duration `yaml:"request_timeout"` // Upper bound for one insight operation
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PushConfig holds WebSocket fanout settings.
type PushConfig struct {
	SendBuffer int `yaml:"send_buffer"` // Per-client outbound queue
}

// RefresherConfig holds the background market-status refresh loop.
type RefresherConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}
