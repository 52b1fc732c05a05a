package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	yaml := `
api:
  key: test-key
  requests_per_minute: 12
models:
  - name: gemini-2.5-flash
  - name: custom-experimental
    structured_output: false
insights:
  temperature: 0.7
server:
  port: 9090
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.Key != "test-key" {
		t.Errorf("API.Key = %q, want %q", cfg.API.Key, "test-key")
	}
	if cfg.API.RequestsPerMinute != 12 {
		t.Errorf("API.RequestsPerMinute = %v, want 12", cfg.API.RequestsPerMinute)
	}
	if len(cfg.Models) != 2 {
		t.Fatalf("len(Models) = %d, want 2", len(cfg.Models))
	}
	if cfg.Models[0].Name != "gemini-2.5-flash" {
		t.Errorf("Models[0].Name = %q, want %q", cfg.Models[0].Name, "gemini-2.5-flash")
	}
	if cfg.Models[1].StructuredOutput == nil || *cfg.Models[1].StructuredOutput {
		t.Error("Models[1].StructuredOutput should be explicitly false")
	}
	if cfg.Insights.Temperature != 0.7 {
		t.Errorf("Insights.Temperature = %v, want 0.7", cfg.Insights.Temperature)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "secret123")

	yaml := `
api:
  key: ${TEST_GEMINI_KEY}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.Key != "secret123" {
		t.Errorf("API.Key = %q, want %q", cfg.API.Key, "secret123")
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("STOCKLENS_TEST_KEY=from-dotenv\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("api:\n  key: ${STOCKLENS_TEST_KEY}\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("STOCKLENS_TEST_KEY") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.Key != "from-dotenv" {
		t.Errorf("API.Key = %q, want %q", cfg.API.Key, "from-dotenv")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
api:
  key: test-key
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want default %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.API.Timeout != DefaultAPITimeout {
		t.Errorf("API.Timeout = %v, want default %v", cfg.API.Timeout, DefaultAPITimeout)
	}
	if len(cfg.Models) != len(DefaultModels) {
		t.Fatalf("len(Models) = %d, want default %d", len(cfg.Models), len(DefaultModels))
	}
	if cfg.Models[0].Name != "gemini-2.5-flash" {
		t.Errorf("Models[0].Name = %q, want %q", cfg.Models[0].Name, "gemini-2.5-flash")
	}
	if cfg.Insights.StatusTTL != DefaultStatusTTL {
		t.Errorf("Insights.StatusTTL = %v, want default %v", cfg.Insights.StatusTTL, DefaultStatusTTL)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, DefaultServerPort)
	}
	if cfg.Push.SendBuffer != DefaultSendBuffer {
		t.Errorf("Push.SendBuffer = %d, want default %d", cfg.Push.SendBuffer, DefaultSendBuffer)
	}
	if cfg.Refresher.Interval != DefaultRefreshInterval {
		t.Errorf("Refresher.Interval = %v, want default %v", cfg.Refresher.Interval, DefaultRefreshInterval)
	}
	if cfg.Database.Enabled() {
		t.Error("Database should stay disabled when no host is configured")
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want default %d", cfg.Database.Port, DefaultDBPort)
	}
}

func TestModelCandidateStructured(t *testing.T) {
	boolPtr := func(b bool) *bool { return &b }

	tests := []struct {
		name string
		cand ModelCandidate
		want bool
	}{
		{"explicit true", ModelCandidate{Name: "gemini-2.5-flash-lite", StructuredOutput: boolPtr(true)}, true},
		{"explicit false", ModelCandidate{Name: "gemini-2.5-flash", StructuredOutput: boolPtr(false)}, false},
		{"inferred for lite", ModelCandidate{Name: "gemini-2.5-flash-lite"}, false},
		{"inferred for lite 2.0", ModelCandidate{Name: "gemini-2.0-flash-lite"}, false},
		{"inferred for full model", ModelCandidate{Name: "gemini-2.5-flash"}, true},
		{"inferred for pro", ModelCandidate{Name: "gemini-2.5-pro"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cand.Structured(); got != tt.want {
				t.Errorf("Structured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			API:    APIConfig{Key: "k"},
			Models: []ModelCandidate{{Name: "gemini-2.5-flash"}},
			Server: ServerConfig{Port: 8080},
			Push:   PushConfig{SendBuffer: 256},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.API.Key = "" },
			wantErr: "api.key is required (set GEMINI_API_KEY)",
		},
		{
			name:    "no model candidates",
			mutate:  func(c *Config) { c.Models = nil },
			wantErr: "models must list at least one candidate",
		},
		{
			name:    "unnamed model candidate",
			mutate:  func(c *Config) { c.Models = []ModelCandidate{{Name: "a"}, {}} },
			wantErr: "models[1].name is required",
		},
		{
			name: "database enabled but incomplete",
			mutate: func(c *Config) {
				c.Database = DBConfig{Host: "localhost", Name: "db", User: "user", MaxConns: 5}
			},
			wantErr: "database.password is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *Config) {
				c.Database = DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10}
			},
			wantErr: "database.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port must be between 1 and 65535, got 70000",
		},
		{
			name:    "refresher enabled without interval",
			mutate:  func(c *Config) { c.Refresher.Enabled = true },
			wantErr: "refresher.interval must be > 0 when enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
