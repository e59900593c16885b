package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/germanamz/genprompt/pkg/promptclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, k := range []string{
		"GEMINI_API_KEY", "GENAI_API_KEY", "GENAI_MODEL", "GENAI_BACKEND", "GENAI_BASE_URL",
		"GOOGLE_CLOUD_PROJECT", "GOOGLE_CLOUD_LOCATION", "GENAI_TIMEOUT",
		"GENPROMPT_LISTEN_ADDR", "GENPROMPT_DB_PATH", "GENPROMPT_UPLOAD_DIR",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, promptclient.DefaultModel, cfg.Client.Model)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.ListenAddr)
}

func TestLoad_YAMLWithEnvExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv("MY_SECRET", "abcd1234efgh")

	path := writeFile(t, "genprompt.yaml", `
client:
  backend: genai
  api_key: ${MY_SECRET}
  model: gemini-2.0-flash
  temperature: 0.3
  timeout: 45s
server:
  listen_addr: ":9090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "genai", cfg.Client.Backend)
	assert.Equal(t, "abcd1234efgh", cfg.Client.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.Client.Model)
	assert.InDelta(t, 0.3, cfg.Client.Temperature, 1e-9)
	assert.Equal(t, 45*time.Second, cfg.Client.Timeout)
	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, "genprompt.db", cfg.Server.DBPath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gemini-key-0000")
	t.Setenv("GENAI_API_KEY", "genai-key-1111")
	t.Setenv("GENAI_MODEL", "gemini-pro")
	t.Setenv("GENAI_TIMEOUT", "5s")
	t.Setenv("GENPROMPT_DB_PATH", "/tmp/x.db")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "genai-key-1111", cfg.Client.APIKey)
	assert.Equal(t, "gemini-pro", cfg.Client.Model)
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "/tmp/x.db", cfg.Server.DBPath)
}

func TestLoad_GeminiKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gemini-key-0000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini-key-0000", cfg.Client.APIKey)
}

func TestLoad_BadTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENAI_TIMEOUT", "soon")

	_, err := Load("")
	assert.ErrorContains(t, err, "GENAI_TIMEOUT")
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "config: load")
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeFile(t, "bad.yaml", "client: [unclosed"))
	assert.ErrorContains(t, err, "config: parse")
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that exist, even when empty.
	require.NoError(t, os.Unsetenv("GENAI_MODEL"))

	assert.NoError(t, LoadDotEnv(""))
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	require.NoError(t, LoadDotEnv(writeFile(t, ".env", "GENAI_MODEL=from-dotenv\n")))
	t.Cleanup(func() { _ = os.Unsetenv("GENAI_MODEL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Client.Model)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty key allowed", func(c *Config) { c.Client.APIKey = "" }, ""},
		{"short key", func(c *Config) { c.Client.APIKey = "abc" }, "too short"},
		{"no model", func(c *Config) { c.Client.Model = "" }, "model is required"},
		{"unknown backend", func(c *Config) { c.Client.Backend = "nope" }, `unknown backend "nope"`},
		{"vertex without project", func(c *Config) { c.Client.Backend = promptclient.BackendVertex }, "requires a project"},
		{"vertex with project", func(c *Config) {
			c.Client.Backend = promptclient.BackendVertex
			c.Client.Project = "demo-project"
		}, ""},
		{"negative timeout", func(c *Config) { c.Client.Timeout = -time.Second }, "timeout"},
		{"negative max tokens", func(c *Config) { c.Client.MaxTokens = -1 }, "max_tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "abcd...wxyz", MaskKey("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "****", MaskKey("short"))
	assert.Equal(t, "****", MaskKey(""))
}
