// Package config loads genprompt configuration from an optional YAML file,
// a .env file, and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/germanamz/genprompt/pkg/promptclient"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MinKeyLength is the shortest API key accepted by Validate.
const MinKeyLength = 8

// Config is the top-level configuration.
type Config struct {
	Client promptclient.Config `yaml:"client"`
	Server ServerConfig        `yaml:"server"`
}

// ServerConfig holds settings for the receipt service.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`
	UploadDir  string `yaml:"upload_dir"`
	MaxUpload  int64  `yaml:"max_upload_bytes"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		Client: promptclient.Config{
			Backend:  promptclient.BackendGemini,
			Model:    promptclient.DefaultModel,
			Location: promptclient.DefaultLocation,
		},
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:8080",
			DBPath:     "genprompt.db",
			UploadDir:  "uploads",
			MaxUpload:  10 << 20,
		},
	}
}

// LoadDotEnv loads environment variables from path. Missing files are ignored.
// Variables already present in the environment are not overridden.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: load env file: %w", err)
	}
	return nil
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), and environment overrides. Environment variables referenced
// as ${VAR} or $VAR in the YAML are expanded before parsing so secrets can
// stay out of the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
		if err != nil {
			return Config{}, fmt.Errorf("config: load: %w", err)
		}

		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyEnv overrides fields from environment variables. GENAI_API_KEY wins
// over GEMINI_API_KEY.
func (c *Config) applyEnv() error {
	if v, ok := lookup("GEMINI_API_KEY"); ok {
		c.Client.APIKey = v
	}
	if v, ok := lookup("GENAI_API_KEY"); ok {
		c.Client.APIKey = v
	}
	if v, ok := lookup("GENAI_MODEL"); ok {
		c.Client.Model = v
	}
	if v, ok := lookup("GENAI_BACKEND"); ok {
		c.Client.Backend = v
	}
	if v, ok := lookup("GENAI_BASE_URL"); ok {
		c.Client.BaseURL = v
	}
	if v, ok := lookup("GOOGLE_CLOUD_PROJECT"); ok {
		c.Client.Project = v
	}
	if v, ok := lookup("GOOGLE_CLOUD_LOCATION"); ok {
		c.Client.Location = v
	}
	if v, ok := lookup("GENAI_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: GENAI_TIMEOUT has invalid duration %q: %w", v, err)
		}
		c.Client.Timeout = d
	}
	if v, ok := lookup("GENPROMPT_LISTEN_ADDR"); ok {
		c.Server.ListenAddr = v
	}
	if v, ok := lookup("GENPROMPT_DB_PATH"); ok {
		c.Server.DBPath = v
	}
	if v, ok := lookup("GENPROMPT_UPLOAD_DIR"); ok {
		c.Server.UploadDir = v
	}
	return nil
}

// lookup returns a non-empty environment variable.
func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Validate checks that the configuration is internally consistent. An empty
// API key is allowed here; the client reports it when a request is made.
func (c Config) Validate() error {
	if c.Client.Model == "" {
		return errors.New("config: model is required")
	}
	if !promptclient.HasBackend(c.Client.Backend) {
		return fmt.Errorf("config: unknown backend %q", c.Client.Backend)
	}
	if k := c.Client.APIKey; k != "" && len(k) < MinKeyLength {
		return fmt.Errorf("config: api key is too short (%d characters, want at least %d)", len(k), MinKeyLength)
	}
	if c.Client.Backend == promptclient.BackendVertex && c.Client.Project == "" {
		return errors.New("config: vertex backend requires a project (GOOGLE_CLOUD_PROJECT)")
	}
	if c.Client.Timeout < 0 {
		return errors.New("config: timeout must not be negative")
	}
	if c.Client.MaxTokens < 0 {
		return errors.New("config: max_tokens must not be negative")
	}
	return nil
}

// MaskKey returns key with everything except the first and last four
// characters hidden, for use in logs.
func MaskKey(key string) string {
	if len(key) < MinKeyLength {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
