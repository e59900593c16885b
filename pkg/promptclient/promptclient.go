// Package promptclient is the entry point for sending a prompt to a hosted
// generative model. A Client wraps an explicit Config (credential, model,
// backend) and exposes a single Generate operation.
package promptclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/germanamz/genprompt/pkg/modeladapter"
	"github.com/germanamz/genprompt/pkg/prompt"
)

// DefaultModel is the model used when Config.Model is empty.
const DefaultModel = "gemini-1.5-flash-002"

// Config holds everything a Client needs. It is passed at construction and
// never read from process-wide state.
type Config struct {
	Backend     string        `yaml:"backend"` // "gemini" (default), "genai" or "vertex".
	APIKey      string        `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	Project     string        `yaml:"project"`  // Vertex AI only.
	Location    string        `yaml:"location"` // Vertex AI only.
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"` // Zero leaves timeouts to the transport.
}

// Client submits prompts to one model. It is safe for concurrent use.
type Client struct {
	cfg Config
	gen modeladapter.Generator
	log *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithGenerator bypasses the backend registry and uses g directly.
func WithGenerator(g modeladapter.Generator) Option {
	return func(c *Client) { c.gen = g }
}

// New creates a Client. An empty credential does not fail construction for
// key-based backends; Generate reports it as an AuthenticationError instead.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendGemini
	}

	c := &Client{
		cfg: cfg,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(c)
	}

	if c.gen != nil {
		return c, nil
	}

	factory, ok := getFactory(cfg.Backend)
	if !ok {
		return nil, fmt.Errorf("promptclient: unknown backend %q", cfg.Backend)
	}

	if cfg.APIKey == "" && requiresKey(cfg.Backend) {
		c.gen = missingCredential{}
		return c, nil
	}

	gen, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("promptclient: %w", err)
	}
	c.gen = gen

	return c, nil
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config { return c.cfg }

// Generate validates p, performs exactly one call to the model, and returns
// the generated text.
func (c *Client) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	resp, err := c.GenerateResponse(ctx, p)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// GenerateResponse is Generate with finish reason and token usage attached.
func (c *Client) GenerateResponse(ctx context.Context, p prompt.Prompt) (modeladapter.Response, error) {
	if err := p.Validate(); err != nil {
		return modeladapter.Response{}, err
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	c.log.DebugContext(ctx, "generate started",
		"backend", c.cfg.Backend,
		"model", c.cfg.Model,
		"parts", len(p.Parts),
	)

	resp, err := c.gen.Generate(ctx, p)
	if err != nil {
		c.log.ErrorContext(ctx, "generate failed",
			"model", c.cfg.Model,
			"duration", time.Since(start),
			"error", err,
		)
		return modeladapter.Response{}, err
	}

	c.log.DebugContext(ctx, "generate finished",
		"model", c.cfg.Model,
		"duration", time.Since(start),
		"finish_reason", resp.FinishReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)

	return resp, nil
}

// missingCredential stands in for a backend when no API key was supplied.
type missingCredential struct{}

func (missingCredential) Generate(context.Context, prompt.Prompt) (modeladapter.Response, error) {
	return modeladapter.Response{}, &modeladapter.AuthenticationError{Message: "api key is empty; set GENAI_API_KEY"}
}
