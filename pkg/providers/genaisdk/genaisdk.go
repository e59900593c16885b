// Package genaisdk provides a Generator backed by the Google Gen AI Go SDK.
// It talks to either the Gemini API (API key) or Vertex AI (project,
// location and Application Default Credentials).
package genaisdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/germanamz/genprompt/pkg/modeladapter"
	"github.com/germanamz/genprompt/pkg/prompt"
	"google.golang.org/genai"
)

// Backend selects which Google service the SDK talks to.
type Backend string

const (
	BackendGeminiAPI Backend = "gemini-api"
	BackendVertexAI  Backend = "vertex-ai"
)

var _ modeladapter.Generator = (*Adapter)(nil)

// Options configures an Adapter.
type Options struct {
	Backend     Backend
	APIKey      string //nolint:gosec // configuration field, not a hardcoded secret
	Model       string
	Project     string // Vertex AI only.
	Location    string // Vertex AI only.
	BaseURL     string // Overrides the service endpoint; used by tests.
	APIVersion  string
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

// Adapter implements modeladapter.Generator on top of *genai.Client.
type Adapter struct {
	client *genai.Client
	opts   Options
}

// New creates the SDK client. For the Gemini API backend an empty key is
// rejected up front so the SDK never falls back to ambient environment keys.
func New(ctx context.Context, opts Options) (*Adapter, error) {
	if opts.Backend == "" {
		opts.Backend = BackendGeminiAPI
	}

	cfg := &genai.ClientConfig{
		HTTPClient: opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    opts.BaseURL,
			APIVersion: opts.APIVersion,
		},
	}

	switch opts.Backend {
	case BackendGeminiAPI:
		if opts.APIKey == "" {
			return nil, &modeladapter.AuthenticationError{Message: "genai: api key is empty"}
		}
		cfg.Backend = genai.BackendGeminiAPI
		cfg.APIKey = opts.APIKey
	case BackendVertexAI:
		if opts.Project == "" {
			return nil, errors.New("genai: vertex-ai backend requires a project")
		}
		if opts.Location == "" {
			return nil, errors.New("genai: vertex-ai backend requires a location")
		}
		cfg.Backend = genai.BackendVertexAI
		cfg.Project = opts.Project
		cfg.Location = opts.Location
	default:
		return nil, fmt.Errorf("genai: unknown backend %q", opts.Backend)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", modeladapter.Classify(err, opts.Model))
	}

	return &Adapter{client: client, opts: opts}, nil
}

// Generate sends one prompt through the SDK and returns the reply text.
func (a *Adapter) Generate(ctx context.Context, p prompt.Prompt) (modeladapter.Response, error) {
	contents := []*genai.Content{genai.NewContentFromParts(toSDKParts(p), genai.RoleUser)}

	resp, err := a.client.Models.GenerateContent(ctx, a.opts.Model, contents, a.generateConfig())
	if err != nil {
		return modeladapter.Response{}, fmt.Errorf("genai: %w", classify(err, a.opts.Model))
	}

	if len(resp.Candidates) == 0 {
		var reason string
		if resp.PromptFeedback != nil {
			reason = string(resp.PromptFeedback.BlockReason)
		}
		return modeladapter.Response{}, fmt.Errorf("genai: %w", &modeladapter.EmptyResponseError{FinishReason: reason})
	}

	var finish string
	if resp.Candidates[0] != nil {
		finish = string(resp.Candidates[0].FinishReason)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return modeladapter.Response{}, fmt.Errorf("genai: %w", &modeladapter.EmptyResponseError{FinishReason: finish})
	}

	out := modeladapter.Response{Text: text, FinishReason: finish}
	if um := resp.UsageMetadata; um != nil {
		out.Usage = modeladapter.TokenCount{
			InputTokens:  int(um.PromptTokenCount),
			OutputTokens: int(um.CandidatesTokenCount),
		}
	}

	return out, nil
}

func (a *Adapter) generateConfig() *genai.GenerateContentConfig {
	if a.opts.Temperature == 0 && a.opts.MaxTokens == 0 {
		return nil
	}

	cfg := &genai.GenerateContentConfig{}
	if a.opts.Temperature != 0 {
		cfg.Temperature = genai.Ptr(float32(a.opts.Temperature))
	}
	if a.opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(a.opts.MaxTokens) //nolint:gosec // bounded by config validation
	}

	return cfg
}

func toSDKParts(p prompt.Prompt) []*genai.Part {
	parts := make([]*genai.Part, 0, len(p.Parts))
	for _, part := range p.Parts {
		switch v := part.(type) {
		case prompt.Text:
			parts = append(parts, genai.NewPartFromText(v.Text))
		case prompt.MediaRef:
			parts = append(parts, genai.NewPartFromURI(v.URI, v.MIMEType))
		case prompt.InlineData:
			parts = append(parts, genai.NewPartFromBytes(v.Data, v.MIMEType))
		}
	}
	return parts
}

// classify maps SDK API errors onto the taxonomy while keeping the SDK error
// reachable through errors.As.
func classify(err error, model string) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return modeladapter.ClassifyAPIError(apiErr.Code, apiErr.Status, apiErr.Message, model, err)
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return modeladapter.ClassifyAPIError(apiErrPtr.Code, apiErrPtr.Status, apiErrPtr.Message, model, err)
	}

	return modeladapter.Classify(err, model)
}
