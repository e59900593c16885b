package promptclient

import (
	"context"
	"sync"

	"github.com/germanamz/genprompt/pkg/modeladapter"
	"github.com/germanamz/genprompt/pkg/providers/gemini"
	"github.com/germanamz/genprompt/pkg/providers/genaisdk"
)

// Backend kinds understood by New.
const (
	BackendGemini = "gemini"
	BackendGenAI  = "genai"
	BackendVertex = "vertex"
)

// DefaultLocation is the Vertex AI region used when none is configured.
const DefaultLocation = "us-central1"

// Factory creates a Generator from a Config.
type Factory func(ctx context.Context, cfg Config) (modeladapter.Generator, error)

var (
	factoryMu   sync.RWMutex
	factories   = map[string]Factory{}
	keyless     = map[string]bool{}
	defaultsReg sync.Once
)

func ensureDefaults() {
	defaultsReg.Do(func() {
		factories[BackendGemini] = newGemini
		factories[BackendGenAI] = newGenAI
		factories[BackendVertex] = newVertex
		keyless[BackendVertex] = true
	})
}

// RegisterBackend registers a custom backend factory under the given kind.
// Keyless backends are built even when Config.APIKey is empty.
func RegisterBackend(kind string, factory Factory, keyOptional bool) {
	ensureDefaults()

	factoryMu.Lock()
	defer factoryMu.Unlock()

	factories[kind] = factory
	keyless[kind] = keyOptional
}

// HasBackend reports whether kind has a registered factory.
func HasBackend(kind string) bool {
	_, ok := getFactory(kind)
	return ok
}

func getFactory(kind string) (Factory, bool) {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	f, ok := factories[kind]
	return f, ok
}

func requiresKey(kind string) bool {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	return !keyless[kind]
}

func newGemini(_ context.Context, cfg Config) (modeladapter.Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = gemini.DefaultBaseURL
	}

	a := gemini.New(baseURL, cfg.APIKey, cfg.Model)
	a.Temperature = cfg.Temperature
	if cfg.MaxTokens > 0 {
		a.MaxTokens = cfg.MaxTokens
	}

	return a, nil
}

func newGenAI(ctx context.Context, cfg Config) (modeladapter.Generator, error) {
	return genaisdk.New(ctx, sdkOptions(genaisdk.BackendGeminiAPI, cfg))
}

func newVertex(ctx context.Context, cfg Config) (modeladapter.Generator, error) {
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}
	return genaisdk.New(ctx, sdkOptions(genaisdk.BackendVertexAI, cfg))
}

func sdkOptions(b genaisdk.Backend, cfg Config) genaisdk.Options {
	return genaisdk.Options{
		Backend:     b,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Project:     cfg.Project,
		Location:    cfg.Location,
		BaseURL:     cfg.BaseURL,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
}
