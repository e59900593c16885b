// Package gemini provides a Generator implementation for the Google Gemini REST API.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/germanamz/genprompt/pkg/modeladapter"
	"github.com/germanamz/genprompt/pkg/prompt"
)

// DefaultBaseURL is the public Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

var _ modeladapter.Generator = (*Adapter)(nil)

// Adapter implements modeladapter.Generator for the Gemini REST API.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter configured for the Gemini API.
// The baseURL should be DefaultBaseURL (no trailing slash) outside of tests.
func New(baseURL, apiKey, model string) *Adapter {
	a := &Adapter{}
	a.BaseURL = strings.TrimRight(baseURL, "/")
	a.Auth = modeladapter.Auth{
		Key:    apiKey,
		Header: "x-goog-api-key",
	}
	a.Name = model
	a.MaxTokens = 8192

	return a
}

// Generate sends one prompt to the Gemini API and returns the reply text.
func (a *Adapter) Generate(ctx context.Context, p prompt.Prompt) (modeladapter.Response, error) {
	if a.Auth.Key == "" {
		return modeladapter.Response{}, &modeladapter.AuthenticationError{Message: "gemini: api key is empty"}
	}

	req := a.buildRequest(p)
	path := fmt.Sprintf("/v1beta/models/%s:generateContent", a.Name)

	var resp apiResponse
	if err := a.PostJSON(ctx, path, req, &resp); err != nil {
		return modeladapter.Response{}, fmt.Errorf("gemini: %w", modeladapter.Classify(err, a.Name))
	}

	if len(resp.Candidates) == 0 {
		return modeladapter.Response{}, fmt.Errorf("gemini: %w", &modeladapter.EmptyResponseError{
			FinishReason: resp.PromptFeedback.BlockReason,
		})
	}

	cand := resp.Candidates[0]
	text := candidateText(cand)
	if strings.TrimSpace(text) == "" {
		return modeladapter.Response{}, fmt.Errorf("gemini: %w", &modeladapter.EmptyResponseError{
			FinishReason: cand.FinishReason,
		})
	}

	return modeladapter.Response{
		Text:         text,
		FinishReason: cand.FinishReason,
		Usage: modeladapter.TokenCount{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		},
	}, nil
}

// --- request types ---

type apiRequest struct {
	Contents         []apiContent     `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type apiContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []apiPart `json:"parts"`
}

type apiPart struct {
	Text       string         `json:"text,omitempty"`
	FileData   *apiFileData   `json:"fileData,omitempty"`
	InlineData *apiInlineData `json:"inlineData,omitempty"`
}

type apiFileData struct {
	MIMEType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

type apiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

// --- response types ---

type apiResponse struct {
	Candidates     []apiCandidate `json:"candidates"`
	PromptFeedback apiFeedback    `json:"promptFeedback"`
	UsageMetadata  apiUsageMeta   `json:"usageMetadata"`
}

type apiCandidate struct {
	Content      apiContent `json:"content"`
	FinishReason string     `json:"finishReason"`
}

type apiFeedback struct {
	BlockReason string `json:"blockReason"`
}

type apiUsageMeta struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// --- conversion helpers ---

func (a *Adapter) buildRequest(p prompt.Prompt) apiRequest {
	req := apiRequest{
		GenerationConfig: generationConfig{
			MaxOutputTokens: a.MaxTokens,
		},
	}

	if a.Temperature != 0 {
		t := a.Temperature
		req.GenerationConfig.Temperature = &t
	}

	content := apiContent{Role: "user"}
	for _, part := range p.Parts {
		if ap := toAPIPart(part); ap != nil {
			content.Parts = append(content.Parts, *ap)
		}
	}
	req.Contents = []apiContent{content}

	return req
}

func toAPIPart(p prompt.Part) *apiPart {
	switch v := p.(type) {
	case prompt.Text:
		return &apiPart{Text: v.Text}
	case prompt.MediaRef:
		return &apiPart{FileData: &apiFileData{MIMEType: v.MIMEType, FileURI: v.URI}}
	case prompt.InlineData:
		return &apiPart{InlineData: &apiInlineData{
			MIMEType: v.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(v.Data),
		}}
	default:
		return nil
	}
}

func candidateText(cand apiCandidate) string {
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
