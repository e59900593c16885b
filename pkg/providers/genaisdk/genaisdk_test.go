package genaisdk_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/germanamz/genprompt/pkg/modeladapter"
	"github.com/germanamz/genprompt/pkg/prompt"
	"github.com/germanamz/genprompt/pkg/providers/genaisdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *genaisdk.Adapter {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := genaisdk.New(context.Background(), genaisdk.Options{
		Backend:    genaisdk.BackendGeminiAPI,
		APIKey:     "test-key",
		Model:      "gemini-test",
		BaseURL:    srv.URL + "/",
		APIVersion: "v1beta",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)

	return a
}

func TestGenerate_ReturnsText(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "gemini-test:generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "Everlasting Blooms"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 7, "candidatesTokenCount": 3}
		}`)
	})

	resp, err := a.Generate(context.Background(), prompt.FromText("Name a flower shop"))
	require.NoError(t, err)
	assert.Equal(t, "Everlasting Blooms", resp.Text)
	assert.Equal(t, "STOP", resp.FinishReason)
	assert.Equal(t, 7, resp.Usage.InputTokens)
	assert.Equal(t, 3, resp.Usage.OutputTokens)
}

func TestGenerate_MediaRefOrder(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Contents []struct {
				Role  string `json:"role"`
				Parts []struct {
					Text     string `json:"text"`
					FileData *struct {
						FileURI  string `json:"fileUri"`
						MIMEType string `json:"mimeType"`
					} `json:"fileData"`
				} `json:"parts"`
			} `json:"contents"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		if assert.Len(t, body.Contents, 1) && assert.Len(t, body.Contents[0].Parts, 2) {
			parts := body.Contents[0].Parts
			assert.Equal(t, "user", body.Contents[0].Role)
			if assert.NotNil(t, parts[0].FileData) {
				assert.Equal(t, "gs://bucket/image.jpg", parts[0].FileData.FileURI)
				assert.Equal(t, "image/jpeg", parts[0].FileData.MIMEType)
			}
			assert.Equal(t, "What is shown?", parts[1].Text)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates": [{"content": {"role": "model", "parts": [{"text": "Scones."}]}}]}`)
	})

	resp, err := a.Generate(context.Background(), prompt.WithMedia("gs://bucket/image.jpg", "image/jpeg", "What is shown?"))
	require.NoError(t, err)
	assert.Equal(t, "Scones.", resp.Text)
}

func TestGenerate_UnknownModel(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error": {"code": 404, "message": "models/gemini-test is not found", "status": "NOT_FOUND"}}`)
	})

	_, err := a.Generate(context.Background(), prompt.FromText("hi"))
	assert.ErrorIs(t, err, modeladapter.ErrInvalidModel)
}

func TestGenerate_PermissionDenied(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error": {"code": 403, "message": "denied", "status": "PERMISSION_DENIED"}}`)
	})

	_, err := a.Generate(context.Background(), prompt.FromText("hi"))
	assert.ErrorIs(t, err, modeladapter.ErrAuthentication)
}

func TestGenerate_NoCandidates(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates": [], "promptFeedback": {"blockReason": "SAFETY"}}`)
	})

	_, err := a.Generate(context.Background(), prompt.FromText("hi"))

	var emptyErr *modeladapter.EmptyResponseError
	require.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, "SAFETY", emptyErr.FinishReason)
}

func TestNew_EmptyKey(t *testing.T) {
	_, err := genaisdk.New(context.Background(), genaisdk.Options{Model: "m"})
	assert.ErrorIs(t, err, modeladapter.ErrAuthentication)
}

func TestNew_VertexRequiresProjectAndLocation(t *testing.T) {
	_, err := genaisdk.New(context.Background(), genaisdk.Options{Backend: genaisdk.BackendVertexAI, Location: "us-central1"})
	assert.ErrorContains(t, err, "requires a project")

	_, err = genaisdk.New(context.Background(), genaisdk.Options{Backend: genaisdk.BackendVertexAI, Project: "p"})
	assert.ErrorContains(t, err, "requires a location")
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := genaisdk.New(context.Background(), genaisdk.Options{Backend: "bogus", APIKey: "k"})
	assert.ErrorContains(t, err, `unknown backend "bogus"`)
}
