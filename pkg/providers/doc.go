// Package providers groups the hosted-model backends behind
// [github.com/germanamz/genprompt/pkg/modeladapter.Generator]:
//   - [github.com/germanamz/genprompt/pkg/providers/gemini]: raw REST client for the Gemini generateContent endpoint
//   - [github.com/germanamz/genprompt/pkg/providers/genaisdk]: Google Gen AI Go SDK, Gemini API or Vertex AI backend
package providers
