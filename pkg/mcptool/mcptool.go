// Package mcptool exposes the prompt client as a "generate" tool over the
// Model Context Protocol.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/germanamz/genprompt/pkg/prompt"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolName is the name the generate tool is registered under.
const ToolName = "generate"

var inputSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"prompt": {"type": "string", "description": "Text prompt sent to the model."},
		"image_uri": {"type": "string", "description": "Optional URI of media the prompt refers to, e.g. gs://bucket/image.jpg."},
		"mime_type": {"type": "string", "description": "MIME type of image_uri, e.g. image/jpeg."}
	},
	"required": ["prompt"]
}`)

// TextGenerator is the subset of the prompt client the tool needs.
type TextGenerator interface {
	Generate(ctx context.Context, p prompt.Prompt) (string, error)
}

// Input is the decoded tool arguments.
type Input struct {
	Prompt   string `json:"prompt"`
	ImageURI string `json:"image_uri,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
}

// toPrompt converts the arguments into a prompt: media first, then text.
func (in Input) toPrompt() prompt.Prompt {
	if in.ImageURI != "" {
		return prompt.WithMedia(in.ImageURI, in.MIMEType, in.Prompt)
	}
	return prompt.FromText(in.Prompt)
}

// Server serves the generate tool using the official MCP Go SDK.
type Server struct {
	server *mcp.Server
	gen    TextGenerator
}

// New creates a Server that answers tool calls with gen.
func New(name, version string, gen TextGenerator) *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
		gen:    gen,
	}

	s.server.AddTool(&mcp.Tool{
		Name:        ToolName,
		Description: "Send one prompt (optionally with a media reference) to a hosted generative model and return its text.",
		InputSchema: inputSchema,
	}, s.handle)

	return s
}

// Serve reads requests from in and writes responses to out until ctx is
// cancelled or the transport closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return s.run(ctx, &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	})
}

func (s *Server) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

func (s *Server) handle(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in Input
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &in); err != nil {
			return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
	}

	text, err := s.gen.Generate(ctx, in.toPrompt())
	if err != nil {
		return errorResult(err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
