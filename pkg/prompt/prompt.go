// Package prompt defines the input submitted to a generative model: an ordered
// list of parts, each either text or a reference to media.
//
// Part order is significant and is passed through unchanged to the remote
// service. No provider or API code lives here.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmpty is returned by Validate when a prompt has no parts.
	ErrEmpty = errors.New("prompt: at least one part is required")
	// ErrInvalidPart is returned by Validate when a part is malformed.
	ErrInvalidPart = errors.New("prompt: invalid part")
)

// Part is a piece of content within a prompt.
type Part interface {
	PartKind() string
}

// Text is a plain text part.
type Text struct {
	Text string
}

func (t Text) PartKind() string { return "text" }

// MediaRef points at a remote binary resource such as gs://bucket/image.jpg.
type MediaRef struct {
	URI      string
	MIMEType string
}

func (m MediaRef) PartKind() string { return "media_ref" }

// InlineData carries raw media bytes inside the request.
type InlineData struct {
	Data     []byte
	MIMEType string
}

func (d InlineData) PartKind() string { return "inline_data" }

// Prompt is an ordered sequence of parts.
type Prompt struct {
	Parts []Part
}

// New creates a prompt from parts, keeping their order.
func New(parts ...Part) Prompt {
	return Prompt{Parts: parts}
}

// FromText creates a text-only prompt.
func FromText(s string) Prompt {
	return New(Text{Text: s})
}

// WithMedia creates the multimodal variant: a media reference followed by the
// text that asks about it.
func WithMedia(uri, mimeType, text string) Prompt {
	return New(MediaRef{URI: uri, MIMEType: mimeType}, Text{Text: text})
}

// Validate checks that the prompt has at least one part and that every part
// carries the fields the remote service needs.
func (p Prompt) Validate() error {
	if len(p.Parts) == 0 {
		return ErrEmpty
	}

	for i, part := range p.Parts {
		switch v := part.(type) {
		case Text:
			if strings.TrimSpace(v.Text) == "" {
				return fmt.Errorf("%w: part %d: empty text", ErrInvalidPart, i)
			}
		case MediaRef:
			if v.URI == "" {
				return fmt.Errorf("%w: part %d: empty uri", ErrInvalidPart, i)
			}
			if v.MIMEType == "" {
				return fmt.Errorf("%w: part %d: missing mime type for %q", ErrInvalidPart, i, v.URI)
			}
		case InlineData:
			if len(v.Data) == 0 {
				return fmt.Errorf("%w: part %d: empty inline data", ErrInvalidPart, i)
			}
			if v.MIMEType == "" {
				return fmt.Errorf("%w: part %d: missing mime type", ErrInvalidPart, i)
			}
		case nil:
			return fmt.Errorf("%w: part %d: nil", ErrInvalidPart, i)
		default:
			return fmt.Errorf("%w: part %d: unsupported kind %q", ErrInvalidPart, i, part.PartKind())
		}
	}

	return nil
}

// TextContent returns the concatenation of all text parts.
func (p Prompt) TextContent() string {
	var sb strings.Builder
	for _, part := range p.Parts {
		if t, ok := part.(Text); ok {
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}

// HasMedia reports whether the prompt carries any non-text part.
func (p Prompt) HasMedia() bool {
	for _, part := range p.Parts {
		switch part.(type) {
		case MediaRef, InlineData:
			return true
		}
	}
	return false
}
