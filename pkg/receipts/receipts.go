// Package receipts turns a receipt image into a categorized expense by asking
// a generative model for its description, amount and date.
package receipts

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/germanamz/genprompt/pkg/prompt"
)

// ExtractionPrompt is the instruction sent alongside the receipt image.
const ExtractionPrompt = "Extract key details from this receipt image, ensure there are only 3 keys as " +
	"[ description, amount and date] Any additional detail should be under the description key. " +
	"Do not highlight or BOLD any outputs and preferably post response in lowercase and omit any " +
	"Not available or missing data information"

// Unknown is the placeholder for fields the model did not return.
const Unknown = "Unknown"

// noOutput stands in for a blank model reply.
const noOutput = "No output generated"

// Category groups an expense.
type Category string

const (
	Travel        Category = "travel"
	Food          Category = "food"
	Office        Category = "office"
	Fuel          Category = "fuel"
	Miscellaneous Category = "miscellaneous"
)

// categoryKeywords is checked in order; the first category with a keyword
// contained in the description wins.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{Travel, []string{"flight", "hotel", "cab"}},
	{Food, []string{"restaurant", "grocery", "coffee"}},
	{Office, []string{"supplies", "software", "furniture"}},
	{Fuel, []string{"petrol", "diesel", "gas"}},
}

// Details are the fields extracted from a model reply.
type Details struct {
	Description string
	Date        string
	Amount      float64
}

var (
	descriptionRe = regexp.MustCompile(`(?i)description:\s*(.*)`)
	dateRe        = regexp.MustCompile(`(?i)date:\s*(.*)`)
	amountRe      = regexp.MustCompile(`(?i)(amount|total amount):\s*([\d.]+)`)
)

// Parse scans the reply line by line for "description:", "date:" and
// "amount:" (or "total amount:") entries. Later lines override earlier ones;
// missing fields keep their Unknown / zero defaults.
func Parse(output string) Details {
	d := Details{Description: Unknown, Date: Unknown}

	for _, line := range strings.Split(output, "\n") {
		if m := descriptionRe.FindStringSubmatch(line); m != nil {
			d.Description = strings.TrimSpace(m[1])
		}
		if m := dateRe.FindStringSubmatch(line); m != nil {
			d.Date = strings.TrimSpace(m[1])
		}
		if m := amountRe.FindStringSubmatch(line); m != nil {
			v, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				v = 0
			}
			d.Amount = v
		}
	}

	return d
}

// Categorize picks a category from keywords in the description.
func Categorize(d Details) Category {
	if d.Description == "" {
		return Miscellaneous
	}

	desc := strings.ToLower(d.Description)
	for _, ck := range categoryKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(desc, kw) {
				return ck.category
			}
		}
	}

	return Miscellaneous
}

// TextGenerator is the subset of the prompt client the extractor needs.
type TextGenerator interface {
	Generate(ctx context.Context, p prompt.Prompt) (string, error)
}

// Result is a parsed and categorized receipt.
type Result struct {
	Details
	Category Category
	Raw      string
}

// Extractor sends receipt images to a model and interprets the reply.
type Extractor struct {
	gen TextGenerator
}

// NewExtractor creates an Extractor backed by gen.
func NewExtractor(gen TextGenerator) *Extractor {
	return &Extractor{gen: gen}
}

// Extract asks the model to describe the image and parses its reply.
func (e *Extractor) Extract(ctx context.Context, image []byte, mimeType string) (Result, error) {
	p := prompt.New(
		prompt.Text{Text: ExtractionPrompt},
		prompt.InlineData{Data: image, MIMEType: mimeType},
	)

	out, err := e.gen.Generate(ctx, p)
	if err != nil {
		return Result{}, fmt.Errorf("receipts: extract: %w", err)
	}
	if strings.TrimSpace(out) == "" {
		out = noOutput
	}

	d := Parse(out)

	return Result{Details: d, Category: Categorize(d), Raw: out}, nil
}
