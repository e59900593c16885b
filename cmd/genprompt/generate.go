package main

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/germanamz/genprompt/cmd/genprompt/internal/format"
	"github.com/germanamz/genprompt/cmd/genprompt/internal/spinner"
	"github.com/germanamz/genprompt/pkg/prompt"
	"github.com/germanamz/genprompt/pkg/promptclient"
	"github.com/spf13/cobra"
)

// DefaultPrompt is sent when no prompt text is given.
const DefaultPrompt = "What's a good name for a flower shop that specializes in selling bouquets of dried flowers?"

const defaultModelHint = promptclient.DefaultModel

type generateOptions struct {
	imageURI    string
	mimeType    string
	raw         bool
	interactive bool
}

func newGenerateCmd(g *globalOptions) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "genprompt [prompt text]",
		Short: "Send one prompt to a hosted generative model and print the answer",
		Long: "Send one prompt to a hosted generative model and print the answer.\n\n" +
			"The API key is read from GENAI_API_KEY (or GEMINI_API_KEY). When no prompt\n" +
			"text is given a default question is asked.\n\n" +
			"Prompts whose first word names a subcommand (serve, expenses, mcp, help)\n" +
			"must be quoted or placed after --:\n\n" +
			"  genprompt \"expenses for a flower shop\"\n" +
			"  genprompt -- expenses for a flower shop",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, g, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.imageURI, "image-uri", "", "URI of media to send before the prompt text, e.g. gs://bucket/image.jpg")
	flags.StringVar(&opts.mimeType, "mime-type", "", "MIME type of --image-uri (guessed from the extension when empty)")
	flags.BoolVar(&opts.raw, "raw", false, "print the answer without markdown rendering")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "edit the prompt in a form before sending")

	return cmd
}

func runGenerate(cmd *cobra.Command, g *globalOptions, opts generateOptions, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := g.load(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		text = DefaultPrompt
	}

	if opts.interactive {
		if err := askPrompt(&text, &opts); err != nil {
			return err
		}
	}

	p := buildPrompt(text, opts.imageURI, opts.mimeType)

	client, err := promptclient.New(ctx, cfg.Client, promptclient.WithLogger(logger))
	if err != nil {
		return err
	}

	stop := func() {}
	if f, ok := cmd.ErrOrStderr().(*os.File); ok && format.IsTerminal(f) && !g.verbose {
		stop = spinner.Start(f, "Generating...")
	}

	answer, err := client.Generate(ctx, p)
	stop()
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); ok && !opts.raw && format.IsTerminal(f) {
		if md, err := format.NewMarkdown(format.Width(f), ""); err == nil {
			answer = md.Render(answer)
		}
	}

	_, err = fmt.Fprintln(out, answer)
	return err
}

// buildPrompt returns a text prompt, or a media reference followed by the
// text when uri is set.
func buildPrompt(text, uri, mimeType string) prompt.Prompt {
	if uri == "" {
		return prompt.FromText(text)
	}
	if mimeType == "" {
		mimeType = mime.TypeByExtension(path.Ext(uri))
		if i := strings.IndexByte(mimeType, ';'); i >= 0 {
			mimeType = mimeType[:i]
		}
	}
	return prompt.WithMedia(uri, mimeType, text)
}

func askPrompt(text *string, opts *generateOptions) error {
	form := huh.NewForm(huh.NewGroup(
		huh.NewText().Title("Prompt").Value(text).Validate(notBlank),
		huh.NewInput().Title("Media URI (optional)").Placeholder("gs://bucket/image.jpg").Value(&opts.imageURI),
		huh.NewInput().Title("Media MIME type (optional)").Placeholder("image/jpeg").Value(&opts.mimeType),
	))

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("aborted")
		}
		return err
	}

	*text = strings.TrimSpace(*text)
	return nil
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("prompt must not be empty")
	}
	return nil
}
