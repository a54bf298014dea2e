package cmd

import (
	"fmt"

	"github.com/samaralitalim/answersheet/internal/images"
	"github.com/samaralitalim/answersheet/internal/transcribe"
	"github.com/spf13/cobra"
)

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	var provider string
	var model string

	cmd := &cobra.Command{
		Use:   "preview <image>",
		Short: "Read the answers on a sheet with a vision model before submitting",
		Long: `Sends the image to a vision-capable LLM and prints the answers it can read.

Use it to check that a photo is legible before spending a submission on it.
Nothing is sent to the grading server.`,
		Example: `  # Local Ollama
  answersheet preview sheet.jpg

  # OpenAI with a specific model
  answersheet preview sheet.jpg --provider openai --model gpt-4o-mini`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if provider != "" {
				cfg.Provider = provider
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			img, err := images.NewLoader().Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load image: %w", err)
			}

			text, err := transcribe.NewService().Transcribe(cmd.Context(), img, cfg.Provider, model)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider: ollama, openai or gemini")
	cmd.Flags().StringVar(&model, "model", "", "Model name (provider default when empty)")

	return cmd
}
