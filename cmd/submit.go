package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samaralitalim/answersheet/internal/catalog"
	"github.com/samaralitalim/answersheet/internal/config"
	"github.com/samaralitalim/answersheet/internal/grading"
	"github.com/samaralitalim/answersheet/internal/images"
	"github.com/samaralitalim/answersheet/internal/models"
	"github.com/samaralitalim/answersheet/internal/results"
	"github.com/spf13/cobra"
)

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	var catalogID int
	var mode string
	var interval time.Duration
	var attempts int
	var output string

	cmd := &cobra.Command{
		Use:   "submit <image>",
		Short: "Upload an answer sheet and wait for its score",
		Long: `Uploads one answer sheet image to the grading server and polls until the
result is ready.

The image may be a local path or an http(s) URL. The catalog entry comes from
--catalog, or from the one stored with "catalog select".`,
		Example: `  # Grade against the selected catalog entry
  answersheet submit sheet.jpg

  # Send a gallery photo against entry 16 and keep the result
  answersheet submit IMG_0042.png --mode gallery --catalog 16 --output result.yaml

  # Poll longer on a slow server
  answersheet submit sheet.jpg --interval 5s --attempts 60`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := models.ParseMode(mode)
			if err != nil {
				return err
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("interval") {
				cfg.PollInterval = interval
			}
			if cmd.Flags().Changed("attempts") {
				cfg.PollAttempts = attempts
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			id, err := resolveCatalogID(cmd, cfg, cat, catalogID)
			if err != nil {
				return err
			}

			img, err := images.NewLoader().Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load image: %w", err)
			}

			now := time.Now()
			sub := &models.Submission{
				ID:            uuid.NewString(),
				CatalogID:     id,
				Mode:          m,
				State:         models.StateIdle,
				ImageFilename: img.Filename,
				ImageType:     img.ContentType,
				ImageWidth:    img.Width,
				ImageHeight:   img.Height,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if entry, ok := cat.Lookup(id); ok {
				sub.CatalogName = entry.Name
			}

			client := grading.NewClient(cfg)
			result, submitErr := client.Submit(cmd.Context(), grading.Request{
				Image:     img,
				CatalogID: id,
				Mode:      m,
			}, func(p grading.Progress) {
				if err := p.Apply(sub); err != nil {
					slog.Debug("Ignoring progress", "error", err)
					return
				}
				switch {
				case p.State == models.StatePolling && p.Attempt > 0:
					slog.Info("Waiting for result", "attempt", p.Attempt, "max_attempts", cfg.PollAttempts)
				case p.State == models.StatePolling:
					slog.Info("Polling for result", "interval", cfg.PollInterval)
				}
			})
			if submitErr != nil && !sub.State.Terminal() {
				_ = grading.Progress{State: models.StateFailed, Err: submitErr}.Apply(sub)
			}

			if output != "" {
				if err := results.Write(output, []results.Record{results.FromSubmission(sub)}); err != nil {
					return errors.Join(submitErr, err)
				}
				slog.Info("Result written", "path", output)
			}

			if submitErr != nil {
				return submitErr
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return nil
		},
	}

	cmd.Flags().IntVarP(&catalogID, "catalog", "c", 0, "Catalog entry id (defaults to the selected one)")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(models.ModeCamera), "Upload mode: camera or gallery")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Delay before each status check (default from config)")
	cmd.Flags().IntVar(&attempts, "attempts", 0, "Maximum status checks (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a .yaml, .json or .parquet file")

	return cmd
}

// resolveCatalogID prefers the flag and falls back to the stored selection
func resolveCatalogID(cmd *cobra.Command, cfg *config.Config, cat *catalog.Catalog, flagID int) (int, error) {
	if cmd.Flags().Changed("catalog") {
		if _, ok := cat.Lookup(flagID); !ok {
			return 0, fmt.Errorf("catalog id %d not found", flagID)
		}
		return flagID, nil
	}

	prefs, err := openPreferences(cfg)
	if err != nil {
		return 0, err
	}
	id, ok := prefs.SelectedCatalog()
	if !ok {
		return 0, grading.ErrNoCatalogSelected
	}
	return id, nil
}
