package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samaralitalim/answersheet/internal/catalog"
	"github.com/samaralitalim/answersheet/internal/config"
	"github.com/samaralitalim/answersheet/internal/storage"
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every subcommand
type rootOptions struct {
	verbose     bool
	catalogFile string
	stateFile   string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "answersheet",
		Short: "Submit answer sheet photos for automatic grading",
		Long: `Answersheet uploads photos of completed answer sheets to the grading server
and waits for the score.

Pick the answer set to grade against with "catalog select", then submit
images with "submit" or run the web interface with "serve".`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			setupLogging(opts.verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.catalogFile, "catalog-file", "", "YAML file replacing the built-in catalog")
	cmd.PersistentFlags().StringVar(&opts.stateFile, "state-file", "", "Where the selected catalog id is stored")

	// Add subcommands
	cmd.AddCommand(newCatalogCmd(opts))
	cmd.AddCommand(newSubmitCmd(opts))
	cmd.AddCommand(newPreviewCmd(opts))
	cmd.AddCommand(newResultsCmd())
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// loadConfig reads the environment and applies the persistent flag overrides
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.catalogFile != "" {
		cfg.CatalogFile = o.catalogFile
	}
	if o.stateFile != "" {
		cfg.StateFile = o.stateFile
	}
	return cfg, nil
}

func openCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.Open(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

func openPreferences(cfg *config.Config) (*storage.Preferences, error) {
	prefs, err := storage.LoadPreferences(cfg.StateFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return prefs, nil
}
