package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/samaralitalim/answersheet/internal/catalog"
	"github.com/spf13/cobra"
)

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List and select the answer set to grade against",
	}

	cmd.AddCommand(newCatalogListCmd(opts))
	cmd.AddCommand(newCatalogSelectCmd(opts))
	cmd.AddCommand(newCatalogShowCmd(opts))

	return cmd
}

func newCatalogListCmd(opts *rootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		Example: `  # Every entry
  answersheet catalog list

  # Only module tests
  answersheet catalog list --filter module`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := catalog.ParseFilter(filter)
			if err != nil {
				return err
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			prefs, err := openPreferences(cfg)
			if err != nil {
				return err
			}
			selected, _ := prefs.SelectedCatalog()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range cat.Filter(f) {
				marker := " "
				if e.ID == selected {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", marker, e.ID, e.Name, e.Category)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", string(catalog.FilterAll), "Category to show (all, date, test, module, practice)")

	return cmd
}

func newCatalogSelectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "select <id>",
		Short:   "Remember the catalog entry used by later submissions",
		Example: `  answersheet catalog select 16`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid catalog id %q: %w", args[0], err)
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			entry, ok := cat.Lookup(id)
			if !ok {
				return fmt.Errorf("catalog id %d not found", id)
			}

			prefs, err := openPreferences(cfg)
			if err != nil {
				return err
			}
			if err := prefs.SelectCatalog(entry.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Selected %d: %s\n", entry.ID, entry.Name)
			return nil
		},
	}
}

func newCatalogShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the selected catalog entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			prefs, err := openPreferences(cfg)
			if err != nil {
				return err
			}
			id, ok := prefs.SelectedCatalog()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No catalog entry selected")
				return nil
			}

			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			if entry, ok := cat.Lookup(id); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", entry.ID, entry.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%d (not in the current catalog)\n", id)
			}
			return nil
		},
	}
}
