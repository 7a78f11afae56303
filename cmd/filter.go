package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"aqdash/internal/dataset"
	"aqdash/internal/datastore"
	"aqdash/internal/modules/airquality/export"
)

func newFilterCmd(opts *rootOptions) *cobra.Command {
	var city, start, end, format string
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Print the cleaned rows of one city within a date range",
		Long: `Print the cleaned rows of one city whose date falls within [start, end].
Without --city the first city of the file is used; without --start/--end the
full date range of the file is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return fmt.Errorf("--format: %w", err)
			}
			cache := datastore.NewCache(datastore.WithLogger(slog.Default()))
			ds, err := cache.Get(cmd.Context(), opts.cfg.DataPath)
			if err != nil {
				return err
			}

			lo, hi, _ := ds.DateBounds()
			if start != "" {
				if lo, err = dataset.ParseDate(start); err != nil {
					return fmt.Errorf("--start: %w", err)
				}
			}
			if end != "" {
				if hi, err = dataset.ParseDate(end); err != nil {
					return fmt.Errorf("--end: %w", err)
				}
			}
			if strings.TrimSpace(city) == "" {
				if cities := ds.Cities(); len(cities) > 0 {
					city = cities[0]
				}
			}

			filtered := dataset.Filter(ds, city, lo, hi)
			slog.Debug("filtered", "city", city, "start", lo, "end", hi, "rows", filtered.Len())
			return export.Write(cmd.OutOrStdout(), filtered, f)
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "city to select (default: first city in the file)")
	cmd.Flags().StringVar(&start, "start", "", "first date, YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&end, "end", "", "last date, YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&format, "format", string(export.CSV), "output format: csv, json or xlsx")
	return cmd
}
