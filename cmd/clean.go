package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"aqdash/internal/dataset"
	"aqdash/internal/modules/airquality/export"
)

func newCleanCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Load and clean the data file, then print a report",
		Long: `Load the CSV, strip units, apply the per-city corrections and fill missing
pollutant values with their city mean. With --out the cleaned table is written
as CSV, XLSX or JSON depending on the file extension.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out != "" {
				if _, err := export.FormatForPath(out); err != nil {
					return fmt.Errorf("--out: %w", err)
				}
			}
			raw, err := dataset.Load(opts.cfg.DataPath)
			if err != nil {
				return err
			}
			ds, rep := dataset.Clean(raw, dataset.WithLogger(slog.Default()))
			slog.Debug("dataset cleaned", "report", rep)

			writeReport(cmd.OutOrStdout(), opts.cfg.DataPath, ds, rep)

			if out == "" {
				return nil
			}
			if err := export.WriteFile(out, ds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", ds.Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the cleaned table to this .csv, .xlsx or .json file")
	return cmd
}

func writeReport(w io.Writer, path string, ds dataset.Dataset, rep dataset.Report) {
	fmt.Fprintf(w, "file:      %s\n", path)
	fmt.Fprintf(w, "rows:      %d\n", rep.Rows)

	perCity := make(map[string]int)
	for _, r := range ds.Records {
		perCity[r.City]++
	}
	cities := ds.Cities()
	parts := make([]string, 0, len(cities))
	for _, c := range cities {
		parts = append(parts, fmt.Sprintf("%s (%d)", c, perCity[c]))
	}
	fmt.Fprintf(w, "cities:    %s\n", strings.Join(parts, ", "))
	if lo, hi, ok := ds.DateBounds(); ok {
		fmt.Fprintf(w, "dates:     %s .. %s\n", lo, hi)
	}

	rules := make([]string, 0, len(rep.Corrected))
	for name := range rep.Corrected {
		rules = append(rules, name)
	}
	sort.Strings(rules)
	for _, name := range rules {
		fmt.Fprintf(w, "corrected: %s %d\n", name, rep.Corrected[name])
	}
	fmt.Fprintf(w, "imputed:   %d\n", rep.Imputed)
	fmt.Fprintf(w, "unparsed:  %d\n", len(rep.Coercions))
	for _, c := range rep.Coercions {
		fmt.Fprintf(w, "  row %d %s: %q\n", c.Row, c.Column, c.Value)
	}
	for _, g := range rep.EmptyGroups {
		fmt.Fprintf(w, "no values: %s %s (left missing)\n", g.City, g.Column)
	}
}
