package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursegrid/internal/export"
)

func (a *App) exportCmd() *cobra.Command {
	var (
		format string
		out    string
		weeks  int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the timetable as a spreadsheet or calendar",
		Long: `Export the saved timetable.

xlsx writes a single-sheet workbook laid out like the grid.
ics writes one weekly event per block of consecutive periods, timed by the
[periods] table and starting from [export] term_start.`,
		Example: `  coursegrid export --format xlsx --out timetable.xlsx
  coursegrid export --format ics --out timetable.ics --weeks 16`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(format)
			if format != "xlsx" && format != "ics" {
				return fmt.Errorf("unknown format %q: use xlsx or ics", format)
			}
			if out == "" {
				out = "timetable." + format
			}

			e, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			g := export.BuildGrid(e)
			if g.Empty() {
				return export.ErrEmptyTimetable
			}

			write := func(w io.Writer) error { return export.WriteXLSX(w, g, "課表") }
			if format == "ics" {
				opts, err := a.calendarOptions(weeks)
				if err != nil {
					return err
				}
				write = func(w io.Writer) error { return export.WriteICS(w, g, opts) }
			}

			if err := writeFile(out, write); err != nil {
				return fmt.Errorf("exporting %s: %w", format, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d courses)\n", out, len(g.Placements))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "Output format: xlsx or ics")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default timetable.<format>)")
	cmd.Flags().IntVar(&weeks, "weeks", export.DefaultWeeks, "Weeks per term, for ics")
	return cmd
}

func (a *App) calendarOptions(weeks int) (export.CalendarOptions, error) {
	start, ok := a.config.TermStart()
	if !ok {
		return export.CalendarOptions{}, fmt.Errorf("ics export needs [export] term_start in the config")
	}
	clock, err := export.ParseClock(a.config.Periods)
	if err != nil {
		return export.CalendarOptions{}, fmt.Errorf("reading [periods]: %w", err)
	}
	return export.CalendarOptions{
		Name:      "課表",
		TermStart: start,
		Weeks:     weeks,
		Clock:     clock,
	}, nil
}

// writeFile writes to a temporary file and renames it into place.
func writeFile(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
