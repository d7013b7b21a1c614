package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursegrid/internal/course"
	"github.com/javiermolinar/coursegrid/internal/dateutil"
	"github.com/javiermolinar/coursegrid/internal/export"
	"github.com/javiermolinar/coursegrid/internal/timetable"
)

func (a *App) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <course-id>...",
		Short: "Add courses to the timetable",
		Long: `Add one or more courses to the saved timetable.

A course that overlaps one already on the timetable is rejected and the
timetable is left unchanged.`,
		Example: `  coursegrid add CS101-王`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := a.openEngine(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, id := range args {
				c, err := lookupCourse(e.Catalog(), id)
				if err != nil {
					return err
				}
				if e.IsAdded(c.ID) {
					fmt.Fprintf(out, "%s is already on the timetable\n", c.Name)
					continue
				}
				if _, err := e.Add(ctx, c, false); err != nil {
					var ce *timetable.ConflictError
					if errors.As(err, &ce) {
						return errors.New(formatConflict(ce.Error()))
					}
					return err
				}
				fmt.Fprintf(out, "%s %s %s\n", formatAdded("Added"), c.Name, formatMuted(c.ID))
			}
			PrintTotals(out, len(e.AddedIDs()), e.TotalCredits())
			return nil
		},
	}
}

func (a *App) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <course-id>...",
		Aliases: []string{"rm"},
		Short:   "Remove courses from the timetable",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := a.openEngine(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, id := range args {
				if !e.IsAdded(id) {
					fmt.Fprintf(out, "%s is not on the timetable\n", id)
					continue
				}
				if err := e.Remove(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %s\n", id)
			}
			PrintTotals(out, len(e.AddedIDs()), e.TotalCredits())
			return nil
		},
	}
}

func (a *App) clearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every course from the timetable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := a.openEngine(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			n := len(e.AddedIDs())
			if n == 0 {
				fmt.Fprintln(out, "The timetable is already empty.")
				return nil
			}
			if !yes && !promptYesNo(cmd.InOrStdin(), out, fmt.Sprintf("Remove all %d courses?", n)) {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
			if err := e.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed %d courses.\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (a *App) gridCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grid",
		Short: "Print the weekly timetable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			g := export.BuildGrid(e)
			if g.Empty() {
				fmt.Fprintln(out, "The timetable is empty. Add courses with 'coursegrid add'.")
				return nil
			}

			colWidth := 12
			if isTerminal() {
				colWidth = max(6, min(16, (termWidth()-4)/len(course.Days)-1))
			}
			if start, ok := a.config.TermStart(); ok {
				if week, err := dateutil.TermWeek(start, time.Now()); err == nil {
					fmt.Fprintln(out, formatMuted(fmt.Sprintf("第 %d 週", week)))
				}
			}
			PrintGrid(out, g, colWidth)
			fmt.Fprintln(out)
			PrintTotals(out, len(g.Placements), g.TotalCredits)
			return nil
		},
	}
}

func (a *App) creditsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "credits",
		Short: "List timetable courses with their credits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			placements := e.Placements()
			if len(placements) == 0 {
				fmt.Fprintln(out, "The timetable is empty.")
				return nil
			}
			for _, p := range placements {
				c := p.Course
				fmt.Fprintf(out, "%s %s %s\n",
					pad(c.RegistrationCode(), 8),
					pad(c.Name, 24),
					padLeft(c.Credits.String(), 4),
				)
			}
			PrintTotals(out, len(placements), e.TotalCredits())
			return nil
		},
	}
}
