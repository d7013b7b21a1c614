package ui

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursegrid/internal/course"
	"github.com/javiermolinar/coursegrid/internal/seats"
)

func (a *App) coursesCmd() *cobra.Command {
	var (
		filter  course.Filter
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List catalog courses",
		Long: `List the courses in the catalog.

Courses already on your timetable are marked ●, courses that would conflict
with it are marked ✗.`,
		Example: `  coursegrid courses
  coursegrid courses --dept CS
  coursegrid courses --search 微積分`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}

			courses := filter.Apply(e.Catalog().Courses())
			out := cmd.OutOrStdout()
			if len(courses) == 0 {
				fmt.Fprintln(out, "No courses match.")
				return nil
			}

			opts := PrintOpts{Verbose: verbose}
			if isTerminal() {
				opts.Width = termWidth()
			}
			for _, c := range courses {
				PrintCourseRow(out, c, rowMarker(e, c), opts)
			}
			fmt.Fprintln(out, formatMuted(fmt.Sprintf("\n%d / %d courses", len(courses), e.Catalog().Len())))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Department, "dept", "", "Department code (see 'coursegrid depts')")
	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "Match course name, teacher or code")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show classrooms")
	return cmd
}

func (a *App) deptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "depts",
		Short: "List departments in the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := a.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}

			counts := make(map[string]int)
			for _, c := range cat.Courses() {
				counts[c.Department]++
			}
			out := cmd.OutOrStdout()
			for _, code := range course.Departments(cat.Courses()) {
				fmt.Fprintf(out, "%s %s %s\n",
					pad(code, 5),
					pad(course.DepartmentName(code), 24),
					formatMuted(fmt.Sprintf("%d", counts[code])),
				)
			}
			return nil
		},
	}
}

func (a *App) showCmd() *cobra.Command {
	var (
		live     bool
		copyCode bool
	)

	cmd := &cobra.Command{
		Use:   "show <course-id>",
		Short: "Show one course",
		Long: `Show every detail of a course.

--live asks the backend for current enrollment numbers. --copy puts the
registration code on the clipboard.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := a.loadCatalog(ctx)
			if err != nil {
				return err
			}
			c, err := lookupCourse(cat, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			PrintCourseDetail(out, c, c.DetailURL(a.config.Catalog.DetailURL, cat.Params))

			if live {
				client := a.seatClient()
				if client == nil {
					return fmt.Errorf("live seats need [backend] base_url in the config")
				}
				st, err := client.Lookup(ctx, seatQuery(cat.Params, c))
				if err != nil {
					return fmt.Errorf("fetching seats: %w", err)
				}
				fmt.Fprintf(out, "  %s %s\n", pad("選課狀況", 8), formatSeats(fmt.Sprintf(
					"已選 %s · 線上 %s · 餘額 %s", st.Confirmed, st.OnlineCount, st.Remaining)))
			}

			if copyCode {
				if err := clipboard.WriteAll(c.RegistrationCode()); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintf(out, "Copied %s\n", c.RegistrationCode())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "Fetch live enrollment numbers")
	cmd.Flags().BoolVar(&copyCode, "copy", false, "Copy the registration code to the clipboard")
	return cmd
}

func seatQuery(p course.QueryParams, c *course.Course) seats.Query {
	return seats.Query{
		Year:       p.OpenYear,
		Term:       p.Helf,
		Department: c.Department,
		Code:       c.Code,
		Name:       c.Name,
	}
}
