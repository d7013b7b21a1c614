package ui

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursegrid/internal/credit"
)

func (a *App) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Run the graduation credit analysis",
		Long: `Ask the backend for a graduation credit analysis and print it.

The backend signs in to the student system on your behalf, which can take a
while. Configure it under [backend].`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := credit.NewClient(a.config.Backend.BaseURL, a.config.BackendTimeout(), a.logger)

			fmt.Fprintln(cmd.ErrOrStderr(), formatMuted("Analyzing credits..."))
			res, err := client.Analyze(cmd.Context())
			if err != nil {
				var ae *credit.AnalysisError
				if errors.As(err, &ae) {
					return fmt.Errorf("analysis failed: %s", ae.Message)
				}
				return err
			}

			out := cmd.OutOrStdout()
			if res.Message != "" {
				fmt.Fprintln(out, formatMuted(res.Message))
			}
			return credit.Render(out, &res.Report)
		},
	}
}
