package ui

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursegrid/internal/server"
	"github.com/javiermolinar/coursegrid/internal/timetable"
)

func (a *App) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog and timetable over HTTP",
		Long: `Start the HTTP API.

The timetable is restored from the database on start and saved after every
change, so the API and the other commands share one timetable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			e, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			session := timetable.NewSession(e)
			defer session.Close()

			deps := server.Deps{
				Catalog:             e.Catalog(),
				Session:             session,
				UpdateRatePerMinute: a.config.Server.UpdateRatePerMinute,
				Logger:              a.logger,
			}
			if sc := a.seatClient(); sc != nil {
				deps.Seats = sc
			}

			if addr == "" {
				addr = a.config.Server.Addr
			}
			a.logger.Info("catalog loaded", zap.Int("courses", e.Catalog().Len()))
			return server.New(deps).Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
