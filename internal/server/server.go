// Package server exposes the catalog and a shared timetable over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursegrid/internal/course"
	"github.com/javiermolinar/coursegrid/internal/seats"
	"github.com/javiermolinar/coursegrid/internal/timetable"
)

// SeatLookup resolves live seat counts. *seats.Client satisfies it.
type SeatLookup interface {
	Lookup(ctx context.Context, q seats.Query) (seats.Status, error)
}

// Deps are the collaborators of the API.
type Deps struct {
	Catalog             *course.Catalog
	Session             *timetable.Session
	Seats               SeatLookup // optional
	UpdateRatePerMinute int
	Logger              *zap.Logger
}

// Server is the HTTP API.
type Server struct {
	deps   Deps
	engine *gin.Engine
	logger *zap.Logger
}

// New builds the router.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	s := &Server{deps: deps, logger: deps.Logger}
	s.engine = s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger(s.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/courses", s.listCourses)
		api.GET("/course-update", RateLimit(s.deps.UpdateRatePerMinute), s.courseUpdate)

		tt := api.Group("/timetable")
		{
			tt.GET("", s.getTimetable)
			tt.DELETE("", s.clearTimetable)
			tt.POST("/:id", s.addCourse)
			tt.DELETE("/:id", s.removeCourse)
		}
	}
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
