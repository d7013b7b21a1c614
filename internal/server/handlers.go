package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursegrid/internal/course"
	"github.com/javiermolinar/coursegrid/internal/seats"
	"github.com/javiermolinar/coursegrid/internal/timetable"
)

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

type coursesResponse struct {
	QueryParams course.QueryParams `json:"query_params"`
	Courses     []*course.Course   `json:"courses"`
}

func (s *Server) listCourses(c *gin.Context) {
	courses := s.deps.Catalog.Courses()
	if courses == nil {
		courses = []*course.Course{}
	}
	c.JSON(http.StatusOK, coursesResponse{
		QueryParams: s.deps.Catalog.Params,
		Courses:     courses,
	})
}

func (s *Server) courseUpdate(c *gin.Context) {
	if s.deps.Seats == nil {
		c.JSON(http.StatusServiceUnavailable, errorBody("live seat counts are not configured"))
		return
	}
	q := seats.Query{
		Year:       c.Query("year"),
		Term:       c.Query("helf"),
		Department: c.Query("sclass"),
		Code:       c.Query("cono"),
		Name:       c.Query("coname"),
	}

	st, err := s.deps.Seats.Lookup(c.Request.Context(), q)
	switch {
	case errors.Is(err, seats.ErrMissingParams):
		c.JSON(http.StatusBadRequest, errorBody("Missing required query parameters."))
	case errors.Is(err, seats.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody(err.Error()))
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, errorBody(err.Error()))
	default:
		c.JSON(http.StatusOK, st)
	}
}

func (s *Server) getTimetable(c *gin.Context) {
	v, err := s.deps.Session.View(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// mutationResponse is returned by every timetable change. Warning is set
// when the change applied but could not be saved.
type mutationResponse struct {
	Timetable timetable.View `json:"timetable"`
	Warning   string         `json:"warning,omitempty"`
}

type conflictResponse struct {
	Error     string         `json:"error"`
	Slot      string         `json:"slot"`
	Occupant  string         `json:"occupant"`
	Timetable timetable.View `json:"timetable"`
}

func (s *Server) addCourse(c *gin.Context) {
	v, err := s.deps.Session.Add(c.Request.Context(), c.Param("id"))

	var conflict *timetable.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, conflictResponse{
			Error:     conflict.Error(),
			Slot:      conflict.Conflict.Slot.Key(),
			Occupant:  conflict.Conflict.Occupant,
			Timetable: v,
		})
	case errors.Is(err, course.ErrUnknownCourse):
		c.JSON(http.StatusNotFound, errorBody(err.Error()))
	default:
		s.mutationResult(c, v, err)
	}
}

func (s *Server) removeCourse(c *gin.Context) {
	v, err := s.deps.Session.Remove(c.Request.Context(), c.Param("id"))
	s.mutationResult(c, v, err)
}

func (s *Server) clearTimetable(c *gin.Context) {
	v, err := s.deps.Session.Clear(c.Request.Context())
	s.mutationResult(c, v, err)
}

func (s *Server) mutationResult(c *gin.Context, v timetable.View, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, mutationResponse{Timetable: v})
	case errors.Is(err, timetable.ErrPersist):
		s.logger.Warn("timetable change not saved", zap.Error(err))
		c.JSON(http.StatusOK, mutationResponse{Timetable: v, Warning: err.Error()})
	default:
		s.internalError(c, err)
	}
}

func (s *Server) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := http.StatusInternalServerError
	if errors.Is(err, timetable.ErrSessionClosed) {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, errorBody(err.Error()))
}
