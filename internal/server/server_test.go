package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/javiermolinar/coursegrid/internal/course"
	"github.com/javiermolinar/coursegrid/internal/seats"
	"github.com/javiermolinar/coursegrid/internal/timetable"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockSeats struct {
	status seats.Status
	err    error
	calls  int
}

func (m *mockSeats) Lookup(_ context.Context, q seats.Query) (seats.Status, error) {
	m.calls++
	if err := q.Validate(); err != nil {
		return seats.Status{}, err
	}
	return m.status, m.err
}

func newTestServer(t *testing.T, rate int) (*Server, *mockSeats) {
	t.Helper()
	courses := []*course.Course{
		{ID: "X", Name: "Compilers", Credits: 3, Time: course.TimeSpec{course.Mon: {"1", "2"}}},
		{ID: "Y", Name: "Networks", Credits: 2, Time: course.TimeSpec{course.Mon: {"2"}}},
		{ID: "Z", Name: "Databases", Credits: 3, Time: course.TimeSpec{course.Tue: {"3"}}},
	}
	cat, _ := course.NewCatalog(course.QueryParams{OpenYear: "114", Helf: "1"}, courses)
	engine := timetable.NewEngine(cat, timetable.WithStore(timetable.NewStore(timetable.NewMemoryKV(), nil)))
	session := timetable.NewSession(engine)
	t.Cleanup(session.Close)

	ms := &mockSeats{status: seats.Status{Confirmed: "10", OnlineCount: "3", Remaining: "5"}}
	return New(Deps{Catalog: cat, Session: session, Seats: ms, UpdateRatePerMinute: rate}), ms
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, 0)
	w := do(t, s, http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("expected a generated request id")
	}
}

func TestRequestID_Echoed(t *testing.T) {
	s, _ := newTestServer(t, 0)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("expected request id echoed, got %q", got)
	}
}

func TestListCourses(t *testing.T) {
	s, _ := newTestServer(t, 0)
	w := do(t, s, http.MethodGet, "/api/courses")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode[coursesResponse](t, w)
	if body.QueryParams.OpenYear != "114" || len(body.Courses) != 3 {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestTimetableLifecycle(t *testing.T) {
	s, _ := newTestServer(t, 0)

	w := do(t, s, http.MethodPost, "/api/timetable/X")
	if w.Code != http.StatusOK {
		t.Fatalf("add X: expected 200, got %d: %s", w.Code, w.Body)
	}
	added := decode[mutationResponse](t, w)
	if added.Timetable.TotalCredits != 3 || added.Timetable.Slots["Mon-1"] != "X" {
		t.Errorf("unexpected timetable %+v", added.Timetable)
	}

	w = do(t, s, http.MethodPost, "/api/timetable/Y")
	if w.Code != http.StatusConflict {
		t.Fatalf("add Y: expected 409, got %d", w.Code)
	}
	conflict := decode[conflictResponse](t, w)
	if conflict.Slot != "Mon-2" || conflict.Occupant != "X" {
		t.Errorf("unexpected conflict %+v", conflict)
	}
	if len(conflict.Timetable.Courses) != 1 {
		t.Error("conflict must leave the timetable unchanged")
	}

	w = do(t, s, http.MethodPost, "/api/timetable/nope")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown course: expected 404, got %d", w.Code)
	}

	_ = do(t, s, http.MethodPost, "/api/timetable/Z")
	w = do(t, s, http.MethodDelete, "/api/timetable/X")
	if w.Code != http.StatusOK {
		t.Fatalf("remove X: expected 200, got %d", w.Code)
	}
	if got := decode[mutationResponse](t, w).Timetable.TotalCredits; got != 3 {
		t.Errorf("expected 3 credits after removing X, got %v", got)
	}

	w = do(t, s, http.MethodGet, "/api/timetable")
	view := decode[timetable.View](t, w)
	if len(view.Courses) != 1 || view.Courses[0].ID != "Z" {
		t.Errorf("expected only Z, got %+v", view.Courses)
	}

	w = do(t, s, http.MethodDelete, "/api/timetable")
	if got := decode[mutationResponse](t, w).Timetable; len(got.Courses) != 0 || got.TotalCredits != 0 {
		t.Errorf("expected empty timetable after clear, got %+v", got)
	}
}

func TestCourseUpdate(t *testing.T) {
	s, ms := newTestServer(t, 0)

	params := url.Values{"year": {"114"}, "helf": {"1"}, "sclass": {"CS"}, "cono": {"101"}}
	w := do(t, s, http.MethodGet, "/api/course-update?"+params.Encode())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if st := decode[seats.Status](t, w); st.Remaining != "5" {
		t.Errorf("unexpected status %+v", st)
	}

	w = do(t, s, http.MethodGet, "/api/course-update?year=114")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing params: expected 400, got %d", w.Code)
	}

	ms.err = seats.ErrUnavailable
	w = do(t, s, http.MethodGet, "/api/course-update?"+params.Encode())
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("backend failure: expected 503, got %d", w.Code)
	}

	ms.err = fmt.Errorf("%w: course 101", seats.ErrNotFound)
	w = do(t, s, http.MethodGet, "/api/course-update?"+params.Encode())
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown course: expected 404, got %d", w.Code)
	}
}

func TestCourseUpdate_RateLimited(t *testing.T) {
	s, ms := newTestServer(t, 2)
	params := url.Values{"year": {"114"}, "helf": {"1"}, "sclass": {"CS"}, "cono": {"101"}}

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = do(t, s, http.MethodGet, "/api/course-update?"+params.Encode()).Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected [200 200 429], got %v", codes)
	}
	if ms.calls != 2 {
		t.Errorf("limited request must not reach the lookup, got %d calls", ms.calls)
	}

	// Other routes are not limited.
	if w := do(t, s, http.MethodGet, "/api/timetable"); w.Code != http.StatusOK {
		t.Errorf("expected timetable to stay reachable, got %d", w.Code)
	}
}

func TestIPLimiter_DropsIdleVisitors(t *testing.T) {
	l := newIPLimiter(rate.Every(time.Hour), 1, 50*time.Millisecond)

	if !l.get("10.0.0.1").Allow() {
		t.Fatal("first request should be allowed")
	}
	if l.get("10.0.0.1").Allow() {
		t.Fatal("second request should be limited")
	}
	if n := l.visitors.ItemCount(); n != 1 {
		t.Fatalf("expected 1 tracked visitor, got %d", n)
	}

	time.Sleep(100 * time.Millisecond)
	l.visitors.DeleteExpired()
	if n := l.visitors.ItemCount(); n != 0 {
		t.Errorf("expected idle visitor to expire, got %d", n)
	}
	if !l.get("10.0.0.1").Allow() {
		t.Error("expired visitor should start with a fresh limiter")
	}
}

func TestClosedSession(t *testing.T) {
	s, _ := newTestServer(t, 0)
	s.deps.Session.Close()

	w := do(t, s, http.MethodGet, "/api/timetable")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
