package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/javiermolinar/coursegrid/internal/catalog"
	"github.com/javiermolinar/coursegrid/internal/course"
	"github.com/javiermolinar/coursegrid/internal/db"
	"github.com/javiermolinar/coursegrid/internal/server"
	"github.com/javiermolinar/coursegrid/internal/timetable"
)

const catalogJSON = `{
	"query_params": {"OpenYear": "114", "Helf": "1"},
	"courses": [
		{"id": "AM101", "name": "微積分", "teacher": "林", "department": "AM", "code": "101", "credits": 3, "time": {"Mon": ["1", "2"]}},
		{"id": "AP100", "name": "物理", "teacher": "陳", "department": "AP", "code": "100", "credits": 2, "time": {"Mon": ["2"], "Wed": ["3"]}},
		{"id": "WL200", "name": "英文", "teacher": "王", "department": "WL", "code": "200", "credits": 2, "time": {"Tue": ["5", "6"]}},
		{"id": "CS300", "name": "專題", "teacher": "李", "department": "CS", "code": "300", "credits": 1, "time": {}}
	]
}`

// openRepo creates a fresh database for each test with automatic cleanup.
func openRepo(t *testing.T) (*db.SQLite, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo, dbPath
}

// loadCatalog writes the fixture to disk and loads it the way the CLI does.
func loadCatalog(t *testing.T) *course.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "courses.json")
	if err := os.WriteFile(path, []byte(catalogJSON), 0o644); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}
	cat, err := catalog.Load(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	return cat
}

func newEngine(cat *course.Catalog, repo *db.SQLite) *timetable.Engine {
	return timetable.NewEngine(cat, timetable.WithStore(timetable.NewStore(repo, nil)))
}

func sortedIDs(e *timetable.Engine) []string {
	ids := e.AddedIDs()
	sort.Strings(ids)
	return ids
}

func TestTimetableSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cat := loadCatalog(t)
	repo, dbPath := openRepo(t)

	first := newEngine(cat, repo)
	for _, id := range []string{"AM101", "WL200", "CS300"} {
		if _, err := first.Add(ctx, cat.Get(id), false); err != nil {
			t.Fatalf("Add(%s) failed: %v", id, err)
		}
	}
	if err := first.Remove(ctx, "CS300"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	_ = repo.Close()

	// Reopen the file as a new process would.
	reopened, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("reopening db: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	second := newEngine(cat, reopened)
	res, err := second.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if len(res.Restored) != 2 || len(res.Unknown) != 0 || len(res.Conflicting) != 0 {
		t.Errorf("unexpected restore result %+v", res)
	}
	if got := sortedIDs(second); len(got) != 2 || got[0] != "AM101" || got[1] != "WL200" {
		t.Errorf("restored ids = %v", got)
	}
	if second.TotalCredits() != 5 {
		t.Errorf("total credits = %v, want 5", second.TotalCredits())
	}
	if len(second.Slots()) != 4 {
		t.Errorf("expected 4 occupied slots, got %d", len(second.Slots()))
	}
}

func TestAPIChangesAreVisibleToNextSession(t *testing.T) {
	ctx := context.Background()
	cat := loadCatalog(t)
	repo, _ := openRepo(t)

	session := timetable.NewSession(newEngine(cat, repo))
	defer session.Close()
	srv := httptest.NewServer(server.New(server.Deps{Catalog: cat, Session: session}).Handler())
	defer srv.Close()

	post := func(id string) *http.Response {
		t.Helper()
		resp, err := http.Post(srv.URL+"/api/timetable/"+id, "application/json", nil)
		if err != nil {
			t.Fatalf("POST %s: %v", id, err)
		}
		return resp
	}

	resp := post("AM101")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add status = %d", resp.StatusCode)
	}

	resp = post("AP100")
	var conflict map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&conflict)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("conflicting add status = %d, want 409", resp.StatusCode)
	}
	if len(conflict) == 0 {
		t.Error("conflict response should have a body")
	}

	resp = post("NOPE")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown course status = %d, want 404", resp.StatusCode)
	}

	next := newEngine(cat, repo)
	if _, err := next.Restore(ctx); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := sortedIDs(next); len(got) != 1 || got[0] != "AM101" {
		t.Errorf("next session sees %v, want [AM101]", got)
	}
}

func TestCatalogOverHTTP(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogJSON))
	}))
	defer backend.Close()

	cat, err := catalog.Load(context.Background(), backend.URL+"/courses.json", nil)
	if err != nil {
		t.Fatalf("loading remote catalog: %v", err)
	}
	if cat.Len() != 4 || cat.Params.OpenYear != "114" {
		t.Errorf("unexpected catalog: %d courses, params %+v", cat.Len(), cat.Params)
	}

	e := timetable.NewEngine(cat)
	p, err := e.Add(context.Background(), cat.Get("CS300"), false)
	if err != nil {
		t.Fatalf("adding a course without meeting times: %v", err)
	}
	if p.HasPrimary() || e.TotalCredits() != 1 {
		t.Errorf("unplaced course should count credits only, got primary=%v total=%v", p.HasPrimary(), e.TotalCredits())
	}
}
