package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/javiermolinar/coursegrid/internal/timetable"
)

var _ timetable.KV = (*SQLite)(nil)

func newTestRepo(t *testing.T) *SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestReadMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, ok, err := repo.Read(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if ok {
		t.Error("expected missing key")
	}
}

func TestWriteOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Write(ctx, "myTimetable", `["A"]`); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := repo.Write(ctx, "myTimetable", `["A","B"]`); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}

	got, ok, err := repo.Read(ctx, "myTimetable")
	if err != nil || !ok {
		t.Fatalf("Read failed: ok=%v err=%v", ok, err)
	}
	if got != `["A","B"]` {
		t.Errorf("expected latest value, got %s", got)
	}

	at, ok, err := repo.UpdatedAt(ctx, "myTimetable")
	if err != nil || !ok {
		t.Fatalf("UpdatedAt failed: ok=%v err=%v", ok, err)
	}
	if time.Since(at) > time.Minute {
		t.Errorf("unexpected updated_at %v", at)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_ = repo.Write(ctx, "k", "v")
	if err := repo.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repo.Delete(ctx, "k"); err != nil {
		t.Fatalf("deleting a missing key should succeed: %v", err)
	}
	if _, ok, _ := repo.Read(ctx, "k"); ok {
		t.Error("expected key to be gone")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_ = repo.Write(ctx, "k", "v")
	repo.Close()

	repo, err = New(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer repo.Close()

	if v, ok, _ := repo.Read(ctx, "k"); !ok || v != "v" {
		t.Errorf("expected v after reopen, got %q (ok=%v)", v, ok)
	}
}

func TestTimetableStoreOnSQLite(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	store := timetable.NewStore(repo, nil)

	if err := store.Save(ctx, []string{"B", "A"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	ids, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "A" || ids[1] != "B" {
		t.Errorf("expected [A B], got %v", ids)
	}
}
