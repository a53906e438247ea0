package persistence

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestReportStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.GetReport("/src/main.go", false)
	if err != nil {
		t.Fatalf("lookup on empty store: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected a miss, got %+v", rec)
	}

	saved := &ReportRecord{
		Path:        "/src/main.go",
		Nested:      false,
		Language:    "go",
		ContentHash: "abc123",
		Report:      "---\ntype : file\n",
		ErrorCount:  0,
		GeneratedAt: time.Now(),
	}
	if err := store.SaveReport(saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	rec, err = store.GetReport("/src/main.go", false)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a hit")
	}
	if rec.Language != "go" || rec.ContentHash != "abc123" || rec.Report != saved.Report {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.GeneratedAt.IsZero() {
		t.Fatal("expected generated_at to round-trip")
	}
}

func TestReportStoreModesAreDistinct(t *testing.T) {
	store := newTestStore(t)

	flat := &ReportRecord{Path: "/src/a.go", Nested: false, Language: "go", Report: "flat", GeneratedAt: time.Now()}
	nested := &ReportRecord{Path: "/src/a.go", Nested: true, Language: "go", Report: "nested", GeneratedAt: time.Now()}
	if err := store.SaveReport(flat); err != nil {
		t.Fatalf("save flat: %v", err)
	}
	if err := store.SaveReport(nested); err != nil {
		t.Fatalf("save nested: %v", err)
	}

	rec, err := store.GetReport("/src/a.go", true)
	if err != nil || rec == nil {
		t.Fatalf("get nested: %v %v", rec, err)
	}
	if rec.Report != "nested" {
		t.Fatalf("expected the nested rendering, got %q", rec.Report)
	}

	// Deleting a path drops both modes.
	if err := store.DeleteReport("/src/a.go"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec, _ := store.GetReport("/src/a.go", false); rec != nil {
		t.Fatalf("expected flat record gone, got %+v", rec)
	}
	if rec, _ := store.GetReport("/src/a.go", true); rec != nil {
		t.Fatalf("expected nested record gone, got %+v", rec)
	}
}

func TestReportStoreUpsert(t *testing.T) {
	store := newTestStore(t)

	first := &ReportRecord{Path: "/src/b.go", Language: "go", ContentHash: "v1", Report: "one", GeneratedAt: time.Now()}
	if err := store.SaveReport(first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := &ReportRecord{Path: "/src/b.go", Language: "go", ContentHash: "v2", Report: "two", GeneratedAt: time.Now()}
	if err := store.SaveReport(second); err != nil {
		t.Fatalf("resave: %v", err)
	}

	rec, err := store.GetReport("/src/b.go", false)
	if err != nil || rec == nil {
		t.Fatalf("get: %v %v", rec, err)
	}
	if rec.ContentHash != "v2" || rec.Report != "two" {
		t.Fatalf("expected the fresh record, got %+v", rec)
	}

	list, err := store.ListReports()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one record after upsert, got %d", len(list))
	}
}

func TestReportStoreListAndStats(t *testing.T) {
	store := newTestStore(t)

	records := []*ReportRecord{
		{Path: "/src/z.go", Language: "go", Report: "z", GeneratedAt: time.Now()},
		{Path: "/src/a.md", Language: "markdown", Report: "a", ErrorCount: 2, GeneratedAt: time.Now()},
		{Path: "/src/m.go", Language: "go", Report: "m", GeneratedAt: time.Now()},
	}
	for _, rec := range records {
		if err := store.SaveReport(rec); err != nil {
			t.Fatalf("save %s: %v", rec.Path, err)
		}
	}

	list, err := store.ListReports()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected three records, got %d", len(list))
	}
	if list[0].Path != "/src/a.md" || list[1].Path != "/src/m.go" || list[2].Path != "/src/z.go" {
		t.Fatalf("expected path order, got %s %s %s", list[0].Path, list[1].Path, list[2].Path)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalReports != 3 {
		t.Fatalf("expected three reports, got %d", stats.TotalReports)
	}
	if stats.ByLanguage["go"] != 2 || stats.ByLanguage["markdown"] != 1 {
		t.Fatalf("unexpected language breakdown: %v", stats.ByLanguage)
	}
	if stats.WithErrors != 1 {
		t.Fatalf("expected one report with errors, got %d", stats.WithErrors)
	}
	if stats.DatabaseSize <= 0 {
		t.Fatalf("expected a positive database size, got %d", stats.DatabaseSize)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	stats, err = store.Stats()
	if err != nil {
		t.Fatalf("stats after clear: %v", err)
	}
	if stats.TotalReports != 0 {
		t.Fatalf("expected empty store, got %d", stats.TotalReports)
	}
}
