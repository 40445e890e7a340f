package db

import (
	"testing"
	"time"

	"github.com/dtnitsch/llm-chat-extractor/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Use in-memory database for tests
	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func diag(typ models.DiagnosticType, engine, reason string) models.Diagnostic {
	return models.Diagnostic{
		Type:        typ,
		Engine:      engine,
		Segment:     1,
		Reason:      reason,
		Snippet:     "1. **---**",
		MessageHash: "abc123",
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestInsertAndListDiagnostics(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.Record(diag(models.DiagnosticDropped, "products", "no title resolved")); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	classified := models.Diagnostic{Type: models.DiagnosticClassified, Kind: models.ContentProducts, Engine: "facade", Segment: -1, MessageHash: "abc123"}
	if err := db.Record(classified); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	rows, err := db.ListDiagnostics(DiagnosticFilter{})
	if err != nil {
		t.Fatalf("ListDiagnostics() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListDiagnostics() returned %d rows, want 2", len(rows))
	}

	// Newest first
	if rows[0].Type != models.DiagnosticClassified || rows[0].Kind != models.ContentProducts {
		t.Errorf("rows[0] = %+v, want classified products", rows[0].Diagnostic)
	}
	if rows[1].Reason != "no title resolved" || rows[1].Segment != 1 || rows[1].Engine != "products" {
		t.Errorf("rows[1] = %+v", rows[1].Diagnostic)
	}
	if rows[1].RunID.Valid {
		t.Error("rows[1].RunID should be NULL")
	}
	if rows[1].CreatedAt.IsZero() {
		t.Error("rows[1].CreatedAt is zero")
	}
}

func TestListDiagnosticsFilter(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for _, d := range []models.Diagnostic{
		diag(models.DiagnosticDropped, "products", "no title resolved"),
		diag(models.DiagnosticDropped, "orders", "missing order number"),
		diag(models.DiagnosticFallback, "orders", "no orders extracted"),
		diag(models.DiagnosticDropped, "orders", "missing order number"),
	} {
		if err := db.Record(d); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter DiagnosticFilter
		want   int
	}{
		{"all", DiagnosticFilter{}, 4},
		{"engine", DiagnosticFilter{Engine: "orders"}, 3},
		{"type", DiagnosticFilter{Type: models.DiagnosticFallback}, 1},
		{"engine and type", DiagnosticFilter{Engine: "orders", Type: models.DiagnosticDropped}, 2},
		{"limit", DiagnosticFilter{Limit: 1}, 1},
		{"no match", DiagnosticFilter{Engine: "facade"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := db.ListDiagnostics(tt.filter)
			if err != nil {
				t.Fatalf("ListDiagnostics() error = %v", err)
			}
			if len(rows) != tt.want {
				t.Errorf("ListDiagnostics(%+v) returned %d rows, want %d", tt.filter, len(rows), tt.want)
			}
		})
	}
}

func TestStats(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	inputs := []models.Diagnostic{
		diag(models.DiagnosticDropped, "orders", "missing order number"),
		diag(models.DiagnosticDropped, "orders", "missing order number"),
		diag(models.DiagnosticDropped, "products", "no title resolved"),
		diag(models.DiagnosticFallback, "products", "no products extracted"),
		{Type: models.DiagnosticClassified, Kind: models.ContentText, Engine: "facade", MessageHash: "h"},
		{Type: models.DiagnosticClassified, Kind: models.ContentOrders, Engine: "facade", MessageHash: "h"},
	}
	for _, d := range inputs {
		if err := db.Record(d); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	stats, err := db.Stats(2)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.Total != 6 {
		t.Errorf("Total = %d, want 6", stats.Total)
	}
	if stats.ByType[models.DiagnosticDropped] != 3 {
		t.Errorf("ByType[dropped] = %d, want 3", stats.ByType[models.DiagnosticDropped])
	}
	if stats.ByKind[models.ContentText] != 1 || stats.ByKind[models.ContentOrders] != 1 {
		t.Errorf("ByKind = %v", stats.ByKind)
	}
	if len(stats.TopReasons) != 2 {
		t.Fatalf("TopReasons has %d entries, want 2", len(stats.TopReasons))
	}
	top := stats.TopReasons[0]
	if top.Engine != "orders" || top.Reason != "missing order number" || top.Count != 2 {
		t.Errorf("TopReasons[0] = %+v", top)
	}
}

func TestClearDiagnostics(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := db.Record(diag(models.DiagnosticDropped, "orders", "missing order number")); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	n, err := db.ClearDiagnostics()
	if err != nil {
		t.Fatalf("ClearDiagnostics() error = %v", err)
	}
	if n != 3 {
		t.Errorf("ClearDiagnostics() = %d, want 3", n)
	}

	rows, err := db.ListDiagnostics(DiagnosticFilter{})
	if err != nil {
		t.Fatalf("ListDiagnostics() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("%d rows left after clear", len(rows))
	}
}

func TestOpenPath(t *testing.T) {
	path := t.TempDir() + "/test.db"

	db, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath() error = %v", err)
	}
	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if err := db.Record(diag(models.DiagnosticDropped, "orders", "x")); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	db.Close()

	// Reopening must keep existing rows
	db, err = OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath() reopen error = %v", err)
	}
	defer db.Close()

	rows, err := db.ListDiagnostics(DiagnosticFilter{})
	if err != nil {
		t.Fatalf("ListDiagnostics() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("ListDiagnostics() after reopen = %d rows, want 1", len(rows))
	}
}
