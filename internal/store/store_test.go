package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/solatis/typecodec/internal/codec/filterop"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), "sqlite://"+dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	row := map[string]any{
		"name":                "ada",
		"age@odata.type":      "Edm.Int64",
		"age":                 float64(36),
		"active":              true,
		"__bufchunks_profile": float64(0),
	}

	if err := s.PutRow(ctx, "entity-1", row); err != nil {
		t.Fatalf("PutRow: %v", err)
	}

	got, err := s.GetRow(ctx, "entity-1")
	if err != nil {
		t.Fatalf("GetRow: %v", err)
	}
	if got["name"] != "ada" {
		t.Fatalf("name = %v, want ada", got["name"])
	}
	if got["age"] != float64(36) {
		t.Fatalf("age = %v, want 36", got["age"])
	}
	if got["active"] != true {
		t.Fatalf("active = %v, want true", got["active"])
	}
}

func TestPutRowOverwritesPreviousCells(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.PutRow(ctx, "e", map[string]any{"a": "first", "b": "stale"}); err != nil {
		t.Fatalf("PutRow: %v", err)
	}
	if err := s.PutRow(ctx, "e", map[string]any{"a": "second"}); err != nil {
		t.Fatalf("PutRow: %v", err)
	}

	got, err := s.GetRow(ctx, "e")
	if err != nil {
		t.Fatalf("GetRow: %v", err)
	}
	if _, ok := got["b"]; ok {
		t.Fatal("expected stale cell 'b' to be cleared by the second PutRow")
	}
	if got["a"] != "second" {
		t.Fatalf("a = %v, want second", got["a"])
	}
}

func TestGetRowUnknownEntityReturnsEmptyMap(t *testing.T) {
	s := openTestStore(t)
	got, err := s.GetRow(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("GetRow: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

func TestFilterEntityIDs_StringEquality(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.PutRow(ctx, "entity-1", map[string]any{"name": "ada"}); err != nil {
		t.Fatalf("PutRow: %v", err)
	}
	if err := s.PutRow(ctx, "entity-2", map[string]any{"name": "grace"}); err != nil {
		t.Fatalf("PutRow: %v", err)
	}

	cond := filterop.Condition{Op: filterop.Eq, Operand: "ada", Category: filterop.CategoryString}
	ids, err := s.FilterEntityIDs(ctx, "name", cond)
	if err != nil {
		t.Fatalf("FilterEntityIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "entity-1" {
		t.Fatalf("FilterEntityIDs() = %v, want [entity-1]", ids)
	}
}

func TestFilterEntityIDs_NumberComparison(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.PutRow(ctx, "young", map[string]any{"age": float64(20)}); err != nil {
		t.Fatalf("PutRow: %v", err)
	}
	if err := s.PutRow(ctx, "old", map[string]any{"age": float64(60)}); err != nil {
		t.Fatalf("PutRow: %v", err)
	}

	cond := filterop.Condition{Op: filterop.Gt, Operand: 40, Category: filterop.CategoryNumber}
	ids, err := s.FilterEntityIDs(ctx, "age", cond)
	if err != nil {
		t.Fatalf("FilterEntityIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "old" {
		t.Fatalf("FilterEntityIDs() = %v, want [old]", ids)
	}
}

func TestFilterEntityIDs_NoMatches(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.PutRow(ctx, "entity-1", map[string]any{"name": "ada"}); err != nil {
		t.Fatalf("PutRow: %v", err)
	}

	cond := filterop.Condition{Op: filterop.Eq, Operand: "nobody", Category: filterop.CategoryString}
	ids, err := s.FilterEntityIDs(ctx, "name", cond)
	if err != nil {
		t.Fatalf("FilterEntityIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("FilterEntityIDs() = %v, want none", ids)
	}
}

func TestBuildFilterQuery_RejectsUnsupportedOperator(t *testing.T) {
	cond := filterop.Condition{Op: filterop.Op(99), Operand: "x", Category: filterop.CategoryString}
	if _, _, err := BuildFilterQuery("name", cond); err == nil {
		t.Fatal("expected error for unsupported operator")
	}
}
