package store

import (
	"context"
	"path/filepath"
	"testing"
)

// setupTestStore creates a migrated SQLite store backed by a temp file.
func setupTestStore(t *testing.T) *RowStore {
	t.Helper()

	s, err := New(Config{
		Driver: string(DialectSQLite),
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreLifecycle(t *testing.T) {
	s, err := New(Config{
		Driver: string(DialectSQLite),
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := s.HealthCheck(ctx); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	if _, err := New(Config{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestStoreMigrations(t *testing.T) {
	s := setupTestStore(t)

	ctx := context.Background()
	tables := []string{"server_config", "teams", "player_data", "cache"}
	for _, table := range tables {
		query := "SELECT COUNT(*) FROM " + table
		var count int
		if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			t.Errorf("table %s does not exist or is not accessible: %v", table, err)
		}
	}
}

func TestTableFieldsDropsLeadingID(t *testing.T) {
	s := setupTestStore(t)

	fields, err := s.TableFields(context.Background(), "server_config")
	if err != nil {
		t.Fatalf("failed to get fields: %v", err)
	}

	if len(fields) == 0 {
		t.Fatal("expected fields, got none")
	}
	if fields[0] != "server_id" {
		t.Errorf("expected first field server_id, got %s", fields[0])
	}
	for _, f := range fields {
		if f == "id" {
			t.Error("field list contains the synthetic id column")
		}
	}
}

func TestAddAndSearch(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	err := s.Add(ctx, "server_config", 1001, map[string]any{
		"prefix":      "!",
		"log_channel": int64(42),
	})
	if err != nil {
		t.Fatalf("failed to add row: %v", err)
	}

	row, err := s.Search(ctx, "server_config", Filter{Field: "server_id", Value: int64(1001)})
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if row == nil {
		t.Fatal("expected a row, got nil")
	}

	if _, ok := row["id"]; ok {
		t.Error("result contains the synthetic id column")
	}
	if row["server_id"] != int64(1001) {
		t.Errorf("expected server_id 1001, got %v", row["server_id"])
	}
	if row["prefix"] != "!" {
		t.Errorf("expected prefix %q, got %v", "!", row["prefix"])
	}
	if row["log_channel"] != int64(42) {
		t.Errorf("expected log_channel 42, got %v", row["log_channel"])
	}
}

func TestSearchNoMatch(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	row, err := s.Search(ctx, "server_config", Filter{Field: "server_id", Value: int64(9999)})
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if row != nil {
		t.Errorf("expected nil row, got %v", row)
	}

	all, err := s.SearchAll(ctx, "server_config", Filter{Field: "server_id", Value: int64(9999)})
	if err != nil {
		t.Fatalf("failed to search all: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected empty result, got %d rows", len(all))
	}
}

func TestSearchFirstOfAll(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "bravo", "charlie"} {
		err := s.Add(ctx, "teams", 7, map[string]any{"team_name": name})
		if err != nil {
			t.Fatalf("failed to add team %s: %v", name, err)
		}
	}

	all, err := s.SearchAll(ctx, "teams", Filter{Field: "server_id", Value: int64(7)})
	if err != nil {
		t.Fatalf("failed to search all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(all))
	}

	first, err := s.Search(ctx, "teams", Filter{Field: "server_id", Value: int64(7)})
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if first["team_name"] != all[0]["team_name"] {
		t.Errorf("Search returned %v, expected first of SearchAll %v", first["team_name"], all[0]["team_name"])
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Add(ctx, "teams", 7, map[string]any{"team_name": "alpha"}); err != nil {
		t.Fatalf("failed to add team: %v", err)
	}

	row, err := s.Search(ctx, "teams", Filter{
		Field:           "team_name",
		Value:           "Alpha",
		CaseInsensitive: true,
	})
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if row == nil {
		t.Fatal("expected case-insensitive match, got nil")
	}
	if row["team_name"] != "alpha" {
		t.Errorf("expected team_name alpha, got %v", row["team_name"])
	}

	// Case-sensitive search must not match.
	row, err = s.Search(ctx, "teams", Filter{Field: "team_name", Value: "Alpha"})
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if row != nil {
		t.Errorf("expected no case-sensitive match, got %v", row)
	}
}

func TestSearchWithClause(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Add(ctx, "teams", 1, map[string]any{"team_name": "alpha"}); err != nil {
		t.Fatalf("failed to add team: %v", err)
	}
	if err := s.Add(ctx, "teams", 2, map[string]any{"team_name": "alpha"}); err != nil {
		t.Fatalf("failed to add team: %v", err)
	}

	row, err := s.Search(ctx, "teams", Filter{
		Field: "team_name",
		Value: "alpha",
		Extra: ServerScope(2),
	})
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if row == nil {
		t.Fatal("expected a row, got nil")
	}
	if row["server_id"] != int64(2) {
		t.Errorf("expected server_id 2, got %v", row["server_id"])
	}
}

func TestUpdate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Add(ctx, "server_config", 5, map[string]any{"prefix": "!"}); err != nil {
		t.Fatalf("failed to add row: %v", err)
	}

	err := s.Update(ctx, "server_config", Filter{Field: "server_id", Value: int64(5)}, "prefix", "?")
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}

	row, err := s.Search(ctx, "server_config", Filter{Field: "server_id", Value: int64(5)})
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if row["prefix"] != "?" {
		t.Errorf("expected prefix %q, got %v", "?", row["prefix"])
	}
}

func TestUpdateMany(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Add(ctx, "server_config", 5, map[string]any{"prefix": "!", "timezone": "UTC"}); err != nil {
		t.Fatalf("failed to add row: %v", err)
	}

	err := s.UpdateMany(ctx, "server_config", Filter{Field: "server_id", Value: int64(5)}, map[string]any{
		"prefix":   "$",
		"timezone": "Europe/Berlin",
	})
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}

	row, err := s.Search(ctx, "server_config", Filter{Field: "server_id", Value: int64(5)})
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if row["prefix"] != "$" {
		t.Errorf("expected prefix $, got %v", row["prefix"])
	}
	if row["timezone"] != "Europe/Berlin" {
		t.Errorf("expected timezone Europe/Berlin, got %v", row["timezone"])
	}
}

func TestUpdateManyNoFields(t *testing.T) {
	s := setupTestStore(t)

	err := s.UpdateMany(context.Background(), "server_config",
		Filter{Field: "server_id", Value: int64(5)}, map[string]any{})
	if err == nil {
		t.Fatal("expected error for empty update set")
	}
}

func TestAddStructuredValue(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	availability := map[string]any{"monday": []string{"yes", "no"}}
	err := s.Add(ctx, "player_data", 9, map[string]any{
		"name":         "zenith",
		"date":         "2026-08-24",
		"availability": availability,
	})
	if err != nil {
		t.Fatalf("failed to add row: %v", err)
	}

	row, err := s.Search(ctx, "player_data", Filter{Field: "name", Value: "zenith"})
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if row == nil {
		t.Fatal("expected a row, got nil")
	}

	stored, ok := row["availability"].(string)
	if !ok {
		t.Fatalf("expected JSON text, got %T", row["availability"])
	}
	want := `{"monday":["yes","no"]}`
	if stored != want {
		t.Errorf("expected %s, got %s", want, stored)
	}
}

func TestUnknownTableRejected(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.Search(ctx, "users; DROP TABLE teams", Filter{Field: "x", Value: 1}); err == nil {
		t.Fatal("expected error for unknown table")
	}
	if err := s.Add(ctx, "users", 1, nil); err == nil {
		t.Fatal("expected error for unknown table")
	}
	if _, err := s.TableFields(ctx, "sqlite_master"); err == nil {
		t.Fatal("expected error for unknown table")
	}
}

func TestInvalidFieldRejected(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Search(ctx, "teams", Filter{Field: "team_name = '' OR 1=1 --", Value: "x"})
	if err == nil {
		t.Fatal("expected error for invalid field name")
	}

	err = s.Add(ctx, "teams", 1, map[string]any{"team_name, channels) VALUES ('x','y'); --": "boom"})
	if err == nil {
		t.Fatal("expected error for invalid field name")
	}
}
