package database

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"
)

// migrationsDir returns the absolute path to db/migrations/ from the project root.
func migrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	// thisFile is internal/database/migrate_test.go, project root is two dirs up.
	projectRoot := filepath.Join(filepath.Dir(thisFile), "..", "..")
	dir := filepath.Join(projectRoot, "db", "migrations")
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("migrations directory not found at %s: %v", dir, err)
	}
	return dir
}

// TestMigrations_UpDownPairs ensures every .up.sql has a matching .down.sql.
func TestMigrations_UpDownPairs(t *testing.T) {
	dir := migrationsDir(t)
	upFiles, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing up files: %v", err)
	}
	if len(upFiles) == 0 {
		t.Fatal("no migration files found")
	}

	for _, up := range upFiles {
		down := strings.Replace(up, ".up.sql", ".down.sql", 1)
		if _, err := os.Stat(down); err != nil {
			t.Errorf("missing down migration for %s", filepath.Base(up))
		}
	}
}

// TestMigrations_Naming checks golang-migrate's NNNNNN_name.{up,down}.sql
// convention and that versions are not reused.
func TestMigrations_Naming(t *testing.T) {
	dir := migrationsDir(t)
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		t.Fatalf("globbing migration files: %v", err)
	}

	pattern := regexp.MustCompile(`^(\d{6})_[a-z0-9_]+\.(up|down)\.sql$`)
	seen := map[string]string{}
	for _, f := range files {
		name := filepath.Base(f)
		m := pattern.FindStringSubmatch(name)
		if m == nil {
			t.Errorf("%s: does not match NNNNNN_name.up.sql / .down.sql", name)
			continue
		}
		key := m[1] + "." + m[2]
		if prev, ok := seen[key]; ok {
			t.Errorf("version %s used by both %s and %s", m[1], prev, name)
		}
		seen[key] = name
	}
}

// TestMigrations_LocalStorageColumns keeps the schema in step with the
// columns the mysql storage backend queries.
func TestMigrations_LocalStorageColumns(t *testing.T) {
	dir := migrationsDir(t)
	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing migration files: %v", err)
	}

	var schema strings.Builder
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("reading %s: %v", f, err)
		}
		schema.Write(data)
	}

	all := schema.String()
	if !strings.Contains(all, "CREATE TABLE IF NOT EXISTS local_storage") {
		t.Fatal("no migration creates local_storage")
	}
	for _, col := range []string{"client_id", "item_key", "item_value", "updated_at"} {
		if !strings.Contains(all, col) {
			t.Errorf("local_storage is missing column %s", col)
		}
	}
	if !strings.Contains(all, "PRIMARY KEY (client_id, item_key)") {
		t.Error("upserts need PRIMARY KEY (client_id, item_key)")
	}
}
