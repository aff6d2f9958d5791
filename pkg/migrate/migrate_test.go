package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func sqliteDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func trimLevelsFS() fstest.MapFS {
	return fstest.MapFS{
		"20260401000000_create_trims.sql": {Data: []byte("-- +goose Up\nCREATE TABLE trims (id integer PRIMARY KEY);\n-- +goose Down\nDROP TABLE trims;\n")},
		"20260402000000_add_trim_name.sql": {Data: []byte("-- +goose Up\nALTER TABLE trims ADD COLUMN name text;\n-- +goose Down\nSELECT 1;\n")},
	}
}

func TestRunnerUpStatusAndTo(t *testing.T) {
	ctx := context.Background()
	runner, err := newRunner(goose.DialectSQLite3, sqliteDB(t), trimLevelsFS())
	require.NoError(t, err)

	applied, err := runner.Up(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, int64(20260401000000), applied[0].Version)
	assert.Equal(t, "up", applied[0].Direction)

	statuses, err := runner.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	for _, st := range statuses {
		assert.True(t, st.Applied, st.Path)
	}

	again, err := runner.Up(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)

	down, err := runner.To(ctx, "20260401000000")
	require.NoError(t, err)
	require.Len(t, down, 1)
	assert.Equal(t, int64(20260402000000), down[0].Version)
	assert.Equal(t, "down", down[0].Direction)

	_, err = runner.To(ctx, "latest")
	assert.Error(t, err)
}

func TestNewRunnerRequiresDB(t *testing.T) {
	fsys, err := EmbeddedFS()
	require.NoError(t, err)
	_, err = NewRunner(nil, fsys)
	assert.Error(t, err)

	_, err = DiskFS("")
	assert.Error(t, err)
}

func TestEmbeddedMigrationsValidate(t *testing.T) {
	if err := ValidateFS(Migrations, EmbeddedDir); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
}

func TestMigrationsContainSchemas(t *testing.T) {
	checks := map[string][]string{
		"*_create_catalog_tables.sql": {
			"CREATE TABLE IF NOT EXISTS vehicle_models",
			"CREATE TABLE IF NOT EXISTS catalog_options",
			"CREATE INDEX IF NOT EXISTS idx_catalog_options_category_brand",
		},
		"*_create_configuration_drafts_table.sql": {
			"CREATE TABLE IF NOT EXISTS configuration_drafts",
			"payload jsonb NOT NULL",
		},
		"*_create_customers_tables.sql": {
			"CREATE TABLE IF NOT EXISTS customers",
			"CREATE TABLE IF NOT EXISTS verification_codes",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_email",
		},
		"*_create_orders_table.sql": {
			"CREATE TABLE IF NOT EXISTS orders",
			"financing jsonb NULL",
		},
	}

	for pattern, statements := range checks {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		if err != nil {
			t.Fatalf("glob migrations: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("expected one migration for %s, found %d", pattern, len(matches))
		}
		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read migration file: %v", err)
		}
		content := string(data)
		for _, sub := range statements {
			if !strings.Contains(content, sub) {
				t.Errorf("%s missing expected statement %q", matches[0], sub)
			}
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	restore := migrationClock
	migrationClock = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { migrationClock = restore })

	path, err := CreateSQLMigration(dir, "Add Trim Levels!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(path) != "20260302100000_add_trim_levels.sql" {
		t.Fatalf("unexpected filename %s", filepath.Base(path))
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}

	if _, err := CreateSQLMigration(dir, "add trim levels"); err == nil {
		t.Fatal("expected duplicate migration to fail")
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "create_things.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename to fail")
	}

	dir = t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20260302100000_things.sql"), []byte("-- +goose Up\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil || !strings.Contains(err.Error(), "goose Down") {
		t.Fatalf("expected missing down header error, got %v", err)
	}
}

func TestValidateFSRejectsReversedSections(t *testing.T) {
	fsys := fstest.MapFS{
		"20260403000000_reversed.sql": {Data: []byte("-- +goose Down\nDROP TABLE x;\n-- +goose Up\nCREATE TABLE x (id int);\n")},
	}
	err := ValidateFS(fsys, ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "precedes")

	require.NoError(t, ValidateFS(trimLevelsFS(), "."))
}
