package database

import (
	"context"
	"embed"
	"strings"
	"testing"
	"testing/fstest"
)

//go:embed testdata/*.sql
var fixtureFS embed.FS

// useFixtureMigrations points the package at the test migration set for
// the duration of one test: a scene_snapshots table plus a follow-up
// column addition.
func useFixtureMigrations(t *testing.T) {
	t.Helper()
	origFS, origDir := MigrationsFS, MigrationsDir
	MigrationsFS = fixtureFS
	MigrationsDir = "testdata"
	t.Cleanup(func() {
		MigrationsFS = origFS
		MigrationsDir = origDir
	})
}

// useMigrationFS points the package at an arbitrary in-memory migration
// set, for edge cases the on-disk fixtures do not cover.
func useMigrationFS(t *testing.T, fsys fstest.MapFS) {
	t.Helper()
	origFS, origDir := MigrationsFS, MigrationsDir
	MigrationsFS = fsys
	MigrationsDir = "."
	t.Cleanup(func() {
		MigrationsFS = origFS
		MigrationsDir = origDir
	})
}

// ─── Migrate ────────────────────────────────────────────────────────────────

func TestMigrateAppliesAllVersions(t *testing.T) {
	useFixtureMigrations(t)
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// Both migrations ran: the table exists and carries the column the
	// second migration added.
	if _, err := db.ExecContext(ctx,
		"INSERT INTO scene_snapshots (scene, taken_at, label) VALUES (?, ?, ?)",
		"lobby", "2026-08-01T12:00:00Z", "pre-show",
	); err != nil {
		t.Fatalf("insert into migrated table: %v", err)
	}

	applied, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 {
		t.Errorf("applied = %d, want 2", len(applied))
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
	if len(applied) == 2 && applied[0] > applied[1] {
		t.Errorf("applied versions out of order: %v", applied)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	useFixtureMigrations(t)
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("first Migrate() error = %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	applied, _, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 {
		t.Errorf("applied after rerun = %d, want 2", len(applied))
	}
}

func TestMigrateWithNoMigrations(t *testing.T) {
	origFS := MigrationsFS
	MigrationsFS = nil
	t.Cleanup(func() { MigrationsFS = origFS })

	db := openTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() with no migrations error = %v", err)
	}
}

func TestMigrateRejectsOrphanDownFile(t *testing.T) {
	useMigrationFS(t, fstest.MapFS{
		"20260803_080000_drop_legacy_snapshots.down.sql": &fstest.MapFile{
			Data: []byte("DROP TABLE legacy_snapshots;"),
		},
	})
	db := openTestDB(t)

	err := db.Migrate(context.Background())
	if err == nil || !strings.Contains(err.Error(), "no up file") {
		t.Errorf("Migrate() error = %v, want orphan down file rejection", err)
	}
}

// ─── MigrateDown ────────────────────────────────────────────────────────────

func TestMigrateDownRollsBackLatest(t *testing.T) {
	useFixtureMigrations(t)
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}

	// The label column from the second migration is gone, the table from
	// the first remains.
	if _, err := db.ExecContext(ctx,
		"INSERT INTO scene_snapshots (scene, taken_at, label) VALUES (?, ?, ?)",
		"lobby", "2026-08-01T12:00:00Z", "pre-show",
	); err == nil {
		t.Error("label column should be gone after rollback")
	}
	if _, err := db.ExecContext(ctx,
		"INSERT INTO scene_snapshots (scene, taken_at) VALUES (?, ?)",
		"lobby", "2026-08-01T12:00:00Z",
	); err != nil {
		t.Errorf("base table should survive rollback: %v", err)
	}

	applied, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 1 || len(pending) != 1 {
		t.Errorf("applied/pending = %d/%d, want 1/1", len(applied), len(pending))
	}
}

func TestMigrateDownOnEmptySchema(t *testing.T) {
	useFixtureMigrations(t)
	db := openTestDB(t)

	if err := db.MigrateDown(context.Background()); err != nil {
		t.Fatalf("MigrateDown() on empty schema error = %v", err)
	}
}

func TestMigrateDownRefusesMissingDownSQL(t *testing.T) {
	useMigrationFS(t, fstest.MapFS{
		"20260804_100000_create_residency_log.up.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE residency_log (id INTEGER PRIMARY KEY);"),
		},
	})
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	err := db.MigrateDown(ctx)
	if err == nil || !strings.Contains(err.Error(), "no down SQL") {
		t.Errorf("MigrateDown() error = %v, want missing down SQL rejection", err)
	}
}

// ─── Status ─────────────────────────────────────────────────────────────────

func TestMigrationStatusBeforeApply(t *testing.T) {
	useFixtureMigrations(t)
	db := openTestDB(t)

	applied, pending, err := db.MigrationStatus(context.Background())
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("applied = %d, want 0", len(applied))
	}
	if len(pending) != 2 {
		t.Errorf("pending = %d, want 2", len(pending))
	}
}

// ─── Filename parsing ───────────────────────────────────────────────────────

func TestSplitMigrationName(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion string
		wantName    string
		wantUp      bool
		wantOk      bool
	}{
		{
			filename:    "20260801_120000_create_scene_snapshots.up.sql",
			wantVersion: "20260801_120000",
			wantName:    "create_scene_snapshots",
			wantUp:      true,
			wantOk:      true,
		},
		{
			filename:    "20260802_090000_add_label_to_scene_snapshots.down.sql",
			wantVersion: "20260802_090000",
			wantName:    "add_label_to_scene_snapshots",
			wantUp:      false,
			wantOk:      true,
		},
		{filename: "README.md", wantOk: false},
		{filename: "20260801_120000_missing_direction.sql", wantOk: false},
		{filename: "20260801_120000.up.sql", wantOk: false},
		{filename: "create_scene_snapshots.up.sql", wantOk: false},
		{filename: "2026_0801_bad_stamp.up.sql", wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, up, ok := splitMigrationName(tt.filename)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if up != tt.wantUp {
				t.Errorf("up = %v, want %v", up, tt.wantUp)
			}
		})
	}
}
