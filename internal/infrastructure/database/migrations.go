package database

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// MigrationsFS holds the migration files. The migrations package assigns
// its embed.FS here at init time so schema changes ship inside the
// binary; tests may substitute any fs.FS. Nil means no migrations.
var MigrationsFS fs.FS

// MigrationsDir is the directory inside MigrationsFS holding the .sql
// files. "." when the files sit at the FS root.
var MigrationsDir = "migrations"

// migration pairs the up and down SQL for one schema version. Files
// follow the YYYYMMDD_HHMMSS_description.(up|down).sql naming; the
// timestamp prefix is the version and orders application.
type migration struct {
	version string
	name    string
	up      string
	down    string
}

// Migrate applies every pending migration, oldest version first.
//
// Each migration commits in its own transaction: a failure rolls back
// that migration only, earlier ones stay applied, and rerunning after a
// fix resumes from the failed version. Rerunning on an up-to-date schema
// is a no-op.
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.ensureVersionTable(ctx); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	all, err := readMigrations()
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}

	done := make(map[string]struct{}, len(applied))
	for _, v := range applied {
		done[v] = struct{}{}
	}

	for _, m := range all {
		if _, ok := done[m.version]; ok {
			continue
		}
		if err := db.applyUp(ctx, m); err != nil {
			return fmt.Errorf("migration %s (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

// MigrateDown rolls back the most recently applied migration. Intended
// for development and tests; it refuses versions that ship no down SQL.
// A schema with nothing applied is a no-op.
func (db *DB) MigrateDown(ctx context.Context) error {
	if err := db.ensureVersionTable(ctx); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return nil
	}
	latest := applied[len(applied)-1]

	all, err := readMigrations()
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	var target *migration
	for i := range all {
		if all[i].version == latest {
			target = &all[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration %s missing from embedded files", latest)
	}
	if target.down == "" {
		return fmt.Errorf("migration %s has no down SQL", latest)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, target.down); err != nil {
		return fmt.Errorf("executing down SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM schema_migrations WHERE version = ?", target.version,
	); err != nil {
		return fmt.Errorf("removing migration record: %w", err)
	}
	return tx.Commit()
}

// MigrationStatus reports applied and pending version strings, oldest
// first. Meant for tests and operational tooling.
func (db *DB) MigrationStatus(ctx context.Context) (applied, pending []string, err error) {
	if err := db.ensureVersionTable(ctx); err != nil {
		return nil, nil, fmt.Errorf("creating schema_migrations: %w", err)
	}

	applied, err = db.appliedVersions(ctx)
	if err != nil {
		return nil, nil, err
	}
	all, err := readMigrations()
	if err != nil {
		return nil, nil, err
	}

	done := make(map[string]struct{}, len(applied))
	for _, v := range applied {
		done[v] = struct{}{}
	}
	for _, m := range all {
		if _, ok := done[m.version]; !ok {
			pending = append(pending, m.version)
		}
	}
	return applied, pending, nil
}

func (db *DB) ensureVersionTable(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	return err
}

// appliedVersions returns recorded versions in ascending order.
func (db *DB) appliedVersions(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT version FROM schema_migrations ORDER BY version",
	)
	if err != nil {
		return nil, fmt.Errorf("querying schema_migrations: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning migration row: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schema_migrations: %w", err)
	}
	return versions, nil
}

// applyUp runs one migration's up SQL and records its version, both
// inside a single transaction.
func (db *DB) applyUp(ctx context.Context, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, m.up); err != nil {
		return fmt.Errorf("executing up SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		m.version, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}
	return tx.Commit()
}

// readMigrations loads and pairs every migration file, sorted by version.
// A down file without a matching up file is an error; an up file without
// a down file is fine (that version just cannot be rolled back).
func readMigrations() ([]migration, error) {
	if MigrationsFS == nil {
		return nil, nil
	}
	entries, err := fs.ReadDir(MigrationsFS, MigrationsDir)
	if err != nil {
		// No migrations directory means nothing to apply.
		return nil, nil
	}

	byVersion := make(map[string]*migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version, name, up, ok := splitMigrationName(entry.Name())
		if !ok {
			continue
		}
		sqlText, err := fs.ReadFile(MigrationsFS, path.Join(MigrationsDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		m := byVersion[version]
		if m == nil {
			m = &migration{version: version, name: name}
			byVersion[version] = m
		}
		if up {
			m.up = string(sqlText)
		} else {
			m.down = string(sqlText)
		}
	}

	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.up == "" {
			return nil, fmt.Errorf("migration %s has a down file but no up file", m.version)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// splitMigrationName parses YYYYMMDD_HHMMSS_description.(up|down).sql.
// The version prefix must be exactly 8 and 6 digits; anything else is
// skipped rather than misparsed as a version.
func splitMigrationName(filename string) (version, name string, up, ok bool) {
	base, up := strings.CutSuffix(filename, ".up.sql")
	if !up {
		var down bool
		if base, down = strings.CutSuffix(filename, ".down.sql"); !down {
			return "", "", false, false
		}
	}

	parts := strings.SplitN(base, "_", 3)
	if len(parts) < 3 || !isVersionStamp(parts[0], parts[1]) {
		return "", "", false, false
	}
	return parts[0] + "_" + parts[1], parts[2], up, true
}

// isVersionStamp reports whether date and clock form a YYYYMMDD_HHMMSS
// version prefix.
func isVersionStamp(date, clock string) bool {
	if len(date) != 8 || len(clock) != 6 {
		return false
	}
	for _, r := range date + clock {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
