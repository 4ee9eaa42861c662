package batch

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for batch persistence.
// This abstraction allows different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Definition, error)
	GetBySlug(ctx context.Context, slug string) (*Definition, error)
	List(ctx context.Context) ([]Definition, error)
	ListEnabled(ctx context.Context) ([]Definition, error)
	Create(ctx context.Context, def *Definition) error
	Update(ctx context.Context, def *Definition) error
	Delete(ctx context.Context, id string) error
}

// batchColumns is the SELECT column list for batch queries.
const batchColumns = `id, name, slug, description, unload_scenes, load_scenes,
			activate, enabled, recalc, sort_order, created_at, updated_at`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a batch by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Definition, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	def, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying batch by id: %w", err)
	}
	return def, nil
}

// GetBySlug retrieves a batch by its slug.
func (r *SQLiteRepository) GetBySlug(ctx context.Context, slug string) (*Definition, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE slug = ?`

	row := r.db.QueryRowContext(ctx, query, slug)
	def, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying batch by slug: %w", err)
	}
	return def, nil
}

// List retrieves all batches ordered by sort_order then name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Definition, error) {
	query := `SELECT ` + batchColumns + ` FROM batches ORDER BY sort_order, name`
	return r.queryBatches(ctx, query)
}

// ListEnabled retrieves all enabled batches ordered by sort_order then name.
func (r *SQLiteRepository) ListEnabled(ctx context.Context) ([]Definition, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE enabled = 1 ORDER BY sort_order, name`
	return r.queryBatches(ctx, query)
}

// Create inserts a new batch.
func (r *SQLiteRepository) Create(ctx context.Context, def *Definition) error {
	unloadJSON, err := marshalScenes(def.Unload)
	if err != nil {
		return fmt.Errorf("marshalling unload set: %w", err)
	}
	loadJSON, err := marshalScenes(def.Load)
	if err != nil {
		return fmt.Errorf("marshalling load set: %w", err)
	}

	now := time.Now().UTC()
	if def.CreatedAt.IsZero() {
		def.CreatedAt = now
	}
	def.UpdatedAt = now

	query := `
		INSERT INTO batches (
			id, name, slug, description, unload_scenes, load_scenes,
			activate, enabled, recalc, sort_order, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		def.ID,
		def.Name,
		def.Slug,
		nullableString(def.Description),
		unloadJSON,
		loadJSON,
		nullableLiteral(def.Activate),
		boolToInt(def.Enabled),
		boolToInt(def.Recalc),
		def.SortOrder,
		def.CreatedAt.Format(time.RFC3339),
		def.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("inserting batch: %w", err)
	}
	return nil
}

// Update modifies an existing batch.
func (r *SQLiteRepository) Update(ctx context.Context, def *Definition) error {
	unloadJSON, err := marshalScenes(def.Unload)
	if err != nil {
		return fmt.Errorf("marshalling unload set: %w", err)
	}
	loadJSON, err := marshalScenes(def.Load)
	if err != nil {
		return fmt.Errorf("marshalling load set: %w", err)
	}

	def.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE batches SET
			name = ?, slug = ?, description = ?, unload_scenes = ?, load_scenes = ?,
			activate = ?, enabled = ?, recalc = ?, sort_order = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		def.Name,
		def.Slug,
		nullableString(def.Description),
		unloadJSON,
		loadJSON,
		nullableLiteral(def.Activate),
		boolToInt(def.Enabled),
		boolToInt(def.Recalc),
		def.SortOrder,
		def.UpdatedAt.Format(time.RFC3339),
		def.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("updating batch: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a batch by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM batches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting batch: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// queryBatches executes a query and returns a slice of batches.
func (r *SQLiteRepository) queryBatches(ctx context.Context, query string, args ...any) ([]Definition, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying batches: %w", err)
	}
	defer rows.Close()

	var defs []Definition
	for rows.Next() {
		def, scanErr := scanBatchFromRows(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning batch: %w", scanErr)
		}
		defs = append(defs, *def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batches: %w", err)
	}
	return defs, nil
}

// ─── Row Scanning Helpers ───────────────────────────────────────────────────

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanBatch scans a single sql.Row into a Definition.
func scanBatch(row *sql.Row) (*Definition, error) {
	return scanBatchRow(row)
}

// scanBatchFromRows scans a sql.Rows result into a Definition.
func scanBatchFromRows(rows *sql.Rows) (*Definition, error) {
	return scanBatchRow(rows)
}

func scanBatchRow(scanner rowScanner) (*Definition, error) {
	var d Definition
	var description, activate sql.NullString
	var unloadJSON, loadJSON string
	var enabled, recalc int
	var createdAt, updatedAt string

	err := scanner.Scan(
		&d.ID,
		&d.Name,
		&d.Slug,
		&description,
		&unloadJSON,
		&loadJSON,
		&activate,
		&enabled,
		&recalc,
		&d.SortOrder,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		d.Description = &description.String
	}
	if activate.Valid {
		d.Activate = activate.String
	}

	d.Enabled = enabled != 0
	d.Recalc = recalc != 0

	// Timestamps stored as RFC3339 text
	if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		d.CreatedAt = t
	}
	if t, parseErr := time.Parse(time.RFC3339, updatedAt); parseErr == nil {
		d.UpdatedAt = t
	}

	if d.Unload, err = unmarshalScenes(unloadJSON); err != nil {
		return nil, fmt.Errorf("unmarshalling unload set: %w", err)
	}
	if d.Load, err = unmarshalScenes(loadJSON); err != nil {
		return nil, fmt.Errorf("unmarshalling load set: %w", err)
	}

	return &d, nil
}

// ─── SQL Helpers ────────────────────────────────────────────────────────────

func marshalScenes(scenes []string) (string, error) {
	if len(scenes) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(scenes)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalScenes(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return []string{}, nil
	}
	var scenes []string
	if err := json.Unmarshal([]byte(raw), &scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableLiteral(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
