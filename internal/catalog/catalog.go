// Package catalog is the table registry: it allocates unique table names,
// orchestrates table creation and teardown, and persists the schema record
// describing each generated table. The physical tables and the registry are
// the only shared state; the catalog serializes creation per letter type so
// two concurrent uploads cannot race the name allocation.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dochub/dochub/internal/infer"
	"github.com/dochub/dochub/internal/loader"
	"github.com/dochub/dochub/internal/schema"
	"github.com/dochub/dochub/internal/sqlgen"
)

const registryDDL = `
	CREATE TABLE IF NOT EXISTS dochub_table_schemas (
		id BIGSERIAL PRIMARY KEY,
		table_name TEXT NOT NULL UNIQUE,
		letter_type_id TEXT NOT NULL,
		source_upload_id TEXT,
		column_definitions TEXT NOT NULL,
		total_rows BIGINT NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// Catalog manages generated tables and their registry records.
type Catalog struct {
	pool     *pgxpool.Pool
	pgSchema string
	prefix   string
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per letter type
}

// Option configures the catalog.
type Option func(*Catalog)

// WithPrefix sets the stem used for letter types without a display name.
func WithPrefix(prefix string) Option {
	return func(c *Catalog) { c.prefix = prefix }
}

// WithPgSchema sets the PostgreSQL schema generated tables live in.
func WithPgSchema(s string) Option {
	return func(c *Catalog) { c.pgSchema = s }
}

// WithClock overrides the timestamp source used in generated names.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// New creates a catalog over the given pool.
func New(pool *pgxpool.Pool, logger *slog.Logger, opts ...Option) *Catalog {
	c := &Catalog{
		pool:     pool,
		pgSchema: "public",
		prefix:   "dochub",
		logger:   logger,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureRegistry creates the registry table when missing.
func (c *Catalog) EnsureRegistry(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, registryDDL); err != nil {
		return fmt.Errorf("creating registry table: %w", err)
	}
	return nil
}

// TableExists probes the information schema for a physical table by exact name.
func (c *Catalog) TableExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := c.pool.QueryRow(ctx, sqlgen.TableExists, c.pgSchema, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking table %s: %w", name, err)
	}
	return exists, nil
}

// CreateRequest carries one upload into table creation.
type CreateRequest struct {
	LetterTypeID   string
	DisplayName    string
	SourceUploadID string
	Header         []string
	Rows           []map[string]string
	OnProgress     func(inserted, total int)
}

// CreateForUpload runs the full creation sequence for one upload: infer the
// schema, allocate a unique name, execute the DDL, load the rows, then write
// the registry record. The registry record is the last write; a DDL failure
// propagates before any record exists, and a row-load failure leaves the
// physical table in place (empty or partial) for the caller to retry with a
// fresh name. On success the previously active table for the letter type is
// dropped and its record deactivated.
func (c *Catalog) CreateForUpload(ctx context.Context, req CreateRequest) (*schema.TableSchema, error) {
	unlock := c.lockLetterType(req.LetterTypeID)
	defer unlock()

	cols := infer.Columns(req.Header, req.Rows)
	if len(cols) == 0 {
		return nil, fmt.Errorf("upload for letter type %s has no columns", req.LetterTypeID)
	}

	prev, err := c.ActiveTableName(ctx, req.LetterTypeID)
	if err != nil {
		return nil, err
	}

	base := BaseName(req.DisplayName, req.LetterTypeID, c.prefix)
	name, err := UniqueName(ctx, base, c.now(), c.TableExists)
	if err != nil {
		return nil, err
	}

	ddl := sqlgen.CreateTable(name, cols)
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("creating table %s: %w", name, err)
	}
	c.logger.Info("created dynamic table", "table", name, "letter_type", req.LetterTypeID, "columns", len(cols))

	if !loader.InsertRows(ctx, c.pool, c.logger, name, cols, req.Rows, req.OnProgress) {
		return nil, fmt.Errorf("loading %d rows into %s failed", len(req.Rows), name)
	}

	record, err := c.insertRecord(ctx, name, req, cols)
	if err != nil {
		return nil, err
	}

	if prev != "" && prev != name {
		if err := c.dropPhysical(ctx, prev); err != nil {
			c.logger.Error("dropping replaced table", "table", prev, "error", err)
		}
	}

	return record, nil
}

// Drop removes the letter type's active table and deactivates its record.
// The two steps are not atomic: a registry failure after a successful drop
// leaves a stale active record until the next replace reconciles it.
func (c *Catalog) Drop(ctx context.Context, letterTypeID string) error {
	unlock := c.lockLetterType(letterTypeID)
	defer unlock()

	name, err := c.ActiveTableName(ctx, letterTypeID)
	if err != nil {
		return err
	}
	if name == "" {
		return nil
	}
	return c.dropPhysical(ctx, name)
}

// ActiveTableName resolves a letter type to its current active table name.
// An empty result means no data has been uploaded yet, not an error.
func (c *Catalog) ActiveTableName(ctx context.Context, letterTypeID string) (string, error) {
	var name string
	err := c.pool.QueryRow(ctx, `
		SELECT table_name FROM dochub_table_schemas
		WHERE letter_type_id = $1 AND is_active
		ORDER BY created_at DESC LIMIT 1`, letterTypeID).Scan(&name)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("looking up active table for letter type %s: %w", letterTypeID, err)
	}
	return name, nil
}

// Get returns the active schema record for a letter type, or nil when none.
func (c *Catalog) Get(ctx context.Context, letterTypeID string) (*schema.TableSchema, error) {
	rows, err := c.pool.Query(ctx, selectRecords+`
		WHERE letter_type_id = $1 AND is_active
		ORDER BY created_at DESC LIMIT 1`, letterTypeID)
	if err != nil {
		return nil, fmt.Errorf("reading schema record: %w", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// List returns all registry records, active and historical, newest first.
func (c *Catalog) List(ctx context.Context) ([]schema.TableSchema, error) {
	rows, err := c.pool.Query(ctx, selectRecords+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing schema records: %w", err)
	}
	return scanRecords(rows)
}

const selectRecords = `
	SELECT id, table_name, letter_type_id, COALESCE(source_upload_id, ''),
	       column_definitions, total_rows, is_active, created_at, updated_at
	FROM dochub_table_schemas`

func scanRecords(rows pgx.Rows) ([]schema.TableSchema, error) {
	defer rows.Close()
	var records []schema.TableSchema
	for rows.Next() {
		var rec schema.TableSchema
		var blob string
		if err := rows.Scan(&rec.ID, &rec.TableName, &rec.LetterTypeID, &rec.SourceUploadID,
			&blob, &rec.TotalRows, &rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning schema record: %w", err)
		}
		cols, err := schema.UnmarshalColumns(blob)
		if err != nil {
			return nil, err
		}
		rec.Columns = cols
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schema records: %w", err)
	}
	return records, nil
}

func (c *Catalog) insertRecord(ctx context.Context, table string, req CreateRequest, cols []schema.ColumnDefinition) (*schema.TableSchema, error) {
	blob, err := schema.MarshalColumns(cols)
	if err != nil {
		return nil, err
	}

	var uploadID any
	if req.SourceUploadID != "" {
		uploadID = req.SourceUploadID
	}

	rec := schema.TableSchema{
		TableName:      table,
		LetterTypeID:   req.LetterTypeID,
		SourceUploadID: req.SourceUploadID,
		Columns:        cols,
		TotalRows:      int64(len(req.Rows)),
		IsActive:       true,
	}
	err = c.pool.QueryRow(ctx, `
		INSERT INTO dochub_table_schemas
			(table_name, letter_type_id, source_upload_id, column_definitions, total_rows)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		table, req.LetterTypeID, uploadID, blob, rec.TotalRows,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("writing schema record for %s: %w", table, err)
	}
	return &rec, nil
}

// dropPhysical drops the table then deactivates its registry record.
func (c *Catalog) dropPhysical(ctx context.Context, name string) error {
	if _, err := c.pool.Exec(ctx, sqlgen.DropTable(name)); err != nil {
		return fmt.Errorf("dropping table %s: %w", name, err)
	}
	if _, err := c.pool.Exec(ctx, `
		UPDATE dochub_table_schemas
		SET is_active = FALSE, updated_at = now()
		WHERE table_name = $1`, name); err != nil {
		return fmt.Errorf("deactivating schema record for %s: %w", name, err)
	}
	c.logger.Info("dropped dynamic table", "table", name)
	return nil
}

// lockLetterType serializes table creation and teardown per letter type.
func (c *Catalog) lockLetterType(letterTypeID string) func() {
	c.mu.Lock()
	lk, ok := c.locks[letterTypeID]
	if !ok {
		lk = &sync.Mutex{}
		c.locks[letterTypeID] = lk
	}
	c.mu.Unlock()
	lk.Lock()
	return lk.Unlock
}
