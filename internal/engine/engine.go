// Package engine is the service facade over the table engine, shared by the
// HTTP API, the CLI and the terminal browser.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dochub/dochub/internal/catalog"
	"github.com/dochub/dochub/internal/config"
	"github.com/dochub/dochub/internal/reader"
	"github.com/dochub/dochub/internal/schema"
)

// recipientPageSize is the chunk size used when walking a table for
// recipient extraction.
const recipientPageSize = 500

// TableCatalog is the registry surface the engine depends on. It is an
// explicit injected service rather than ambient state so tests can
// substitute an in-memory fake.
type TableCatalog interface {
	EnsureRegistry(ctx context.Context) error
	CreateForUpload(ctx context.Context, req catalog.CreateRequest) (*schema.TableSchema, error)
	Drop(ctx context.Context, letterTypeID string) error
	ActiveTableName(ctx context.Context, letterTypeID string) (string, error)
	Get(ctx context.Context, letterTypeID string) (*schema.TableSchema, error)
	List(ctx context.Context) ([]schema.TableSchema, error)
}

// RowReader is the paginated read surface the engine depends on.
type RowReader interface {
	FetchPage(ctx context.Context, table string, skip, take int) []map[string]string
	RowCount(ctx context.Context, table string) int64
}

// EventSink receives table lifecycle and progress events for broadcast.
type EventSink interface {
	Publish(event string, payload any)
}

// Engine owns the database pool and the engine's collaborators.
type Engine struct {
	cfg     *config.Config
	logger  *slog.Logger
	pool    *pgxpool.Pool
	catalog TableCatalog
	reader  RowReader
	events  EventSink
}

// Option configures the engine.
type Option func(*Engine)

// WithCatalog overrides the table catalog.
func WithCatalog(c TableCatalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithReader overrides the row reader.
func WithReader(r RowReader) Option {
	return func(e *Engine) { e.reader = r }
}

// WithEvents sets the sink for lifecycle and progress events.
func WithEvents(sink EventSink) Option {
	return func(e *Engine) { e.events = sink }
}

// New creates an engine. Call Connect before using database-backed
// operations unless a catalog and reader were injected.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Connect opens the pool, builds the catalog and reader over it, and ensures
// the registry table exists.
func (e *Engine) Connect(ctx context.Context) error {
	poolCfg, err := pgxpool.ParseConfig(e.cfg.Database.ConnString())
	if err != nil {
		return fmt.Errorf("parsing connection string: %w", err)
	}
	poolCfg.MaxConns = int32(e.cfg.Database.MaxConnections)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connecting to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("pinging PostgreSQL: %w", err)
	}

	e.pool = pool
	e.catalog = catalog.New(pool, e.logger, catalog.WithPgSchema(e.cfg.Database.Schema))
	e.reader = reader.New(pool, e.logger)

	if err := e.catalog.EnsureRegistry(ctx); err != nil {
		pool.Close()
		return err
	}
	return nil
}

// Close releases the pool.
func (e *Engine) Close() {
	if e.pool != nil {
		e.pool.Close()
		e.pool = nil
	}
}

// UploadRequest carries one parsed roster into table creation.
type UploadRequest struct {
	LetterTypeID   string
	DisplayName    string
	SourceUploadID string
	Header         []string
	Rows           []map[string]string
}

// ProcessUpload creates a fresh table for the upload and returns its schema
// record. The previously active table for the letter type, if any, is
// replaced. Creation failures propagate: the user initiated the upload and
// expects to see them.
func (e *Engine) ProcessUpload(ctx context.Context, req UploadRequest) (*schema.TableSchema, error) {
	if req.LetterTypeID == "" {
		return nil, fmt.Errorf("letter type id is required")
	}

	rec, err := e.catalog.CreateForUpload(ctx, catalog.CreateRequest{
		LetterTypeID:   req.LetterTypeID,
		DisplayName:    req.DisplayName,
		SourceUploadID: req.SourceUploadID,
		Header:         req.Header,
		Rows:           req.Rows,
		OnProgress: func(inserted, total int) {
			e.publish("upload_progress", map[string]any{
				"letter_type_id": req.LetterTypeID,
				"inserted":       inserted,
				"total":          total,
			})
		},
	})
	if err != nil {
		e.publish("error", map[string]string{"message": err.Error()})
		return nil, err
	}

	e.publish("table_created", rec)
	return rec, nil
}

// PageResult is one page of rows from a letter type's active table.
type PageResult struct {
	TableName string              `json:"table_name"`
	Rows      []map[string]string `json:"rows"`
	TotalRows int64               `json:"total_rows"`
}

// Page reads one page from the letter type's active table. A letter type
// with no active table yields an empty result, not an error: no data has
// been uploaded yet.
func (e *Engine) Page(ctx context.Context, letterTypeID string, skip, take int) (*PageResult, error) {
	if skip < 0 {
		skip = 0
	}
	if take <= 0 {
		take = 50
	}

	table, err := e.catalog.ActiveTableName(ctx, letterTypeID)
	if err != nil {
		return nil, err
	}
	if table == "" {
		return &PageResult{}, nil
	}

	return &PageResult{
		TableName: table,
		Rows:      e.reader.FetchPage(ctx, table, skip, take),
		TotalRows: e.reader.RowCount(ctx, table),
	}, nil
}

// PageTable reads one page from a physical table by exact name, bypassing
// the active-table lookup. Used when browsing historical registry entries.
func (e *Engine) PageTable(ctx context.Context, table string, skip, take int) *PageResult {
	if skip < 0 {
		skip = 0
	}
	if take <= 0 {
		take = 50
	}
	return &PageResult{
		TableName: table,
		Rows:      e.reader.FetchPage(ctx, table, skip, take),
		TotalRows: e.reader.RowCount(ctx, table),
	}
}

// Recipient is one email recipient extracted from a roster table by the
// conventional column labels.
type Recipient struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// Recipients walks the letter type's active table and extracts recipient
// fields from the EMP ID / EMP NAME / EMAIL columns. Rows without an email
// address are skipped.
func (e *Engine) Recipients(ctx context.Context, letterTypeID string) ([]Recipient, error) {
	table, err := e.catalog.ActiveTableName(ctx, letterTypeID)
	if err != nil {
		return nil, err
	}
	if table == "" {
		return nil, nil
	}

	var out []Recipient
	for skip := 0; ; skip += recipientPageSize {
		rows := e.reader.FetchPage(ctx, table, skip, recipientPageSize)
		if len(rows) == 0 {
			break
		}
		for _, row := range rows {
			r := Recipient{
				EmployeeID: fieldValue(row, "EMP_ID"),
				Name:       fieldValue(row, "EMP_NAME"),
				Email:      fieldValue(row, "EMAIL"),
			}
			if r.Email == "" {
				continue
			}
			out = append(out, r)
		}
		if len(rows) < recipientPageSize {
			break
		}
	}
	return out, nil
}

// DropTable removes the letter type's active table.
func (e *Engine) DropTable(ctx context.Context, letterTypeID string) error {
	if err := e.catalog.Drop(ctx, letterTypeID); err != nil {
		return err
	}
	e.publish("table_dropped", map[string]string{"letter_type_id": letterTypeID})
	return nil
}

// Tables lists all registry records, newest first.
func (e *Engine) Tables(ctx context.Context) ([]schema.TableSchema, error) {
	return e.catalog.List(ctx)
}

// Schema returns the active schema record for a letter type, or nil.
func (e *Engine) Schema(ctx context.Context, letterTypeID string) (*schema.TableSchema, error) {
	return e.catalog.Get(ctx, letterTypeID)
}

func (e *Engine) publish(event string, payload any) {
	if e.events != nil {
		e.events.Publish(event, payload)
	}
}

// fieldValue resolves a physical column's value tolerating case differences
// in the sanitized name.
func fieldValue(row map[string]string, column string) string {
	if v, ok := row[column]; ok {
		return v
	}
	for k, v := range row {
		if strings.EqualFold(k, column) {
			return v
		}
	}
	return ""
}
