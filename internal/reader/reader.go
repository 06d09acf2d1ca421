// Package reader paginates rows out of generated tables for display,
// document generation and recipient lookup. The error-returning core is
// internal; the exported surface logs failures and collapses them to empty
// results, because the consuming pipelines treat "no data" as an acceptable
// degraded outcome. Keeping the collapse at the boundary leaves the
// underlying error distinguishable for logs and tests.
package reader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/dochub/dochub/internal/coerce"
	"github.com/dochub/dochub/internal/sqlgen"
)

// Querier is the read-only connection surface the reader needs.
// *pgxpool.Pool satisfies it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Reader pages rows out of generated tables.
type Reader struct {
	db       Querier
	pgSchema string
	logger   *slog.Logger
}

// New creates a reader over the given connection.
func New(db Querier, logger *slog.Logger) *Reader {
	return &Reader{db: db, pgSchema: "public", logger: logger}
}

// FetchPage returns one page of rows as ordered column→value maps. NULL
// cells come back as empty strings; downstream placeholder substitution
// assumes non-null values. Any query failure is logged and returned as an
// empty page.
func (r *Reader) FetchPage(ctx context.Context, table string, skip, take int) []map[string]string {
	rows, err := r.page(ctx, table, skip, take)
	if err != nil {
		r.logger.Error("reading page", "table", table, "skip", skip, "take", take, "error", err)
		return nil
	}
	return rows
}

// RowCount returns the table's current row count, or zero on failure.
func (r *Reader) RowCount(ctx context.Context, table string) int64 {
	count, err := r.rowCount(ctx, table)
	if err != nil {
		r.logger.Error("counting rows", "table", table, "error", err)
		return 0
	}
	return count
}

// Exists reports whether the physical table exists, or false on failure.
func (r *Reader) Exists(ctx context.Context, table string) bool {
	exists, err := r.exists(ctx, table)
	if err != nil {
		r.logger.Error("checking table existence", "table", table, "error", err)
		return false
	}
	return exists
}

func (r *Reader) page(ctx context.Context, table string, skip, take int) ([]map[string]string, error) {
	rows, err := r.db.Query(ctx, sqlgen.SelectPage(table), skip, take)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	descs := rows.FieldDescriptions()
	var results []map[string]string
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scanning row from %s: %w", table, err)
		}
		row := make(map[string]string, len(descs))
		for i, d := range descs {
			row[d.Name] = coerce.NormalizeValue(d.Name, cellText(vals[i]))
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows from %s: %w", table, err)
	}
	return results, nil
}

func (r *Reader) rowCount(ctx context.Context, table string) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, sqlgen.CountRows(table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting rows in %s: %w", table, err)
	}
	return count, nil
}

func (r *Reader) exists(ctx context.Context, table string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, sqlgen.TableExists, r.pgSchema, table).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking table %s: %w", table, err)
	}
	return exists, nil
}

// cellText renders a cell as text. Generated columns are all varchar, so
// values arrive as strings or NULL; anything else is stringified.
func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}
