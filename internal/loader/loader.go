// Package loader bulk-inserts parsed upload rows into a generated table.
package loader

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dochub/dochub/internal/coerce"
	"github.com/dochub/dochub/internal/infer"
	"github.com/dochub/dochub/internal/schema"
	"github.com/dochub/dochub/internal/sqlgen"
)

// DB is the transactional connection surface the loader needs.
// *pgxpool.Pool satisfies it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// InsertRows inserts all rows into the named table inside one transaction,
// one parameterized statement per row, in order. Rows are uploads at human
// scale; throughput is not a design target here. Any failure rolls the whole
// batch back and reports false after logging. The table is left in its
// pre-load state and is not dropped. A row missing a value for a column gets
// a database NULL for that cell.
func InsertRows(ctx context.Context, db DB, logger *slog.Logger, table string,
	cols []schema.ColumnDefinition, rows []map[string]string, onProgress func(inserted, total int)) bool {

	if len(rows) == 0 {
		return true
	}

	columnNames := make([]string, len(cols))
	for i, c := range cols {
		columnNames[i] = c.ColumnName
	}
	stmt := sqlgen.InsertRow(table, columnNames)

	tx, err := db.Begin(ctx)
	if err != nil {
		logger.Error("beginning row load transaction", "table", table, "error", err)
		return false
	}
	defer tx.Rollback(ctx)

	for i, row := range rows {
		args := make([]any, len(cols))
		for j, col := range cols {
			args[j] = resolveValue(row, col.ColumnName)
		}
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			logger.Error("inserting row", "table", table, "row", i, "error", err)
			return false
		}
		if onProgress != nil {
			onProgress(i+1, len(rows))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("committing row load", "table", table, "error", err)
		return false
	}

	logger.Info("loaded rows", "table", table, "rows", len(rows))
	return true
}

// resolveValue finds a row's value for a physical column. Row keys are the
// original, untrimmed spreadsheet labels, so lookup falls back from an exact
// hit to trimmed and sanitized label equality. A miss yields NULL.
func resolveValue(row map[string]string, columnName string) any {
	if v, ok := row[columnName]; ok {
		return coerce.NormalizeValue(columnName, v)
	}
	for k, v := range row {
		trimmed := strings.TrimSpace(k)
		if trimmed == columnName || infer.SanitizeIdent(trimmed) == columnName {
			return coerce.NormalizeValue(k, v)
		}
	}
	return nil
}
