// Package sqlgen builds the SQL statements used against generated tables.
// Identifiers are always quote-escaped; values always travel as numbered
// placeholders. Callers are responsible for passing table names produced by
// the catalog's sanitizer, since identifiers cannot be parameterized.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/dochub/dochub/internal/schema"
)

// QuoteIdent quote-escapes a PostgreSQL identifier.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// CreateTable builds the CREATE TABLE statement for a generated table.
// Every column is a nullable wide varchar sized to max(MaxLength, 255),
// regardless of the inferred data type; downstream consumers read values
// back as text and re-parse on their side.
func CreateTable(table string, cols []schema.ColumnDefinition) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		width := c.MaxLength
		if width < schema.DefaultColumnWidth {
			width = schema.DefaultColumnWidth
		}
		defs[i] = fmt.Sprintf("%s varchar(%d) NULL", QuoteIdent(c.ColumnName), width)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdent(table), strings.Join(defs, ", "))
}

// DropTable builds the DROP TABLE IF EXISTS statement.
func DropTable(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", QuoteIdent(table))
}

// InsertRow builds a single-row INSERT with one placeholder per column.
func InsertRow(table string, columns []string) string {
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdent(c)
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdent(table), strings.Join(quoted, ", "), strings.Join(params, ", "))
}

// SelectPage builds the paginated read. Generated tables have no natural key,
// so ordering is whatever offset/fetch yields.
func SelectPage(table string) string {
	return fmt.Sprintf("SELECT * FROM %s OFFSET $1 LIMIT $2", QuoteIdent(table))
}

// CountRows builds the row-count query for a generated table.
func CountRows(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", QuoteIdent(table))
}

// TableExists is the catalog probe for a physical table by exact name.
// $1 = pg schema, $2 = table name.
const TableExists = `
	SELECT EXISTS (
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = $1 AND table_name = $2
	)`
