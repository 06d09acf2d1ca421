package loader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dochub/dochub/internal/schema"
)

// fakeTx records executed statements; unused pgx.Tx methods panic via the
// embedded nil interface.
type fakeTx struct {
	pgx.Tx
	execs      []execCall
	execErrAt  int // 1-based index of the exec that fails; 0 = never
	committed  bool
	rolledBack bool
}

type execCall struct {
	sql  string
	args []any
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, execCall{sql: sql, args: args})
	if t.execErrAt > 0 && len(t.execs) == t.execErrAt {
		return pgconn.CommandTag{}, errors.New("insert failed")
	}
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeDB struct {
	tx       *fakeTx
	beginErr error
}

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	return d.tx, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testCols = []schema.ColumnDefinition{
	{ColumnName: "EMP_ID", DataType: schema.TypeInt, MaxLength: 50, IsNullable: true},
	{ColumnName: "EMP_NAME", DataType: schema.TypeText, MaxLength: 50, IsNullable: true},
}

func TestInsertRowsCommits(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	rows := []map[string]string{
		{"EMP ID": "1001", "EMP NAME": "Jane Doe"},
		{"EMP ID": "1002", "EMP NAME": "John Roe"},
	}

	ok := InsertRows(context.Background(), db, discard(), "t", testCols, rows, nil)
	if !ok {
		t.Fatal("expected success")
	}
	if !db.tx.committed {
		t.Error("transaction not committed")
	}
	if len(db.tx.execs) != 2 {
		t.Fatalf("expected 2 inserts, got %d", len(db.tx.execs))
	}
	if got := db.tx.execs[0].args[0]; got != "1001" {
		t.Errorf("first row EMP_ID arg = %v, want 1001", got)
	}
}

func TestInsertRowsMissingValueIsNull(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	rows := []map[string]string{{"EMP ID": "1002"}} // no EMP NAME

	if !InsertRows(context.Background(), db, discard(), "t", testCols, rows, nil) {
		t.Fatal("expected success")
	}
	if got := db.tx.execs[0].args[1]; got != nil {
		t.Errorf("missing cell arg = %v, want nil", got)
	}
}

func TestInsertRowsEmployeeIDCoerced(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	rows := []map[string]string{{"EMP ID": "1.23E+08", "EMP NAME": "Jane"}}

	if !InsertRows(context.Background(), db, discard(), "t", testCols, rows, nil) {
		t.Fatal("expected success")
	}
	if got := db.tx.execs[0].args[0]; got != "123000000" {
		t.Errorf("EMP_ID arg = %v, want 123000000", got)
	}
}

func TestInsertRowsRollbackOnFailure(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{execErrAt: 2}}
	rows := []map[string]string{
		{"EMP ID": "1"},
		{"EMP ID": "2"},
		{"EMP ID": "3"},
	}

	if InsertRows(context.Background(), db, discard(), "t", testCols, rows, nil) {
		t.Fatal("expected failure")
	}
	if db.tx.committed {
		t.Error("failed batch must not commit")
	}
	if !db.tx.rolledBack {
		t.Error("failed batch must roll back")
	}
}

func TestInsertRowsBeginFailure(t *testing.T) {
	db := &fakeDB{beginErr: errors.New("pool exhausted")}
	rows := []map[string]string{{"EMP ID": "1"}}

	if InsertRows(context.Background(), db, discard(), "t", testCols, rows, nil) {
		t.Fatal("expected failure when begin fails")
	}
}

func TestInsertRowsEmptyBatch(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	if !InsertRows(context.Background(), db, discard(), "t", testCols, nil, nil) {
		t.Fatal("empty batch should succeed")
	}
	if len(db.tx.execs) != 0 {
		t.Error("empty batch should not execute statements")
	}
}

func TestInsertRowsProgress(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	rows := []map[string]string{{"EMP ID": "1"}, {"EMP ID": "2"}}

	var calls []int
	InsertRows(context.Background(), db, discard(), "t", testCols, rows, func(done, total int) {
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
		calls = append(calls, done)
	})
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Errorf("progress calls = %v, want [1 2]", calls)
	}
}

func TestResolveValueWhitespaceLabels(t *testing.T) {
	row := map[string]string{" EMP ID ": "7"}
	if got := resolveValue(row, "EMP_ID"); got != "7" {
		t.Errorf("resolveValue = %v, want 7 (whitespace label reconciliation)", got)
	}
}
