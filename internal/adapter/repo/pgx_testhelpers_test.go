package repo

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pawshearts/internal/infra"
)

// assign copies values into scan destinations the way pgx would.
func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(values[i])
		if target.Kind() == reflect.Pointer && v.Kind() != reflect.Pointer {
			ptr := reflect.New(target.Type().Elem())
			ptr.Elem().Set(v)
			v = ptr
		}
		if !v.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("scan: cannot assign %s to %s", v.Type(), target.Type())
		}
		target.Set(v)
	}
	return nil
}

type SimpleRow struct {
	values []any
	err    error
}

func (r SimpleRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.values == nil {
		return pgx.ErrNoRows
	}
	return assign(dest, r.values)
}

type TestRowsBase struct{}

func (TestRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (TestRowsBase) Conn() *pgx.Conn { return nil }

func (TestRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (TestRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (TestRowsBase) RawValues() [][]byte { return nil }

type sliceRows struct {
	TestRowsBase
	data [][]any
	idx  int
}

func (r *sliceRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *sliceRows) Scan(dest ...any) error { return assign(dest, r.data[r.idx-1]) }

func (r *sliceRows) Err() error { return nil }

func (r *sliceRows) Close() {}

type call struct {
	query string
	args  []any
}

// fakeDB records every statement and answers reads from per-query fixtures
// keyed by a substring of the SQL text.
type fakeDB struct {
	calls    []call
	rows     map[string][][]any
	row      map[string][]any
	execTag  pgconn.CommandTag
	execErr  error
	txBegins int
}

func newFakeDB() *fakeDB {
	return &fakeDB{rows: map[string][][]any{}, row: map[string][]any{}, execTag: pgconn.NewCommandTag("UPDATE 1")}
}

func (f *fakeDB) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, call{query: query, args: args})
	return f.execTag, f.execErr
}

func (f *fakeDB) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	f.calls = append(f.calls, call{query: query, args: args})
	for key, values := range f.row {
		if strings.Contains(query, key) {
			return SimpleRow{values: values}
		}
	}
	return SimpleRow{}
}

func (f *fakeDB) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	f.calls = append(f.calls, call{query: query, args: args})
	for key, data := range f.rows {
		if strings.Contains(query, key) {
			return &sliceRows{data: data}, nil
		}
	}
	return &sliceRows{}, nil
}

func (f *fakeDB) WithTx(ctx context.Context, fn func(infra.SQLExecutor) error) error {
	f.txBegins++
	return fn(f)
}

func (f *fakeDB) queries() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.query)
	}
	return out
}

var _ infra.Transactor = (*fakeDB)(nil)
