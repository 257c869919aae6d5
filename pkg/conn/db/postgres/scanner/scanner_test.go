package scanner_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgproto3/v2"
	"github.com/jackc/pgx/v4"
	"github.com/protocaas/protocaas/pkg/cmp"
	"github.com/protocaas/protocaas/pkg/conn/db/postgres/scanner"
)

// rows serves values in memory. Scan supports *string, *int and *time.Time.
type rows struct {
	columns []string
	values  [][]any
	err     error

	cursor int
}

var _ pgx.Rows = &rows{}

func (r *rows) Close()                        {}
func (r *rows) Err() error                    { return r.err }
func (r *rows) CommandTag() pgconn.CommandTag { return nil }
func (r *rows) RawValues() [][]byte           { panic("it should not be called") }
func (r *rows) Values() ([]any, error)        { return r.values[r.cursor-1], nil }

func (r *rows) FieldDescriptions() []pgproto3.FieldDescription {
	fds := make([]pgproto3.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		fds[i] = pgproto3.FieldDescription{Name: []byte(c)}
	}
	return fds
}

func (r *rows) Next() bool {
	if len(r.values) <= r.cursor {
		return false
	}
	r.cursor += 1
	return true
}

func (r *rows) Scan(dest ...any) error {
	row := r.values[r.cursor-1]
	if len(dest) != len(row) {
		return errors.New("number of destinations")
	}
	for i, d := range dest {
		switch d := d.(type) {
		case *string:
			*d = row[i].(string)
		case *int:
			*d = row[i].(int)
		case *time.Time:
			*d = row[i].(time.Time)
		default:
			return errors.New("unsupported destination")
		}
	}
	return nil
}

type node struct {
	ComputeResourceId string
	NodeId            string
	LastSeen          time.Time `sql:"timestamp_last_active"`
}

func TestScanner(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	t.Run("structs are filled by tags, names and camel case names", func(t *testing.T) {
		actual, err := scanner.New[node]().ScanAll(&rows{
			columns: []string{"NodeId", "compute_resource_id", "timestamp_last_active"},
			values: [][]any{
				{"node-1", "cr-1", at},
				{"node-2", "cr-1", at.Add(time.Hour)},
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		expected := []node{
			{ComputeResourceId: "cr-1", NodeId: "node-1", LastSeen: at},
			{ComputeResourceId: "cr-1", NodeId: "node-2", LastSeen: at.Add(time.Hour)},
		}
		if !cmp.SliceEqWith(actual, expected, func(a, b node) bool {
			return a.ComputeResourceId == b.ComputeResourceId && a.NodeId == b.NodeId && a.LastSeen.Equal(b.LastSeen)
		}) {
			t.Errorf("unmatch:\n===actual===\n%+v\n===expected===\n%+v", actual, expected)
		}
	})

	t.Run("unknown columns are errors", func(t *testing.T) {
		_, err := scanner.New[node]().ScanAll(&rows{columns: []string{"node_name"}})
		if err == nil {
			t.Error("expected error, but nil")
		}
	})

	t.Run("single column values", func(t *testing.T) {
		actual, err := scanner.New[string]().ScanAll(&rows{
			columns: []string{"project_id"},
			values:  [][]any{{"pj-1"}, {"pj-2"}},
		})
		if err != nil {
			t.Fatal(err)
		}
		if !cmp.SliceEq(actual, []string{"pj-1", "pj-2"}) {
			t.Errorf("unmatch: %v", actual)
		}
	})

	t.Run("single column scanner rejects multiple columns", func(t *testing.T) {
		if _, err := scanner.New[string]().ScanAll(&rows{columns: []string{"a", "b"}}); err == nil {
			t.Error("expected error, but nil")
		}
	})

	t.Run("errors of rows are returned", func(t *testing.T) {
		errBroken := errors.New("broken")
		_, err := scanner.New[string]().ScanAll(&rows{columns: []string{"project_id"}, err: errBroken})
		if !errors.Is(err, errBroken) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
