// Package scanner scans pgx.Rows into typed values.
package scanner

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
)

type Queryer interface {
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
}

// Scanner converts rows into []T.
//
//	type Node struct {
//		NodeId   string
//		LastSeen time.Time `sql:"timestamp_last_active"`
//	}
//
//	nodes, err := scanner.New[Node]().QueryAll(ctx, pool, `select "node_id", "timestamp_last_active" from ...`)
//
// # mapping rule
//
// A column is mapped into the first one of:
//
//  1. the field tagged `sql:"column_name"`
//  2. the field named as the column
//  3. the field named as the CamelCase of the column ("node_id" -> "NodeId")
//
// When T is not a struct (string, numbers, bool, time.Time or []byte), rows should have exactly one column.
type Scanner[T any] interface {
	ScanAll(pgx.Rows) ([]T, error)
	QueryAll(ctx context.Context, conn Queryer, sql string, params ...interface{}) ([]T, error)
}

func New[T any]() Scanner[T] {
	typ := reflect.TypeOf(*new(T))
	if typ.Kind() != reflect.Struct || typ == reflect.TypeOf(time.Time{}) {
		return singleColumn[T]{}
	}

	s := fields[T]{byTag: map[string]int{}, byName: map[string]int{}}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		s.byName[f.Name] = i
		if tag, ok := f.Tag.Lookup("sql"); ok {
			s.byTag[tag] = i
		}
	}
	return s
}

func camel(column string) string {
	b := &strings.Builder{}
	for _, w := range strings.Split(column, "_") {
		if w == "" {
			b.WriteString("_")
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	return b.String()
}

type fields[T any] struct {
	byTag  map[string]int
	byName map[string]int
}

func (s fields[T]) index(column string) (int, bool) {
	if i, ok := s.byTag[column]; ok {
		return i, true
	}
	if i, ok := s.byName[column]; ok {
		return i, true
	}
	i, ok := s.byName[camel(column)]
	return i, ok
}

func (s fields[T]) ScanAll(rows pgx.Rows) ([]T, error) {
	columns := rows.FieldDescriptions()
	indices := make([]int, len(columns))
	for nth, fd := range columns {
		i, ok := s.index(string(fd.Name))
		if !ok {
			return nil, fmt.Errorf(`field for column "%s" is not found in type %T`, fd.Name, *new(T))
		}
		indices[nth] = i
	}

	ret := []T{}
	for rows.Next() {
		elem := new(T)
		v := reflect.ValueOf(elem).Elem()
		dest := make([]interface{}, len(indices))
		for nth, i := range indices {
			dest[nth] = v.Field(i).Addr().Interface()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		ret = append(ret, *elem)
	}
	return ret, rows.Err()
}

func (s fields[T]) QueryAll(ctx context.Context, conn Queryer, sql string, params ...interface{}) ([]T, error) {
	return queryAll[T](ctx, s, conn, sql, params...)
}

type singleColumn[T any] struct{}

func (singleColumn[T]) ScanAll(rows pgx.Rows) ([]T, error) {
	if n := len(rows.FieldDescriptions()); n != 1 {
		return nil, fmt.Errorf("%d columns can not be scanned into %T", n, *new(T))
	}
	ret := []T{}
	for rows.Next() {
		var elem T
		if err := rows.Scan(&elem); err != nil {
			return nil, err
		}
		ret = append(ret, elem)
	}
	return ret, rows.Err()
}

func (s singleColumn[T]) QueryAll(ctx context.Context, conn Queryer, sql string, params ...interface{}) ([]T, error) {
	return queryAll[T](ctx, s, conn, sql, params...)
}

func queryAll[T any](ctx context.Context, s Scanner[T], conn Queryer, sql string, params ...interface{}) ([]T, error) {
	rows, err := conn.Query(ctx, sql, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.ScanAll(rows)
}
