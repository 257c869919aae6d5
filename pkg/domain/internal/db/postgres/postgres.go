// Package postgres contains helpers shared by postgres implementations of domain stores.
package postgres

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgtype"
)

// IsUniqueViolation tells err is caused by a unique constraint.
func IsUniqueViolation(err error) bool {
	pgerr := new(pgconn.PgError)
	return errors.As(err, &pgerr) && pgerr.Code == pgerrcode.UniqueViolation
}

func Timestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Status: pgtype.Null}
	}
	return pgtype.Timestamptz{Time: *t, Status: pgtype.Present}
}

func TimePtr(t pgtype.Timestamptz) *time.Time {
	if t.Status != pgtype.Present {
		return nil
	}
	v := t.Time
	return &v
}

// JSONB marshals v for jsonb columns.
func JSONB(v any) (pgtype.JSONB, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return pgtype.JSONB{}, err
	}
	return pgtype.JSONB{Bytes: buf, Status: pgtype.Present}, nil
}

// FromJSONB unmarshals a jsonb column into out.
//
// NULL leaves out as it is.
func FromJSONB(col pgtype.JSONB, out any) error {
	if col.Status != pgtype.Present {
		return nil
	}
	return json.Unmarshal(col.Bytes, out)
}
