// Package args turns parse functions into command line flags.
//
// A *Value satisfies both flag.Value and pflag.Value (used by cobra).
//
//	loopType := args.Parser(AsLoopType)
//	flag.Var(loopType, "type", "loop type")
//	flag.Parse()
//	if !loopType.IsSet() { ... }
package args

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

type Value[T interface{ String() string }] struct {
	value  T
	parser func(string) (T, error)
	isSet  bool
}

func Parser[T interface{ String() string }](parser func(string) (T, error)) *Value[T] {
	return &Value[T]{parser: parser}
}

func (v *Value[T]) String() string {
	if v.isSet {
		return v.value.String()
	}
	return ""
}

// Set parses s. On error, the value is left as it was.
func (v *Value[T]) Set(s string) error {
	parsed, err := v.parser(s)
	if err != nil {
		return err
	}
	v.isSet = true
	v.value = parsed
	return nil
}

// Type names the value in usage messages of cobra.
func (v *Value[T]) Type() string {
	return strings.ToLower(reflect.TypeOf((*T)(nil)).Elem().Name())
}

func (v *Value[T]) Value() T {
	return v.value
}

func (v *Value[T]) IsSet() bool {
	return v.isSet
}

// Or returns the parsed value, or fallback when the flag is not given.
func (v *Value[T]) Or(fallback T) T {
	if v.isSet {
		return v.value
	}
	return fallback
}

// Timestamp is a time given as RFC3339.
type Timestamp time.Time

func RFC3339(s string) (Timestamp, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("should be RFC3339: %w", err)
	}
	return Timestamp(t), nil
}

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) String() string {
	return time.Time(t).Format(time.RFC3339)
}
