package unixtime

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Seconds is a timestamp expressed as seconds since the unix epoch, with fraction.
//
// In JSON, it is a number like `1715000000.123`.
type Seconds time.Time

func (s Seconds) Time() time.Time {
	return time.Time(s)
}

func (s *Seconds) Equal(other *Seconds) bool {
	if (s == nil) != (other == nil) {
		return false
	}
	return s == nil || s.Time().Equal(other.Time())
}

// Float returns seconds since the unix epoch.
func (s Seconds) Float() float64 {
	return float64(time.Time(s).UnixMicro()) / 1e6
}

// FromFloat converts seconds since the unix epoch into Seconds.
//
// It truncates resolution to micro second.
func FromFloat(f float64) Seconds {
	sec, frac := math.Modf(f)
	return Seconds(time.Unix(int64(sec), int64(math.Round(frac*1e6))*int64(time.Microsecond)).UTC())
}

// Ref returns nil if t is nil, or a pointer to Seconds of t.
func Ref(t *time.Time) *Seconds {
	if t == nil {
		return nil
	}
	s := Seconds(*t)
	return &s
}

// TimeRef is the reverse of Ref.
func (s *Seconds) TimeRef() *time.Time {
	if s == nil {
		return nil
	}
	t := s.Time()
	return &t
}

func (s Seconds) String() string {
	return strconv.FormatFloat(s.Float(), 'f', -1, 64)
}

// implement encoding/json.Marshaller
func (s Seconds) MarshalJSON() ([]byte, error) {
	return []byte(s.String()), nil
}

// implement encoding/json.Unmarshaller
func (s *Seconds) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*s = FromFloat(f)
	return nil
}
