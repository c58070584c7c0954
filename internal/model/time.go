package model

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// localTimeLayout is the zone-less ISO form the dashboard form submits.
const localTimeLayout = "2006-01-02T15:04:05.000"

var localTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// LocalTime is a timestamp exchanged with the task API without a zone offset.
// Zone-less values are read as UTC.
type LocalTime struct {
	time.Time
}

// ParseLocalTime parses any of the timestamp forms the API and the dashboard
// forms produce.
func ParseLocalTime(s string) (LocalTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LocalTime{}, nil
	}
	for _, layout := range localTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return LocalTime{Time: t}, nil
		}
	}
	return LocalTime{}, fmt.Errorf("failed to parse timestamp %q", s)
}

// UnmarshalJSON implements the json.Unmarshaler interface for LocalTime.
func (lt *LocalTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		lt.Time = time.Time{}
		return nil
	}
	parsed, err := ParseLocalTime(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*lt = parsed
	return nil
}

// MarshalJSON implements the json.Marshaler interface for LocalTime.
func (lt LocalTime) MarshalJSON() ([]byte, error) {
	if lt.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + lt.Time.UTC().Format(localTimeLayout) + `"`), nil
}
