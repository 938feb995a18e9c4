package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// JSONTime is a timestamp sent by the mobile app. Every accepted form is
// normalized to UTC; values without an offset are taken to be UTC already.
type JSONTime time.Time

// layouts accepted from devices, most specific first
var jsonTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseJSONTime parses s with any accepted layout and returns it in UTC.
func ParseJSONTime(s string) (time.Time, error) {
	for _, layout := range jsonTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("JSONTime: cannot parse %q", s)
}

func (jt *JSONTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*jt = JSONTime(time.Time{})
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	t, err := ParseJSONTime(s)
	if err != nil {
		return fmt.Errorf("JSONTime.UnmarshalJSON: %w", err)
	}
	*jt = JSONTime(t)
	return nil
}

// MarshalJSON always emits RFC3339 in UTC ("…Z").
func (jt JSONTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(jt).UTC().Format(time.RFC3339Nano))
}

func (jt JSONTime) Time() time.Time {
	return time.Time(jt).UTC()
}

func (jt JSONTime) IsZero() bool {
	return time.Time(jt).IsZero()
}
