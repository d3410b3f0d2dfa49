package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is a backend object exactly as returned by the API.
// List and detail pages render records without a typed schema.
type Record map[string]any

// ID returns the record id as a string, or "" when absent
func (r Record) ID() string {
	return r.String("id")
}

// String returns a field formatted for display
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// First returns the first non-empty value among keys
func (r Record) First(keys ...string) string {
	for _, k := range keys {
		if s := r.String(k); s != "" {
			return s
		}
	}
	return ""
}

// Int64 returns the first of keys holding a whole number, accepting
// numeric strings
func (r Record) Int64(keys ...string) (int64, bool) {
	for _, k := range keys {
		switch t := r[k].(type) {
		case float64:
			if t == math.Trunc(t) {
				return int64(t), true
			}
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// Int returns the first of keys holding a number, or 0
func (r Record) Int(keys ...string) int {
	for _, k := range keys {
		switch t := r[k].(type) {
		case float64:
			return int(t)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return int(f)
			}
		}
	}
	return 0
}

// Bool reads a flag sent as a bool, a number or a string such as
// "true", "1" or "yes". It returns nil when the flag is absent or unreadable.
func (r Record) Bool(key string) *bool {
	var b bool
	switch t := r[key].(type) {
	case bool:
		b = t
	case float64:
		b = t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "t", "1", "yes", "y":
			b = true
		case "false", "f", "0", "no", "n":
			b = false
		default:
			return nil
		}
	default:
		return nil
	}
	return &b
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time returns the first of keys holding a timestamp. Strings may be RFC
// 3339 or SQL formatted (zone-less values are UTC); numbers are Unix
// seconds, or milliseconds when too large for seconds.
func (r Record) Time(keys ...string) *time.Time {
	for _, k := range keys {
		switch t := r[k].(type) {
		case string:
			s := strings.TrimSpace(t)
			for _, layout := range timeLayouts {
				if ts, err := time.Parse(layout, s); err == nil {
					return &ts
				}
			}
		case float64:
			var ts time.Time
			if t > 1e12 {
				ts = time.UnixMilli(int64(t)).UTC()
			} else {
				ts = time.Unix(int64(t), 0).UTC()
			}
			return &ts
		}
	}
	return nil
}

func (r Record) int64Ptr(keys ...string) *int64 {
	if n, ok := r.Int64(keys...); ok {
		return &n
	}
	return nil
}
