package dashboard

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jinzhu/now"
)

// Date-range presets offered on the dashboard
const (
	Preset1Month   = "1month"
	Preset3Months  = "3months"
	Preset6Months  = "6months"
	Preset12Months = "12months"
	PresetCustom   = "custom"
	PresetAll      = "all"
)

// PresetOption is a preset with its label
type PresetOption struct {
	Value string
	Label string
}

// Presets lists the presets in selector order
var Presets = []PresetOption{
	{PresetAll, "All time"},
	{Preset1Month, "Last month"},
	{Preset3Months, "Last 3 months"},
	{Preset6Months, "Last 6 months"},
	{Preset12Months, "Last 12 months"},
	{PresetCustom, "Custom range"},
}

var presetMonths = map[string]int{
	Preset1Month:   1,
	Preset3Months:  3,
	Preset6Months:  6,
	Preset12Months: 12,
}

var (
	ErrUnknownPreset = errors.New("unknown date range preset")
	ErrInvalidRange  = errors.New("invalid custom date range")
)

const dateLayout = "2006-01-02"

// Range is a date interval applied to the lead and email queries. The zero
// Range (All) applies no date filter.
type Range struct {
	Preset string
	From   time.Time
	To     time.Time
}

// All reports whether the range is unbounded
func (r Range) All() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Query returns the dateFrom/dateTo parameters, inclusive, as RFC 3339
func (r Range) Query() url.Values {
	q := url.Values{}
	if r.All() {
		return q
	}
	q.Set("dateFrom", r.From.UTC().Format(time.RFC3339))
	q.Set("dateTo", r.To.UTC().Format(time.RFC3339))
	return q
}

// RangeFor computes the range of a preset relative to ts. Month presets
// span from ts minus N calendar months to ts. The custom preset spans from
// the beginning of the from day to the end of the to day (YYYY-MM-DD in
// ts's location). An empty preset means all time.
func RangeFor(preset string, ts time.Time, from, to string) (Range, error) {
	switch preset {
	case "", PresetAll:
		return Range{Preset: PresetAll}, nil
	case PresetCustom:
		start, err := time.ParseInLocation(dateLayout, from, ts.Location())
		if err != nil {
			return Range{}, fmt.Errorf("%w: start date %q", ErrInvalidRange, from)
		}
		end, err := time.ParseInLocation(dateLayout, to, ts.Location())
		if err != nil {
			return Range{}, fmt.Errorf("%w: end date %q", ErrInvalidRange, to)
		}
		if end.Before(start) {
			return Range{}, fmt.Errorf("%w: end date is before start date", ErrInvalidRange)
		}
		return Range{
			Preset: PresetCustom,
			From:   now.New(start).BeginningOfDay(),
			To:     now.New(end).EndOfDay(),
		}, nil
	}

	months, ok := presetMonths[preset]
	if !ok {
		return Range{}, fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}
	return Range{Preset: preset, From: subtractMonths(ts, months), To: ts}, nil
}

// subtractMonths moves t back n calendar months, clamping the day to the
// length of the target month (March 31 minus one month is February 28/29).
func subtractMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m-time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := now.New(target).EndOfMonth().Day()
	if d > last {
		d = last
	}
	return target.AddDate(0, 0, d-1)
}
