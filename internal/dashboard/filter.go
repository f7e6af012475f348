package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/carboncost/carboncost/internal/domain/emission"
)

// DateLayout is the query parameter format for range bounds.
const DateLayout = "2006-01-02"

// DateRange is an inclusive calendar-date range. A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDate parses a YYYY-MM-DD bound. An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseRange parses both bounds and rejects inverted ranges.
func ParseRange(from, to string) (DateRange, error) {
	f, err := ParseDate(from)
	if err != nil {
		return DateRange{}, err
	}
	t, err := ParseDate(to)
	if err != nil {
		return DateRange{}, err
	}
	if !f.IsZero() && !t.IsZero() && t.Before(f) {
		return DateRange{}, fmt.Errorf("%w: %s is after %s", ErrInvalidDate, from, to)
	}
	return DateRange{From: f, To: t}, nil
}

// recordDate returns the UTC calendar date of a record.
func recordDate(r emission.Record) (time.Time, bool) {
	ts, err := r.Time()
	if err != nil {
		return time.Time{}, false
	}
	ts = ts.UTC()
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), true
}

// Contains reports whether date falls within the range.
func (r DateRange) Contains(date time.Time) bool {
	if !r.From.IsZero() && date.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && date.After(r.To) {
		return false
	}
	return true
}

// Filter returns the records whose date falls within r, in input order.
// Records with unparseable timestamps are dropped.
func Filter(records []emission.Record, r DateRange) []emission.Record {
	out := make([]emission.Record, 0, len(records))
	for _, rec := range records {
		d, ok := recordDate(rec)
		if ok && r.Contains(d) {
			out = append(out, rec)
		}
	}
	return out
}

// Bounds returns the earliest and latest record dates. ok is false when no
// record has a parseable timestamp.
func Bounds(records []emission.Record) (minDate, maxDate time.Time, ok bool) {
	for _, rec := range records {
		d, valid := recordDate(rec)
		if !valid {
			continue
		}
		if !ok || d.Before(minDate) {
			minDate = d
		}
		if !ok || d.After(maxDate) {
			maxDate = d
		}
		ok = true
	}
	return minDate, maxDate, ok
}
