// Package emission contains the emission record model, the CO2 estimator and
// the badge tier classification shared by the recorder, collector and
// dashboard.
package emission

import (
	"fmt"
	"strings"
	"time"
)

// Record is one estimated CO2 observation for a CI/CD job run.
// Records are created once per recorder invocation and never modified.
type Record struct {
	Repo        string  `json:"repo"`
	Owner       string  `json:"owner"`
	RunID       string  `json:"run_id"`
	CO2         float64 `json:"co2"`          // kg
	Duration    int     `json:"duration"`     // seconds
	MachineType string  `json:"machine_type"` // e.g. "ubuntu-latest"
	Badge       Tier    `json:"badge"`
	Timestamp   string  `json:"timestamp"` // ISO-8601, kept verbatim
}

// Time parses the record timestamp.
func (r Record) Time() (time.Time, error) {
	return ParseTimestamp(r.Timestamp)
}

// Validate performs the basic checks the collector applies before persisting.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.Repo) == "":
		return fmt.Errorf("%w: missing repo", ErrInvalidRecord)
	case strings.TrimSpace(r.Owner) == "":
		return fmt.Errorf("%w: missing owner", ErrInvalidRecord)
	case strings.TrimSpace(r.RunID) == "":
		return fmt.Errorf("%w: missing run_id", ErrInvalidRecord)
	case strings.TrimSpace(r.MachineType) == "":
		return fmt.Errorf("%w: missing machine_type", ErrInvalidRecord)
	case r.CO2 < 0:
		return fmt.Errorf("%w: co2 must be non-negative", ErrInvalidRecord)
	case r.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalidRecord)
	}
	tier, err := ParseTier(string(r.Badge))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if want := Classify(r.CO2); want != tier {
		return fmt.Errorf("%w: badge %s does not match co2 %.3f (%s)", ErrInvalidRecord, tier, r.CO2, want)
	}
	if _, err := r.Time(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return nil
}

// Timestamp layouts accepted on input. The layouts without an offset are
// read as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an ISO-8601 timestamp. Naive timestamps are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// FormatTimestamp renders t the way the recorder submits it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
