package booking

import (
	"fmt"
	"time"
)

// Duration policy for a single booking.
const (
	MinDuration = 15 * time.Minute
	MaxDuration = 24 * time.Hour
)

// Interval is a half-open time range [Start, End) used for overlap checks.
// It is never persisted on its own.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two intervals share any instant.
// Half-open semantics: back-to-back intervals do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// Duration returns the length of the interval.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// ParseInterval validates raw start/end values and produces an Interval.
// Checks run in order and stop at the first failure:
// presence, RFC 3339 parseability, strict ordering, minimum and maximum duration.
func ParseInterval(startRaw, endRaw string) (Interval, error) {
	var missing []string
	if startRaw == "" {
		missing = append(missing, "start_time")
	}
	if endRaw == "" {
		missing = append(missing, "end_time")
	}
	if len(missing) > 0 {
		return Interval{}, &ValidationError{
			Kind:   ValidationMissingField,
			Fields: missing,
			Detail: fmt.Sprintf("required field(s) missing: %v", missing),
		}
	}

	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return Interval{}, &ValidationError{
			Kind:   ValidationMalformedDate,
			Fields: []string{"start_time"},
			Detail: `invalid date format, use ISO 8601 (e.g. "2025-03-15T10:00:00Z")`,
		}
	}
	end, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		return Interval{}, &ValidationError{
			Kind:   ValidationMalformedDate,
			Fields: []string{"end_time"},
			Detail: `invalid date format, use ISO 8601 (e.g. "2025-03-15T10:00:00Z")`,
		}
	}

	iv := Interval{Start: start, End: end}

	if !start.Before(end) {
		return Interval{}, &ValidationError{
			Kind:   ValidationInvalidOrder,
			Fields: []string{"start_time", "end_time"},
			Detail: "start time must be before end time",
		}
	}
	if iv.Duration() < MinDuration {
		return Interval{}, &ValidationError{
			Kind:   ValidationTooShort,
			Fields: []string{"start_time", "end_time"},
			Detail: fmt.Sprintf("booking must be at least %d minutes long", int(MinDuration.Minutes())),
		}
	}
	if iv.Duration() > MaxDuration {
		return Interval{}, &ValidationError{
			Kind:   ValidationTooLong,
			Fields: []string{"start_time", "end_time"},
			Detail: fmt.Sprintf("booking cannot exceed %d hours", int(MaxDuration.Hours())),
		}
	}

	return iv, nil
}
