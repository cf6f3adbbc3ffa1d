package booking

import (
	"fmt"
	"strings"
)

// ConflictLabel classifies how a candidate interval relates to the set of
// overlapping bookings it collides with.
type ConflictLabel string

const (
	LabelExact    ConflictLabel = "exact"
	LabelWithin   ConflictLabel = "within"
	LabelContains ConflictLabel = "contains"
	LabelOverlaps ConflictLabel = "overlaps"
)

// Phrase renders the label as it appears in conflict messages.
func (l ConflictLabel) Phrase() string {
	switch l {
	case LabelExact:
		return "exactly matches"
	case LabelWithin:
		return "is within"
	case LabelContains:
		return "contains"
	default:
		return "overlaps with"
	}
}

// Conflict describes one existing booking that overlaps a candidate interval.
type Conflict struct {
	BookingID        string
	Interval         Interval
	OwnerID          string
	OwnedByRequester bool
}

// Classify computes the aggregate conflict label for a candidate interval
// over the full conflict set. Precedence is fixed: exact beats within beats
// contains beats the overlaps fallback, regardless of row order.
func Classify(candidate Interval, conflicts []Conflict) ConflictLabel {
	var hasWithin, hasContains bool

	for _, c := range conflicts {
		ex := c.Interval
		switch {
		case ex.Start.Equal(candidate.Start) && ex.End.Equal(candidate.End):
			return LabelExact
		case !ex.Start.After(candidate.Start) && !ex.End.Before(candidate.End):
			hasWithin = true
		case !candidate.Start.After(ex.Start) && !candidate.End.Before(ex.End):
			hasContains = true
		}
	}

	switch {
	case hasWithin:
		return LabelWithin
	case hasContains:
		return LabelContains
	default:
		return LabelOverlaps
	}
}

// ConflictError is returned when a booking cannot be created because it
// intersects one or more existing bookings. Conflicts are ordered by the
// existing booking's start time ascending.
type ConflictError struct {
	Label     ConflictLabel
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking %s existing booking(s)", e.Label.Phrase())
}

// ValidationKind identifies which interval validation step failed.
type ValidationKind string

const (
	ValidationMissingField  ValidationKind = "missing_field"
	ValidationMalformedDate ValidationKind = "malformed_date"
	ValidationInvalidOrder  ValidationKind = "invalid_order"
	ValidationTooShort      ValidationKind = "too_short"
	ValidationTooLong       ValidationKind = "too_long"
)

// ValidationError carries enough detail to render a field-level message.
// It is always safe to report verbatim to the caller.
type ValidationError struct {
	Kind   ValidationKind
	Fields []string
	Detail string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Detail
	}
	return fmt.Sprintf("%s: %s", strings.Join(e.Fields, ", "), e.Detail)
}
