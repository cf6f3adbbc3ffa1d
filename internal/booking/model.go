package booking

import (
	"net/http"
	"time"

	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/pkg/apperror"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/user"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "you can only delete your own bookings")
	ErrTransientStore   = apperror.New(http.StatusServiceUnavailable, "temporary storage failure, please retry")
)

// Booking is a persisted reservation owned by a user. There is a single
// shared booking space; no per-resource partitioning.
type Booking struct {
	ID        string
	UserID    string
	UserName  string
	UserRole  user.Role
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}

// Interval returns the booking's time span as a comparison value.
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// Filter defines options for listing bookings.
type Filter struct {
	UserID    string
	StartDate *time.Time // bookings starting at or after this instant
	EndDate   *time.Time // bookings ending at or before this instant
	Limit     int
	Offset    int
}

// Period selects the reporting window for usage summaries.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Valid reports whether p is a known reporting period.
func (p Period) Valid() bool {
	switch p {
	case PeriodAll, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// UserUsage aggregates booking volume for one user.
type UserUsage struct {
	UserID        string
	UserName      string
	UserEmail     *string
	UserRole      user.Role
	TotalBookings int
	TotalMinutes  int
}

// UserBookings groups a user's bookings for the grouped listing.
type UserBookings struct {
	UserID    string
	UserName  string
	UserEmail *string
	UserRole  user.Role
	Bookings  []*Booking
}

// Stats summarizes one user's booking counts relative to now.
type Stats struct {
	Total    int
	Upcoming int
	Past     int
}
