package http

import (
	"time"

	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/booking"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/pkg/request"
)

// CreateBookingRequest carries the raw time bounds. They are deliberately
// plain strings: presence and parseability are part of the interval
// validation pipeline, not the JSON binding.
type CreateBookingRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// AvailabilityRequest defines query parameters for the availability probe.
type AvailabilityRequest struct {
	StartTime string `form:"start_time"`
	EndTime   string `form:"end_time"`
}

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.OffsetParams
	UserID    string     `form:"user_id" binding:"omitempty,uuid"`
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02T15:04:05Z07:00"`
}

// GroupedRequest defines query parameters for the grouped-by-user listing.
type GroupedRequest struct {
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02T15:04:05Z07:00"`
}

// UsageSummaryRequest defines query parameters for the usage summary.
type UsageSummaryRequest struct {
	Period string `form:"period,default=all" binding:"omitempty,oneof=all week month year"`
}

type BookingResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	UserName        string    `json:"user_name,omitempty"`
	UserRole        string    `json:"user_role,omitempty"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	CreatedAt       time.Time `json:"created_at"`
	DurationMinutes int       `json:"duration_minutes"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		UserID:          b.UserID,
		UserName:        b.UserName,
		UserRole:        string(b.UserRole),
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		CreatedAt:       b.CreatedAt,
		DurationMinutes: int(b.Interval().Duration().Minutes()),
	}
}

// ConflictItem is one existing booking blocking a requested interval.
// BookedBy never exposes another user's identity, only "you" or
// "another user".
type ConflictItem struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	BookedBy  string    `json:"booked_by"`
}

func NewConflictItems(conflicts []booking.Conflict) []ConflictItem {
	items := make([]ConflictItem, len(conflicts))
	for i, c := range conflicts {
		bookedBy := "another user"
		if c.OwnedByRequester {
			bookedBy = "you"
		}
		items[i] = ConflictItem{
			ID:        c.BookingID,
			StartTime: c.Interval.Start,
			EndTime:   c.Interval.End,
			BookedBy:  bookedBy,
		}
	}
	return items
}

type AvailabilityResponse struct {
	Available bool           `json:"available"`
	Label     string         `json:"label,omitempty"`
	Conflicts []ConflictItem `json:"conflicts,omitempty"`
}

// DeletedBookingResponse confirms a delete with a snapshot of what was removed.
type DeletedBookingResponse struct {
	Message        string          `json:"message"`
	DeletedBooking DeletedSnapshot `json:"deleted_booking"`
}

type DeletedSnapshot struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Owner     string    `json:"owner"`
	DeletedBy string    `json:"deleted_by"`
}

type UserUsageItem struct {
	UserID        string  `json:"user_id"`
	UserName      string  `json:"user_name"`
	UserEmail     *string `json:"user_email"`
	UserRole      string  `json:"user_role"`
	TotalBookings int     `json:"total_bookings"`
	TotalMinutes  int     `json:"total_minutes"`
	TotalHours    float64 `json:"total_hours"`
}

type UsageSummaryResponse struct {
	Period        string          `json:"period"`
	TotalBookings int             `json:"total_bookings"`
	ActiveUsers   int             `json:"active_users"`
	Users         []UserUsageItem `json:"users"`
}

type UserBookingsItem struct {
	UserID        string            `json:"user_id"`
	UserName      string            `json:"user_name"`
	UserEmail     *string           `json:"user_email"`
	UserRole      string            `json:"user_role"`
	TotalBookings int               `json:"total_bookings"`
	Bookings      []BookingResponse `json:"bookings"`
}

type GroupedResponse struct {
	TotalUsers        int                `json:"total_users"`
	UsersWithBookings int                `json:"users_with_bookings"`
	Data              []UserBookingsItem `json:"data"`
}
