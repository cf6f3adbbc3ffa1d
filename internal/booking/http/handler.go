package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/auth"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/booking"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/pkg/response"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/user"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// writeBookingError maps the booking error taxonomy onto HTTP responses.
// Validation detail and conflict lists are safe to report verbatim.
func writeBookingError(c *gin.Context, err error) {
	var valErr *booking.ValidationError
	if errors.As(err, &valErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"kind":    string(valErr.Kind),
			"fields":  valErr.Fields,
			"details": valErr.Detail,
		})
		return
	}

	var conflictErr *booking.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "booking conflict",
			"label":     string(conflictErr.Label),
			"details":   "your booking " + conflictErr.Label.Phrase() + " existing booking(s)",
			"conflicts": NewConflictItems(conflictErr.Conflicts),
		})
		return
	}

	response.Error(c, err)
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	b, err := h.service.Create(c.Request.Context(), userID, body.StartTime, body.EndTime)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "booking created successfully",
		"booking": NewBookingResponse(b),
	})
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := booking.Filter{
		UserID:    req.UserID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Limit:     req.Limit,
		Offset:    req.Offset,
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewListResponse(items, total, req.Limit, req.Offset))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	requesterID := auth.GetUserID(c)
	requesterRole := user.Role(auth.GetUserRole(c))

	b, err := h.service.Delete(c.Request.Context(), id, requesterID, requesterRole)
	if err != nil {
		response.Error(c, err)
		return
	}

	deletedBy := auth.GetUserName(c)
	if deletedBy == "" {
		deletedBy = "unknown"
	}

	c.JSON(http.StatusOK, DeletedBookingResponse{
		Message: "booking deleted successfully",
		DeletedBooking: DeletedSnapshot{
			ID:        b.ID,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Owner:     b.UserName,
			DeletedBy: deletedBy,
		},
	})
}

func (h *Handler) Availability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	avail, err := h.service.CheckAvailability(c.Request.Context(), auth.GetUserID(c), req.StartTime, req.EndTime)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	resp := AvailabilityResponse{Available: avail.Available}
	if !avail.Available {
		resp.Label = string(avail.Label)
		resp.Conflicts = NewConflictItems(avail.Conflicts)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UsageSummary(c *gin.Context) {
	var req UsageSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	usages, err := h.service.UsageSummary(c.Request.Context(), booking.Period(req.Period))
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := UsageSummaryResponse{
		Period: req.Period,
		Users:  make([]UserUsageItem, len(usages)),
	}
	for i, u := range usages {
		resp.TotalBookings += u.TotalBookings
		if u.TotalBookings > 0 {
			resp.ActiveUsers++
		}
		resp.Users[i] = UserUsageItem{
			UserID:        u.UserID,
			UserName:      u.UserName,
			UserEmail:     u.UserEmail,
			UserRole:      string(u.UserRole),
			TotalBookings: u.TotalBookings,
			TotalMinutes:  u.TotalMinutes,
			TotalHours:    float64(u.TotalMinutes) / 60,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GroupedByUser(c *gin.Context) {
	var req GroupedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	groups, err := h.service.ListGroupedByUser(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := GroupedResponse{
		TotalUsers: len(groups),
		Data:       make([]UserBookingsItem, len(groups)),
	}
	for i, g := range groups {
		if len(g.Bookings) > 0 {
			resp.UsersWithBookings++
		}
		bookings := make([]BookingResponse, len(g.Bookings))
		for j, b := range g.Bookings {
			bookings[j] = NewBookingResponse(b)
		}
		resp.Data[i] = UserBookingsItem{
			UserID:        g.UserID,
			UserName:      g.UserName,
			UserEmail:     g.UserEmail,
			UserRole:      string(g.UserRole),
			TotalBookings: len(g.Bookings),
			Bookings:      bookings,
		}
	}
	c.JSON(http.StatusOK, resp)
}
