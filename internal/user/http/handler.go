package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/auth"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/booking"
	bookingHttp "github.com/sat-paing-thu-168/meeting-booking-backend/internal/booking/http"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/pkg/request"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/pkg/response"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/user"
)

type UserHandler struct {
	userService    user.Service
	bookingService booking.Service
	jwtManager     *auth.JWTManager
}

func NewHandler(userService user.Service, bookingService booking.Service, jwtManager *auth.JWTManager) *UserHandler {
	return &UserHandler{
		userService:    userService,
		bookingService: bookingService,
		jwtManager:     jwtManager,
	}
}

// writeUserError maps user domain sentinels onto HTTP responses.
func writeUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, user.ErrEmailAlreadyUsed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrSelfDelete),
		errors.Is(err, user.ErrNameRequired),
		errors.Is(err, user.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		response.Error(c, err)
	}
}

func (h *UserHandler) token(u *user.User) (string, error) {
	email := ""
	if u.Email != nil {
		email = *u.Email
	}
	return h.jwtManager.GenerateAccessToken(u.ID, email, string(u.Role), u.Name)
}

// Login authenticates a user using email and password.
// On success, it returns a JWT access token and the user profile.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	u, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			// Do not reveal which condition failed.
			c.JSON(http.StatusUnauthorized, gin.H{"error": user.ErrInvalidCredentials.Error()})
			return
		}
		response.Error(c, err)
		return
	}

	token, err := h.token(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token, User: NewUserResponse(u)})
}

// Register creates a new account. The route is admin-gated: only an
// administrator can provision accounts.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	u, err := h.userService.Create(c.Request.Context(), user.CreateParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     user.Role(req.Role),
	})
	if err != nil {
		writeUserError(c, err)
		return
	}

	token, err := h.token(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, TokenResponse{Token: token, User: NewUserResponse(u)})
}

// Me retrieves the profile of the currently authenticated user together
// with booking stats.
func (h *UserHandler) Me(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()

	u, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		writeUserError(c, err)
		return
	}
	if u.IsDeleted {
		c.JSON(http.StatusForbidden, gin.H{"error": user.ErrAccountDeactivated.Error()})
		return
	}

	stats, err := h.bookingService.StatsForUser(ctx, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": NewUserResponse(u),
		"stats": StatsResponse{
			TotalBookings:    stats.Total,
			UpcomingBookings: stats.Upcoming,
			PastBookings:     stats.Past,
		},
	})
}

// MeBookings returns the current user's profile, their most recent bookings
// and booking counts.
func (h *UserHandler) MeBookings(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()

	u, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		writeUserError(c, err)
		return
	}
	if u.IsDeleted {
		c.JSON(http.StatusForbidden, gin.H{"error": user.ErrAccountDeactivated.Error()})
		return
	}

	bookings, _, err := h.bookingService.List(ctx, booking.Filter{UserID: userID, Limit: 10})
	if err != nil {
		response.Error(c, err)
		return
	}

	stats, err := h.bookingService.StatsForUser(ctx, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]bookingHttp.BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = bookingHttp.NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     NewUserResponse(u),
		"bookings": items,
		"stats": StatsResponse{
			TotalBookings:    stats.Total,
			UpcomingBookings: stats.Upcoming,
			PastBookings:     stats.Past,
		},
	})
}

// Verify echoes the authenticated principal, confirming the token is valid.
func (h *UserHandler) Verify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "token is valid",
		"user": gin.H{
			"id":   auth.GetUserID(c),
			"role": auth.GetUserRole(c),
		},
	})
}

func (h *UserHandler) List(c *gin.Context) {
	var req ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	users, total, err := h.userService.List(c.Request.Context(), user.Filter{
		Role:           req.Role,
		Search:         req.Search,
		IncludeDeleted: req.IncludeDeleted,
		Page:           req.Page,
		Limit:          req.Limit,
		SortBy:         req.SortBy,
		SortOrder:      req.SortOrder,
	})
	if err != nil {
		writeUserError(c, err)
		return
	}

	items := make([]UserResponse, len(users))
	for i, u := range users {
		items[i] = NewUserListResponse(u)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.Limit, total))
}

// Get returns one user. A plain user may only view their own profile;
// admins may view anyone.
func (h *UserHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}
	id := uri.ID

	if auth.GetUserID(c) != id && user.Role(auth.GetUserRole(c)) != user.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only view your own profile"})
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		writeUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUserResponse(u))
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	u, err := h.userService.Create(c.Request.Context(), user.CreateParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     user.Role(req.Role),
	})
	if err != nil {
		writeUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewUserResponse(u))
}

func (h *UserHandler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if req.Role == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": user.ErrNoFieldsToUpdate.Error()})
		return
	}

	u, err := h.userService.UpdateRole(c.Request.Context(), uri.ID, user.Role(*req.Role))
	if err != nil {
		writeUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUserResponse(u))
}

// Delete soft-deletes a user; their booking history is kept.
func (h *UserHandler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.userService.SoftDelete(c.Request.Context(), uri.ID, auth.GetUserID(c)); err != nil {
		writeUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})
}

// HardDelete permanently removes a user and all their bookings.
func (h *UserHandler) HardDelete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.userService.HardDelete(c.Request.Context(), uri.ID); err != nil {
		writeUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user permanently deleted"})
}
