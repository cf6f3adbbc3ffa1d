package http

import (
	"time"

	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/pkg/request"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/user"
)

// LoginRequest defines the payload for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest defines the payload for account registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=admin owner user"`
}

// CreateUserRequest defines the payload for direct user creation by an admin.
// Email and password are optional; accounts without them cannot log in.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=admin owner user"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,min=8"`
}

// UpdateUserRequest defines fields allowed to be updated via PATCH /users/:id.
type UpdateUserRequest struct {
	Role *string `json:"role" binding:"omitempty,oneof=admin owner user"`
}

// ListUsersRequest defines query parameters for listing users.
type ListUsersRequest struct {
	request.PageParams
	Role           string `form:"role" binding:"omitempty,oneof=admin owner user"`
	Search         string `form:"search"`
	IncludeDeleted bool   `form:"include_deleted"`
	SortBy         string `form:"sort_by" binding:"omitempty,oneof=id name email role created_at is_deleted"`
	SortOrder      string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// UserResponse is the shape of user data returned in API responses.
type UserResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         *string   `json:"email"`
	Role          string    `json:"role"`
	IsDeleted     bool      `json:"is_deleted"`
	CreatedAt     time.Time `json:"created_at"`
	TotalBookings *int      `json:"total_bookings,omitempty"`
}

// NewUserResponse converts domain user.User to UserResponse used by the API.
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		IsDeleted: u.IsDeleted,
		CreatedAt: u.CreatedAt,
	}
}

// NewUserListResponse includes the per-user booking count from listings.
func NewUserListResponse(u *user.User) UserResponse {
	resp := NewUserResponse(u)
	count := u.TotalBookings
	resp.TotalBookings = &count
	return resp
}

// TokenResponse returns the token and user info after login or registration.
type TokenResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// StatsResponse summarizes the current user's booking counts.
type StatsResponse struct {
	TotalBookings    int `json:"total_bookings"`
	UpcomingBookings int `json:"upcoming_bookings"`
	PastBookings     int `json:"past_bookings"`
}
