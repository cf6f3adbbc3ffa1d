package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailAlreadyUsed   = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("email or password does not match")
	ErrAccountDeactivated = errors.New("account has been deactivated")
	ErrInvalidRole        = errors.New("invalid role, must be admin, owner, or user")
	ErrSelfDelete         = errors.New("cannot delete your own account")
	ErrNameRequired       = errors.New("name is required")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
)

// Role is the closed set of account roles. Admins and owners manage the
// whole booking space; plain users manage only their own bookings.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOwner, RoleUser:
		return true
	}
	return false
}

// ManagesBookings reports whether the role may act on any booking.
func (r Role) ManagesBookings() bool {
	return r == RoleAdmin || r == RoleOwner
}

// User represents an account. Users are soft-deleted: is_deleted rows stay
// in storage so their booking history survives, but they cannot log in.
type User struct {
	ID           string
	Name         string
	Email        *string
	Role         Role
	PasswordHash string
	IsDeleted    bool
	CreatedAt    time.Time

	// TotalBookings is populated by List only.
	TotalBookings int
}

// Filter defines options for listing users.
type Filter struct {
	Role           string
	Search         string // matches name or email, case-insensitive
	IncludeDeleted bool

	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}
