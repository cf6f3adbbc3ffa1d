package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/auth"
)

// CreateParams carries the fields for a new account. Email and Password are
// optional when an admin provisions an account directly; such accounts
// cannot log in until credentials are set.
type CreateParams struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// Service defines business logic related to users.
type Service interface {
	Create(ctx context.Context, p CreateParams) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter Filter) ([]*User, int, error)
	UpdateRole(ctx context.Context, id string, role Role) (*User, error)
	SoftDelete(ctx context.Context, id, requesterID string) error
	HardDelete(ctx context.Context, id string) error
}

var ErrPasswordTooShort = errors.New("password is too short")

type service struct {
	repo   Repository
	hasher auth.PasswordHasher

	minPasswordLength int
}

// NewService creates a new user Service.
func NewService(repo Repository, hasher auth.PasswordHasher) Service {
	return &service{
		repo:              repo,
		hasher:            hasher,
		minPasswordLength: 8,
	}
}

func (s *service) Create(ctx context.Context, p CreateParams) (*User, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	role := p.Role
	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	cleanEmail := normalizeEmail(p.Email)
	var emailPtr *string
	if cleanEmail != "" {
		// Check uniqueness among live accounts before inserting; the unique
		// index is the backstop for races.
		_, err := s.repo.GetByEmail(ctx, cleanEmail)
		if err == nil {
			return nil, ErrEmailAlreadyUsed
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("failed to check existing email: %w", err)
		}
		emailPtr = &cleanEmail
	}

	var hash string
	if p.Password != "" {
		if len(p.Password) < s.minPasswordLength {
			return nil, ErrPasswordTooShort
		}
		var err error
		hash, err = s.hasher.Hash(p.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	u := &User{
		Name:         name,
		Email:        emailPtr,
		Role:         role,
		PasswordHash: hash,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, cleanEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}

	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*User, int, error) {
	if filter.Role != "" && !Role(filter.Role).Valid() {
		return nil, 0, ErrInvalidRole
	}
	return s.repo.List(ctx, filter)
}

func (s *service) UpdateRole(ctx context.Context, id string, role Role) (*User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return s.repo.UpdateRole(ctx, id, role)
}

func (s *service) SoftDelete(ctx context.Context, id, requesterID string) error {
	if id == requesterID {
		return ErrSelfDelete
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *service) HardDelete(ctx context.Context, id string) error {
	return s.repo.HardDelete(ctx, id)
}

// normalizeEmail trims spaces and lowercases the email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
