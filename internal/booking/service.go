package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/user"
)

// Availability is the result of a non-mutating overlap probe.
type Availability struct {
	Available bool
	Label     ConflictLabel
	Conflicts []Conflict
}

type Service interface {
	// Create validates the raw time bounds, checks the candidate interval
	// against the persisted booking set and inserts atomically if clear.
	// Failures are *ValidationError, *ConflictError, ErrTransientStore or an
	// unclassified storage error.
	Create(ctx context.Context, ownerID, startRaw, endRaw string) (*Booking, error)

	// Delete removes a booking and returns its snapshot. Admins and owners
	// may delete any booking; a plain user only their own.
	Delete(ctx context.Context, id, requesterID string, requesterRole user.Role) (*Booking, error)

	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	CheckAvailability(ctx context.Context, requesterID, startRaw, endRaw string) (*Availability, error)
	StatsForUser(ctx context.Context, userID string) (*Stats, error)
	UsageSummary(ctx context.Context, period Period) ([]*UserUsage, error)
	ListGroupedByUser(ctx context.Context, from, to *time.Time) ([]*UserBookings, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, ownerID, startRaw, endRaw string) (*Booking, error) {
	iv, err := ParseInterval(startRaw, endRaw)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		UserID:    ownerID,
		StartTime: iv.Start,
		EndTime:   iv.End,
	}

	conflicts, err := s.repo.Create(ctx, b)
	if err != nil {
		// A lost race surfaces from storage as a bare conflict: the exclusion
		// constraint fired after the in-transaction check passed. Re-read so
		// the caller still sees which booking won.
		var confErr *ConflictError
		if errors.As(err, &confErr) && len(confErr.Conflicts) == 0 {
			if found, ferr := s.repo.FindConflicts(ctx, iv, ownerID); ferr == nil && len(found) > 0 {
				return nil, &ConflictError{
					Label:     Classify(iv, found),
					Conflicts: found,
				}
			}
		}
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{
			Label:     Classify(iv, conflicts),
			Conflicts: conflicts,
		}
	}

	log.Printf("booking created: user %s booked from %s to %s",
		ownerID, iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
	return b, nil
}

func (s *service) Delete(ctx context.Context, id, requesterID string, requesterRole user.Role) (*Booking, error) {
	return s.repo.Delete(ctx, id, func(b *Booking) error {
		if requesterRole.ManagesBookings() {
			return nil
		}
		if requesterRole == user.RoleUser && b.UserID == requesterID {
			return nil
		}
		return ErrPermissionDenied
	})
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) CheckAvailability(ctx context.Context, requesterID, startRaw, endRaw string) (*Availability, error) {
	iv, err := ParseInterval(startRaw, endRaw)
	if err != nil {
		return nil, err
	}

	conflicts, err := s.repo.FindConflicts(ctx, iv, requesterID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) == 0 {
		return &Availability{Available: true}, nil
	}
	return &Availability{
		Available: false,
		Label:     Classify(iv, conflicts),
		Conflicts: conflicts,
	}, nil
}

func (s *service) StatsForUser(ctx context.Context, userID string) (*Stats, error) {
	return s.repo.StatsForUser(ctx, userID)
}

func (s *service) UsageSummary(ctx context.Context, period Period) ([]*UserUsage, error) {
	if !period.Valid() {
		period = PeriodAll
	}
	return s.repo.UsageSummary(ctx, period)
}

func (s *service) ListGroupedByUser(ctx context.Context, from, to *time.Time) ([]*UserBookings, error) {
	return s.repo.ListGroupedByUser(ctx, from, to)
}
