package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// Create runs the overlap check and the insert inside one serializable
	// transaction. If conflicting bookings exist, they are returned (ordered
	// by start time ascending) and nothing is persisted. On success the
	// booking's ID and CreatedAt are filled in.
	Create(ctx context.Context, b *Booking) ([]Conflict, error)

	// FindConflicts selects every persisted booking whose interval overlaps
	// the candidate, ordered by start time ascending. ownerID marks which
	// conflicts belong to the requester.
	FindConflicts(ctx context.Context, candidate Interval, ownerID string) ([]Conflict, error)

	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// Delete looks the booking up inside a transaction, calls authorize on
	// the snapshot and deletes only if it returns nil. Any authorize error
	// rolls the transaction back and is returned unchanged.
	Delete(ctx context.Context, id string, authorize func(*Booking) error) (*Booking, error)

	StatsForUser(ctx context.Context, userID string) (*Stats, error)
	UsageSummary(ctx context.Context, period Period) ([]*UserUsage, error)
	ListGroupedByUser(ctx context.Context, from, to *time.Time) ([]*UserBookings, error)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) ([]Conflict, error) {
	// Serializable isolation keeps two concurrent creates from both passing
	// the overlap check. The exclusion constraint on the interval range is
	// the second line of defense; its violation maps to a conflict below.
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, mapPgError(fmt.Errorf("begin create booking tx failed: %w", err))
	}
	defer tx.Rollback(ctx)

	conflicts, err := findConflicts(ctx, tx, b.Interval(), b.UserID)
	if err != nil {
		return nil, mapPgError(err)
	}
	if len(conflicts) > 0 {
		return conflicts, nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("user_id", "start_time", "end_time").
		Values(b.UserID, b.StartTime, b.EndTime).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		return nil, mapPgError(fmt.Errorf("create booking failed: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapPgError(fmt.Errorf("commit create booking failed: %w", err))
	}
	return nil, nil
}

func (r *pgxRepository) FindConflicts(ctx context.Context, candidate Interval, ownerID string) ([]Conflict, error) {
	return findConflicts(ctx, r.pool, candidate, ownerID)
}

func findConflicts(ctx context.Context, q querier, candidate Interval, ownerID string) ([]Conflict, error) {
	// Half-open overlap predicate: existing.start < new.end AND existing.end > new.start.
	// Back-to-back bookings are not conflicts.
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "start_time", "end_time", "user_id").
		From("public.bookings").
		Where(squirrel.Lt{"start_time": candidate.End}).
		Where(squirrel.Gt{"end_time": candidate.Start}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build conflict query failed: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("conflict query failed: %w", err)
	}
	defer rows.Close()

	var conflicts []Conflict
	for rows.Next() {
		var c Conflict
		if err := rows.Scan(&c.BookingID, &c.Interval.Start, &c.Interval.End, &c.OwnerID); err != nil {
			return nil, fmt.Errorf("scan conflict failed: %w", err)
		}
		c.OwnedByRequester = c.OwnerID == ownerID
		conflicts = append(conflicts, c)
	}
	return conflicts, rows.Err()
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	const query = `
		SELECT b.id, b.user_id, u.name, u.role, b.start_time, b.end_time, b.created_at
		FROM public.bookings b
		JOIN public.users u ON b.user_id = u.id
		WHERE b.id = $1
	`

	var b Booking
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.UserName, &b.UserRole, &b.StartTime, &b.EndTime, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapPgError(fmt.Errorf("get booking failed: %w", err))
	}
	return &b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"b.id", "b.user_id", "u.name", "u.role",
		"b.start_time", "b.end_time", "b.created_at",
		"count(*) OVER() AS total_count",
	).
		From("public.bookings b").
		Join("public.users u ON b.user_id = u.id").
		Where(squirrel.Eq{"u.is_deleted": false})

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.StartDate != nil {
		query = query.Where(squirrel.GtOrEq{"b.start_time": filter.StartDate})
	}
	if filter.EndDate != nil {
		query = query.Where(squirrel.LtOrEq{"b.end_time": filter.EndDate})
	}

	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	query = query.OrderBy("b.start_time DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, mapPgError(fmt.Errorf("list bookings failed: %w", err))
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.UserName, &b.UserRole,
			&b.StartTime, &b.EndTime, &b.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}
	return bookings, total, rows.Err()
}

func (r *pgxRepository) Delete(ctx context.Context, id string, authorize func(*Booking) error) (*Booking, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, mapPgError(fmt.Errorf("begin delete booking tx failed: %w", err))
	}
	defer tx.Rollback(ctx)

	const query = `
		SELECT b.id, b.user_id, u.name, u.role, b.start_time, b.end_time, b.created_at
		FROM public.bookings b
		JOIN public.users u ON b.user_id = u.id
		WHERE b.id = $1
		FOR UPDATE OF b
	`

	var b Booking
	err = tx.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.UserName, &b.UserRole, &b.StartTime, &b.EndTime, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapPgError(fmt.Errorf("get booking for delete failed: %w", err))
	}

	if err := authorize(&b); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM public.bookings WHERE id = $1", id); err != nil {
		return nil, mapPgError(fmt.Errorf("delete booking failed: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapPgError(fmt.Errorf("commit delete booking failed: %w", err))
	}
	return &b, nil
}

func (r *pgxRepository) StatsForUser(ctx context.Context, userID string) (*Stats, error) {
	const query = `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE start_time > now()) AS upcoming,
			COUNT(*) FILTER (WHERE start_time <= now()) AS past
		FROM public.bookings
		WHERE user_id = $1
	`

	var s Stats
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&s.Total, &s.Upcoming, &s.Past); err != nil {
		return nil, mapPgError(fmt.Errorf("booking stats failed: %w", err))
	}
	return &s, nil
}

func (r *pgxRepository) UsageSummary(ctx context.Context, period Period) ([]*UserUsage, error) {
	// The window filter is built from a closed set of periods, never from
	// caller input.
	var window string
	switch period {
	case PeriodWeek:
		window = " AND b.created_at >= now() - INTERVAL '7 days'"
	case PeriodMonth:
		window = " AND b.created_at >= now() - INTERVAL '30 days'"
	case PeriodYear:
		window = " AND b.created_at >= now() - INTERVAL '365 days'"
	}

	query := `
		SELECT
			u.id, u.name, u.email, u.role,
			COUNT(b.id) AS total_bookings,
			COALESCE(SUM(EXTRACT(EPOCH FROM (b.end_time - b.start_time)) / 60), 0)::integer AS total_minutes
		FROM public.users u
		LEFT JOIN public.bookings b ON b.user_id = u.id` + window + `
		WHERE u.is_deleted = false
		GROUP BY u.id, u.name, u.email, u.role
		ORDER BY total_bookings DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, mapPgError(fmt.Errorf("usage summary failed: %w", err))
	}
	defer rows.Close()

	var usages []*UserUsage
	for rows.Next() {
		var u UserUsage
		if err := rows.Scan(
			&u.UserID, &u.UserName, &u.UserEmail, &u.UserRole,
			&u.TotalBookings, &u.TotalMinutes,
		); err != nil {
			return nil, fmt.Errorf("scan usage summary failed: %w", err)
		}
		usages = append(usages, &u)
	}
	return usages, rows.Err()
}

func (r *pgxRepository) ListGroupedByUser(ctx context.Context, from, to *time.Time) ([]*UserBookings, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	joinSQL := "public.bookings b ON b.user_id = u.id"
	var joinArgs []any
	if from != nil {
		joinSQL += " AND b.start_time >= ?"
		joinArgs = append(joinArgs, *from)
	}
	if to != nil {
		joinSQL += " AND b.start_time <= ?"
		joinArgs = append(joinArgs, *to)
	}

	query, args, err := psql.Select(
		"u.id", "u.name", "u.email", "u.role",
		`COALESCE(
			json_agg(
				json_build_object(
					'id', b.id,
					'start_time', b.start_time,
					'end_time', b.end_time,
					'created_at', b.created_at
				) ORDER BY b.start_time
			) FILTER (WHERE b.id IS NOT NULL),
			'[]'::json
		) AS bookings`,
	).
		From("public.users u").
		LeftJoin(joinSQL, joinArgs...).
		Where(squirrel.Eq{"u.is_deleted": false}).
		GroupBy("u.id", "u.name", "u.email", "u.role").
		OrderBy("u.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build grouped bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(fmt.Errorf("grouped bookings failed: %w", err))
	}
	defer rows.Close()

	var groups []*UserBookings
	for rows.Next() {
		var g UserBookings
		var bookingsJSON []byte
		if err := rows.Scan(&g.UserID, &g.UserName, &g.UserEmail, &g.UserRole, &bookingsJSON); err != nil {
			return nil, fmt.Errorf("scan grouped bookings failed: %w", err)
		}

		var items []struct {
			ID        string    `json:"id"`
			StartTime time.Time `json:"start_time"`
			EndTime   time.Time `json:"end_time"`
			CreatedAt time.Time `json:"created_at"`
		}
		if err := json.Unmarshal(bookingsJSON, &items); err != nil {
			// One malformed aggregate should not fail the whole listing.
			log.Printf("warning: failed to unmarshal bookings for user %s: %v", g.UserID, err)
		}
		for _, it := range items {
			g.Bookings = append(g.Bookings, &Booking{
				ID:        it.ID,
				UserID:    g.UserID,
				UserName:  g.UserName,
				UserRole:  g.UserRole,
				StartTime: it.StartTime,
				EndTime:   it.EndTime,
				CreatedAt: it.CreatedAt,
			})
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

// mapPgError translates storage-level failures into domain errors. Constraint
// violations that slip past the in-transaction check (lost races) become
// conflicts or validation errors; serialization failures, deadlocks and
// timeouts become transient errors that are safe to retry from scratch.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation, pgerrcode.ExclusionViolation:
			return &ConflictError{Label: LabelOverlaps}
		case pgerrcode.CheckViolation:
			return &ValidationError{
				Kind:   ValidationInvalidOrder,
				Fields: []string{"start_time", "end_time"},
				Detail: "booking violates storage constraints",
			}
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.QueryCanceled:
			return ErrTransientStore
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTransientStore
	}
	return err
}
