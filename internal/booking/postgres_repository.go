package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool used by the repository. Mocked in
// tests with pgxmock.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores bookings in Postgres.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("booking: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

var _ Repository = (*PostgresRepository)(nil)

const bookingColumns = "id, customer_name, customer_handle, scheduled_at, status, reminder_sent, created_at"

// Insert creates a pending booking. The partial unique index on the active
// hour bucket turns concurrent same-slot inserts into ErrSlotTaken.
func (r *PostgresRepository) Insert(ctx context.Context, draft Draft) (*Booking, error) {
	b := &Booking{
		ID:             uuid.New(),
		CustomerName:   draft.CustomerName,
		CustomerHandle: draft.CustomerHandle,
		ScheduledAt:    draft.ScheduledAt,
		Status:         StatusPending,
	}
	query := `
		INSERT INTO bookings (id, customer_name, customer_handle, scheduled_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query, b.ID, b.CustomerName, b.CustomerHandle, b.ScheduledAt, b.Status).
		Scan(&b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("booking: insert: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) ListActiveBetween(ctx context.Context, from, to time.Time) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = ANY($1) AND scheduled_at >= $2 AND scheduled_at < $3
		ORDER BY scheduled_at ASC
	`
	return r.list(ctx, query, activeStatusStrings(), from, to)
}

func (r *PostgresRepository) ListActiveFrom(ctx context.Context, from time.Time) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = ANY($1) AND scheduled_at >= $2
		ORDER BY scheduled_at ASC
	`
	return r.list(ctx, query, activeStatusStrings(), from)
}

func (r *PostgresRepository) ListActiveByHandle(ctx context.Context, handle string) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = ANY($1) AND customer_handle = $2
		ORDER BY scheduled_at ASC
	`
	return r.list(ctx, query, activeStatusStrings(), handle)
}

func (r *PostgresRepository) FirstPendingByHandle(ctx context.Context, handle string) (*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND customer_handle = $2
		ORDER BY scheduled_at ASC
		LIMIT 1
	`
	return r.one(ctx, query, StatusPending, handle)
}

func (r *PostgresRepository) FirstActiveByHandle(ctx context.Context, handle string) (*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = ANY($1) AND customer_handle = $2
		ORDER BY scheduled_at ASC
		LIMIT 1
	`
	return r.one(ctx, query, activeStatusStrings(), handle)
}

func (r *PostgresRepository) LatestPendingByHandle(ctx context.Context, handle string) (*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND customer_handle = $2
		ORDER BY scheduled_at DESC
		LIMIT 1
	`
	return r.one(ctx, query, StatusPending, handle)
}

func (r *PostgresRepository) FindActiveByShortID(ctx context.Context, shortID string) (*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = ANY($1) AND id::text LIKE $2
		ORDER BY scheduled_at ASC
		LIMIT 1
	`
	return r.one(ctx, query, activeStatusStrings(), strings.ToLower(shortID)+"%")
}

func (r *PostgresRepository) AnyActiveInWindow(ctx context.Context, from, to time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE status = ANY($1) AND scheduled_at >= $2 AND scheduled_at < $3
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, activeStatusStrings(), from, to).Scan(&exists); err != nil {
		return false, fmt.Errorf("booking: window query: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE bookings SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("booking: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("booking: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DueReminders(ctx context.Context, from, to time.Time) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND reminder_sent = FALSE AND scheduled_at >= $2 AND scheduled_at < $3
		ORDER BY scheduled_at ASC
	`
	return r.list(ctx, query, StatusConfirmed, from, to)
}

func (r *PostgresRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE bookings SET reminder_sent = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("booking: mark reminder sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("booking: list: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.CustomerName, &b.CustomerHandle, &b.ScheduledAt, &b.Status, &b.ReminderSent, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("booking: scan: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking: rows: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*Booking, error) {
	var b Booking
	err := r.pool.QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.CustomerName, &b.CustomerHandle, &b.ScheduledAt, &b.Status, &b.ReminderSent, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("booking: select: %w", err)
	}
	return &b, nil
}

func activeStatusStrings() []string {
	out := make([]string, len(ActiveStatuses))
	for i, s := range ActiveStatuses {
		out[i] = string(s)
	}
	return out
}
