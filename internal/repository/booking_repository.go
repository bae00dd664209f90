package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

// BookingFilter narrows booking listings.
type BookingFilter struct {
	UserID     *string
	ScheduleID *string
	Date       *time.Time
	Status     *domain.BookingStatus
	Limit      int
	Offset     int
}

// BookingStore is the set of booking operations available inside and outside a transaction.
type BookingStore interface {
	// LockSchedule loads the schedule and holds a row lock on it until the transaction ends.
	LockSchedule(ctx context.Context, scheduleID string) (*domain.Schedule, error)
	HasConfirmed(ctx context.Context, userID, scheduleID string, date time.Time) (bool, error)
	CountConfirmed(ctx context.Context, scheduleID string, date time.Time) (int, error)
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	// Cancel moves a CONFIRMED booking to CANCELLED and reports whether it did.
	Cancel(ctx context.Context, id string, at time.Time) (bool, error)
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
}

// BookingRepository adds transactional execution to BookingStore.
type BookingRepository interface {
	BookingStore
	WithTx(ctx context.Context, fn func(BookingStore) error) error
}

type bookingRepository struct {
	db querier
}

// NewBookingRepository instantiates repository.
func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{db: pool}
}

const bookingColumns = `id, user_id, schedule_id, vehicle_id, booking_date, status, cancelled_at, created_at, updated_at`

func (r *bookingRepository) WithTx(ctx context.Context, fn func(BookingStore) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&bookingRepository{db: tx})
	})
}

func (r *bookingRepository) LockSchedule(ctx context.Context, scheduleID string) (*domain.Schedule, error) {
	return scanSchedule(r.db.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id=$1 FOR UPDATE`, scheduleID))
}

func (r *bookingRepository) HasConfirmed(ctx context.Context, userID, scheduleID string, date time.Time) (bool, error) {
	const query = `
        SELECT EXISTS (SELECT 1 FROM transport_bookings
                       WHERE user_id=$1 AND schedule_id=$2 AND booking_date=$3 AND status='CONFIRMED')`
	var exists bool
	err := r.db.QueryRow(ctx, query, userID, scheduleID, date).Scan(&exists)
	return exists, err
}

func (r *bookingRepository) CountConfirmed(ctx context.Context, scheduleID string, date time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM transport_bookings WHERE schedule_id=$1 AND booking_date=$2 AND status='CONFIRMED'`
	var count int
	err := r.db.QueryRow(ctx, query, scheduleID, date).Scan(&count)
	return count, err
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	const query = `
        INSERT INTO transport_bookings (user_id, schedule_id, vehicle_id, booking_date, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, b.UserID, b.ScheduleID, b.VehicleID, b.BookingDate, b.Status).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	return mapWriteError(err)
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM transport_bookings WHERE id=$1`, id))
}

func (r *bookingRepository) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `
        UPDATE transport_bookings SET status='CANCELLED', cancelled_at=$1, updated_at=NOW()
        WHERE id=$2 AND status='CONFIRMED'`
	cmd, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *bookingRepository) List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error) {
	var where whereBuilder
	if filter.UserID != nil {
		where.add("user_id = %s", *filter.UserID)
	}
	if filter.ScheduleID != nil {
		where.add("schedule_id = %s", *filter.ScheduleID)
	}
	if filter.Date != nil {
		where.add("booking_date = %s", *filter.Date)
	}
	if filter.Status != nil {
		where.add("status = %s", *filter.Status)
	}

	query := `SELECT ` + bookingColumns + ` FROM transport_bookings` + where.clause() +
		` ORDER BY booking_date DESC, created_at DESC` + where.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	return result, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(
		&b.ID, &b.UserID, &b.ScheduleID, &b.VehicleID, &b.BookingDate, &b.Status, &b.CancelledAt,
		&b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}
