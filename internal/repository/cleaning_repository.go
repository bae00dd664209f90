package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

// CleaningFilter captures listing parameters.
type CleaningFilter struct {
	Scope     domain.Scope
	Status    *domain.CleaningStatus
	CleanerID *string
	Building  *string
	Limit     int
	Offset    int
}

// CleaningRepository persists cleaning requests.
type CleaningRepository interface {
	Create(ctx context.Context, req *domain.CleaningRequest) error
	Update(ctx context.Context, req *domain.CleaningRequest) error
	GetByID(ctx context.Context, id string) (*domain.CleaningRequest, error)
	List(ctx context.Context, filter CleaningFilter) ([]domain.CleaningRequest, error)
	// SubmitFeedback writes rating and feedback only if the request belongs to studentID,
	// is COMPLETED and has no rating yet. It reports whether a row was written.
	SubmitFeedback(ctx context.Context, id, studentID string, rating int, feedback *string) (bool, error)
}

type cleaningRepository struct {
	db querier
}

// NewCleaningRepository instantiates repository.
func NewCleaningRepository(pool *pgxpool.Pool) CleaningRepository {
	return &cleaningRepository{db: pool}
}

const cleaningColumns = `id, student_id, cleaner_id, room, building, cleaning_type, scheduled_date, time_slot,
       special_instructions, status, rating, feedback, completed_at, cancelled_at, created_at, updated_at`

func (r *cleaningRepository) Create(ctx context.Context, req *domain.CleaningRequest) error {
	const query = `
        INSERT INTO cleaning_requests (student_id, room, building, cleaning_type, scheduled_date, time_slot,
                                       special_instructions, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		req.StudentID,
		req.Room,
		req.Building,
		req.CleaningType,
		req.ScheduledDate,
		req.TimeSlot,
		req.SpecialInstructions,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *cleaningRepository) Update(ctx context.Context, req *domain.CleaningRequest) error {
	const query = `
        UPDATE cleaning_requests SET cleaner_id=$1, status=$2, completed_at=$3, cancelled_at=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		req.CleanerID,
		req.Status,
		req.CompletedAt,
		req.CancelledAt,
		req.ID,
	).Scan(&req.UpdatedAt)
}

func (r *cleaningRepository) GetByID(ctx context.Context, id string) (*domain.CleaningRequest, error) {
	return scanCleaning(r.db.QueryRow(ctx, `SELECT `+cleaningColumns+` FROM cleaning_requests WHERE id=$1`, id))
}

func (r *cleaningRepository) List(ctx context.Context, filter CleaningFilter) ([]domain.CleaningRequest, error) {
	var where whereBuilder
	where.scope(filter.Scope, "student_id", "cleaner_id", "status")
	if filter.Status != nil {
		where.add("status = %s", *filter.Status)
	}
	if filter.CleanerID != nil {
		where.add("cleaner_id = %s", *filter.CleanerID)
	}
	if filter.Building != nil {
		where.add("building = %s", *filter.Building)
	}

	query := `SELECT ` + cleaningColumns + ` FROM cleaning_requests` + where.clause() +
		` ORDER BY scheduled_date ASC, created_at DESC` + where.page(filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CleaningRequest
	for rows.Next() {
		req, err := scanCleaning(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

func (r *cleaningRepository) SubmitFeedback(ctx context.Context, id, studentID string, rating int, feedback *string) (bool, error) {
	const query = `
        UPDATE cleaning_requests SET rating=$1, feedback=$2, updated_at=NOW()
        WHERE id=$3 AND student_id=$4 AND status='COMPLETED' AND rating IS NULL`
	cmd, err := r.db.Exec(ctx, query, rating, feedback, id, studentID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func scanCleaning(row pgx.Row) (*domain.CleaningRequest, error) {
	var req domain.CleaningRequest
	if err := row.Scan(
		&req.ID,
		&req.StudentID,
		&req.CleanerID,
		&req.Room,
		&req.Building,
		&req.CleaningType,
		&req.ScheduledDate,
		&req.TimeSlot,
		&req.SpecialInstructions,
		&req.Status,
		&req.Rating,
		&req.Feedback,
		&req.CompletedAt,
		&req.CancelledAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}
