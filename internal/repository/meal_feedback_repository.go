package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

// MealFeedbackFilter narrows feedback listings. Dates apply to the menu date.
type MealFeedbackFilter struct {
	UserID *string
	MenuID *string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// MealFeedbackRepository persists meal ratings.
type MealFeedbackRepository interface {
	// Create returns ErrDuplicate when the user already rated the menu.
	Create(ctx context.Context, fb *domain.MealFeedback) error
	List(ctx context.Context, filter MealFeedbackFilter) ([]domain.MealFeedback, error)
}

type mealFeedbackRepository struct {
	db querier
}

// NewMealFeedbackRepository instantiates repository.
func NewMealFeedbackRepository(pool *pgxpool.Pool) MealFeedbackRepository {
	return &mealFeedbackRepository{db: pool}
}

func (r *mealFeedbackRepository) Create(ctx context.Context, fb *domain.MealFeedback) error {
	const query = `
        INSERT INTO meal_feedback (user_id, menu_id, rating, comment)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, fb.UserID, fb.MenuID, fb.Rating, fb.Comment).Scan(&fb.ID, &fb.CreatedAt)
	return mapWriteError(err)
}

func (r *mealFeedbackRepository) List(ctx context.Context, filter MealFeedbackFilter) ([]domain.MealFeedback, error) {
	var where whereBuilder
	if filter.UserID != nil {
		where.add("f.user_id = %s", *filter.UserID)
	}
	if filter.MenuID != nil {
		where.add("f.menu_id = %s", *filter.MenuID)
	}
	if filter.From != nil {
		where.add("m.menu_date >= %s", *filter.From)
	}
	if filter.To != nil {
		where.add("m.menu_date <= %s", *filter.To)
	}

	query := `SELECT f.id, f.user_id, f.menu_id, f.rating, f.comment, f.created_at
        FROM meal_feedback f JOIN mess_menus m ON m.id = f.menu_id` + where.clause() +
		` ORDER BY f.created_at DESC` + where.page(filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MealFeedback
	for rows.Next() {
		var fb domain.MealFeedback
		if err := rows.Scan(&fb.ID, &fb.UserID, &fb.MenuID, &fb.Rating, &fb.Comment, &fb.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, fb)
	}
	return result, rows.Err()
}
