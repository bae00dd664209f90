package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

// MenuStore is the set of menu operations available inside and outside a transaction.
type MenuStore interface {
	// Upsert inserts the menu or replaces the row already stored for its (date, meal type).
	Upsert(ctx context.Context, menu *domain.MessMenu) error
	Update(ctx context.Context, menu *domain.MessMenu) error
	GetByID(ctx context.Context, id string) (*domain.MessMenu, error)
	GetByDate(ctx context.Context, date time.Time, mealType domain.MealType) (*domain.MessMenu, error)
	Delete(ctx context.Context, id string) error
	// ListRange returns menus with from <= date < to ordered by date and meal type.
	ListRange(ctx context.Context, from, to time.Time) ([]domain.MessMenu, error)
	DateBounds(ctx context.Context) (first, last *time.Time, err error)
	ListSeries(ctx context.Context, baseID string) ([]domain.MessMenu, error)
	DeleteSeries(ctx context.Context, baseID string) (int64, error)
	// PromoteSeriesMember makes the earliest member of the series rooted at baseID its new
	// base and returns that id, or "" when the series has no members.
	PromoteSeriesMember(ctx context.Context, baseID string) (string, error)
	CountFeedback(ctx context.Context, menuIDs []string) (int64, error)
}

// MenuRepository adds transactional execution to MenuStore.
type MenuRepository interface {
	MenuStore
	WithTx(ctx context.Context, fn func(MenuStore) error) error
}

type menuRepository struct {
	db querier
}

// NewMenuRepository instantiates repository.
func NewMenuRepository(pool *pgxpool.Pool) MenuRepository {
	return &menuRepository{db: pool}
}

const menuColumns = `id, menu_date, meal_type, serving_time, items, is_recurring, base_menu_id, recurrence_ends_at,
       created_at, updated_at`

func (r *menuRepository) WithTx(ctx context.Context, fn func(MenuStore) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&menuRepository{db: tx})
	})
}

func (r *menuRepository) Upsert(ctx context.Context, menu *domain.MessMenu) error {
	const query = `
        INSERT INTO mess_menus (menu_date, meal_type, serving_time, items, is_recurring, base_menu_id, recurrence_ends_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (menu_date, meal_type) DO UPDATE SET
            serving_time=EXCLUDED.serving_time,
            items=EXCLUDED.items,
            is_recurring=EXCLUDED.is_recurring,
            base_menu_id=EXCLUDED.base_menu_id,
            recurrence_ends_at=EXCLUDED.recurrence_ends_at,
            updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		menu.Date,
		menu.MealType,
		menu.ServingTime,
		itemsOrEmpty(menu.Items),
		menu.IsRecurring,
		menu.BaseMenuID,
		menu.RecurrenceEndsAt,
	).Scan(&menu.ID, &menu.CreatedAt, &menu.UpdatedAt)
}

func (r *menuRepository) Update(ctx context.Context, menu *domain.MessMenu) error {
	const query = `
        UPDATE mess_menus SET menu_date=$1, meal_type=$2, serving_time=$3, items=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		menu.Date,
		menu.MealType,
		menu.ServingTime,
		itemsOrEmpty(menu.Items),
		menu.ID,
	).Scan(&menu.UpdatedAt)
	return mapWriteError(err)
}

func (r *menuRepository) GetByID(ctx context.Context, id string) (*domain.MessMenu, error) {
	return scanMenu(r.db.QueryRow(ctx, `SELECT `+menuColumns+` FROM mess_menus WHERE id=$1`, id))
}

func (r *menuRepository) GetByDate(ctx context.Context, date time.Time, mealType domain.MealType) (*domain.MessMenu, error) {
	return scanMenu(r.db.QueryRow(ctx, `SELECT `+menuColumns+` FROM mess_menus WHERE menu_date=$1 AND meal_type=$2`, date, mealType))
}

func (r *menuRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM mess_menus WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *menuRepository) ListRange(ctx context.Context, from, to time.Time) ([]domain.MessMenu, error) {
	const query = `SELECT ` + menuColumns + ` FROM mess_menus
        WHERE menu_date >= $1 AND menu_date < $2
        ORDER BY menu_date ASC,
            CASE meal_type WHEN 'BREAKFAST' THEN 1 WHEN 'LUNCH' THEN 2 WHEN 'DINNER' THEN 3 ELSE 4 END`
	return r.queryMenus(ctx, query, from, to)
}

func (r *menuRepository) DateBounds(ctx context.Context) (*time.Time, *time.Time, error) {
	var first, last *time.Time
	err := r.db.QueryRow(ctx, `SELECT MIN(menu_date), MAX(menu_date) FROM mess_menus`).Scan(&first, &last)
	return first, last, err
}

func (r *menuRepository) ListSeries(ctx context.Context, baseID string) ([]domain.MessMenu, error) {
	const query = `SELECT ` + menuColumns + ` FROM mess_menus
        WHERE id=$1 OR base_menu_id=$1
        ORDER BY menu_date ASC`
	return r.queryMenus(ctx, query, baseID)
}

func (r *menuRepository) DeleteSeries(ctx context.Context, baseID string) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM mess_menus WHERE id=$1 OR base_menu_id=$1`, baseID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *menuRepository) PromoteSeriesMember(ctx context.Context, baseID string) (string, error) {
	var next string
	err := r.db.QueryRow(ctx, `SELECT id FROM mess_menus WHERE base_menu_id=$1
        ORDER BY menu_date ASC, meal_type ASC LIMIT 1`, baseID).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if _, err := r.db.Exec(ctx, `UPDATE mess_menus SET base_menu_id=NULL, updated_at=NOW() WHERE id=$1`, next); err != nil {
		return "", err
	}
	if _, err := r.db.Exec(ctx, `UPDATE mess_menus SET base_menu_id=$1, updated_at=NOW() WHERE base_menu_id=$2`, next, baseID); err != nil {
		return "", err
	}
	return next, nil
}

func (r *menuRepository) CountFeedback(ctx context.Context, menuIDs []string) (int64, error) {
	if len(menuIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM meal_feedback WHERE menu_id::text = ANY($1)`, menuIDs).Scan(&count)
	return count, err
}

func (r *menuRepository) queryMenus(ctx context.Context, query string, args ...any) ([]domain.MessMenu, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MessMenu
	for rows.Next() {
		menu, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *menu)
	}
	return result, rows.Err()
}

func scanMenu(row pgx.Row) (*domain.MessMenu, error) {
	var menu domain.MessMenu
	if err := row.Scan(
		&menu.ID,
		&menu.Date,
		&menu.MealType,
		&menu.ServingTime,
		&menu.Items,
		&menu.IsRecurring,
		&menu.BaseMenuID,
		&menu.RecurrenceEndsAt,
		&menu.CreatedAt,
		&menu.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &menu, nil
}

func itemsOrEmpty(items []domain.MenuItem) []domain.MenuItem {
	if items == nil {
		return []domain.MenuItem{}
	}
	return items
}
