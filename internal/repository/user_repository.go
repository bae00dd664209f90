package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

// UserFilter captures admin search parameters.
type UserFilter struct {
	Search string
	Role   *domain.Role
	Limit  int
	Offset int
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, int, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	Dependencies(ctx context.Context, id string) (domain.UserDependencies, error)
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	db querier
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{db: pool}
}

const userColumns = `id, name, email, password_hash, role, room_no, active, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, room_no, active)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		user.Name,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.Role,
		user.RoomNo,
		user.Active,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapWriteError(err)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, password_hash=$3, role=$4, room_no=$5, active=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		user.Name,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.Role,
		user.RoomNo,
		user.Active,
		user.ID,
	).Scan(&user.UpdatedAt)
	return mapWriteError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, strings.ToLower(email))
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	row := r.db.QueryRow(ctx, query, arg)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, int, error) {
	var where whereBuilder
	if term := strings.TrimSpace(filter.Search); term != "" {
		where.add("(name ILIKE %[1]s OR email ILIKE %[1]s OR COALESCE(room_no, '') ILIKE %[1]s)", "%"+term+"%")
	}
	if filter.Role != nil {
		where.add("role = %s", *filter.Role)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where.clause(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM users` + where.clause() + ` ORDER BY created_at DESC`
	query += where.page(filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	users, err := scanUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE role=$1 AND active ORDER BY name`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) Dependencies(ctx context.Context, id string) (domain.UserDependencies, error) {
	const query = `
        SELECT
            (SELECT COUNT(*) FROM issues WHERE reporter_id=$1),
            (SELECT COUNT(*) FROM issues WHERE assignee_id=$1),
            (SELECT COUNT(*) FROM issue_comments WHERE author_id=$1),
            (SELECT COUNT(*) FROM transport_bookings WHERE user_id=$1),
            (SELECT COUNT(*) FROM meal_feedback WHERE user_id=$1),
            (SELECT COUNT(*) FROM cleaning_requests WHERE student_id=$1),
            (SELECT COUNT(*) FROM cleaning_requests WHERE cleaner_id=$1),
            (SELECT COUNT(*) FROM vehicles WHERE driver_id=$1)`

	var deps domain.UserDependencies
	err := r.db.QueryRow(ctx, query, id).Scan(
		&deps.ReportedIssues,
		&deps.AssignedIssues,
		&deps.IssueComments,
		&deps.Bookings,
		&deps.MealFeedback,
		&deps.CleaningRequests,
		&deps.CleaningAssignments,
		&deps.DrivenVehicles,
	)
	return deps, err
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.RoomNo,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}
