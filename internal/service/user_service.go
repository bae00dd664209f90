package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/hostelsync/hostelsync-api/internal/auth"
	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/repository"
	apperrors "github.com/hostelsync/hostelsync-api/pkg/util"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// UserService backs the admin user-management endpoints.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// UserDependencies bundles repositories for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	BcryptCost int
}

// UserListParams are the raw list query parameters.
type UserListParams struct {
	Page   int
	Limit  int
	Search string
	Role   *domain.Role
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// UserPage is a page of users.
type UserPage struct {
	Users      []domain.User
	Pagination Pagination
}

// UserCreateInput is the admin create payload.
type UserCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	RoomNo   *string
}

// NewUserService builds the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{users: deps.UserRepo, bcryptCost: deps.BcryptCost}
}

// NormalizePage clamps page to >= 1 and limit to 1..100, defaulting limit to 10.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// List returns a page of users matching the search and role filter.
func (s *UserService) List(ctx context.Context, params UserListParams) (*UserPage, error) {
	page, limit := NormalizePage(params.Page, params.Limit)
	users, total, err := s.users.List(ctx, repository.UserFilter{
		Search: params.Search,
		Role:   params.Role,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	return &UserPage{
		Users: users,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
	}, nil
}

// ListByRole returns active users with the role.
func (s *UserService) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	if !role.Valid() {
		return nil, fieldError("role", "unknown role")
	}
	return s.users.ListByRole(ctx, role)
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return user, nil
}

// Create adds an account with any role.
func (s *UserService) Create(ctx context.Context, in UserCreateInput) (*domain.User, error) {
	if !in.Role.Valid() {
		return nil, fieldError("role", "unknown role")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return nil, fieldError("password", "password must be at least 6 characters")
	} else if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		RoomNo:       in.RoomNo,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, conflictOr(err, "email already registered")
	}
	return user, nil
}

// Update applies the patch. A non-nil password replaces the stored hash.
func (s *UserService) Update(ctx context.Context, id string, patch domain.UserPatch, password *string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, fieldError("role", "unknown role")
	}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		patch.Email = &email
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
		}
	}

	changed := patch.Apply(user)
	if password != nil {
		hash, err := auth.HashPassword(*password, s.bcryptCost)
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, fieldError("password", "password must be at least 6 characters")
		} else if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		changed = true
	}
	if !changed {
		return user, nil
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, conflictOr(err, "email already registered")
	}
	return user, nil
}

// Delete removes a user that nothing references.
func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if actor.ID == id {
		return apperrors.NewValidationError("you cannot delete your own account", nil)
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return notFoundOr(err, "user")
	}
	deps, err := s.users.Dependencies(ctx, id)
	if err != nil {
		return err
	}
	if deps.Total() > 0 {
		return apperrors.NewConflict("user has related records and cannot be deleted", map[string]any{
			"dependencies": deps,
		})
	}
	return notFoundOr(s.users.Delete(ctx, id), "user")
}

func (s *UserService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return apperrors.NewConflict("email already registered", nil)
	}
	return nil
}
