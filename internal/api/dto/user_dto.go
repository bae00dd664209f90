package dto

import (
	"time"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

// RegisterRequest payload for student self-registration.
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	RoomNo   *string `json:"roomNo" validate:"omitempty,max=20"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload for PUT /auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	RoomNo    *string     `json:"roomNo"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NewUserResponse maps a user, dropping the password hash.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		RoomNo:    u.RoomNo,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewUserList maps a slice of users.
func NewUserList(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// CreateUserRequest is the admin create payload.
type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Role     string  `json:"role" validate:"required,oneof=STUDENT STAFF ADMIN PLUMBER IT_STAFF CLEANER WARDEN DRIVER"`
	RoomNo   *string `json:"roomNo" validate:"omitempty,max=20"`
}

// UpdateUserRequest is the admin partial update. Omitted fields stay unchanged; an empty
// roomNo clears it.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	Role     *string `json:"role" validate:"omitempty,oneof=STUDENT STAFF ADMIN PLUMBER IT_STAFF CLEANER WARDEN DRIVER"`
	RoomNo   *string `json:"roomNo" validate:"omitempty,max=20"`
	Active   *bool   `json:"active"`
}

// Patch converts the request into a domain patch.
func (r UpdateUserRequest) Patch() domain.UserPatch {
	patch := domain.UserPatch{
		Name:   r.Name,
		Email:  r.Email,
		RoomNo: r.RoomNo,
		Active: r.Active,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		patch.Role = &role
	}
	return patch
}
