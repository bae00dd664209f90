package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hostelsync/hostelsync-api/internal/api/dto"
	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/service"
	apperrors "github.com/hostelsync/hostelsync-api/pkg/util"
)

// AdminUsersHandler manages accounts on behalf of admins.
type AdminUsersHandler struct {
	users *service.UserService
}

// NewAdminUsersHandler constructs handler.
func NewAdminUsersHandler(users *service.UserService) *AdminUsersHandler {
	return &AdminUsersHandler{users: users}
}

// List GET /admin/users.
func (h *AdminUsersHandler) List(c *fiber.Ctx) error {
	params := service.UserListParams{
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 10),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if raw := queryString(c, "role"); raw != nil {
		role := domain.Role(strings.ToUpper(*raw))
		if !role.Valid() {
			return apperrors.NewFieldErrors(map[string]string{"role": "role is not a known role"})
		}
		params.Role = &role
	}
	page, err := h.users.List(c.UserContext(), params)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       dto.NewUserList(page.Users),
		"pagination": page.Pagination,
	})
}

// ByRole GET /admin/users/role/:role.
func (h *AdminUsersHandler) ByRole(c *fiber.Ctx) error {
	role := domain.Role(strings.ToUpper(c.Params("role")))
	users, err := h.users.ListByRole(c.UserContext(), role)
	if err != nil {
		return err
	}
	return respond(c, dto.NewUserList(users))
}

// Get GET /admin/users/:id.
func (h *AdminUsersHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, dto.NewUserResponse(user))
}

// Create POST /admin/users.
func (h *AdminUsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.Create(c.UserContext(), service.UserCreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		RoomNo:   req.RoomNo,
	})
	if err != nil {
		return err
	}
	return created(c, dto.NewUserResponse(user))
}

// Update PUT /admin/users/:id.
func (h *AdminUsersHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.Update(c.UserContext(), id, req.Patch(), req.Password)
	if err != nil {
		return err
	}
	return respond(c, dto.NewUserResponse(user))
}

// Delete DELETE /admin/users/:id.
func (h *AdminUsersHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return respond(c, fiber.Map{"message": "user deleted"})
}
