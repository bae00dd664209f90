package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hostelsync/hostelsync-api/internal/api/dto"
	"github.com/hostelsync/hostelsync-api/internal/auth"
	"github.com/hostelsync/hostelsync-api/internal/service"
	apperrors "github.com/hostelsync/hostelsync-api/pkg/util"
)

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	session, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		RoomNo:   req.RoomNo,
	})
	if err != nil {
		return err
	}
	return created(c, sessionResponse(session))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password, "login:"+c.IP())
	if err != nil {
		return err
	}
	return respond(c, sessionResponse(session))
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, found := auth.PrincipalFromContext(c)
	if !found {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), principal.TokenID, principal.ExpiresAt); err != nil {
		return err
	}
	return respond(c, fiber.Map{"message": "logged out"})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Me(c.UserContext(), actor.ID)
	if err != nil {
		return err
	}
	return respond(c, dto.NewUserResponse(user))
}

// Permissions handles GET /auth/permissions.
func (h *AuthHandler) Permissions(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	perms := auth.PermissionsFor(actor.Role)
	if perms == nil {
		perms = []auth.Permission{}
	}
	return respond(c, fiber.Map{"role": actor.Role, "permissions": perms})
}

// ChangePassword handles PUT /auth/password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.UserContext(), actor.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return respond(c, fiber.Map{"message": "password updated"})
}

func sessionResponse(s *service.Session) fiber.Map {
	return fiber.Map{
		"user": dto.NewUserResponse(s.User),
		"auth": dto.AuthResponse{Token: s.Token.Token, TokenType: "Bearer", ExpiresAt: s.Token.ExpiresAt},
	}
}
