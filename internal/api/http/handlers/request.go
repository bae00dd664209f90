package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/hostelsync/hostelsync-api/internal/auth"
	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/service"
	apperrors "github.com/hostelsync/hostelsync-api/pkg/util"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return service.ValidClock(fl.Field().String())
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// parseBody decodes the JSON body into out and validates its tags.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			name := fieldPath(fe)
			if _, seen := fields[name]; !seen {
				fields[name] = name + " " + fieldMessage(fe)
			}
		}
		return apperrors.NewFieldErrors(fields)
	}
	return nil
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be %s %s characters", bound, fe.Param())
		case reflect.Slice, reflect.Array:
			return fmt.Sprintf("must contain %s %s entries", bound, fe.Param())
		default:
			return fmt.Sprintf("must be %s %s", bound, fe.Param())
		}
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid id"
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "hhmm":
		return "must be a time in HH:MM format"
	case "ip":
		return "must be a valid IP address"
	case "mac":
		return "must be a valid MAC address"
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

// actorFrom converts the authenticated principal into a service actor.
func actorFrom(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Actor{ID: principal.ID, Role: principal.Role}, nil
}

// pathID returns a path parameter after checking it is a UUID.
func pathID(c *fiber.Ctx, name string) (string, error) {
	raw := c.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.NewValidationError("invalid id", map[string]any{name: raw})
	}
	return id.String(), nil
}

func mustDate(s string) time.Time {
	d, _ := domain.ParseDate(s)
	return d
}

func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, apperrors.NewFieldErrors(map[string]string{key: key + " must be a date in YYYY-MM-DD format"})
	}
	return &d, nil
}

func queryString(c *fiber.Ctx, key string) *string {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	return &raw
}

func queryUUID(c *fiber.Ctx, key string) (*string, error) {
	raw := queryString(c, key)
	if raw == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperrors.NewFieldErrors(map[string]string{key: key + " must be a valid id"})
	}
	s := id.String()
	return &s, nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// queryEnum returns the upper-cased query value when it is one of allowed.
func queryEnum(c *fiber.Ctx, key string, allowed ...string) (*string, error) {
	raw := queryString(c, key)
	if raw == nil {
		return nil, nil
	}
	v := strings.ToUpper(*raw)
	for _, a := range allowed {
		if v == a {
			return &v, nil
		}
	}
	return nil, apperrors.NewFieldErrors(map[string]string{key: key + " must be one of " + strings.Join(allowed, ", ")})
}

func created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data})
}

func respond(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{"data": data})
}
