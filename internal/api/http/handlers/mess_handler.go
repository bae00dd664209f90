package handlers

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hostelsync/hostelsync-api/internal/api/dto"
	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/persistence"
	"github.com/hostelsync/hostelsync-api/internal/repository"
	"github.com/hostelsync/hostelsync-api/internal/service"
	apperrors "github.com/hostelsync/hostelsync-api/pkg/util"
)

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// MessHandler manages menus, meal feedback and menu import/export.
type MessHandler struct {
	mess      *service.MessService
	artifacts *persistence.ArtifactStore
	logger    *zap.Logger
}

// NewMessHandler constructs handler.
func NewMessHandler(mess *service.MessService, artifacts *persistence.ArtifactStore, logger *zap.Logger) *MessHandler {
	return &MessHandler{mess: mess, artifacts: artifacts, logger: logger}
}

// Menu GET /mess/menu. Without from/to it returns the current week.
func (h *MessHandler) Menu(c *fiber.Ctx) error {
	from, err := queryDate(c, "from")
	if err != nil {
		return err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return err
	}
	if from != nil || to != nil {
		if from == nil || to == nil {
			return apperrors.NewValidationError("from and to must be given together", nil)
		}
		menus, err := h.mess.Range(c.UserContext(), *from, *to)
		if err != nil {
			return err
		}
		return respond(c, fiber.Map{
			"from":  from.Format(domain.DateLayout),
			"to":    to.Format(domain.DateLayout),
			"menus": dto.NewMenuList(menus),
		})
	}

	week, err := h.mess.CurrentWeek(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.Map{
		"from":  week.From.Format(domain.DateLayout),
		"to":    week.To.AddDate(0, 0, -1).Format(domain.DateLayout),
		"menus": dto.NewMenuList(week.Menus),
	})
}

// CreateMenu POST /mess/menu.
func (h *MessHandler) CreateMenu(c *fiber.Ctx) error {
	var req dto.MenuRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	menu, err := h.mess.UpsertMenu(c.UserContext(), service.MenuInput{
		Date:        mustDate(req.Date),
		MealType:    domain.MealType(req.MealType),
		ServingTime: req.ServingTime,
		Items:       dto.DomainItems(req.Items),
	})
	if err != nil {
		return err
	}
	return created(c, dto.NewMenuResponse(menu))
}

// UpdateMenu PUT /mess/menu/:id.
func (h *MessHandler) UpdateMenu(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateMenuRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	patch := domain.MenuPatch{
		ServingTime: req.ServingTime,
		Items:       dto.DomainItems(req.Items),
	}
	if req.Date != nil {
		date := mustDate(*req.Date)
		patch.Date = &date
	}
	if req.MealType != nil {
		mealType := domain.MealType(*req.MealType)
		patch.MealType = &mealType
	}
	menu, err := h.mess.UpdateMenu(c.UserContext(), id, patch)
	if err != nil {
		return err
	}
	return respond(c, dto.NewMenuResponse(menu))
}

// DeleteMenu DELETE /mess/menu/:id.
func (h *MessHandler) DeleteMenu(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.mess.DeleteMenu(c.UserContext(), id); err != nil {
		return err
	}
	return respond(c, fiber.Map{"message": "menu deleted"})
}

// CreateRecurring POST /mess/menu/recurring.
func (h *MessHandler) CreateRecurring(c *fiber.Ctx) error {
	var req dto.RecurringMenuRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	menus, err := h.mess.CreateRecurring(c.UserContext(), service.RecurringMenuInput{
		StartDate:   mustDate(req.StartDate),
		EndDate:     mustDate(req.EndDate),
		MealType:    domain.MealType(req.MealType),
		ServingTime: req.ServingTime,
		Items:       dto.DomainItems(req.Items),
		Frequency:   domain.Frequency(req.Frequency),
		DaysOfWeek:  req.DaysOfWeek,
	})
	if err != nil {
		return err
	}
	return created(c, fiber.Map{
		"baseMenuId": menus[0].ID,
		"count":      len(menus),
		"menus":      dto.NewMenuList(menus),
	})
}

// Series GET /mess/menu/recurring/:baseMenuId.
func (h *MessHandler) Series(c *fiber.Ctx) error {
	id, err := pathID(c, "baseMenuId")
	if err != nil {
		return err
	}
	menus, err := h.mess.Series(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, dto.NewMenuList(menus))
}

// DeleteSeries DELETE /mess/menu/recurring/:baseMenuId.
func (h *MessHandler) DeleteSeries(c *fiber.Ctx) error {
	id, err := pathID(c, "baseMenuId")
	if err != nil {
		return err
	}
	deleted, err := h.mess.DeleteSeries(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.Map{"deleted": deleted})
}

// SubmitFeedback POST /mess/feedback.
func (h *MessHandler) SubmitFeedback(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.MealFeedbackRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	fb, err := h.mess.SubmitFeedback(c.UserContext(), actor, req.MenuID, req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return created(c, dto.NewMealFeedbackResponse(fb))
}

// ListFeedback GET /mess/feedback.
func (h *MessHandler) ListFeedback(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	from, err := queryDate(c, "from")
	if err != nil {
		return err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return err
	}
	menuID, err := queryUUID(c, "menuId")
	if err != nil {
		return err
	}
	feedback, err := h.mess.ListFeedback(c.UserContext(), actor, repository.MealFeedbackFilter{
		MenuID: menuID,
		From:   from,
		To:     to,
		Limit:  queryInt(c, "limit", 0),
		Offset: queryInt(c, "offset", 0),
	})
	if err != nil {
		return err
	}
	out := make([]dto.MealFeedbackResponse, 0, len(feedback))
	for i := range feedback {
		out = append(out, dto.NewMealFeedbackResponse(&feedback[i]))
	}
	return respond(c, out)
}

// Export GET /mess/menus/export?startDate&endDate&format=csv|xlsx.
func (h *MessHandler) Export(c *fiber.Ctx) error {
	from, err := queryDate(c, "startDate")
	if err != nil {
		return err
	}
	to, err := queryDate(c, "endDate")
	if err != nil {
		return err
	}
	if from == nil || to == nil {
		return apperrors.NewValidationError("startDate and endDate are required", nil)
	}
	format := strings.ToLower(c.Query("format", "csv"))
	if format != "csv" && format != "xlsx" {
		return apperrors.NewFieldErrors(map[string]string{"format": "format must be one of csv, xlsx"})
	}

	menus, err := h.mess.ExportMenus(c.UserContext(), *from, *to)
	if err != nil {
		return err
	}

	artifact := h.artifacts.Reserve(format)
	defer h.release(artifact)

	contentType := mimeCSV
	if format == "xlsx" {
		contentType = mimeXLSX
		err = service.WriteMenusXLSX(artifact.Path, menus)
	} else {
		err = writeCSVArtifact(artifact.Path, menus)
	}
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("write export: %w", err))
	}
	data, err := os.ReadFile(artifact.Path)
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("read export: %w", err))
	}

	c.Attachment(fmt.Sprintf("menus_%s_%s.%s", from.Format(domain.DateLayout), to.Format(domain.DateLayout), format))
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}

// Import POST /mess/menus/import (multipart field "file").
func (h *MessHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewFieldErrors(map[string]string{"file": "file is required"})
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
		return apperrors.NewFieldErrors(map[string]string{"file": "only CSV files are allowed"})
	}

	artifact := h.artifacts.Reserve("csv")
	defer h.release(artifact)

	if err := c.SaveFile(fh, artifact.Path); err != nil {
		return apperrors.NewInternalError(fmt.Errorf("save upload: %w", err))
	}
	f, err := os.Open(artifact.Path)
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	result, err := h.mess.ImportMenus(c.UserContext(), f)
	if err != nil {
		return err
	}
	return respond(c, result)
}

// Template GET /mess/menus/import/template.
func (h *MessHandler) Template(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := service.WriteImportTemplate(&buf); err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Attachment("menu_import_template.csv")
	c.Set(fiber.HeaderContentType, mimeCSV)
	return c.Send(buf.Bytes())
}

func (h *MessHandler) release(a *persistence.Artifact) {
	if err := h.artifacts.Release(a); err != nil {
		h.logger.Warn("failed to remove artifact", zap.String("path", a.Path), zap.Error(err))
	}
}

func writeCSVArtifact(path string, menus []domain.MessMenu) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := service.WriteMenusCSV(f, menus); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
