package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hostelsync/hostelsync-api/internal/api/dto"
	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/service"
)

var cleaningStatuses = []string{"PENDING", "ASSIGNED", "IN_PROGRESS", "COMPLETED", "CANCELLED"}

// CleaningHandler manages cleaning request endpoints.
type CleaningHandler struct {
	cleaning *service.CleaningService
}

// NewCleaningHandler constructs handler.
func NewCleaningHandler(cleaning *service.CleaningService) *CleaningHandler {
	return &CleaningHandler{cleaning: cleaning}
}

// Create POST /cleaning/requests.
func (h *CleaningHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateCleaningRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	request, err := h.cleaning.Create(c.UserContext(), actor, service.CleaningCreateInput{
		Room:                req.Room,
		Building:            req.Building,
		CleaningType:        domain.CleaningType(req.CleaningType),
		ScheduledDate:       mustDate(req.ScheduledDate),
		TimeSlot:            req.TimeSlot,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		return err
	}
	return created(c, dto.NewCleaningResponse(request))
}

// ListOwn GET /cleaning/my-requests.
func (h *CleaningHandler) ListOwn(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	status, err := h.statusQuery(c)
	if err != nil {
		return err
	}
	requests, err := h.cleaning.ListOwn(c.UserContext(), actor, status)
	if err != nil {
		return err
	}
	return respond(c, dto.NewCleaningList(requests))
}

// ListAll GET /cleaning/requests.
func (h *CleaningHandler) ListAll(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	status, err := h.statusQuery(c)
	if err != nil {
		return err
	}
	cleanerID, err := queryUUID(c, "cleanerId")
	if err != nil {
		return err
	}
	requests, err := h.cleaning.ListAll(c.UserContext(), actor, service.CleaningListFilter{
		Status:    status,
		CleanerID: cleanerID,
		Building:  queryString(c, "building"),
		Limit:     queryInt(c, "limit", 0),
		Offset:    queryInt(c, "offset", 0),
	})
	if err != nil {
		return err
	}
	return respond(c, dto.NewCleaningList(requests))
}

// Update PATCH /cleaning/requests/:id/status.
func (h *CleaningHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCleaningRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := service.CleaningUpdateInput{CleanerID: req.CleanerID}
	if req.Status != nil {
		status := domain.CleaningStatus(*req.Status)
		in.Status = &status
	}
	request, err := h.cleaning.Update(c.UserContext(), actor, id, in)
	if err != nil {
		return err
	}
	return respond(c, dto.NewCleaningResponse(request))
}

// Feedback POST /cleaning/requests/:id/feedback.
func (h *CleaningHandler) Feedback(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CleaningFeedbackRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	request, err := h.cleaning.SubmitFeedback(c.UserContext(), actor, id, req.Rating, req.Feedback)
	if err != nil {
		return err
	}
	return respond(c, dto.NewCleaningResponse(request))
}

// Cleaners GET /cleaning/cleaners.
func (h *CleaningHandler) Cleaners(c *fiber.Ctx) error {
	users, err := h.cleaning.Cleaners(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, dto.NewUserList(users))
}

func (h *CleaningHandler) statusQuery(c *fiber.Ctx) (*domain.CleaningStatus, error) {
	raw, err := queryEnum(c, "status", cleaningStatuses...)
	if err != nil || raw == nil {
		return nil, err
	}
	status := domain.CleaningStatus(*raw)
	return &status, nil
}
