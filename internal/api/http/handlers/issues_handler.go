package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hostelsync/hostelsync-api/internal/api/dto"
	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/service"
)

// IssuesHandler serves one issue category (water or network).
type IssuesHandler struct {
	issues   *service.IssueService
	category domain.IssueCategory
}

// NewIssuesHandler constructs a handler bound to category.
func NewIssuesHandler(issues *service.IssueService, category domain.IssueCategory) *IssuesHandler {
	return &IssuesHandler{issues: issues, category: category}
}

// Create POST /{water,network}/issues.
func (h *IssuesHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var in service.IssueCreateInput
	switch h.category {
	case domain.IssueCategoryNetwork:
		var req dto.CreateNetworkIssueRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		issueType := domain.NetworkIssueType(req.IssueType)
		in = service.IssueCreateInput{
			Title:       req.Title,
			Description: req.Description,
			Priority:    domain.Priority(req.Priority),
			IssueType:   &issueType,
			IPAddress:   req.IPAddress,
			MACAddress:  req.MACAddress,
		}
	default:
		var req dto.CreateWaterIssueRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		location := req.Location
		in = service.IssueCreateInput{
			Title:       req.Title,
			Description: req.Description,
			Priority:    domain.Priority(req.Priority),
			Location:    &location,
			Images:      req.Images,
		}
	}

	issue, err := h.issues.Report(c.UserContext(), actor, h.category, in)
	if err != nil {
		return err
	}
	return created(c, dto.NewIssueResponse(issue))
}

// List GET /{water,network}/issues.
func (h *IssuesHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	filter := service.IssueListFilter{
		Limit:  queryInt(c, "limit", 0),
		Offset: queryInt(c, "offset", 0),
	}
	status, err := queryEnum(c, "status", "PENDING", "IN_PROGRESS", "RESOLVED", "CANCELLED")
	if err != nil {
		return err
	}
	if status != nil {
		s := domain.IssueStatus(*status)
		filter.Status = &s
	}
	priority, err := queryEnum(c, "priority", "LOW", "MEDIUM", "HIGH", "URGENT", "CRITICAL")
	if err != nil {
		return err
	}
	if priority != nil {
		p := domain.Priority(*priority)
		filter.Priority = &p
	}
	if h.category == domain.IssueCategoryNetwork {
		issueType, err := queryEnum(c, "issueType", "CONNECTIVITY", "SPEED", "AUTHENTICATION", "OTHER")
		if err != nil {
			return err
		}
		if issueType != nil {
			t := domain.NetworkIssueType(*issueType)
			filter.IssueType = &t
		}
	}

	issues, err := h.issues.List(c.UserContext(), actor, h.category, filter)
	if err != nil {
		return err
	}
	return respond(c, dto.NewIssueList(issues))
}

// Get GET /{water,network}/issues/:id.
func (h *IssuesHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	issue, err := h.issues.Get(c.UserContext(), actor, h.category, id)
	if err != nil {
		return err
	}
	return respond(c, dto.NewIssueResponse(issue))
}

// Update PATCH /{water,network}/issues/:id.
func (h *IssuesHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateIssueRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := service.IssueUpdateInput{AssigneeID: req.AssigneeID}
	if req.Status != nil {
		status := domain.IssueStatus(*req.Status)
		in.Status = &status
	}
	issue, err := h.issues.Update(c.UserContext(), actor, h.category, id, in)
	if err != nil {
		return err
	}
	return respond(c, dto.NewIssueResponse(issue))
}

// Workers GET /water/plumbers and /network/it-staff.
func (h *IssuesHandler) Workers(c *fiber.Ctx) error {
	users, err := h.issues.Workers(c.UserContext(), h.category)
	if err != nil {
		return err
	}
	return respond(c, dto.NewUserList(users))
}

// AddComment POST /network/issues/:id/comments.
func (h *IssuesHandler) AddComment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.issues.AddComment(c.UserContext(), actor, id, req.Content)
	if err != nil {
		return err
	}
	return created(c, dto.NewCommentResponse(comment))
}

// ListComments GET /network/issues/:id/comments.
func (h *IssuesHandler) ListComments(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.issues.ListComments(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	out := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, dto.NewCommentResponse(&comments[i]))
	}
	return respond(c, out)
}
