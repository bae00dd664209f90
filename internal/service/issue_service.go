package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/events"
	"github.com/hostelsync/hostelsync-api/internal/repository"
	apperrors "github.com/hostelsync/hostelsync-api/pkg/util"
)

// IssueService coordinates water and network issue workflows.
type IssueService struct {
	issues     repository.IssueRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// IssueDependencies bundles repositories for the issue service.
type IssueDependencies struct {
	IssueRepo  repository.IssueRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Clock      func() time.Time
}

// IssueCreateInput describes a new report. Location and Images apply to water issues,
// IssueType, IPAddress and MACAddress to network issues.
type IssueCreateInput struct {
	Title       string
	Description string
	Priority    domain.Priority
	Location    *string
	Images      []string
	IssueType   *domain.NetworkIssueType
	IPAddress   *string
	MACAddress  *string
}

// IssueListFilter describes optional listing filters.
type IssueListFilter struct {
	Status    *domain.IssueStatus
	Priority  *domain.Priority
	IssueType *domain.NetworkIssueType
	Limit     int
	Offset    int
}

// IssueUpdateInput is a status change and/or assignment.
type IssueUpdateInput struct {
	Status     *domain.IssueStatus
	AssigneeID *string
}

// NewIssueService builds the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	return &IssueService{
		issues:     deps.IssueRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		now:        clockOrDefault(deps.Clock),
	}
}

// Report files a new issue in the category.
func (s *IssueService) Report(ctx context.Context, actor Actor, category domain.IssueCategory, in IssueCreateInput) (*domain.Issue, error) {
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if priority == domain.PriorityCritical && category != domain.IssueCategoryNetwork {
		return nil, fieldError("priority", "priority must be one of LOW, MEDIUM, HIGH, URGENT")
	}

	issue := &domain.Issue{
		Category:    category,
		ReporterID:  actor.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		Status:      domain.IssueStatusPending,
	}
	switch category {
	case domain.IssueCategoryWater:
		if in.Location == nil || strings.TrimSpace(*in.Location) == "" {
			return nil, fieldError("location", "location is required")
		}
		issue.Location = in.Location
		issue.Images = in.Images
	case domain.IssueCategoryNetwork:
		if in.IssueType == nil {
			return nil, fieldError("issueType", "issueType is required")
		}
		issue.IssueType = in.IssueType
		issue.IPAddress = in.IPAddress
		issue.MACAddress = in.MACAddress
	default:
		return nil, fmt.Errorf("unknown issue category %q", category)
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.NewEvent(events.EventIssueReported, issue.ID, actor.eventActor(), events.IssueReportedPayload{
		Category: category,
		Priority: issue.Priority,
		Title:    issue.Title,
	}))
	return issue, nil
}

// List returns the issues in the category the actor may see.
func (s *IssueService) List(ctx context.Context, actor Actor, category domain.IssueCategory, filter IssueListFilter) ([]domain.Issue, error) {
	return s.issues.List(ctx, repository.IssueFilter{
		Category:  category,
		Scope:     ScopeFor(actor, category.WorkerRole()),
		Status:    filter.Status,
		Priority:  filter.Priority,
		IssueType: filter.IssueType,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	})
}

// Get returns one issue if the actor may see it.
func (s *IssueService) Get(ctx context.Context, actor Actor, category domain.IssueCategory, id string) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, category, id)
	if err != nil {
		return nil, notFoundOr(err, "issue")
	}
	if !visible(actor, issue) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return issue, nil
}

// Update applies a status transition and/or assignment.
func (s *IssueService) Update(ctx context.Context, actor Actor, category domain.IssueCategory, id string, in IssueUpdateInput) (*domain.Issue, error) {
	if in.Status == nil && in.AssigneeID == nil {
		return nil, apperrors.NewValidationError("status or assigneeId is required", nil)
	}
	if in.AssigneeID != nil && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins can assign issues")
	}

	issue, err := s.issues.GetByID(ctx, category, id)
	if err != nil {
		return nil, notFoundOr(err, "issue")
	}
	if !visible(actor, issue) {
		return nil, apperrors.NewForbidden("access denied")
	}

	oldStatus := issue.Status
	assigned := false

	if in.AssigneeID != nil && (issue.AssigneeID == nil || *issue.AssigneeID != *in.AssigneeID) {
		if err := s.checkAssignee(ctx, category, *in.AssigneeID); err != nil {
			return nil, err
		}
		assignee := *in.AssigneeID
		issue.AssigneeID = &assignee
		assigned = true
	}

	if in.Status != nil && *in.Status != issue.Status {
		next := *in.Status
		if !issue.Status.CanTransition(next) {
			return nil, fieldError("status", fmt.Sprintf("cannot move issue from %s to %s", issue.Status, next))
		}
		if next == domain.IssueStatusInProgress && issue.AssigneeID == nil && actor.Role == category.WorkerRole() {
			self := actor.ID
			issue.AssigneeID = &self
			assigned = true
		}
		if next == domain.IssueStatusResolved {
			resolvedAt := s.now().UTC()
			issue.ResolvedAt = &resolvedAt
		}
		issue.Status = next
	}

	if issue.Status == oldStatus && !assigned {
		return issue, nil
	}
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, err
	}

	if issue.Status != oldStatus {
		publish(ctx, s.dispatcher, events.NewEvent(events.EventIssueStatusChanged, issue.ID, actor.eventActor(), events.IssueStatusChangedPayload{
			Category:  category,
			OldStatus: oldStatus,
			NewStatus: issue.Status,
		}))
	}
	if assigned {
		publish(ctx, s.dispatcher, events.NewEvent(events.EventIssueAssigned, issue.ID, actor.eventActor(), events.IssueAssignedPayload{
			Category:   category,
			AssigneeID: *issue.AssigneeID,
		}))
	}
	return issue, nil
}

// AddComment attaches a note to a network issue the actor can see.
func (s *IssueService) AddComment(ctx context.Context, actor Actor, issueID, content string) (*domain.IssueComment, error) {
	content = strings.TrimSpace(content)
	if n := len([]rune(content)); n < 3 || n > 1000 {
		return nil, fieldError("content", "content must be between 3 and 1000 characters")
	}
	if _, err := s.Get(ctx, actor, domain.IssueCategoryNetwork, issueID); err != nil {
		return nil, err
	}
	comment := &domain.IssueComment{IssueID: issueID, AuthorID: actor.ID, Content: content}
	if err := s.issues.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns the comments on a network issue the actor can see.
func (s *IssueService) ListComments(ctx context.Context, actor Actor, issueID string) ([]domain.IssueComment, error) {
	if _, err := s.Get(ctx, actor, domain.IssueCategoryNetwork, issueID); err != nil {
		return nil, err
	}
	return s.issues.ListComments(ctx, issueID)
}

// Workers lists the specialists who can be assigned issues in the category.
func (s *IssueService) Workers(ctx context.Context, category domain.IssueCategory) ([]domain.User, error) {
	return s.users.ListByRole(ctx, category.WorkerRole())
}

func (s *IssueService) checkAssignee(ctx context.Context, category domain.IssueCategory, assigneeID string) error {
	user, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fieldError("assigneeId", "assignee not found")
		}
		return err
	}
	if user.Role != category.WorkerRole() && user.Role != domain.RoleAdmin {
		return fieldError("assigneeId", fmt.Sprintf("assignee must be %s or ADMIN", category.WorkerRole()))
	}
	return nil
}

func visible(actor Actor, issue *domain.Issue) bool {
	scope := ScopeFor(actor, issue.Category.WorkerRole())
	return scope.Allows(issue.ReporterID, issue.AssigneeID, issue.Status == domain.IssueStatusPending)
}
