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

// CleaningService coordinates cleaning requests.
type CleaningService struct {
	requests   repository.CleaningRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// CleaningDependencies bundles repositories for the cleaning service.
type CleaningDependencies struct {
	CleaningRepo repository.CleaningRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
	Clock        func() time.Time
}

// CleaningCreateInput is a student's request.
type CleaningCreateInput struct {
	Room                string
	Building            string
	CleaningType        domain.CleaningType
	ScheduledDate       time.Time
	TimeSlot            string
	SpecialInstructions *string
}

// CleaningListFilter narrows the staff listing.
type CleaningListFilter struct {
	Status    *domain.CleaningStatus
	CleanerID *string
	Building  *string
	Limit     int
	Offset    int
}

// CleaningUpdateInput is a status change and/or cleaner assignment.
type CleaningUpdateInput struct {
	Status    *domain.CleaningStatus
	CleanerID *string
}

// NewCleaningService builds the service.
func NewCleaningService(deps CleaningDependencies) *CleaningService {
	return &CleaningService{
		requests:   deps.CleaningRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		now:        clockOrDefault(deps.Clock),
	}
}

// Create files a new request for the student.
func (s *CleaningService) Create(ctx context.Context, actor Actor, in CleaningCreateInput) (*domain.CleaningRequest, error) {
	scheduled := domain.DateOf(in.ScheduledDate)
	if scheduled.Before(domain.DateOf(s.now())) {
		return nil, fieldError("scheduledDate", "scheduledDate cannot be in the past")
	}
	cleaningType := in.CleaningType
	if cleaningType == "" {
		cleaningType = domain.CleaningTypeRegular
	}
	req := &domain.CleaningRequest{
		StudentID:           actor.ID,
		Room:                strings.TrimSpace(in.Room),
		Building:            strings.TrimSpace(in.Building),
		CleaningType:        cleaningType,
		ScheduledDate:       scheduled,
		TimeSlot:            in.TimeSlot,
		SpecialInstructions: in.SpecialInstructions,
		Status:              domain.CleaningStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ListOwn returns the student's own requests.
func (s *CleaningService) ListOwn(ctx context.Context, actor Actor, status *domain.CleaningStatus) ([]domain.CleaningRequest, error) {
	return s.requests.List(ctx, repository.CleaningFilter{
		Scope:  domain.Scope{Kind: domain.ScopeOwn, UserID: actor.ID},
		Status: status,
	})
}

// ListAll returns the requests visible to staff.
func (s *CleaningService) ListAll(ctx context.Context, actor Actor, filter CleaningListFilter) ([]domain.CleaningRequest, error) {
	return s.requests.List(ctx, repository.CleaningFilter{
		Scope:     ScopeFor(actor, domain.RoleCleaner),
		Status:    filter.Status,
		CleanerID: filter.CleanerID,
		Building:  filter.Building,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	})
}

// Update applies a status transition and/or cleaner assignment.
func (s *CleaningService) Update(ctx context.Context, actor Actor, id string, in CleaningUpdateInput) (*domain.CleaningRequest, error) {
	if in.Status == nil && in.CleanerID == nil {
		return nil, apperrors.NewValidationError("status or cleanerId is required", nil)
	}
	if in.CleanerID != nil && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins can assign cleaners")
	}

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "cleaning request")
	}
	scope := ScopeFor(actor, domain.RoleCleaner)
	if !scope.Allows(req.StudentID, req.CleanerID, req.Status == domain.CleaningStatusPending) {
		return nil, apperrors.NewForbidden("access denied")
	}

	oldStatus := req.Status
	next := req.Status
	if in.Status != nil {
		next = *in.Status
	}
	changed := false

	if in.CleanerID != nil && (req.CleanerID == nil || *req.CleanerID != *in.CleanerID) {
		if err := s.checkCleaner(ctx, *in.CleanerID); err != nil {
			return nil, err
		}
		cleaner := *in.CleanerID
		req.CleanerID = &cleaner
		changed = true
		if in.Status == nil && req.Status == domain.CleaningStatusPending {
			next = domain.CleaningStatusAssigned
		}
	}

	if next != req.Status {
		if !req.Status.CanTransition(next) {
			return nil, fieldError("status", fmt.Sprintf("cannot move request from %s to %s", req.Status, next))
		}
		if req.CleanerID == nil && actor.Role == domain.RoleCleaner && next != domain.CleaningStatusCancelled {
			self := actor.ID
			req.CleanerID = &self
		}
		now := s.now().UTC()
		switch next {
		case domain.CleaningStatusCompleted:
			req.CompletedAt = &now
		case domain.CleaningStatusCancelled:
			req.CancelledAt = &now
		}
		req.Status = next
		changed = true
	}

	if !changed {
		return req, nil
	}
	if err := s.requests.Update(ctx, req); err != nil {
		return nil, err
	}
	if req.Status != oldStatus {
		publish(ctx, s.dispatcher, events.NewEvent(events.EventCleaningStatusChanged, req.ID, actor.eventActor(), events.CleaningStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: req.Status,
			CleanerID: req.CleanerID,
		}))
	}
	return req, nil
}

// SubmitFeedback records the student's rating on a completed request. It succeeds once.
func (s *CleaningService) SubmitFeedback(ctx context.Context, actor Actor, id string, rating int, feedback *string) (*domain.CleaningRequest, error) {
	if rating < 1 || rating > 5 {
		return nil, fieldError("rating", "rating must be between 1 and 5")
	}
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "cleaning request")
	}
	if req.StudentID != actor.ID {
		return nil, apperrors.NewForbidden("you can only give feedback on your own requests")
	}
	if req.Status != domain.CleaningStatusCompleted {
		return nil, apperrors.NewValidationError("feedback can only be submitted for completed requests", map[string]any{
			"status": req.Status,
		})
	}
	if req.Rating != nil {
		return nil, apperrors.NewConflict("feedback already submitted", nil)
	}

	written, err := s.requests.SubmitFeedback(ctx, id, actor.ID, rating, feedback)
	if err != nil {
		return nil, err
	}
	if !written {
		return nil, apperrors.NewConflict("feedback already submitted", nil)
	}
	req.Rating = &rating
	req.Feedback = feedback
	return req, nil
}

// Cleaners lists users who can be assigned cleaning work.
func (s *CleaningService) Cleaners(ctx context.Context) ([]domain.User, error) {
	return s.users.ListByRole(ctx, domain.RoleCleaner)
}

func (s *CleaningService) checkCleaner(ctx context.Context, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fieldError("cleanerId", "cleaner not found")
		}
		return err
	}
	if user.Role != domain.RoleCleaner {
		return fieldError("cleanerId", "assignee must be a CLEANER")
	}
	return nil
}
