package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/events"
	"github.com/hostelsync/hostelsync-api/internal/repository"
	apperrors "github.com/hostelsync/hostelsync-api/pkg/util"
)

// Actor is the authenticated caller a service acts on behalf of.
type Actor struct {
	ID   string
	Role domain.Role
}

func (a Actor) eventActor() events.Actor {
	return events.Actor{UserID: a.ID, Role: a.Role}
}

func notFoundOr(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	return err
}

func conflictOr(err error, message string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.NewConflict(message, nil)
	}
	return err
}

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, event)
}

func clockOrDefault(clock func() time.Time) func() time.Time {
	if clock == nil {
		return time.Now
	}
	return clock
}

func fieldError(field, message string) error {
	return apperrors.NewFieldErrors(map[string]string{field: message})
}
