package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/repository"
	apperrors "github.com/hostelsync/hostelsync-api/pkg/util"
)

// MessService manages menus, recurring series, meal feedback and menu import/export.
type MessService struct {
	menus    repository.MenuRepository
	feedback repository.MealFeedbackRepository
	now      func() time.Time
}

// MessDependencies bundles repositories for the mess service.
type MessDependencies struct {
	MenuRepo     repository.MenuRepository
	FeedbackRepo repository.MealFeedbackRepository
	Clock        func() time.Time
}

// MenuInput creates or replaces the menu for a (date, meal type).
type MenuInput struct {
	Date        time.Time
	MealType    domain.MealType
	ServingTime *string
	Items       []domain.MenuItem
}

// RecurringMenuInput describes a series.
type RecurringMenuInput struct {
	StartDate   time.Time
	EndDate     time.Time
	MealType    domain.MealType
	ServingTime *string
	Items       []domain.MenuItem
	Frequency   domain.Frequency
	DaysOfWeek  []int
}

// WeekMenu is the menu between From (inclusive) and To (exclusive).
type WeekMenu struct {
	From  time.Time
	To    time.Time
	Menus []domain.MessMenu
}

// ImportResult summarizes a partial-success import.
type ImportResult struct {
	Imported  int            `json:"imported"`
	Total     int            `json:"total"`
	Errors    []MenuRowError `json:"errors"`
	HasErrors bool           `json:"hasErrors"`
}

// NewMessService builds the service.
func NewMessService(deps MessDependencies) *MessService {
	return &MessService{
		menus:    deps.MenuRepo,
		feedback: deps.FeedbackRepo,
		now:      clockOrDefault(deps.Clock),
	}
}

// CurrentWeek returns menus from the most recent Sunday to the following Sunday.
func (s *MessService) CurrentWeek(ctx context.Context) (*WeekMenu, error) {
	today := domain.DateOf(s.now())
	from := today.AddDate(0, 0, -int(today.Weekday()))
	to := from.AddDate(0, 0, 7)

	menus, err := s.menus.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(menus) == 0 {
		return nil, s.noMenus(ctx, from, to)
	}
	return &WeekMenu{From: from, To: to, Menus: menus}, nil
}

// Range returns menus for from..to inclusive.
func (s *MessService) Range(ctx context.Context, from, to time.Time) ([]domain.MessMenu, error) {
	from, to = domain.DateOf(from), domain.DateOf(to)
	if to.Before(from) {
		return nil, fieldError("to", "to cannot be before from")
	}
	return s.menus.ListRange(ctx, from, to.AddDate(0, 0, 1))
}

func (s *MessService) noMenus(ctx context.Context, from, to time.Time) error {
	details := map[string]any{
		"requestedFrom": from.Format(domain.DateLayout),
		"requestedTo":   to.AddDate(0, 0, -1).Format(domain.DateLayout),
	}
	first, last, err := s.menus.DateBounds(ctx)
	if err != nil {
		return err
	}
	if first != nil && last != nil {
		details["availableFrom"] = first.Format(domain.DateLayout)
		details["availableTo"] = last.Format(domain.DateLayout)
	}
	return apperrors.NewNotFound("menu for this week", details)
}

// UpsertMenu creates the menu for (date, meal type) or replaces the existing one.
func (s *MessService) UpsertMenu(ctx context.Context, in MenuInput) (*domain.MessMenu, error) {
	if err := validateMenuFields(in.MealType, in.ServingTime, in.Items); err != nil {
		return nil, err
	}
	menu := &domain.MessMenu{
		Date:        domain.DateOf(in.Date),
		MealType:    in.MealType,
		ServingTime: in.ServingTime,
		Items:       in.Items,
	}
	err := s.menus.WithTx(ctx, func(store repository.MenuStore) error {
		return upsertKeepingSeries(ctx, store, menu)
	})
	if err != nil {
		return nil, err
	}
	return menu, nil
}

// upsertKeepingSeries writes menu over whatever is stored for its (date, meal type). When
// that row is the base of a series, the series is first handed to its next member so the
// remaining rows stay grouped.
func upsertKeepingSeries(ctx context.Context, store repository.MenuStore, menu *domain.MessMenu) error {
	existing, err := store.GetByDate(ctx, menu.Date, menu.MealType)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return err
	case existing.BaseMenuID == nil:
		if _, err := store.PromoteSeriesMember(ctx, existing.ID); err != nil {
			return err
		}
	}
	return store.Upsert(ctx, menu)
}

// UpdateMenu applies a partial update.
func (s *MessService) UpdateMenu(ctx context.Context, id string, patch domain.MenuPatch) (*domain.MessMenu, error) {
	menu, err := s.menus.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "menu")
	}
	patch.Apply(menu)
	menu.Date = domain.DateOf(menu.Date)
	if err := validateMenuFields(menu.MealType, menu.ServingTime, menu.Items); err != nil {
		return nil, err
	}
	if err := s.menus.Update(ctx, menu); err != nil {
		return nil, conflictOr(notFoundOr(err, "menu"), "a menu already exists for this date and meal type")
	}
	return menu, nil
}

// DeleteMenu removes a menu nobody has rated.
func (s *MessService) DeleteMenu(ctx context.Context, id string) error {
	return s.menus.WithTx(ctx, func(store repository.MenuStore) error {
		menu, err := store.GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "menu")
		}
		count, err := store.CountFeedback(ctx, []string{id})
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.NewConflict("menu has feedback and cannot be deleted", map[string]any{"feedback": count})
		}
		if menu.BaseMenuID == nil {
			if _, err := store.PromoteSeriesMember(ctx, id); err != nil {
				return err
			}
		}
		return notFoundOr(store.Delete(ctx, id), "menu")
	})
}

// CreateRecurring generates one menu per matching date in a single transaction. The first
// generated row is the series base; the rest reference it.
func (s *MessService) CreateRecurring(ctx context.Context, in RecurringMenuInput) ([]domain.MessMenu, error) {
	if err := validateMenuFields(in.MealType, in.ServingTime, in.Items); err != nil {
		return nil, err
	}
	dates, err := GenerateDates(in.StartDate, in.EndDate, in.Frequency, in.DaysOfWeek)
	if err != nil {
		return nil, err
	}
	endsAt := domain.DateOf(in.EndDate)

	created := make([]domain.MessMenu, 0, len(dates))
	err = s.menus.WithTx(ctx, func(store repository.MenuStore) error {
		var baseID *string
		for _, date := range dates {
			menu := &domain.MessMenu{
				Date:             date,
				MealType:         in.MealType,
				ServingTime:      in.ServingTime,
				Items:            in.Items,
				IsRecurring:      true,
				BaseMenuID:       baseID,
				RecurrenceEndsAt: &endsAt,
			}
			if err := upsertKeepingSeries(ctx, store, menu); err != nil {
				return err
			}
			if baseID == nil {
				id := menu.ID
				baseID = &id
			}
			created = append(created, *menu)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Series returns the base menu and its members ordered by date.
func (s *MessService) Series(ctx context.Context, baseID string) ([]domain.MessMenu, error) {
	menus, err := s.menus.ListSeries(ctx, baseID)
	if err != nil {
		return nil, err
	}
	if !isSeriesBase(menus, baseID) {
		return nil, apperrors.NewNotFound("menu series", nil)
	}
	return menus, nil
}

// isSeriesBase reports whether baseID is among menus and is not itself a series member.
func isSeriesBase(menus []domain.MessMenu, baseID string) bool {
	for _, m := range menus {
		if m.ID == baseID {
			return m.BaseMenuID == nil
		}
	}
	return false
}

// DeleteSeries removes the base and all members unless any of them has feedback.
func (s *MessService) DeleteSeries(ctx context.Context, baseID string) (int64, error) {
	var deleted int64
	err := s.menus.WithTx(ctx, func(store repository.MenuStore) error {
		menus, err := store.ListSeries(ctx, baseID)
		if err != nil {
			return err
		}
		if !isSeriesBase(menus, baseID) {
			return apperrors.NewNotFound("menu series", nil)
		}
		ids := make([]string, len(menus))
		for i, m := range menus {
			ids[i] = m.ID
		}
		count, err := store.CountFeedback(ctx, ids)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.NewConflict("series has feedback and cannot be deleted", map[string]any{"feedback": count})
		}
		deleted, err = store.DeleteSeries(ctx, baseID)
		return err
	})
	return deleted, err
}

// SubmitFeedback records a student's rating for a served menu, once per menu.
func (s *MessService) SubmitFeedback(ctx context.Context, actor Actor, menuID string, rating int, comment *string) (*domain.MealFeedback, error) {
	if actor.Role != domain.RoleStudent {
		return nil, apperrors.NewForbidden("only students can submit meal feedback")
	}
	if rating < 1 || rating > 5 {
		return nil, fieldError("rating", "rating must be between 1 and 5")
	}
	menu, err := s.menus.GetByID(ctx, menuID)
	if err != nil {
		return nil, notFoundOr(err, "menu")
	}
	if domain.DateOf(menu.Date).After(domain.DateOf(s.now())) {
		return nil, apperrors.NewValidationError("cannot rate a meal that has not been served yet", nil)
	}

	fb := &domain.MealFeedback{UserID: actor.ID, MenuID: menuID, Rating: rating, Comment: comment}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, conflictOr(err, "you have already submitted feedback for this meal")
	}
	return fb, nil
}

// ListFeedback returns all feedback for staff and admins, or the student's own.
func (s *MessService) ListFeedback(ctx context.Context, actor Actor, filter repository.MealFeedbackFilter) ([]domain.MealFeedback, error) {
	if actor.Role == domain.RoleStudent {
		filter.UserID = &actor.ID
	}
	return s.feedback.List(ctx, filter)
}

// ExportMenus returns the menus for from..to inclusive, failing when there are none.
func (s *MessService) ExportMenus(ctx context.Context, from, to time.Time) ([]domain.MessMenu, error) {
	menus, err := s.Range(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(menus) == 0 {
		return nil, apperrors.NewNotFound("menus in range", map[string]any{
			"startDate": from.Format(domain.DateLayout),
			"endDate":   to.Format(domain.DateLayout),
		})
	}
	return menus, nil
}

// ImportMenus upserts every valid row and reports the rest.
func (s *MessService) ImportMenus(ctx context.Context, r io.Reader) (*ImportResult, error) {
	rows, rowErrs, total, err := ParseMenuCSV(r)
	if err != nil {
		if errors.Is(err, ErrEmptyImport) {
			return nil, fieldError("file", "file contains no data rows")
		}
		return nil, apperrors.NewValidationError(fmt.Sprintf("unable to read CSV: %v", err), nil)
	}

	imported := 0
	for _, row := range rows {
		menu := row.Menu
		err := s.menus.WithTx(ctx, func(store repository.MenuStore) error {
			return upsertKeepingSeries(ctx, store, &menu)
		})
		if err != nil {
			rowErrs = append(rowErrs, MenuRowError{Row: row.Row, Error: err.Error()})
			continue
		}
		imported++
	}
	if rowErrs == nil {
		rowErrs = []MenuRowError{}
	}
	return &ImportResult{
		Imported:  imported,
		Total:     total,
		Errors:    rowErrs,
		HasErrors: len(rowErrs) > 0,
	}, nil
}

func validateMenuFields(mealType domain.MealType, servingTime *string, items []domain.MenuItem) error {
	fields := map[string]string{}
	if !mealType.Valid() {
		fields["mealType"] = "mealType must be one of BREAKFAST, LUNCH, DINNER, SPECIAL"
	}
	if servingTime != nil && !ValidClock(*servingTime) {
		fields["servingTime"] = "servingTime must be HH:MM"
	}
	if len(items) == 0 {
		fields["items"] = "at least one item is required"
	}
	for _, item := range items {
		if item.Name == "" || !item.Type.Valid() {
			fields["items"] = "each item needs a name and a type of VEG, NON_VEG, JAIN or SPECIAL"
			break
		}
	}
	if len(fields) > 0 {
		return apperrors.NewFieldErrors(fields)
	}
	return nil
}
