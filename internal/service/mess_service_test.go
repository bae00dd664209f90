package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/repository"
	apperrors "github.com/hostelsync/hostelsync-api/pkg/util"
)

func newMessFixture() (*MessService, *memMenuRepo, *memFeedbackRepo) {
	menus := newMemMenuRepo()
	feedback := &memFeedbackRepo{}
	svc := NewMessService(MessDependencies{MenuRepo: menus, FeedbackRepo: feedback, Clock: fixedClock})
	return svc, menus, feedback
}

var sampleItems = []domain.MenuItem{{Name: "Poha", Type: domain.DietVeg}, {Name: "Eggs", Type: domain.DietNonVeg}}

func TestRecurringWeeklySeries(t *testing.T) {
	svc, menus, _ := newMessFixture()
	ctx := context.Background()

	created, err := svc.CreateRecurring(ctx, RecurringMenuInput{
		StartDate:  day("2025-01-05"),
		EndDate:    day("2025-01-18"),
		MealType:   domain.MealBreakfast,
		Items:      sampleItems,
		Frequency:  domain.FrequencyWeekly,
		DaysOfWeek: []int{1, 3},
	})
	require.NoError(t, err)
	require.Len(t, created, 4)

	base := created[0]
	assert.Nil(t, base.BaseMenuID)
	assert.Equal(t, "2025-01-06", base.Date.Format(domain.DateLayout))
	for _, m := range created {
		assert.True(t, m.IsRecurring)
		require.NotNil(t, m.RecurrenceEndsAt)
		assert.Equal(t, "2025-01-18", m.RecurrenceEndsAt.Format(domain.DateLayout))
	}
	for _, m := range created[1:] {
		require.NotNil(t, m.BaseMenuID)
		assert.Equal(t, base.ID, *m.BaseMenuID)
	}

	series, err := svc.Series(ctx, base.ID)
	require.NoError(t, err)
	assert.Len(t, series, 4)

	deleted, err := svc.DeleteSeries(ctx, base.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, deleted)
	assert.Equal(t, 0, menus.count())

	_, err = svc.Series(ctx, base.ID)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestRecurringReplacesExistingRowsAndRollsBackOnFailure(t *testing.T) {
	svc, menus, _ := newMessFixture()
	ctx := context.Background()

	_, err := svc.UpsertMenu(ctx, MenuInput{Date: day("2025-01-07"), MealType: domain.MealLunch, Items: sampleItems})
	require.NoError(t, err)

	created, err := svc.CreateRecurring(ctx, RecurringMenuInput{
		StartDate: day("2025-01-06"),
		EndDate:   day("2025-01-08"),
		MealType:  domain.MealLunch,
		Items:     []domain.MenuItem{{Name: "Thali", Type: domain.DietVeg}},
		Frequency: domain.FrequencyDaily,
	})
	require.NoError(t, err)
	assert.Len(t, created, 3)
	assert.Equal(t, 3, menus.count())

	menus.failOn = func(m *domain.MessMenu) error {
		if m.Date.Equal(day("2025-02-05")) {
			return errors.New("disk full")
		}
		return nil
	}
	_, err = svc.CreateRecurring(ctx, RecurringMenuInput{
		StartDate: day("2025-02-03"),
		EndDate:   day("2025-02-07"),
		MealType:  domain.MealDinner,
		Items:     sampleItems,
		Frequency: domain.FrequencyWeekdays,
	})
	require.Error(t, err)
	assert.Equal(t, 3, menus.count())
}

func TestOverlappingSeriesStayIndependent(t *testing.T) {
	svc, menus, _ := newMessFixture()
	ctx := context.Background()
	daily := func(from, to string) RecurringMenuInput {
		return RecurringMenuInput{
			StartDate: day(from),
			EndDate:   day(to),
			MealType:  domain.MealLunch,
			Items:     sampleItems,
			Frequency: domain.FrequencyDaily,
		}
	}

	older, err := svc.CreateRecurring(ctx, daily("2025-01-06", "2025-01-12"))
	require.NoError(t, err)
	require.Len(t, older, 7)
	newer, err := svc.CreateRecurring(ctx, daily("2025-01-04", "2025-01-08"))
	require.NoError(t, err)
	require.Len(t, newer, 5)
	assert.Equal(t, 9, menus.count())

	// the old base date now belongs to the newer series
	_, err = svc.Series(ctx, older[0].ID)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	newSeries, err := svc.Series(ctx, newer[0].ID)
	require.NoError(t, err)
	assert.Len(t, newSeries, 5)

	rest, err := svc.Series(ctx, older[3].ID)
	require.NoError(t, err)
	require.Len(t, rest, 4)
	assert.Equal(t, "2025-01-09", rest[0].Date.Format(domain.DateLayout))
	assert.Nil(t, rest[0].BaseMenuID)

	deleted, err := svc.DeleteSeries(ctx, older[3].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, deleted)

	newSeries, err = svc.Series(ctx, newer[0].ID)
	require.NoError(t, err)
	assert.Len(t, newSeries, 5)
	assert.Equal(t, 5, menus.count())
}

func TestDeletingSeriesBaseKeepsMembersGrouped(t *testing.T) {
	svc, _, _ := newMessFixture()
	ctx := context.Background()

	created, err := svc.CreateRecurring(ctx, RecurringMenuInput{
		StartDate: day("2025-03-03"),
		EndDate:   day("2025-03-05"),
		MealType:  domain.MealDinner,
		Items:     sampleItems,
		Frequency: domain.FrequencyDaily,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMenu(ctx, created[0].ID))

	series, err := svc.Series(ctx, created[1].ID)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, created[2].ID, series[1].ID)

	replaced, err := svc.UpsertMenu(ctx, MenuInput{Date: day("2025-03-04"), MealType: domain.MealDinner, Items: sampleItems})
	require.NoError(t, err)
	assert.Equal(t, created[1].ID, replaced.ID)
	assert.False(t, replaced.IsRecurring)

	series, err = svc.Series(ctx, created[2].ID)
	require.NoError(t, err)
	assert.Len(t, series, 1)
}

func TestDeleteSeriesBlockedByFeedback(t *testing.T) {
	svc, menus, _ := newMessFixture()
	ctx := context.Background()

	created, err := svc.CreateRecurring(ctx, RecurringMenuInput{
		StartDate: day("2025-01-06"),
		EndDate:   day("2025-01-07"),
		MealType:  domain.MealDinner,
		Items:     sampleItems,
		Frequency: domain.FrequencyDaily,
	})
	require.NoError(t, err)
	menus.feedback[created[1].ID] = 1

	_, err = svc.DeleteSeries(ctx, created[0].ID)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	assert.Equal(t, 2, menus.count())

	err = svc.DeleteMenu(ctx, created[1].ID)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	assert.NoError(t, svc.DeleteMenu(ctx, created[0].ID))
}

func TestMealFeedbackRules(t *testing.T) {
	svc, _, _ := newMessFixture()
	ctx := context.Background()
	student := Actor{ID: "s1", Role: domain.RoleStudent}

	served, err := svc.UpsertMenu(ctx, MenuInput{Date: day("2025-01-07"), MealType: domain.MealLunch, Items: sampleItems})
	require.NoError(t, err)
	upcoming, err := svc.UpsertMenu(ctx, MenuInput{Date: day("2025-01-09"), MealType: domain.MealLunch, Items: sampleItems})
	require.NoError(t, err)

	_, err = svc.SubmitFeedback(ctx, Actor{ID: "staff", Role: domain.RoleStaff}, served.ID, 4, nil)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = svc.SubmitFeedback(ctx, student, upcoming.ID, 4, nil)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = svc.SubmitFeedback(ctx, student, "missing", 4, nil)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	fb, err := svc.SubmitFeedback(ctx, student, served.ID, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, fb.Rating)

	_, err = svc.SubmitFeedback(ctx, student, served.ID, 3, nil)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	own, err := svc.ListFeedback(ctx, Actor{ID: "s2", Role: domain.RoleStudent}, repository.MealFeedbackFilter{})
	require.NoError(t, err)
	assert.Empty(t, own)
	all, err := svc.ListFeedback(ctx, Actor{ID: "staff", Role: domain.RoleStaff}, repository.MealFeedbackFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCurrentWeek(t *testing.T) {
	svc, _, _ := newMessFixture()
	ctx := context.Background()

	_, err := svc.UpsertMenu(ctx, MenuInput{Date: day("2025-02-01"), MealType: domain.MealLunch, Items: sampleItems})
	require.NoError(t, err)

	_, err = svc.CurrentWeek(ctx)
	require.Error(t, err)
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, "2025-02-01", de.Details["availableFrom"])

	// Sunday 2025-01-05 through Saturday 2025-01-11 are in this week.
	for _, d := range []string{"2025-01-04", "2025-01-05", "2025-01-11", "2025-01-12"} {
		_, err := svc.UpsertMenu(ctx, MenuInput{Date: day(d), MealType: domain.MealDinner, Items: sampleItems})
		require.NoError(t, err)
	}
	week, err := svc.CurrentWeek(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-05", week.From.Format(domain.DateLayout))
	require.Len(t, week.Menus, 2)
	assert.Equal(t, "2025-01-05", week.Menus[0].Date.Format(domain.DateLayout))
	assert.Equal(t, "2025-01-11", week.Menus[1].Date.Format(domain.DateLayout))
}

func TestUpsertAndUpdateMenu(t *testing.T) {
	svc, menus, _ := newMessFixture()
	ctx := context.Background()

	first, err := svc.UpsertMenu(ctx, MenuInput{Date: day("2025-01-07"), MealType: domain.MealLunch, Items: sampleItems})
	require.NoError(t, err)
	again, err := svc.UpsertMenu(ctx, MenuInput{Date: day("2025-01-07"), MealType: domain.MealLunch, Items: sampleItems[:1]})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 1, menus.count())

	dinner, err := svc.UpsertMenu(ctx, MenuInput{Date: day("2025-01-07"), MealType: domain.MealDinner, Items: sampleItems})
	require.NoError(t, err)

	lunch := domain.MealLunch
	_, err = svc.UpdateMenu(ctx, dinner.ID, domain.MenuPatch{MealType: &lunch})
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	bad := "25:00"
	_, err = svc.UpdateMenu(ctx, dinner.ID, domain.MenuPatch{ServingTime: &bad})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	ok := "19:30"
	updated, err := svc.UpdateMenu(ctx, dinner.ID, domain.MenuPatch{ServingTime: &ok})
	require.NoError(t, err)
	assert.Equal(t, "19:30", *updated.ServingTime)

	_, err = svc.UpsertMenu(ctx, MenuInput{Date: day("2025-01-07"), MealType: domain.MealType("BRUNCH"), Items: sampleItems})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestImportMenusPartialSuccess(t *testing.T) {
	svc, menus, _ := newMessFixture()
	ctx := context.Background()

	var b strings.Builder
	b.WriteString("date,mealType,servingTime,isRecurring,items\n")
	for i := 1; i <= 10; i++ {
		items := fmt.Sprintf("\"Dish %d (VEG), Side (NON_VEG)\"", i)
		if i == 3 {
			items = ""
		}
		fmt.Fprintf(&b, "2025-01-%02d,LUNCH,12:30,No,%s\n", i, items)
	}

	result, err := svc.ImportMenus(ctx, strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, 9, result.Imported)
	assert.Equal(t, 10, result.Total)
	assert.True(t, result.HasErrors)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Equal(t, 9, menus.count())
}

func TestImportMenusRejectsEmptyFile(t *testing.T) {
	svc, _, _ := newMessFixture()
	_, err := svc.ImportMenus(context.Background(), strings.NewReader("date,mealType,items\n"))
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestExportMenusEmptyRange(t *testing.T) {
	svc, _, _ := newMessFixture()
	_, err := svc.ExportMenus(context.Background(), day("2025-01-01"), day("2025-01-31"))
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
