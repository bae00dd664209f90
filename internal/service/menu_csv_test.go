package service

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

func TestParseItems(t *testing.T) {
	items := ParseItems("Poha (VEG), Egg curry (non_veg),  Tea , Khichdi (JAIN), Mystery (SPICY), ")
	assert.Equal(t, []domain.MenuItem{
		{Name: "Poha", Type: domain.DietVeg},
		{Name: "Egg curry", Type: domain.DietNonVeg},
		{Name: "Tea", Type: domain.DietVeg},
		{Name: "Khichdi", Type: domain.DietJain},
		{Name: "Mystery", Type: domain.DietVeg},
	}, items)
	assert.Empty(t, ParseItems(" , ,"))
}

func TestFormatItemsRoundTrips(t *testing.T) {
	items := []domain.MenuItem{{Name: "Rice", Type: domain.DietVeg}, {Name: "Fish fry", Type: domain.DietNonVeg}}
	formatted := FormatItems(items)
	assert.Equal(t, "Rice (VEG), Fish fry (NON_VEG)", formatted)
	assert.Equal(t, items, ParseItems(formatted))
}

func sampleMenus() []domain.MessMenu {
	serving := "13:00"
	ends := day("2025-01-31")
	return []domain.MessMenu{
		{Date: day("2025-01-06"), MealType: domain.MealBreakfast, Items: []domain.MenuItem{{Name: "Idli", Type: domain.DietVeg}}},
		{
			Date: day("2025-01-06"), MealType: domain.MealLunch, ServingTime: &serving, IsRecurring: true,
			RecurrenceEndsAt: &ends, Items: []domain.MenuItem{{Name: "Rice", Type: domain.DietVeg}, {Name: "Chicken", Type: domain.DietNonVeg}},
		},
	}
}

func TestWriteMenusCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMenusCSV(&buf, sampleMenus()))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\ufeff"))
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"date", "mealType", "servingTime", "isRecurring", "items"}, records[0])
	assert.Equal(t, []string{"2025-01-06", "BREAKFAST", "", "No", "Idli (VEG)"}, records[1])
	assert.Equal(t, []string{"2025-01-06", "LUNCH", "13:00", "Yes", "Rice (VEG), Chicken (NON_VEG)"}, records[2])

	buf.Reset()
	require.NoError(t, WriteMenusCSV(&buf, nil))
	assert.Equal(t, "\ufeff"+strings.Join(MenuColumns, ",")+"\n", buf.String())
}

func TestExportParsesBackOnImport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMenusCSV(&buf, sampleMenus()))

	rows, errs, total, err := ParseMenuCSV(&buf)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, 3, rows[1].Row)
	assert.Equal(t, domain.MealLunch, rows[1].Menu.MealType)
	assert.True(t, rows[1].Menu.IsRecurring)
	assert.Equal(t, "13:00", *rows[1].Menu.ServingTime)
	assert.Nil(t, rows[1].Menu.RecurrenceEndsAt)
}

func TestImportAcceptsRecurrenceEndsAt(t *testing.T) {
	input := strings.Join(ImportColumns, ",") + "\n" +
		"2025-01-06,LUNCH,13:00,Yes,Rice,2025-01-31\n" +
		"2025-01-07,LUNCH,13:00,Yes,Rice,31-01-2025\n"

	rows, errs, total, err := ParseMenuCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Menu.RecurrenceEndsAt)
	assert.Equal(t, "2025-01-31", rows[0].Menu.RecurrenceEndsAt.Format(domain.DateLayout))
	assert.Equal(t, []MenuRowError{{Row: 3, Error: "invalid recurrenceEndsAt: 31-01-2025"}}, errs)
}

func TestParseMenuCSVRowErrors(t *testing.T) {
	input := "\ufeffdate,mealType,servingTime,items\n" +
		"2025-01-06,breakfast,08:00,Upma\n" +
		"06/01/2025,LUNCH,,Rice\n" +
		"2025-01-06,BRUNCH,,Rice\n" +
		"2025-01-06,DINNER,25:99,Rice\n" +
		"2025-01-06,DINNER,,\n"

	rows, errs, total, err := ParseMenuCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.MealBreakfast, rows[0].Menu.MealType)
	assert.Equal(t, []MenuRowError{
		{Row: 3, Error: "invalid date format: 06/01/2025"},
		{Row: 4, Error: "invalid meal type: BRUNCH"},
		{Row: 5, Error: "invalid serving time: 25:99"},
		{Row: 6, Error: "missing required fields: date, mealType, items"},
	}, errs)
}

func TestParseMenuCSVEmpty(t *testing.T) {
	_, _, _, err := ParseMenuCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyImport)

	_, _, _, err = ParseMenuCSV(strings.NewReader("date,mealType,items\n"))
	assert.ErrorIs(t, err, ErrEmptyImport)
}

func TestWriteMenusXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menus.xlsx")
	require.NoError(t, WriteMenusXLSX(path, sampleMenus()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Menus")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, MenuColumns, rows[0])
	assert.Equal(t, "Rice (VEG), Chicken (NON_VEG)", rows[2][4])
}

func TestValidClock(t *testing.T) {
	assert.True(t, ValidClock("07:30"))
	assert.True(t, ValidClock("23:59"))
	assert.False(t, ValidClock("7:30"))
	assert.False(t, ValidClock("24:00"))
	assert.False(t, ValidClock("noon"))
}
