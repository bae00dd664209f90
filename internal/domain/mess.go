package domain

import "time"

// MealType enumerates the meals served per day.
type MealType string

const (
	MealBreakfast MealType = "BREAKFAST"
	MealLunch     MealType = "LUNCH"
	MealDinner    MealType = "DINNER"
	MealSpecial   MealType = "SPECIAL"
)

// Valid reports whether m is a known meal type.
func (m MealType) Valid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSpecial:
		return true
	}
	return false
}

// DietaryType tags a menu item.
type DietaryType string

const (
	DietVeg     DietaryType = "VEG"
	DietNonVeg  DietaryType = "NON_VEG"
	DietJain    DietaryType = "JAIN"
	DietSpecial DietaryType = "SPECIAL"
)

// Valid reports whether d is a known dietary type.
func (d DietaryType) Valid() bool {
	switch d {
	case DietVeg, DietNonVeg, DietJain, DietSpecial:
		return true
	}
	return false
}

// MenuItem is one dish on a menu.
type MenuItem struct {
	Name string      `json:"name"`
	Type DietaryType `json:"type"`
}

// MessMenu is the menu for one (date, meal type).
type MessMenu struct {
	ID               string
	Date             time.Time
	MealType         MealType
	ServingTime      *string
	Items            []MenuItem
	IsRecurring      bool
	BaseMenuID       *string
	RecurrenceEndsAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MenuPatch lists the fields a partial menu update may change.
type MenuPatch struct {
	Date        *time.Time
	MealType    *MealType
	ServingTime *string
	Items       []MenuItem
}

// Apply merges the patch into m.
func (p MenuPatch) Apply(m *MessMenu) {
	if p.Date != nil {
		m.Date = *p.Date
	}
	if p.MealType != nil {
		m.MealType = *p.MealType
	}
	if p.ServingTime != nil {
		st := *p.ServingTime
		m.ServingTime = &st
	}
	if p.Items != nil {
		m.Items = append([]MenuItem(nil), p.Items...)
	}
}

// Frequency is a recurrence rule for menu series.
type Frequency string

const (
	FrequencyDaily    Frequency = "DAILY"
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyWeekdays Frequency = "WEEKDAYS"
	FrequencyWeekends Frequency = "WEEKENDS"
)

// MealFeedback is a student's rating of a served menu.
type MealFeedback struct {
	ID        string
	UserID    string
	MenuID    string
	Rating    int
	Comment   *string
	CreatedAt time.Time
}
