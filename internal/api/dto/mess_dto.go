package dto

import (
	"time"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

// MenuItem is one dish in a menu payload.
type MenuItem struct {
	Name string `json:"name" validate:"required,max=100"`
	Type string `json:"type" validate:"required,oneof=VEG NON_VEG JAIN SPECIAL"`
}

// MenuRequest payload for POST /mess/menu.
type MenuRequest struct {
	Date        string     `json:"date" validate:"required,isodate"`
	MealType    string     `json:"mealType" validate:"required,oneof=BREAKFAST LUNCH DINNER SPECIAL"`
	ServingTime *string    `json:"servingTime" validate:"omitempty,hhmm"`
	Items       []MenuItem `json:"items" validate:"required,min=1,dive"`
}

// UpdateMenuRequest is a partial menu update.
type UpdateMenuRequest struct {
	Date        *string    `json:"date" validate:"omitempty,isodate"`
	MealType    *string    `json:"mealType" validate:"omitempty,oneof=BREAKFAST LUNCH DINNER SPECIAL"`
	ServingTime *string    `json:"servingTime" validate:"omitempty,hhmm"`
	Items       []MenuItem `json:"items" validate:"omitempty,min=1,dive"`
}

// RecurringMenuRequest payload for POST /mess/menu/recurring.
type RecurringMenuRequest struct {
	StartDate   string     `json:"startDate" validate:"required,isodate"`
	EndDate     string     `json:"endDate" validate:"required,isodate"`
	MealType    string     `json:"mealType" validate:"required,oneof=BREAKFAST LUNCH DINNER SPECIAL"`
	ServingTime *string    `json:"servingTime" validate:"omitempty,hhmm"`
	Items       []MenuItem `json:"items" validate:"required,min=1,dive"`
	Frequency   string     `json:"frequency" validate:"required,oneof=DAILY WEEKLY WEEKDAYS WEEKENDS"`
	DaysOfWeek  []int      `json:"daysOfWeek" validate:"omitempty,dive,min=0,max=6"`
}

// MealFeedbackRequest payload for POST /mess/feedback.
type MealFeedbackRequest struct {
	MenuID  string  `json:"menuId" validate:"required,uuid"`
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=500"`
}

// DomainItems converts payload items.
func DomainItems(items []MenuItem) []domain.MenuItem {
	if items == nil {
		return nil
	}
	out := make([]domain.MenuItem, len(items))
	for i, item := range items {
		out[i] = domain.MenuItem{Name: item.Name, Type: domain.DietaryType(item.Type)}
	}
	return out
}

// MenuResponse is a menu.
type MenuResponse struct {
	ID               string            `json:"id"`
	Date             string            `json:"date"`
	Day              string            `json:"day"`
	MealType         domain.MealType   `json:"mealType"`
	ServingTime      *string           `json:"servingTime"`
	Items            []domain.MenuItem `json:"items"`
	IsRecurring      bool              `json:"isRecurring"`
	BaseMenuID       *string           `json:"baseMenuId"`
	RecurrenceEndsAt *string           `json:"recurrenceEndsAt"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// NewMenuResponse maps a menu.
func NewMenuResponse(m *domain.MessMenu) MenuResponse {
	resp := MenuResponse{
		ID:          m.ID,
		Date:        m.Date.Format(domain.DateLayout),
		Day:         domain.WeekdayName(m.Date.Weekday()),
		MealType:    m.MealType,
		ServingTime: m.ServingTime,
		Items:       m.Items,
		IsRecurring: m.IsRecurring,
		BaseMenuID:  m.BaseMenuID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if resp.Items == nil {
		resp.Items = []domain.MenuItem{}
	}
	if m.RecurrenceEndsAt != nil {
		ends := m.RecurrenceEndsAt.Format(domain.DateLayout)
		resp.RecurrenceEndsAt = &ends
	}
	return resp
}

// NewMenuList maps a slice of menus.
func NewMenuList(menus []domain.MessMenu) []MenuResponse {
	out := make([]MenuResponse, 0, len(menus))
	for i := range menus {
		out = append(out, NewMenuResponse(&menus[i]))
	}
	return out
}

// MealFeedbackResponse is a meal rating.
type MealFeedbackResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	MenuID    string    `json:"menuId"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewMealFeedbackResponse maps a rating.
func NewMealFeedbackResponse(f *domain.MealFeedback) MealFeedbackResponse {
	return MealFeedbackResponse{
		ID:        f.ID,
		UserID:    f.UserID,
		MenuID:    f.MenuID,
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	}
}
