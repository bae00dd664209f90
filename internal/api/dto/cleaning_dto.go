package dto

import (
	"time"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

// CreateCleaningRequest payload for POST /cleaning/requests.
type CreateCleaningRequest struct {
	Room                string  `json:"room" validate:"required,max=20"`
	Building            string  `json:"building" validate:"required,max=50"`
	CleaningType        string  `json:"cleaningType" validate:"omitempty,oneof=REGULAR DEEP SPECIAL"`
	ScheduledDate       string  `json:"scheduledDate" validate:"required,isodate"`
	TimeSlot            string  `json:"timeSlot" validate:"required,max=30"`
	SpecialInstructions *string `json:"specialInstructions" validate:"omitempty,max=500"`
}

// UpdateCleaningRequest is a status change and/or cleaner assignment.
type UpdateCleaningRequest struct {
	Status    *string `json:"status" validate:"omitempty,oneof=PENDING ASSIGNED IN_PROGRESS COMPLETED CANCELLED"`
	CleanerID *string `json:"cleanerId" validate:"omitempty,uuid"`
}

// CleaningFeedbackRequest rates a completed request.
type CleaningFeedbackRequest struct {
	Rating   int     `json:"rating" validate:"required,min=1,max=5"`
	Feedback *string `json:"feedback" validate:"omitempty,max=500"`
}

// CleaningResponse is a cleaning request.
type CleaningResponse struct {
	ID                  string                `json:"id"`
	StudentID           string                `json:"studentId"`
	CleanerID           *string               `json:"cleanerId"`
	Room                string                `json:"room"`
	Building            string                `json:"building"`
	CleaningType        domain.CleaningType   `json:"cleaningType"`
	ScheduledDate       string                `json:"scheduledDate"`
	TimeSlot            string                `json:"timeSlot"`
	SpecialInstructions *string               `json:"specialInstructions"`
	Status              domain.CleaningStatus `json:"status"`
	Rating              *int                  `json:"rating"`
	Feedback            *string               `json:"feedback"`
	CompletedAt         *time.Time            `json:"completedAt"`
	CancelledAt         *time.Time            `json:"cancelledAt"`
	CreatedAt           time.Time             `json:"createdAt"`
	UpdatedAt           time.Time             `json:"updatedAt"`
}

// NewCleaningResponse maps a request.
func NewCleaningResponse(r *domain.CleaningRequest) CleaningResponse {
	return CleaningResponse{
		ID:                  r.ID,
		StudentID:           r.StudentID,
		CleanerID:           r.CleanerID,
		Room:                r.Room,
		Building:            r.Building,
		CleaningType:        r.CleaningType,
		ScheduledDate:       r.ScheduledDate.Format(domain.DateLayout),
		TimeSlot:            r.TimeSlot,
		SpecialInstructions: r.SpecialInstructions,
		Status:              r.Status,
		Rating:              r.Rating,
		Feedback:            r.Feedback,
		CompletedAt:         r.CompletedAt,
		CancelledAt:         r.CancelledAt,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

// NewCleaningList maps a slice of requests.
func NewCleaningList(reqs []domain.CleaningRequest) []CleaningResponse {
	out := make([]CleaningResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, NewCleaningResponse(&reqs[i]))
	}
	return out
}
