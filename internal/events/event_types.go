package events

import (
	"time"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueReported         EventType = "issue_reported"
	EventIssueStatusChanged    EventType = "issue_status_changed"
	EventIssueAssigned         EventType = "issue_assigned"
	EventCleaningStatusChanged EventType = "cleaning_status_changed"
	EventBookingCreated        EventType = "booking_created"
	EventBookingCancelled      EventType = "booking_cancelled"
)

// Actor identifies who caused an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ResourceID string      `json:"resource_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// IssueReportedPayload payload.
type IssueReportedPayload struct {
	Category domain.IssueCategory `json:"category"`
	Priority domain.Priority      `json:"priority"`
	Title    string               `json:"title"`
}

// IssueStatusChangedPayload payload.
type IssueStatusChangedPayload struct {
	Category  domain.IssueCategory `json:"category"`
	OldStatus domain.IssueStatus   `json:"old_status"`
	NewStatus domain.IssueStatus   `json:"new_status"`
}

// IssueAssignedPayload payload.
type IssueAssignedPayload struct {
	Category   domain.IssueCategory `json:"category"`
	AssigneeID string               `json:"assignee_id"`
}

// CleaningStatusChangedPayload payload.
type CleaningStatusChangedPayload struct {
	OldStatus domain.CleaningStatus `json:"old_status"`
	NewStatus domain.CleaningStatus `json:"new_status"`
	CleanerID *string               `json:"cleaner_id,omitempty"`
}

// BookingPayload payload for booking created and cancelled.
type BookingPayload struct {
	ScheduleID  string `json:"schedule_id"`
	BookingDate string `json:"booking_date"`
}
