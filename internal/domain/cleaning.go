package domain

import "time"

// CleaningStatus enumerates lifecycle states for cleaning requests.
type CleaningStatus string

const (
	CleaningStatusPending    CleaningStatus = "PENDING"
	CleaningStatusAssigned   CleaningStatus = "ASSIGNED"
	CleaningStatusInProgress CleaningStatus = "IN_PROGRESS"
	CleaningStatusCompleted  CleaningStatus = "COMPLETED"
	CleaningStatusCancelled  CleaningStatus = "CANCELLED"
)

var cleaningTransitions = map[CleaningStatus][]CleaningStatus{
	CleaningStatusPending:    {CleaningStatusAssigned, CleaningStatusInProgress, CleaningStatusCancelled},
	CleaningStatusAssigned:   {CleaningStatusInProgress, CleaningStatusCancelled},
	CleaningStatusInProgress: {CleaningStatusCompleted, CleaningStatusCancelled},
	CleaningStatusCompleted:  {},
	CleaningStatusCancelled:  {},
}

// CanTransition reports whether a request may move from s to next.
func (s CleaningStatus) CanTransition(next CleaningStatus) bool {
	for _, candidate := range cleaningTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CleaningType enumerates the kinds of cleaning a student can ask for.
type CleaningType string

const (
	CleaningTypeRegular CleaningType = "REGULAR"
	CleaningTypeDeep    CleaningType = "DEEP"
	CleaningTypeSpecial CleaningType = "SPECIAL"
)

// CleaningRequest is a student's request to have a room cleaned.
type CleaningRequest struct {
	ID                  string
	StudentID           string
	CleanerID           *string
	Room                string
	Building            string
	CleaningType        CleaningType
	ScheduledDate       time.Time
	TimeSlot            string
	SpecialInstructions *string
	Status              CleaningStatus
	Rating              *int
	Feedback            *string
	CompletedAt         *time.Time
	CancelledAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
