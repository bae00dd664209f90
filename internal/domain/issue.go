package domain

import "time"

// IssueCategory separates the water and network queues that share one table.
type IssueCategory string

const (
	IssueCategoryWater   IssueCategory = "WATER"
	IssueCategoryNetwork IssueCategory = "NETWORK"
)

// WorkerRole returns the specialist role that works this category.
func (c IssueCategory) WorkerRole() Role {
	switch c {
	case IssueCategoryWater:
		return RolePlumber
	case IssueCategoryNetwork:
		return RoleITStaff
	default:
		return ""
	}
}

// IssueStatus enumerates lifecycle states for issues.
type IssueStatus string

const (
	IssueStatusPending    IssueStatus = "PENDING"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusResolved   IssueStatus = "RESOLVED"
	IssueStatusCancelled  IssueStatus = "CANCELLED"
)

var issueTransitions = map[IssueStatus][]IssueStatus{
	IssueStatusPending:    {IssueStatusInProgress, IssueStatusCancelled},
	IssueStatusInProgress: {IssueStatusResolved, IssueStatusCancelled},
	IssueStatusResolved:   {},
	IssueStatusCancelled:  {},
}

// CanTransition reports whether an issue may move from s to next.
func (s IssueStatus) CanTransition(next IssueStatus) bool {
	for _, candidate := range issueTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Priority enumerates urgency levels.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityUrgent   Priority = "URGENT"
	PriorityCritical Priority = "CRITICAL"
)

// NetworkIssueType classifies network problems.
type NetworkIssueType string

const (
	NetworkIssueConnectivity   NetworkIssueType = "CONNECTIVITY"
	NetworkIssueSpeed          NetworkIssueType = "SPEED"
	NetworkIssueAuthentication NetworkIssueType = "AUTHENTICATION"
	NetworkIssueOther          NetworkIssueType = "OTHER"
)

// Issue is a water or network problem report.
type Issue struct {
	ID          string
	Category    IssueCategory
	ReporterID  string
	AssigneeID  *string
	Title       string
	Description string
	Priority    Priority
	Status      IssueStatus

	// water
	Location *string
	Images   []string

	// network
	IssueType  *NetworkIssueType
	IPAddress  *string
	MACAddress *string

	ResolvedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IssueComment is a note on a network issue.
type IssueComment struct {
	ID         string
	IssueID    string
	AuthorID   string
	AuthorName string
	Content    string
	CreatedAt  time.Time
}
