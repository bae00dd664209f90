package dto

import (
	"time"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

// CreateWaterIssueRequest payload for POST /water/issues.
type CreateWaterIssueRequest struct {
	Title       string   `json:"title" validate:"required,min=5,max=100"`
	Description string   `json:"description" validate:"required,min=10,max=2000"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Location    string   `json:"location" validate:"required,max=200"`
	Images      []string `json:"images" validate:"omitempty,max=5,dive,url"`
}

// CreateNetworkIssueRequest payload for POST /network/issues.
type CreateNetworkIssueRequest struct {
	Title       string  `json:"title" validate:"required,min=5,max=100"`
	Description string  `json:"description" validate:"required,min=10,max=2000"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT CRITICAL"`
	IssueType   string  `json:"issueType" validate:"required,oneof=CONNECTIVITY SPEED AUTHENTICATION OTHER"`
	IPAddress   *string `json:"ipAddress" validate:"omitempty,ip"`
	MACAddress  *string `json:"macAddress" validate:"omitempty,mac"`
}

// UpdateIssueRequest is a status change and/or assignment.
type UpdateIssueRequest struct {
	Status     *string `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS RESOLVED CANCELLED"`
	AssigneeID *string `json:"assigneeId" validate:"omitempty,uuid"`
}

// CommentRequest payload for network issue comments.
type CommentRequest struct {
	Content string `json:"content" validate:"required,min=3,max=1000"`
}

// IssueResponse is a water or network issue.
type IssueResponse struct {
	ID          string                   `json:"id"`
	Category    domain.IssueCategory     `json:"category"`
	ReporterID  string                   `json:"reporterId"`
	AssigneeID  *string                  `json:"assigneeId"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Priority    domain.Priority          `json:"priority"`
	Status      domain.IssueStatus       `json:"status"`
	Location    *string                  `json:"location,omitempty"`
	Images      []string                 `json:"images,omitempty"`
	IssueType   *domain.NetworkIssueType `json:"issueType,omitempty"`
	IPAddress   *string                  `json:"ipAddress,omitempty"`
	MACAddress  *string                  `json:"macAddress,omitempty"`
	ResolvedAt  *time.Time               `json:"resolvedAt"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

// NewIssueResponse maps an issue.
func NewIssueResponse(i *domain.Issue) IssueResponse {
	return IssueResponse{
		ID:          i.ID,
		Category:    i.Category,
		ReporterID:  i.ReporterID,
		AssigneeID:  i.AssigneeID,
		Title:       i.Title,
		Description: i.Description,
		Priority:    i.Priority,
		Status:      i.Status,
		Location:    i.Location,
		Images:      i.Images,
		IssueType:   i.IssueType,
		IPAddress:   i.IPAddress,
		MACAddress:  i.MACAddress,
		ResolvedAt:  i.ResolvedAt,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// NewIssueList maps a slice of issues.
func NewIssueList(issues []domain.Issue) []IssueResponse {
	out := make([]IssueResponse, 0, len(issues))
	for i := range issues {
		out = append(out, NewIssueResponse(&issues[i]))
	}
	return out
}

// CommentResponse is a note on a network issue.
type CommentResponse struct {
	ID         string    `json:"id"`
	IssueID    string    `json:"issueId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewCommentResponse maps a comment.
func NewCommentResponse(c *domain.IssueComment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		IssueID:    c.IssueID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
	}
}
