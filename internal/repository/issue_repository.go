package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

// IssueFilter captures listing parameters for one issue category.
type IssueFilter struct {
	Category  domain.IssueCategory
	Scope     domain.Scope
	Status    *domain.IssueStatus
	Priority  *domain.Priority
	IssueType *domain.NetworkIssueType
	Limit     int
	Offset    int
}

// IssueRepository persists water and network issues and their comments.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	Update(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, category domain.IssueCategory, id string) (*domain.Issue, error)
	List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
	AddComment(ctx context.Context, comment *domain.IssueComment) error
	ListComments(ctx context.Context, issueID string) ([]domain.IssueComment, error)
}

type issueRepository struct {
	db querier
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{db: pool}
}

const issueColumns = `id, category, reporter_id, assignee_id, title, description, priority, status,
       location, images, issue_type, ip_address, mac_address, resolved_at, created_at, updated_at`

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (category, reporter_id, assignee_id, title, description, priority, status,
                            location, images, issue_type, ip_address, mac_address)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	images := issue.Images
	if images == nil {
		images = []string{}
	}
	return r.db.QueryRow(ctx, query,
		issue.Category,
		issue.ReporterID,
		issue.AssigneeID,
		issue.Title,
		issue.Description,
		issue.Priority,
		issue.Status,
		issue.Location,
		images,
		issue.IssueType,
		issue.IPAddress,
		issue.MACAddress,
	).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)
}

func (r *issueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	const query = `
        UPDATE issues SET assignee_id=$1, status=$2, priority=$3, resolved_at=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		issue.AssigneeID,
		issue.Status,
		issue.Priority,
		issue.ResolvedAt,
		issue.ID,
	).Scan(&issue.UpdatedAt)
}

func (r *issueRepository) GetByID(ctx context.Context, category domain.IssueCategory, id string) (*domain.Issue, error) {
	row := r.db.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id=$1 AND category=$2`, id, category)
	return scanIssue(row)
}

func (r *issueRepository) List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	var where whereBuilder
	where.add("category = %s", filter.Category)
	where.scope(filter.Scope, "reporter_id", "assignee_id", "status")
	if filter.Status != nil {
		where.add("status = %s", *filter.Status)
	}
	if filter.Priority != nil {
		where.add("priority = %s", *filter.Priority)
	}
	if filter.IssueType != nil {
		where.add("issue_type = %s", *filter.IssueType)
	}

	query := `SELECT ` + issueColumns + ` FROM issues` + where.clause() + ` ORDER BY created_at DESC`
	query += where.page(filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *issue)
	}
	return result, rows.Err()
}

func (r *issueRepository) AddComment(ctx context.Context, comment *domain.IssueComment) error {
	const query = `
        INSERT INTO issue_comments (issue_id, author_id, content)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, comment.IssueID, comment.AuthorID, comment.Content).
		Scan(&comment.ID, &comment.CreatedAt)
}

func (r *issueRepository) ListComments(ctx context.Context, issueID string) ([]domain.IssueComment, error) {
	const query = `
        SELECT c.id, c.issue_id, c.author_id, u.name, c.content, c.created_at
        FROM issue_comments c JOIN users u ON u.id = c.author_id
        WHERE c.issue_id=$1
        ORDER BY c.created_at ASC`
	rows, err := r.db.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IssueComment
	for rows.Next() {
		var c domain.IssueComment
		if err := rows.Scan(&c.ID, &c.IssueID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var issue domain.Issue
	if err := row.Scan(
		&issue.ID,
		&issue.Category,
		&issue.ReporterID,
		&issue.AssigneeID,
		&issue.Title,
		&issue.Description,
		&issue.Priority,
		&issue.Status,
		&issue.Location,
		&issue.Images,
		&issue.IssueType,
		&issue.IPAddress,
		&issue.MACAddress,
		&issue.ResolvedAt,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &issue, nil
}
