// Package issues exposes the few issue operations the workflow engine needs:
// loading an issue and writing its assignee or status.
package issues

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNotFound = errors.New("issue not found")

type Issue struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	AssigneeID *int64    `json:"assignee_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const issueColumns = `id, project_id, title, type, status, assignee_id, created_at, updated_at`

func (r *Repo) Get(ctx context.Context, id int64) (*Issue, error) {
	q := `select ` + issueColumns + ` from issues where id = $1;`
	return scanIssue(r.db.QueryRowContext(ctx, q, id))
}

// Create is used by the seed tool.
func (r *Repo) Create(ctx context.Context, projectID int64, title, issueType, status string) (*Issue, error) {
	q := `
insert into issues (project_id, title, type, status)
values ($1, $2, $3, $4)
returning ` + issueColumns + `;
`
	return scanIssue(r.db.QueryRowContext(ctx, q, projectID, title, issueType, status))
}

func (r *Repo) SetAssignee(ctx context.Context, id int64, assigneeID int64) (*Issue, error) {
	q := `
update issues
set assignee_id = $2, updated_at = now()
where id = $1
returning ` + issueColumns + `;
`
	return scanIssue(r.db.QueryRowContext(ctx, q, id, assigneeID))
}

func (r *Repo) SetStatus(ctx context.Context, id int64, status string) (*Issue, error) {
	q := `
update issues
set status = $2, updated_at = now()
where id = $1
returning ` + issueColumns + `;
`
	return scanIssue(r.db.QueryRowContext(ctx, q, id, status))
}

func scanIssue(row *sql.Row) (*Issue, error) {
	var (
		is       Issue
		assignee sql.NullInt64
	)
	err := row.Scan(&is.ID, &is.ProjectID, &is.Title, &is.Type, &is.Status, &assignee, &is.CreatedAt, &is.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if assignee.Valid {
		v := assignee.Int64
		is.AssigneeID = &v
	}
	return &is, nil
}
