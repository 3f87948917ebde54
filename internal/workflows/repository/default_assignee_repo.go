package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/storage/postgres"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
)

type DefaultAssigneeRepository struct {
	db *sql.DB
}

func NewDefaultAssigneeRepository(db *sql.DB) *DefaultAssigneeRepository {
	return &DefaultAssigneeRepository{db: db}
}

const defaultAssigneeColumns = `id, project_id, issue_type, assignee_id, created_at, updated_at`

// Upsert creates or updates the row for (projectID, issueType). When
// setAssignee is false an existing assignee is kept and a new row starts
// with none.
func (r *DefaultAssigneeRepository) Upsert(ctx context.Context, projectID int64, issueType string, assigneeID *int64, setAssignee bool) (*domain.DefaultAssignee, error) {
	const q = `
INSERT INTO default_assignees (project_id, issue_type, assignee_id)
VALUES ($1, $2, CASE WHEN $4::boolean THEN $3::bigint ELSE NULL END)
ON CONFLICT ON CONSTRAINT default_assignees_project_issue_type_key DO UPDATE
SET assignee_id = CASE WHEN $4::boolean THEN EXCLUDED.assignee_id ELSE default_assignees.assignee_id END,
    updated_at = now()
RETURNING ` + defaultAssigneeColumns + `;
`
	row := r.db.QueryRowContext(ctx, q, projectID, issueType, assigneeID, setAssignee)
	da, err := scanDefaultAssignee(row)
	if err != nil {
		if constraint, fk := postgres.ForeignKeyViolation(err); fk {
			if constraint == "default_assignees_assignee_id_fkey" {
				return nil, domain.ErrUserNotFound
			}
			return nil, domain.ErrProjectNotFound
		}
		return nil, errors.Wrap(err, "upsert default assignee")
	}
	return da, nil
}

// ListByProject returns the project's rows ordered by issue type.
func (r *DefaultAssigneeRepository) ListByProject(ctx context.Context, projectID int64) ([]domain.DefaultAssignee, error) {
	q := `SELECT ` + defaultAssigneeColumns + `
FROM default_assignees
WHERE project_id = $1
ORDER BY issue_type ASC;
`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "list default assignees")
	}
	defer rows.Close()

	out := make([]domain.DefaultAssignee, 0, 8)
	for rows.Next() {
		da, err := scanDefaultAssignee(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan default assignee")
		}
		out = append(out, *da)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate default assignees")
	}
	return out, nil
}

// Get returns the row for (projectID, issueType) or domain.ErrDefaultAssigneeNotFound.
func (r *DefaultAssigneeRepository) Get(ctx context.Context, projectID int64, issueType string) (*domain.DefaultAssignee, error) {
	q := `SELECT ` + defaultAssigneeColumns + `
FROM default_assignees
WHERE project_id = $1 AND issue_type = $2;
`
	da, err := scanDefaultAssignee(r.db.QueryRowContext(ctx, q, projectID, issueType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDefaultAssigneeNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get default assignee")
	}
	return da, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefaultAssignee(s rowScanner) (*domain.DefaultAssignee, error) {
	var (
		da       domain.DefaultAssignee
		assignee sql.NullInt64
	)
	if err := s.Scan(&da.ID, &da.ProjectID, &da.IssueType, &assignee, &da.CreatedAt, &da.UpdatedAt); err != nil {
		return nil, err
	}
	if assignee.Valid {
		v := assignee.Int64
		da.AssigneeID = &v
	}
	return &da, nil
}
