package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/storage/postgres"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
)

// WorkflowRepository persists workflows and their transitions.
type WorkflowRepository struct {
	db *sql.DB
}

func NewWorkflowRepository(db *sql.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

const selectWorkflows = `
SELECT w.id, w.name, w.description, w.project_id, p.name, w.created_at, w.updated_at,
       t.id, t.from_status, t.to_status, t.name
FROM workflows w
JOIN projects p ON p.id = w.project_id
LEFT JOIN workflow_transitions t ON t.workflow_id = w.id
`

const insertTransition = `
INSERT INTO workflow_transitions (workflow_id, from_status, to_status, name)
VALUES ($1, $2, $3, $4)
RETURNING id;
`

// Create inserts the workflow row and all of its transitions in one transaction.
func (r *WorkflowRepository) Create(ctx context.Context, w *domain.Workflow) (*domain.Workflow, error) {
	var id int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		const q = `
INSERT INTO workflows (name, description, project_id)
VALUES ($1, $2, $3)
RETURNING id;
`
		if err := tx.QueryRowContext(ctx, q, w.Name, w.Description, w.ProjectID).Scan(&id); err != nil {
			if _, fk := postgres.ForeignKeyViolation(err); fk {
				return domain.ErrProjectNotFound
			}
			return errors.Wrap(err, "insert workflow")
		}
		return insertTransitions(ctx, tx, id, w.Transitions)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// List returns workflows with their transitions, newest first.
func (r *WorkflowRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Workflow, error) {
	q := selectWorkflows + `
WHERE ($1::bigint = 0 OR w.project_id = $1)
ORDER BY w.created_at DESC, w.id DESC, t.id ASC;
`
	rows, err := r.db.QueryContext(ctx, q, filter.ProjectID)
	if err != nil {
		return nil, errors.Wrap(err, "list workflows")
	}
	defer rows.Close()

	return scanWorkflows(rows)
}

// Get returns one workflow or domain.ErrWorkflowNotFound.
func (r *WorkflowRepository) Get(ctx context.Context, id int64) (*domain.Workflow, error) {
	q := selectWorkflows + `
WHERE w.id = $1
ORDER BY t.id ASC;
`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, errors.Wrap(err, "get workflow")
	}
	defer rows.Close()

	list, err := scanWorkflows(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domain.ErrWorkflowNotFound
	}
	return &list[0], nil
}

// Update writes name and description. When replaceTransitions is set the
// stored transitions are deleted and w.Transitions inserted, all in the same
// transaction, so readers see either the old set or the new one.
func (r *WorkflowRepository) Update(ctx context.Context, w *domain.Workflow, replaceTransitions bool) (*domain.Workflow, error) {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		const q = `
UPDATE workflows
SET name = $2, description = $3, updated_at = now()
WHERE id = $1
RETURNING id;
`
		var id int64
		if err := tx.QueryRowContext(ctx, q, w.ID, w.Name, w.Description).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrWorkflowNotFound
			}
			return errors.Wrap(err, "update workflow")
		}
		if !replaceTransitions {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM workflow_transitions WHERE workflow_id = $1;`, w.ID); err != nil {
			return errors.Wrap(err, "delete transitions")
		}
		return insertTransitions(ctx, tx, w.ID, w.Transitions)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, w.ID)
}

// Delete removes a workflow; its transitions go with it through the FK cascade.
func (r *WorkflowRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = $1;`, id)
	if err != nil {
		return errors.Wrap(err, "delete workflow")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete workflow")
	}
	if n == 0 {
		return domain.ErrWorkflowNotFound
	}
	return nil
}

// CheckIntegrity counts rows that the schema should never let exist, plus
// workflows left without any transition.
func (r *WorkflowRepository) CheckIntegrity(ctx context.Context) (domain.IntegrityReport, error) {
	const q = `
SELECT
  (SELECT count(*) FROM workflow_transitions t
     WHERE NOT EXISTS (SELECT 1 FROM workflows w WHERE w.id = t.workflow_id)),
  (SELECT count(*) FROM workflows w
     WHERE NOT EXISTS (SELECT 1 FROM workflow_transitions t WHERE t.workflow_id = w.id)),
  (SELECT count(*) FROM default_assignees d
     WHERE NOT EXISTS (SELECT 1 FROM projects p WHERE p.id = d.project_id));
`
	var rep domain.IntegrityReport
	err := r.db.QueryRowContext(ctx, q).Scan(&rep.OrphanTransitions, &rep.WorkflowsWithoutEdges, &rep.DefaultAssigneesOrphans)
	if err != nil {
		return rep, errors.Wrap(err, "check integrity")
	}
	return rep, nil
}

func (r *WorkflowRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

func insertTransitions(ctx context.Context, tx *sql.Tx, workflowID int64, transitions []domain.Transition) error {
	for i := range transitions {
		t := &transitions[i]
		if t.Name == "" {
			t.Name = domain.DisplayName(t.From, t.To)
		}
		if err := tx.QueryRowContext(ctx, insertTransition, workflowID, t.From, t.To, t.Name).Scan(&t.ID); err != nil {
			return errors.Wrapf(err, "insert transition %q -> %q", t.From, t.To)
		}
		t.WorkflowID = workflowID
	}
	return nil
}

// scanWorkflows folds the joined rows back into workflows. Rows for one
// workflow are adjacent because every query orders by workflow first.
func scanWorkflows(rows *sql.Rows) ([]domain.Workflow, error) {
	out := make([]domain.Workflow, 0, 16)
	for rows.Next() {
		var (
			w           domain.Workflow
			project     domain.ProjectSummary
			description sql.NullString
			tID         sql.NullInt64
			tFrom, tTo  sql.NullString
			tName       sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.Name, &description, &w.ProjectID, &project.Name, &w.CreatedAt, &w.UpdatedAt,
			&tID, &tFrom, &tTo, &tName); err != nil {
			return nil, errors.Wrap(err, "scan workflow")
		}

		if n := len(out); n == 0 || out[n-1].ID != w.ID {
			if description.Valid {
				w.Description = &description.String
			}
			project.ID = w.ProjectID
			w.Project = &project
			w.Transitions = []domain.Transition{}
			out = append(out, w)
		}

		if tID.Valid {
			cur := &out[len(out)-1]
			cur.Transitions = append(cur.Transitions, domain.Transition{
				ID:         tID.Int64,
				WorkflowID: cur.ID,
				From:       tFrom.String,
				To:         tTo.String,
				Name:       tName.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate workflows")
	}

	for i := range out {
		out[i].Statuses = domain.DeriveStatuses(out[i].Transitions)
	}
	return out, nil
}
