package service

import (
	"context"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/issues"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
)

type WorkflowStore interface {
	Create(ctx context.Context, w *domain.Workflow) (*domain.Workflow, error)
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Workflow, error)
	Get(ctx context.Context, id int64) (*domain.Workflow, error)
	Update(ctx context.Context, w *domain.Workflow, replaceTransitions bool) (*domain.Workflow, error)
	Delete(ctx context.Context, id int64) error
}

type AssigneeStore interface {
	Upsert(ctx context.Context, projectID int64, issueType string, assigneeID *int64, setAssignee bool) (*domain.DefaultAssignee, error)
	ListByProject(ctx context.Context, projectID int64) ([]domain.DefaultAssignee, error)
	Get(ctx context.Context, projectID int64, issueType string) (*domain.DefaultAssignee, error)
}

// Directory answers existence checks for projects or users.
type Directory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type IssueStore interface {
	Get(ctx context.Context, id int64) (*issues.Issue, error)
	SetAssignee(ctx context.Context, id int64, assigneeID int64) (*issues.Issue, error)
	SetStatus(ctx context.Context, id int64, status string) (*issues.Issue, error)
}

// WorkflowCache is optional; services treat its failures as non-fatal.
type WorkflowCache interface {
	GetList(ctx context.Context, filter domain.ListFilter) ([]domain.Workflow, bool, error)
	// Generation must be read before the store so SetList can drop stale fills.
	Generation(ctx context.Context) (int64, error)
	SetList(ctx context.Context, filter domain.ListFilter, gen int64, list []domain.Workflow) error
	Invalidate(ctx context.Context) error
	Publish(ctx context.Context, ev domain.WorkflowEvent) error
}
