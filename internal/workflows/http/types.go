package http

import (
	"context"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/issues"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/service"
)

type WorkflowService interface {
	Create(ctx context.Context, in service.CreateWorkflowInput) (*domain.Workflow, []string, error)
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Workflow, error)
	Get(ctx context.Context, id int64) (*domain.Workflow, error)
	Update(ctx context.Context, id int64, in service.UpdateWorkflowInput) (*domain.Workflow, []string, error)
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context, id int64, format string) ([]byte, string, error)
}

type AssigneeService interface {
	Set(ctx context.Context, in service.SetDefaultAssigneeInput) (*domain.DefaultAssignee, error)
	List(ctx context.Context, projectID int64) ([]domain.DefaultAssignee, error)
	Resolve(ctx context.Context, issueID int64) (service.ResolveResult, error)
}

type TransitionService interface {
	AvailableTransitions(ctx context.Context, issueID int64) ([]domain.Transition, error)
	TransitionIssue(ctx context.Context, issueID int64, toStatus string) (*issues.Issue, error)
}

// EventSource streams change events of one workflow.
type EventSource interface {
	Events(ctx context.Context, workflowID int64) (<-chan domain.WorkflowEvent, error)
}

// Handler serves the /api/workflows surface.
type Handler struct {
	workflows   WorkflowService
	assignees   AssigneeService
	transitions TransitionService
	events      EventSource
	// production hides internal error details from 500 responses
	production bool
}

func New(workflows WorkflowService, assignees AssigneeService, transitions TransitionService, production bool) *Handler {
	return &Handler{
		workflows:   workflows,
		assignees:   assignees,
		transitions: transitions,
		production:  production,
	}
}

// WithEvents enables GET /:id/events.
func (h *Handler) WithEvents(events EventSource) *Handler {
	h.events = events
	return h
}

type createWorkflowRequest struct {
	Name        string                   `json:"name"`
	Description *string                  `json:"description,omitempty"`
	ProjectID   int64                    `json:"project_id"`
	Statuses    []string                 `json:"statuses,omitempty"`
	Transitions []domain.TransitionInput `json:"transitions,omitempty"`
	// Template seeds statuses and transitions when both are omitted.
	Template string `json:"template,omitempty"`
}

type updateWorkflowRequest struct {
	Name        *string                  `json:"name,omitempty"`
	Description *string                  `json:"description,omitempty"`
	Statuses    []string                 `json:"statuses,omitempty"`
	Transitions []domain.TransitionInput `json:"transitions,omitempty"`
}

type setDefaultAssigneeRequest struct {
	ProjectID  int64             `json:"project_id"`
	IssueType  string            `json:"issue_type"`
	AssigneeID domain.OptionalID `json:"assignee_id"`
}

type transitionIssueRequest struct {
	ToStatus string `json:"to_status"`
}
