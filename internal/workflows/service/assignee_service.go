package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/issues"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/logging"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
)

const (
	MsgAutoAssigned        = "Issue assigned to the default assignee"
	MsgNoDefaultConfigured = "No default assignee configured for this issue type"
)

type SetDefaultAssigneeInput struct {
	ProjectID  int64
	IssueType  string
	AssigneeID domain.OptionalID
}

// ResolveResult reports the outcome of auto-assignment. Assigned is false
// when the project has no default for the issue type; that is not an error.
type ResolveResult struct {
	Assigned   bool   `json:"assigned"`
	AssigneeID *int64 `json:"assignee_id,omitempty"`
	Message    string `json:"message"`
}

type AssigneeService struct {
	store    AssigneeStore
	projects Directory
	users    Directory
	issues   IssueStore
}

func NewAssigneeService(store AssigneeStore, projects, users Directory, issues IssueStore) *AssigneeService {
	return &AssigneeService{store: store, projects: projects, users: users, issues: issues}
}

// Set upserts the default for (project, issue type). An omitted assignee
// keeps the stored one, an explicit null clears it.
func (s *AssigneeService) Set(ctx context.Context, in SetDefaultAssigneeInput) (*domain.DefaultAssignee, error) {
	if in.ProjectID <= 0 {
		return nil, domain.NewValidationError("project_id", "project_id is required")
	}
	issueType := strings.TrimSpace(in.IssueType)
	if issueType == "" {
		return nil, domain.NewValidationError("issue_type", "issue_type is required")
	}

	if err := s.requireProject(ctx, in.ProjectID); err != nil {
		return nil, err
	}
	if in.AssigneeID.Set && in.AssigneeID.Value != nil {
		ok, err := s.users.Exists(ctx, *in.AssigneeID.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to check user: %w", err)
		}
		if !ok {
			return nil, domain.ErrUserNotFound
		}
	}

	return s.store.Upsert(ctx, in.ProjectID, issueType, in.AssigneeID.Value, in.AssigneeID.Set)
}

func (s *AssigneeService) List(ctx context.Context, projectID int64) ([]domain.DefaultAssignee, error) {
	if projectID <= 0 {
		return nil, domain.NewValidationError("project_id", "project_id is required")
	}
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListByProject(ctx, projectID)
}

// Resolve writes the configured default assignee onto the issue. The lookup
// and the write are separate statements; a concurrent assignment may win.
func (s *AssigneeService) Resolve(ctx context.Context, issueID int64) (ResolveResult, error) {
	issue, err := s.issues.Get(ctx, issueID)
	if err != nil {
		return ResolveResult{}, issueErr(err)
	}

	da, err := s.store.Get(ctx, issue.ProjectID, issue.Type)
	if errors.Is(err, domain.ErrDefaultAssigneeNotFound) || (err == nil && da.AssigneeID == nil) {
		return ResolveResult{Message: MsgNoDefaultConfigured}, nil
	}
	if err != nil {
		return ResolveResult{}, err
	}

	if _, err := s.issues.SetAssignee(ctx, issue.ID, *da.AssigneeID); err != nil {
		return ResolveResult{}, issueErr(err)
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"issue_id":    issue.ID,
		"assignee_id": *da.AssigneeID,
	}).Info("issue auto-assigned")

	return ResolveResult{Assigned: true, AssigneeID: da.AssigneeID, Message: MsgAutoAssigned}, nil
}

func (s *AssigneeService) requireProject(ctx context.Context, projectID int64) error {
	ok, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	if !ok {
		return domain.ErrProjectNotFound
	}
	return nil
}

func issueErr(err error) error {
	if errors.Is(err, issues.ErrNotFound) {
		return domain.ErrIssueNotFound
	}
	return err
}
