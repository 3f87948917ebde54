package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/issues"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/logging"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
)

// TransitionService moves issues between statuses. A project with at least
// one workflow only allows moves along a workflow transition; a project
// without workflows accepts any status.
type TransitionService struct {
	workflows WorkflowStore
	issues    IssueStore
}

func NewTransitionService(workflows WorkflowStore, issues IssueStore) *TransitionService {
	return &TransitionService{workflows: workflows, issues: issues}
}

// AvailableTransitions lists transitions leaving the issue's current status
// across all of its project's workflows.
func (s *TransitionService) AvailableTransitions(ctx context.Context, issueID int64) ([]domain.Transition, error) {
	issue, flows, err := s.load(ctx, issueID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Transition, 0, 4)
	for _, w := range flows {
		for _, t := range w.Transitions {
			if t.From == issue.Status {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (s *TransitionService) TransitionIssue(ctx context.Context, issueID int64, toStatus string) (*issues.Issue, error) {
	toStatus = strings.TrimSpace(toStatus)
	if toStatus == "" {
		return nil, domain.NewValidationError("to_status", "to_status is required")
	}

	issue, flows, err := s.load(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue.Status == toStatus {
		return issue, nil
	}

	if len(flows) > 0 && !allowed(flows, issue.Status, toStatus) {
		return nil, fmt.Errorf("%w: %q -> %q", domain.ErrTransitionNotAllowed, issue.Status, toStatus)
	}

	updated, err := s.issues.SetStatus(ctx, issue.ID, toStatus)
	if err != nil {
		return nil, issueErr(err)
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"issue_id": issue.ID,
		"from":     issue.Status,
		"to":       toStatus,
	}).Info("issue transitioned")
	return updated, nil
}

func (s *TransitionService) load(ctx context.Context, issueID int64) (*issues.Issue, []domain.Workflow, error) {
	issue, err := s.issues.Get(ctx, issueID)
	if err != nil {
		return nil, nil, issueErr(err)
	}
	flows, err := s.workflows.List(ctx, domain.ListFilter{ProjectID: issue.ProjectID})
	if err != nil {
		return nil, nil, err
	}
	return issue, flows, nil
}

func allowed(flows []domain.Workflow, from, to string) bool {
	for _, w := range flows {
		for _, t := range w.Transitions {
			if t.From == from && t.To == to {
				return true
			}
		}
	}
	return false
}
