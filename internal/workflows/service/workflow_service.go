package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/logging"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/export"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/validator"
)

type CreateWorkflowInput struct {
	Name        string
	Description *string
	ProjectID   int64
	// Statuses may be nil, in which case they are derived from Transitions.
	Statuses    []string
	Transitions []domain.TransitionInput
}

// UpdateWorkflowInput carries only the fields to change. Nil Transitions
// keeps the stored set and nil Statuses derives them from the merged result.
type UpdateWorkflowInput struct {
	Name        *string
	Description *string
	Statuses    []string
	Transitions []domain.TransitionInput
}

const cacheTimeout = 2 * time.Second

type WorkflowService struct {
	store    WorkflowStore
	projects Directory
	cache    WorkflowCache
}

func NewWorkflowService(store WorkflowStore, projects Directory) *WorkflowService {
	return &WorkflowService{store: store, projects: projects}
}

// WithCache enables list caching and change events.
func (s *WorkflowService) WithCache(cache WorkflowCache) *WorkflowService {
	s.cache = cache
	return s
}

// Create validates and stores a workflow. The returned warnings are
// structural hints that did not block the write.
func (s *WorkflowService) Create(ctx context.Context, in CreateWorkflowInput) (*domain.Workflow, []string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, domain.NewValidationError("name", "name is required")
	}
	if in.ProjectID <= 0 {
		return nil, nil, domain.NewValidationError("project_id", "project_id is required")
	}
	if len(in.Transitions) == 0 {
		return nil, nil, domain.NewValidationError("transitions", validator.MsgEmptyTransitionSet)
	}
	if err := checkLabels(in.Transitions); err != nil {
		return nil, nil, err
	}

	statuses := in.Statuses
	if statuses == nil {
		statuses = domain.DeriveInputStatuses(in.Transitions)
	}
	warnings, err := validate(ctx, statuses, in.Transitions)
	if err != nil {
		return nil, nil, err
	}

	ok, err := s.projects.Exists(ctx, in.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check project: %w", err)
	}
	if !ok {
		return nil, nil, domain.ErrProjectNotFound
	}

	w, err := s.store.Create(ctx, &domain.Workflow{
		Name:        name,
		Description: in.Description,
		ProjectID:   in.ProjectID,
		Transitions: domain.FromInputs(in.Transitions),
	})
	if err != nil {
		return nil, nil, err
	}

	s.changed(ctx, w.ID, w.ProjectID, domain.ActionCreated)
	return w, warnings, nil
}

func (s *WorkflowService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Workflow, error) {
	log := logging.FromContext(ctx)

	fill := false
	var gen int64
	if s.cache != nil {
		list, hit, err := s.cache.GetList(ctx, filter)
		if err != nil {
			log.WithError(err).Warn("workflow cache read failed")
		} else if hit {
			return list, nil
		}

		if gen, err = s.cache.Generation(ctx); err != nil {
			log.WithError(err).Warn("workflow cache generation read failed")
		} else {
			fill = true
		}
	}

	list, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if fill {
		if err := s.cache.SetList(ctx, filter, gen, list); err != nil {
			log.WithError(err).Warn("workflow cache write failed")
		}
	}
	return list, nil
}

func (s *WorkflowService) Get(ctx context.Context, id int64) (*domain.Workflow, error) {
	return s.store.Get(ctx, id)
}

// Update merges in with the stored workflow, revalidates the merged
// definition and replaces the transitions in one transaction when given.
func (s *WorkflowService) Update(ctx context.Context, id int64, in UpdateWorkflowInput) (*domain.Workflow, []string, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	next := *current
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, nil, domain.NewValidationError("name", "name must not be blank")
		}
		next.Name = name
	}
	if in.Description != nil {
		next.Description = in.Description
	}

	proposed := domain.ToInputs(current.Transitions)
	replace := in.Transitions != nil
	if replace {
		if len(in.Transitions) == 0 {
			return nil, nil, domain.NewValidationError("transitions", validator.MsgEmptyTransitionSet)
		}
		if err := checkLabels(in.Transitions); err != nil {
			return nil, nil, err
		}
		proposed = in.Transitions
	}

	statuses := in.Statuses
	if statuses == nil {
		statuses = domain.DeriveInputStatuses(proposed)
	}
	warnings, err := validate(ctx, statuses, proposed)
	if err != nil {
		return nil, nil, err
	}

	if replace {
		next.Transitions = domain.FromInputs(proposed)
	}
	updated, err := s.store.Update(ctx, &next, replace)
	if err != nil {
		return nil, nil, err
	}

	s.changed(ctx, updated.ID, updated.ProjectID, domain.ActionUpdated)
	return updated, warnings, nil
}

func (s *WorkflowService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, id, 0, domain.ActionDeleted)
	return nil
}

// Export renders the workflow as a portable document.
func (s *WorkflowService) Export(ctx context.Context, id int64, format string) ([]byte, string, error) {
	w, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return export.Render(w, format)
}

// changed drops cached listings and announces the change. Both are best effort.
func (s *WorkflowService) changed(ctx context.Context, workflowID, projectID int64, action string) {
	if s.cache == nil {
		return
	}
	log := logging.FromContext(ctx).WithField("workflow_id", workflowID)

	// the write is committed; a client hanging up must not skip invalidation
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
	defer cancel()

	if err := s.cache.Invalidate(ctx); err != nil {
		log.WithError(err).Warn("workflow cache invalidation failed")
	}
	ev := domain.WorkflowEvent{WorkflowID: workflowID, ProjectID: projectID, Action: action, At: time.Now().UTC()}
	if err := s.cache.Publish(ctx, ev); err != nil {
		log.WithError(err).Warn("workflow event publish failed")
	}
}

func validate(ctx context.Context, statuses []string, transitions []domain.TransitionInput) ([]string, error) {
	res := validator.Validate(statuses, transitions)
	if !res.IsValid {
		return nil, &domain.StructureError{Errors: res.Errors}
	}
	if len(res.Warnings) > 0 {
		logging.FromContext(ctx).WithField("warnings", res.Warnings).Info("workflow accepted with warnings")
	}
	return res.Warnings, nil
}

func checkLabels(transitions []domain.TransitionInput) error {
	for i, t := range transitions {
		if strings.TrimSpace(t.From) == "" {
			field := fmt.Sprintf("transitions[%d].from", i)
			return domain.NewValidationError(field, field+" must not be blank")
		}
		if strings.TrimSpace(t.To) == "" {
			field := fmt.Sprintf("transitions[%d].to", i)
			return domain.NewValidationError(field, field+" must not be blank")
		}
	}
	return nil
}
