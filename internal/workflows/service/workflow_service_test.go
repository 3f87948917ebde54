package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/export"
)

func tr(from, to string) domain.TransitionInput {
	return domain.TransitionInput{From: from, To: to}
}

// persisted mimics the repository: ids assigned, statuses derived.
func persisted(w *domain.Workflow, id int64) *domain.Workflow {
	out := *w
	out.ID = id
	out.Transitions = append([]domain.Transition(nil), w.Transitions...)
	for i := range out.Transitions {
		out.Transitions[i].ID = int64(i + 1)
		out.Transitions[i].WorkflowID = id
	}
	out.Statuses = domain.DeriveStatuses(out.Transitions)
	return &out
}

func newWorkflowService() (*WorkflowService, *MockWorkflowStore, *MockDirectory) {
	store := new(MockWorkflowStore)
	projects := new(MockDirectory)
	return NewWorkflowService(store, projects), store, projects
}

func TestWorkflowService_Create(t *testing.T) {
	svc, store, projects := newWorkflowService()
	ctx := context.Background()

	projects.On("Exists", ctx, int64(1)).Return(true, nil)
	store.On("Create", ctx, mock.MatchedBy(func(w *domain.Workflow) bool {
		return w.Name == "Bug Flow" && len(w.Transitions) == 1 && w.Transitions[0].Name == "Fix"
	})).Return(func(_ context.Context, w *domain.Workflow) *domain.Workflow { return persisted(w, 10) }, nil)

	w, warnings, err := svc.Create(ctx, CreateWorkflowInput{
		Name:        "  Bug Flow ",
		ProjectID:   1,
		Statuses:    []string{"Open", "Fixed"},
		Transitions: []domain.TransitionInput{{From: "Open", To: "Fixed", Name: "Fix"}},
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, w.Transitions, 1)
	assert.Equal(t, "Open", w.Transitions[0].From)
	assert.Equal(t, "Fixed", w.Transitions[0].To)
	store.AssertExpectations(t)
}

func TestWorkflowService_Create_UnknownStatus(t *testing.T) {
	svc, store, _ := newWorkflowService()

	_, _, err := svc.Create(context.Background(), CreateWorkflowInput{
		Name:        "Flow",
		ProjectID:   1,
		Statuses:    []string{"Open"},
		Transitions: []domain.TransitionInput{tr("Open", "Closed")},
	})

	var se *domain.StructureError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, domain.ErrWorkflowStructureInvalid)
	require.Len(t, se.Errors, 1)
	assert.Contains(t, se.Errors[0], "Closed")
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWorkflowService_Create_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    CreateWorkflowInput
		field string
	}{
		{"blank name", CreateWorkflowInput{Name: " ", ProjectID: 1, Transitions: []domain.TransitionInput{tr("A", "B")}}, "name"},
		{"missing project", CreateWorkflowInput{Name: "x", Transitions: []domain.TransitionInput{tr("A", "B")}}, "project_id"},
		{"no transitions", CreateWorkflowInput{Name: "x", ProjectID: 1}, "transitions"},
		{"blank endpoint", CreateWorkflowInput{Name: "x", ProjectID: 1, Transitions: []domain.TransitionInput{tr("A", "B"), tr("B", " ")}}, "transitions[1].to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newWorkflowService()
			_, _, err := svc.Create(context.Background(), tt.in)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestWorkflowService_Create_DerivesStatusesWhenOmitted(t *testing.T) {
	svc, store, projects := newWorkflowService()
	ctx := context.Background()

	projects.On("Exists", ctx, int64(1)).Return(true, nil)
	store.On("Create", ctx, mock.Anything).
		Return(func(_ context.Context, w *domain.Workflow) *domain.Workflow { return persisted(w, 1) }, nil)

	w, _, err := svc.Create(ctx, CreateWorkflowInput{
		Name:        "Flow",
		ProjectID:   1,
		Transitions: []domain.TransitionInput{tr("In Progress", "Done"), tr("To Do", "In Progress")},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"To Do", "In Progress", "Done"}, w.Statuses)
	assert.Equal(t, "In Progress to Done", w.Transitions[0].Name)
}

func TestWorkflowService_Create_ExplicitEmptyStatuses(t *testing.T) {
	svc, _, _ := newWorkflowService()

	_, _, err := svc.Create(context.Background(), CreateWorkflowInput{
		Name: "Flow", ProjectID: 1, Statuses: []string{}, Transitions: []domain.TransitionInput{tr("A", "B")},
	})
	assert.ErrorIs(t, err, domain.ErrWorkflowStructureInvalid)
}

func TestWorkflowService_Create_ProjectMissing(t *testing.T) {
	svc, _, projects := newWorkflowService()
	ctx := context.Background()
	projects.On("Exists", ctx, int64(5)).Return(false, nil)

	_, _, err := svc.Create(ctx, CreateWorkflowInput{Name: "x", ProjectID: 5, Transitions: []domain.TransitionInput{tr("A", "B")}})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkflowService_Create_ReturnsWarnings(t *testing.T) {
	svc, store, projects := newWorkflowService()
	ctx := context.Background()
	projects.On("Exists", ctx, int64(1)).Return(true, nil)
	store.On("Create", ctx, mock.Anything).
		Return(func(_ context.Context, w *domain.Workflow) *domain.Workflow { return persisted(w, 1) }, nil)

	_, warnings, err := svc.Create(ctx, CreateWorkflowInput{
		Name: "x", ProjectID: 1,
		Statuses:    []string{"A", "B", "Island"},
		Transitions: []domain.TransitionInput{tr("A", "B")},
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Island")
}

func TestWorkflowService_Update_ReplacesTransitions(t *testing.T) {
	svc, store, _ := newWorkflowService()
	ctx := context.Background()

	current := persisted(&domain.Workflow{
		Name: "Flow", ProjectID: 1,
		Transitions: domain.FromInputs([]domain.TransitionInput{tr("Open", "Done")}),
	}, 3)
	store.On("Get", ctx, int64(3)).Return(current, nil)
	store.On("Update", ctx, mock.MatchedBy(func(w *domain.Workflow) bool {
		return w.ID == 3 && w.Name == "Flow" && len(w.Transitions) == 2
	}), true).Return(func(_ context.Context, w *domain.Workflow, _ bool) *domain.Workflow { return persisted(w, 3) }, nil)

	next := []domain.TransitionInput{tr("Open", "Review"), tr("Review", "Done")}
	for i := 0; i < 2; i++ {
		w, _, err := svc.Update(ctx, 3, UpdateWorkflowInput{Transitions: next})
		require.NoError(t, err)
		assert.Equal(t, []string{"Open", "Review", "Done"}, w.Statuses)
	}
	store.AssertNumberOfCalls(t, "Update", 2)
}

func TestWorkflowService_Update_RenameKeepsTransitions(t *testing.T) {
	svc, store, _ := newWorkflowService()
	ctx := context.Background()

	current := persisted(&domain.Workflow{
		Name: "Flow", ProjectID: 1,
		Transitions: domain.FromInputs([]domain.TransitionInput{tr("Open", "Done")}),
	}, 3)
	store.On("Get", ctx, int64(3)).Return(current, nil)
	store.On("Update", ctx, mock.MatchedBy(func(w *domain.Workflow) bool { return w.Name == "Renamed" }), false).
		Return(func(_ context.Context, w *domain.Workflow, _ bool) *domain.Workflow { return persisted(w, 3) }, nil)

	name := "Renamed"
	w, _, err := svc.Update(ctx, 3, UpdateWorkflowInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", w.Name)
	assert.Len(t, w.Transitions, 1)
}

func TestWorkflowService_Update_Invalid(t *testing.T) {
	svc, store, _ := newWorkflowService()
	ctx := context.Background()

	current := persisted(&domain.Workflow{
		Name: "Flow", ProjectID: 1,
		Transitions: domain.FromInputs([]domain.TransitionInput{tr("Open", "Done")}),
	}, 3)
	store.On("Get", ctx, int64(3)).Return(current, nil)
	store.On("Get", ctx, int64(4)).Return(nil, domain.ErrWorkflowNotFound)

	blank := "  "
	_, _, err := svc.Update(ctx, 3, UpdateWorkflowInput{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = svc.Update(ctx, 3, UpdateWorkflowInput{Statuses: []string{"Open"}})
	assert.ErrorIs(t, err, domain.ErrWorkflowStructureInvalid, "stored transitions are revalidated against new statuses")

	_, _, err = svc.Update(ctx, 3, UpdateWorkflowInput{Transitions: []domain.TransitionInput{}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = svc.Update(ctx, 4, UpdateWorkflowInput{})
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)

	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflowService_Delete(t *testing.T) {
	svc, store, _ := newWorkflowService()
	ctx := context.Background()

	store.On("Delete", ctx, int64(1)).Return(nil)
	store.On("Delete", ctx, int64(2)).Return(domain.ErrWorkflowNotFound)

	assert.NoError(t, svc.Delete(ctx, 1))
	assert.ErrorIs(t, svc.Delete(ctx, 2), domain.ErrNotFound)
}

func TestWorkflowService_Export(t *testing.T) {
	svc, store, _ := newWorkflowService()
	ctx := context.Background()

	w := persisted(&domain.Workflow{Name: "Flow", ProjectID: 1, Transitions: domain.FromInputs([]domain.TransitionInput{tr("A", "B")})}, 1)
	store.On("Get", ctx, int64(1)).Return(w, nil)

	out, ct, err := svc.Export(ctx, 1, "json")
	require.NoError(t, err)
	assert.Equal(t, export.ContentTypeJSON, ct)
	assert.Contains(t, string(out), `"name": "Flow"`)
}

func TestWorkflowService_ListUsesCache(t *testing.T) {
	svc, store, _ := newWorkflowService()
	cache := new(MockCache)
	svc.WithCache(cache)
	ctx := context.Background()

	all := domain.ListFilter{}
	byProject := domain.ListFilter{ProjectID: 2}
	cached := []domain.Workflow{{ID: 1, Name: "cached"}}
	fresh := []domain.Workflow{{ID: 2, Name: "fresh"}}

	cache.On("GetList", ctx, all).Return(cached, true, nil)
	cache.On("GetList", ctx, byProject).Return(nil, false, nil)
	cache.On("Generation", ctx).Return(int64(4), nil)
	store.On("List", ctx, byProject).Return(fresh, nil)
	cache.On("SetList", ctx, byProject, int64(4), fresh).Return(nil)

	got, err := svc.List(ctx, all)
	require.NoError(t, err)
	assert.Equal(t, "cached", got[0].Name)

	got, err = svc.List(ctx, byProject)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got[0].Name)

	store.AssertNotCalled(t, "List", ctx, all)
	cache.AssertExpectations(t)
}

func TestWorkflowService_ListSurvivesCacheFailure(t *testing.T) {
	svc, store, _ := newWorkflowService()
	cache := new(MockCache)
	svc.WithCache(cache)
	ctx := context.Background()

	cache.On("GetList", ctx, domain.ListFilter{}).Return(nil, false, errors.New("redis down"))
	store.On("List", ctx, domain.ListFilter{}).Return([]domain.Workflow{}, nil)
	cache.On("Generation", ctx).Return(int64(0), errors.New("redis down"))

	got, err := svc.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	cache.AssertNotCalled(t, "SetList", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflowService_MutationsInvalidateAndPublish(t *testing.T) {
	svc, store, _ := newWorkflowService()
	cache := new(MockCache)
	svc.WithCache(cache)
	ctx := context.Background()

	store.On("Delete", ctx, int64(8)).Return(nil)
	cache.On("Invalidate", mock.Anything).Return(nil)
	cache.On("Publish", mock.Anything, mock.MatchedBy(func(ev domain.WorkflowEvent) bool {
		return ev.WorkflowID == 8 && ev.Action == domain.ActionDeleted && !ev.At.IsZero()
	})).Return(errors.New("publish failed"))

	assert.NoError(t, svc.Delete(ctx, 8), "event failures do not fail the mutation")
	cache.AssertExpectations(t)
}
