package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/issues"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
)

type assigneeFixture struct {
	svc      *AssigneeService
	store    *MockAssigneeStore
	projects *MockDirectory
	users    *MockDirectory
	issues   *MockIssueStore
}

func newAssigneeFixture() *assigneeFixture {
	f := &assigneeFixture{
		store:    new(MockAssigneeStore),
		projects: new(MockDirectory),
		users:    new(MockDirectory),
		issues:   new(MockIssueStore),
	}
	f.svc = NewAssigneeService(f.store, f.projects, f.users, f.issues)
	return f
}

func int64p(v int64) *int64 { return &v }

func TestAssigneeService_Set_TriState(t *testing.T) {
	ctx := context.Background()

	t.Run("value sets", func(t *testing.T) {
		f := newAssigneeFixture()
		f.projects.On("Exists", ctx, int64(1)).Return(true, nil)
		f.users.On("Exists", ctx, int64(7)).Return(true, nil)
		f.store.On("Upsert", ctx, int64(1), "Bug", int64p(7), true).
			Return(&domain.DefaultAssignee{ProjectID: 1, IssueType: "Bug", AssigneeID: int64p(7)}, nil)

		da, err := f.svc.Set(ctx, SetDefaultAssigneeInput{ProjectID: 1, IssueType: " Bug ", AssigneeID: domain.OptionalID{Set: true, Value: int64p(7)}})
		require.NoError(t, err)
		assert.Equal(t, int64(7), *da.AssigneeID)
	})

	t.Run("explicit null clears", func(t *testing.T) {
		f := newAssigneeFixture()
		f.projects.On("Exists", ctx, int64(1)).Return(true, nil)
		f.store.On("Upsert", ctx, int64(1), "Bug", (*int64)(nil), true).
			Return(&domain.DefaultAssignee{ProjectID: 1, IssueType: "Bug"}, nil)

		da, err := f.svc.Set(ctx, SetDefaultAssigneeInput{ProjectID: 1, IssueType: "Bug", AssigneeID: domain.OptionalID{Set: true}})
		require.NoError(t, err)
		assert.Nil(t, da.AssigneeID)
		f.users.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	})

	t.Run("omitted keeps", func(t *testing.T) {
		f := newAssigneeFixture()
		f.projects.On("Exists", ctx, int64(1)).Return(true, nil)
		f.store.On("Upsert", ctx, int64(1), "Bug", (*int64)(nil), false).
			Return(&domain.DefaultAssignee{ProjectID: 1, IssueType: "Bug", AssigneeID: int64p(7)}, nil)

		da, err := f.svc.Set(ctx, SetDefaultAssigneeInput{ProjectID: 1, IssueType: "Bug"})
		require.NoError(t, err)
		assert.Equal(t, int64(7), *da.AssigneeID)
	})
}

func TestAssigneeService_Set_Errors(t *testing.T) {
	ctx := context.Background()

	f := newAssigneeFixture()
	_, err := f.svc.Set(ctx, SetDefaultAssigneeInput{IssueType: "Bug"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Set(ctx, SetDefaultAssigneeInput{ProjectID: 1, IssueType: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	f.projects.On("Exists", ctx, int64(2)).Return(false, nil)
	_, err = f.svc.Set(ctx, SetDefaultAssigneeInput{ProjectID: 2, IssueType: "Bug"})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	f.projects.On("Exists", ctx, int64(1)).Return(true, nil)
	f.users.On("Exists", ctx, int64(99)).Return(false, nil)
	_, err = f.svc.Set(ctx, SetDefaultAssigneeInput{ProjectID: 1, IssueType: "Bug", AssigneeID: domain.OptionalID{Set: true, Value: int64p(99)}})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	f.store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAssigneeService_List(t *testing.T) {
	ctx := context.Background()
	f := newAssigneeFixture()
	f.projects.On("Exists", ctx, int64(1)).Return(true, nil)
	f.store.On("ListByProject", ctx, int64(1)).Return([]domain.DefaultAssignee{{IssueType: "Bug"}}, nil)

	list, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.List(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAssigneeService_Resolve(t *testing.T) {
	ctx := context.Background()
	bug := &issues.Issue{ID: 11, ProjectID: 1, Type: "Bug", Status: "Open"}

	t.Run("assigns configured default", func(t *testing.T) {
		f := newAssigneeFixture()
		f.issues.On("Get", ctx, int64(11)).Return(bug, nil)
		f.store.On("Get", ctx, int64(1), "Bug").Return(&domain.DefaultAssignee{AssigneeID: int64p(7)}, nil)
		f.issues.On("SetAssignee", ctx, int64(11), int64(7)).Return(bug, nil)

		res, err := f.svc.Resolve(ctx, 11)
		require.NoError(t, err)
		assert.True(t, res.Assigned)
		assert.Equal(t, int64(7), *res.AssigneeID)
		assert.Equal(t, MsgAutoAssigned, res.Message)
		f.issues.AssertExpectations(t)
	})

	t.Run("no row is informational", func(t *testing.T) {
		f := newAssigneeFixture()
		f.issues.On("Get", ctx, int64(11)).Return(bug, nil)
		f.store.On("Get", ctx, int64(1), "Bug").Return(nil, domain.ErrDefaultAssigneeNotFound)

		res, err := f.svc.Resolve(ctx, 11)
		require.NoError(t, err)
		assert.False(t, res.Assigned)
		assert.Equal(t, MsgNoDefaultConfigured, res.Message)
		f.issues.AssertNotCalled(t, "SetAssignee", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("null assignee is informational", func(t *testing.T) {
		f := newAssigneeFixture()
		f.issues.On("Get", ctx, int64(11)).Return(bug, nil)
		f.store.On("Get", ctx, int64(1), "Bug").Return(&domain.DefaultAssignee{}, nil)

		res, err := f.svc.Resolve(ctx, 11)
		require.NoError(t, err)
		assert.False(t, res.Assigned)
		assert.Nil(t, res.AssigneeID)
	})

	t.Run("unknown issue", func(t *testing.T) {
		f := newAssigneeFixture()
		f.issues.On("Get", ctx, int64(404)).Return(nil, issues.ErrNotFound)

		_, err := f.svc.Resolve(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrIssueNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
