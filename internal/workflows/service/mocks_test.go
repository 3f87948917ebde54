package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/issues"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
)

type MockWorkflowStore struct {
	mock.Mock
}

func (m *MockWorkflowStore) Create(ctx context.Context, w *domain.Workflow) (*domain.Workflow, error) {
	args := m.Called(ctx, w)
	if fn, ok := args.Get(0).(func(context.Context, *domain.Workflow) *domain.Workflow); ok {
		return fn(ctx, w), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workflow), args.Error(1)
}

func (m *MockWorkflowStore) List(ctx context.Context, filter domain.ListFilter) ([]domain.Workflow, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Workflow), args.Error(1)
}

func (m *MockWorkflowStore) Get(ctx context.Context, id int64) (*domain.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workflow), args.Error(1)
}

func (m *MockWorkflowStore) Update(ctx context.Context, w *domain.Workflow, replace bool) (*domain.Workflow, error) {
	args := m.Called(ctx, w, replace)
	if fn, ok := args.Get(0).(func(context.Context, *domain.Workflow, bool) *domain.Workflow); ok {
		return fn(ctx, w, replace), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workflow), args.Error(1)
}

func (m *MockWorkflowStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockAssigneeStore struct {
	mock.Mock
}

func (m *MockAssigneeStore) Upsert(ctx context.Context, projectID int64, issueType string, assigneeID *int64, set bool) (*domain.DefaultAssignee, error) {
	args := m.Called(ctx, projectID, issueType, assigneeID, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DefaultAssignee), args.Error(1)
}

func (m *MockAssigneeStore) ListByProject(ctx context.Context, projectID int64) ([]domain.DefaultAssignee, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DefaultAssignee), args.Error(1)
}

func (m *MockAssigneeStore) Get(ctx context.Context, projectID int64, issueType string) (*domain.DefaultAssignee, error) {
	args := m.Called(ctx, projectID, issueType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DefaultAssignee), args.Error(1)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockIssueStore struct {
	mock.Mock
}

func (m *MockIssueStore) Get(ctx context.Context, id int64) (*issues.Issue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*issues.Issue), args.Error(1)
}

func (m *MockIssueStore) SetAssignee(ctx context.Context, id int64, assigneeID int64) (*issues.Issue, error) {
	args := m.Called(ctx, id, assigneeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*issues.Issue), args.Error(1)
}

func (m *MockIssueStore) SetStatus(ctx context.Context, id int64, status string) (*issues.Issue, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*issues.Issue), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetList(ctx context.Context, filter domain.ListFilter) ([]domain.Workflow, bool, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]domain.Workflow)
	return list, args.Bool(1), args.Error(2)
}

func (m *MockCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) SetList(ctx context.Context, filter domain.ListFilter, gen int64, list []domain.Workflow) error {
	return m.Called(ctx, filter, gen, list).Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCache) Publish(ctx context.Context, ev domain.WorkflowEvent) error {
	return m.Called(ctx, ev).Error(0)
}
