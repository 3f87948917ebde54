package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Workflow is a per-project state machine over free-text issue statuses.
// Statuses are not stored; they are derived from the transition endpoints.
type Workflow struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	ProjectID   int64           `json:"project_id"`
	Project     *ProjectSummary `json:"project,omitempty"`
	Statuses    []string        `json:"statuses"`
	Transitions []Transition    `json:"transitions"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProjectSummary is the owning project as shown alongside a workflow.
type ProjectSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Transition is a persisted edge of a workflow.
type Transition struct {
	ID         int64  `json:"id,omitempty"`
	WorkflowID int64  `json:"workflow_id,omitempty"`
	From       string `json:"from"`
	To         string `json:"to"`
	Name       string `json:"name"`
}

// TransitionInput is a proposed edge, before it is persisted.
type TransitionInput struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// DisplayName is the name given to a transition that was not named explicitly.
func DisplayName(from, to string) string {
	return fmt.Sprintf("%s to %s", from, to)
}

// DefaultAssignee is the assignee used for new issues of one type in one project.
type DefaultAssignee struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	IssueType  string    `json:"issue_type"`
	AssigneeID *int64    `json:"assignee_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OptionalID distinguishes an omitted JSON field from an explicit null.
type OptionalID struct {
	Set   bool
	Value *int64
}

// UnmarshalJSON is only invoked when the key is present, null included.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("assignee_id must be an integer or null: %w", err)
	}
	o.Value = &v
	return nil
}

// ListFilter narrows a workflow listing. A zero ProjectID lists everything.
type ListFilter struct {
	ProjectID int64
}

// Event actions published when a workflow changes.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// WorkflowEvent is published on every workflow mutation.
type WorkflowEvent struct {
	ID         string    `json:"id"`
	WorkflowID int64     `json:"workflow_id"`
	ProjectID  int64     `json:"project_id,omitempty"`
	Action     string    `json:"action"`
	At         time.Time `json:"at"`
}

// IntegrityReport is the outcome of a storage consistency sweep.
type IntegrityReport struct {
	OrphanTransitions       int64 `json:"orphan_transitions"`
	WorkflowsWithoutEdges   int64 `json:"workflows_without_transitions"`
	DefaultAssigneesOrphans int64 `json:"default_assignee_orphans"`
}

// Healthy reports whether the sweep found nothing to flag.
func (r IntegrityReport) Healthy() bool {
	return r.OrphanTransitions == 0 && r.WorkflowsWithoutEdges == 0 && r.DefaultAssigneesOrphans == 0
}
