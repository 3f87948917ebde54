package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation               = errors.New("validation error")
	ErrWorkflowStructureInvalid = errors.New("workflow structure invalid")
	ErrNotFound                 = errors.New("not found")
	ErrTransitionNotAllowed     = errors.New("transition not allowed")

	ErrWorkflowNotFound        = fmt.Errorf("workflow %w", ErrNotFound)
	ErrProjectNotFound         = fmt.Errorf("project %w", ErrNotFound)
	ErrIssueNotFound           = fmt.Errorf("issue %w", ErrNotFound)
	ErrUserNotFound            = fmt.Errorf("user %w", ErrNotFound)
	ErrDefaultAssigneeNotFound = fmt.Errorf("default assignee %w", ErrNotFound)
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StructureError carries every message produced by the transition validator.
type StructureError struct {
	Errors []string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s: %s", ErrWorkflowStructureInvalid, strings.Join(e.Errors, "; "))
}

func (e *StructureError) Is(target error) bool {
	return target == ErrWorkflowStructureInvalid
}
