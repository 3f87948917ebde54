// Package export renders workflow definitions as portable YAML or JSON
// documents and reads them back.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
)

const (
	FormatYAML = "yaml"
	FormatJSON = "json"

	ContentTypeYAML = "application/x-yaml"
	ContentTypeJSON = "application/json"
)

// Document is the portable form of a workflow: no ids, no timestamps.
type Document struct {
	Name        string                   `json:"name" yaml:"name"`
	Description string                   `json:"description,omitempty" yaml:"description,omitempty"`
	Statuses    []string                 `json:"statuses" yaml:"statuses"`
	Transitions []domain.TransitionInput `json:"transitions" yaml:"transitions"`
}

func FromWorkflow(w *domain.Workflow) Document {
	doc := Document{
		Name:        w.Name,
		Statuses:    w.Statuses,
		Transitions: domain.ToInputs(w.Transitions),
	}
	if w.Description != nil {
		doc.Description = *w.Description
	}
	if doc.Statuses == nil {
		doc.Statuses = domain.DeriveStatuses(w.Transitions)
	}
	return doc
}

// Render encodes w in the requested format. An empty format means YAML.
func Render(w *domain.Workflow, format string) ([]byte, string, error) {
	doc := FromWorkflow(w)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatYAML, "yml":
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode yaml: %w", err)
		}
		return out, ContentTypeYAML, nil
	case FormatJSON:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode json: %w", err)
		}
		return out, ContentTypeJSON, nil
	default:
		return nil, "", domain.NewValidationError("format", fmt.Sprintf("unsupported export format %q", format))
	}
}

// Parse reads a document produced by Render. JSON input is accepted too,
// being valid YAML.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode workflow document: %w", err)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return nil, domain.NewValidationError("name", "workflow document has no name")
	}
	return &doc, nil
}
