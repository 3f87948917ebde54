// Package templates holds the canned workflows offered when creating a new one.
package templates

import (
	"strings"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
)

// Template is a named, ready-to-apply workflow definition.
type Template struct {
	Name        string                   `json:"name" yaml:"name"`
	Description string                   `json:"description" yaml:"description"`
	Statuses    []string                 `json:"statuses" yaml:"statuses"`
	Transitions []domain.TransitionInput `json:"transitions" yaml:"transitions"`
}

func edge(from, to, name string) domain.TransitionInput {
	return domain.TransitionInput{From: from, To: to, Name: name}
}

var catalog = []Template{
	{
		Name:        "Simple",
		Description: "Basic three-step workflow",
		Statuses:    []string{"To Do", "In Progress", "Done"},
		Transitions: []domain.TransitionInput{
			edge("To Do", "In Progress", "Start Progress"),
			edge("In Progress", "Done", "Done"),
			edge("In Progress", "To Do", "Stop Progress"),
			edge("Done", "To Do", "Reopen"),
		},
	},
	{
		Name:        "Agile",
		Description: "Scrum style workflow with review",
		Statuses:    []string{"Backlog", "Selected for Development", "In Progress", "In Review", "Done"},
		Transitions: []domain.TransitionInput{
			edge("Backlog", "Selected for Development", "Select"),
			edge("Selected for Development", "In Progress", "Start Progress"),
			edge("In Progress", "In Review", "Submit for Review"),
			edge("In Review", "In Progress", "Request Changes"),
			edge("In Review", "Done", "Approve"),
			edge("Selected for Development", "Backlog", "Deselect"),
			edge("Done", "In Progress", "Reopen"),
		},
	},
	{
		Name:        "Bug Tracking",
		Description: "Workflow for reporting, fixing and verifying defects",
		Statuses:    []string{"Open", "In Progress", "Fixed", "Verified", "Closed", "Reopened"},
		Transitions: []domain.TransitionInput{
			edge("Open", "In Progress", "Start Fix"),
			edge("In Progress", "Fixed", "Resolve"),
			edge("Fixed", "Verified", "Verify"),
			edge("Fixed", "Reopened", "Fail Verification"),
			edge("Verified", "Closed", "Close"),
			edge("Closed", "Reopened", "Reopen"),
			edge("Reopened", "In Progress", "Start Fix"),
		},
	},
}

func (t Template) clone() Template {
	t.Statuses = append([]string(nil), t.Statuses...)
	t.Transitions = append([]domain.TransitionInput(nil), t.Transitions...)
	return t
}

// ListTemplates returns copies of every template; callers may mutate them freely.
func ListTemplates() []Template {
	out := make([]Template, len(catalog))
	for i, t := range catalog {
		out[i] = t.clone()
	}
	return out
}

// Find looks up a template by name, ignoring case and surrounding spaces.
func Find(name string) (Template, bool) {
	name = strings.TrimSpace(name)
	for _, t := range catalog {
		if strings.EqualFold(t.Name, name) {
			return t.clone(), true
		}
	}
	return Template{}, false
}

// ApplyTemplate returns the statuses and transitions of the named template.
// ok is false when nothing matches; callers treat that as a no-op.
func ApplyTemplate(name string) (statuses []string, transitions []domain.TransitionInput, ok bool) {
	t, ok := Find(name)
	if !ok {
		return nil, nil, false
	}
	return t.Statuses, t.Transitions, true
}
