// Package validator checks that a workflow's transitions only reference
// statuses the workflow declares. It performs no I/O.
package validator

import (
	"fmt"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
)

const (
	MsgEmptyStatusSet     = "at least one status is required"
	MsgEmptyTransitionSet = "at least one transition is required"
)

// Result is the outcome of Validate. Warnings never affect IsValid.
type Result struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

// Validate collects every violation instead of stopping at the first one.
func Validate(statuses []string, transitions []domain.TransitionInput) Result {
	res := Result{Errors: []string{}}

	known := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		known[s] = struct{}{}
	}

	if len(statuses) == 0 {
		res.Errors = append(res.Errors, MsgEmptyStatusSet)
	}
	if len(transitions) == 0 {
		res.Errors = append(res.Errors, MsgEmptyTransitionSet)
	}

	for _, t := range transitions {
		if _, ok := known[t.From]; !ok {
			res.Errors = append(res.Errors, unknownRef(t, t.From))
		}
		// a self-loop on an unknown status is reported once
		if t.To == t.From {
			continue
		}
		if _, ok := known[t.To]; !ok {
			res.Errors = append(res.Errors, unknownRef(t, t.To))
		}
	}

	res.IsValid = len(res.Errors) == 0
	res.Warnings = warnings(statuses, transitions)
	return res
}

func unknownRef(t domain.TransitionInput, status string) string {
	return fmt.Sprintf("transition %q -> %q references unknown status %q", t.From, t.To, status)
}

func warnings(statuses []string, transitions []domain.TransitionInput) []string {
	var out []string

	type edge struct{ from, to string }
	seen := make(map[edge]struct{}, len(transitions))
	for _, t := range transitions {
		e := edge{t.From, t.To}
		if _, dup := seen[e]; dup {
			out = append(out, fmt.Sprintf("duplicate transition %q -> %q", t.From, t.To))
			continue
		}
		seen[e] = struct{}{}
		if t.From == t.To {
			out = append(out, fmt.Sprintf("transition %q -> %q is a self-loop", t.From, t.To))
		}
	}

	for _, s := range Unreachable(statuses, transitions) {
		out = append(out, fmt.Sprintf("status %q is not reachable from %q", s, statuses[0]))
	}
	return out
}

// Unreachable lists the statuses that cannot be reached from statuses[0]
// by following transitions, in declaration order.
func Unreachable(statuses []string, transitions []domain.TransitionInput) []string {
	if len(statuses) == 0 {
		return nil
	}

	next := make(map[string][]string, len(statuses))
	for _, t := range transitions {
		next[t.From] = append(next[t.From], t.To)
	}

	visited := map[string]bool{statuses[0]: true}
	queue := []string{statuses[0]}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range next[cur] {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}

	var out []string
	reported := make(map[string]bool)
	for _, s := range statuses {
		if !visited[s] && !reported[s] {
			reported[s] = true
			out = append(out, s)
		}
	}
	return out
}
