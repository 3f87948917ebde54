package domain

// DeriveStatuses returns the union of transition endpoints in first-seen
// order, from before to, walking transitions in order.
func DeriveStatuses(transitions []Transition) []string {
	seen := make(map[string]struct{}, len(transitions)*2)
	out := make([]string, 0, len(transitions)*2)
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, t := range transitions {
		add(t.From)
		add(t.To)
	}
	return out
}

// DeriveInputStatuses is DeriveStatuses for unsaved transitions.
func DeriveInputStatuses(transitions []TransitionInput) []string {
	edges := make([]Transition, len(transitions))
	for i, t := range transitions {
		edges[i] = Transition{From: t.From, To: t.To}
	}
	return DeriveStatuses(edges)
}

// ToInputs converts persisted transitions back into proposals, used when an
// update keeps the stored edges and only revalidates them.
func ToInputs(transitions []Transition) []TransitionInput {
	out := make([]TransitionInput, len(transitions))
	for i, t := range transitions {
		out[i] = TransitionInput{From: t.From, To: t.To, Name: t.Name}
	}
	return out
}

// FromInputs builds unsaved transitions, naming unnamed ones "{from} to {to}".
func FromInputs(inputs []TransitionInput) []Transition {
	out := make([]Transition, len(inputs))
	for i, in := range inputs {
		name := in.Name
		if name == "" {
			name = DisplayName(in.From, in.To)
		}
		out[i] = Transition{From: in.From, To: in.To, Name: name}
	}
	return out
}
