package platform

import (
	"encoding/json"
	"fmt"
)

// Action is what a rule does when it matches.
type Action string

const (
	Allow    Action = "allow"
	Disallow Action = "disallow"
)

// UnmarshalJSON rejects actions other than allow and disallow.
func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("rule action: %w", err)
	}
	switch Action(s) {
	case Allow, Disallow:
		*a = Action(s)
		return nil
	default:
		return fmt.Errorf("unknown rule action %q", s)
	}
}

// OSFilter restricts a rule to an OS name and/or architecture.
type OSFilter struct {
	Name OSName `json:"name,omitempty"`
	Arch Arch   `json:"arch,omitempty"`
}

// Matches reports whether every field present in the filter equals the
// platform's.
func (f OSFilter) Matches(p Platform) bool {
	if f.Name != "" && f.Name != p.OS {
		return false
	}
	if f.Arch != "" && f.Arch != p.Arch {
		return false
	}
	return true
}

// Rule is a single allow/disallow condition from a descriptor.
type Rule struct {
	Action   Action          `json:"action"`
	OS       *OSFilter       `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

// MarshalJSON keeps an empty features map on the wire, since its presence
// alone changes Matches.
func (r Rule) MarshalJSON() ([]byte, error) {
	wire := struct {
		Action   Action           `json:"action"`
		OS       *OSFilter        `json:"os,omitempty"`
		Features *map[string]bool `json:"features,omitempty"`
	}{Action: r.Action, OS: r.OS}
	if r.Features != nil {
		wire.Features = &r.Features
	}
	return json.Marshal(wire)
}

// Matches reports whether the rule applies to p. Feature flags are not
// evaluated: a rule that declares any features map, even an empty one,
// never matches.
func (r Rule) Matches(p Platform) bool {
	if r.Features != nil {
		return false
	}
	return r.OS == nil || r.OS.Matches(p)
}

// Allowed applies the rule's action to Matches.
func (r Rule) Allowed(p Platform) bool {
	matched := r.Matches(p)
	if r.Action == Disallow {
		return !matched
	}
	return matched
}

// AllAllowed is the AND of every rule's Allowed. An empty list is allowed.
func AllAllowed(rules []Rule, p Platform) bool {
	for _, r := range rules {
		if !r.Allowed(p) {
			return false
		}
	}
	return true
}
