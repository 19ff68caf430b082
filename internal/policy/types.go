// Package policy holds the operator-authored capability policy: the
// mapping from (tool, action) pairs to a Tier and the patterns that must
// match an action's argument for the rule to apply.
//
// A Policy is frozen once loaded. There is no setter API; hot-reload is
// implemented by loading a new Policy and swapping the shared pointer
// (see internal/enforce.Facade.Reload).
package policy

import "github.com/kennwilliamson/cherub/internal/tier"

// ActionRule is a single (tool, action) authorization rule: it fires when
// the action's argument matches at least one of its patterns, and resolves
// to its Tier.
type ActionRule struct {
	Tool     string
	Action   string
	Tier     tier.Tier
	Patterns []Pattern
}

// Matches reports whether any of the rule's patterns match argument, and
// if so the index of the first matching pattern (for DecisionRecord
// addressing). Multiple matching patterns within one rule are equivalent —
// they all resolve to the same tier — so only the first match is reported.
func (r ActionRule) Matches(argument string) (idx int, ok bool) {
	for i, p := range r.Patterns {
		if p.MatchString(argument) {
			return i, true
		}
	}
	return 0, false
}

// ToolEntry is the per-tool section of a policy: whether the tool is
// enabled at all, and the set of actions it exposes.
type ToolEntry struct {
	enabled bool
	actions map[string]ActionRule
}

// Enabled reports whether the tool is enabled. A disabled tool masks every
// action under it to Reject, regardless of its rules.
func (t ToolEntry) Enabled() bool { return t.enabled }

// Action looks up a single action rule by name.
func (t ToolEntry) Action(name string) (ActionRule, bool) {
	r, ok := t.actions[name]
	return r, ok
}

// Policy is a frozen Tool -> ToolEntry mapping. The zero Policy is valid
// and denies every proposal (the "no policy configured" default posture).
type Policy struct {
	tools map[string]ToolEntry
}

// Empty returns the default deny-all policy.
func Empty() *Policy {
	return &Policy{tools: map[string]ToolEntry{}}
}

// Tool looks up a tool's entry by exact-match name.
func (p *Policy) Tool(name string) (ToolEntry, bool) {
	if p == nil || p.tools == nil {
		return ToolEntry{}, false
	}
	e, ok := p.tools[name]
	return e, ok
}

// ToolNames returns the policy's tool names, for admin/debug listing. The
// returned slice is a defensive copy; mutating it does not affect the
// frozen policy.
func (p *Policy) ToolNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.tools))
	for name := range p.tools {
		names = append(names, name)
	}
	return names
}
