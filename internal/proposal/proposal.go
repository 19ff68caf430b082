// Package proposal defines the typed representation of a model-emitted
// tool call before enforcement has seen it. A Proposal is cheap, freely
// constructible data — it carries no proof of authorization. The
// enforcement facade (internal/enforce) is the only component that may
// promote one into an evaluated, executable form.
package proposal

// Proposal is a model-emitted tool call as parsed from the provider's
// structured tool-use reply. It dies with the turn that produced it.
type Proposal struct {
	Tool     string
	Action   string
	Argument string
	Params   any
}

// New constructs a Proposal. Any component upstream of the enforcement
// facade — the agent loop's parser, tests, fixtures — may call this
// freely; doing so confers no authorization.
func New(tool, action, argument string, params any) Proposal {
	return Proposal{Tool: tool, Action: action, Argument: argument, Params: params}
}
