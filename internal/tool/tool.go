// Package tool implements the execution contract every tool exports: a
// tool's Execute function accepts only an EvaluatedProposal and the Token
// minted for it, which is the compile-time proof that no tool can run
// without a positive enforcement decision.
package tool

import (
	"context"
	"fmt"

	"github.com/kennwilliamson/cherub/internal/enforce"
)

// Output is a tool's successful result, returned verbatim to the agent.
type Output struct {
	Text string
}

// Error is a tool-internal failure — command exited non-zero, network
// error, timeout. These are *execution* errors surfaced to the agent as
// their literal text; unlike a Reject verdict, they are not constrained
// by policy opacity.
type Error struct {
	Tool   string
	Action string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Tool, e.Action, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Tool is the execution contract every registered tool implements.
type Tool interface {
	// Execute runs the action named by ep.Proposal().Action. Implementers
	// MUST call enforce.CheckNonce(ep, tok) before doing anything
	// observable — this is the tool-side half of the nonce invariant, and
	// it aborts the process on mismatch rather than returning an error,
	// since a mismatch can only mean a program bug.
	Execute(ctx context.Context, ep enforce.EvaluatedProposal, tok enforce.Token) (Output, error)
}

// Registry maps tool names to their Tool implementation.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool under the given name. Registering the same name
// twice replaces the prior registration.
func (r *Registry) Register(name string, t Tool) {
	r.tools[name] = t
}

// Dispatch routes an EvaluatedProposal to its registered Tool and runs it.
// An unregistered tool name is a *Error, not a panic — the enforcement
// core already guaranteed the proposal was authorized; a missing
// implementation is an operational gap, not a forged capability.
func (r *Registry) Dispatch(ctx context.Context, ep enforce.EvaluatedProposal, tok enforce.Token) (Output, error) {
	p := ep.Proposal()
	t, ok := r.tools[p.Tool]
	if !ok {
		return Output{}, &Error{Tool: p.Tool, Action: p.Action, Err: fmt.Errorf("no tool registered for %q", p.Tool)}
	}
	return t.Execute(ctx, ep, tok)
}
