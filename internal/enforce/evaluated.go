package enforce

import "github.com/kennwilliamson/cherub/internal/proposal"

// EvaluatedProposal is the phase-tagged form of a Proposal that the
// enforcement facade has produced a Decision for. A tool's Execute
// contract (internal/tool) accepts only this type — never a bare
// proposal.Proposal — which makes it a compile error for any code
// outside this package to hand a tool something satisfying
// EvaluatedProposal, because (like Token) the interface carries an
// unexported method.
type EvaluatedProposal interface {
	sealed()

	// Proposal returns the underlying tool/action/argument/params data.
	Proposal() proposal.Proposal

	// Nonce returns the nonce this EvaluatedProposal was stamped with,
	// for a tool to compare against the Token it was handed.
	Nonce() [16]byte
}

type evaluatedProposal struct {
	p     proposal.Proposal
	nonce [16]byte
}

func (e *evaluatedProposal) sealed() {}

func (e *evaluatedProposal) Proposal() proposal.Proposal { return e.p }

func (e *evaluatedProposal) Nonce() [16]byte { return e.nonce }

// newEvaluated promotes a Proposal to EvaluatedProposal. Reachable only
// from within this package (facade.go, on the Allow path).
func newEvaluated(p proposal.Proposal, nonce [16]byte) EvaluatedProposal {
	return &evaluatedProposal{p: p, nonce: nonce}
}
