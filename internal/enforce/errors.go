package enforce

import (
	"fmt"
)

// CheckNonce is the tool-side half of the nonce invariant: a tool MUST
// verify that the token it was handed is bound to the EvaluatedProposal it
// was handed. A mismatch — or a nil token, the one case the type system
// can't rule out at compile time — is a programmer error, not a policy
// outcome, and aborts the process with a diagnostic the agent never sees.
func CheckNonce(ep EvaluatedProposal, tok Token) {
	if ep == nil {
		panic("enforce: nil EvaluatedProposal presented to tool execution")
	}
	if tok == nil {
		panic("enforce: nil Token presented to tool execution")
	}
	if ep.Nonce() != tok.Nonce() {
		panic(fmt.Sprintf("enforce: capability token nonce mismatch for %s.%s", ep.Proposal().Tool, ep.Proposal().Action))
	}
	if !tok.Redeem() {
		panic(fmt.Sprintf("enforce: capability token for %s.%s presented more than once", ep.Proposal().Tool, ep.Proposal().Action))
	}
}
