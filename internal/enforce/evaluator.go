package enforce

import (
	"strings"

	"github.com/kennwilliamson/cherub/internal/policy"
	"github.com/kennwilliamson/cherub/internal/proposal"
	"github.com/kennwilliamson/cherub/internal/tier"
)

// matchResult is the evaluator's internal verdict, before the facade mints
// a token or opens an approval gate. The evaluator itself never touches a
// Token or EvaluatedProposal — those are facade concerns.
type matchResult struct {
	verdict    Verdict
	rule       *policy.ActionRule
	patternIdx int
}

// evaluate is the pure, deterministic, total, synchronous matching core.
// It is unexported: the facade's Enforce method is the only exported path
// that reaches it, which is what makes the facade "the sole call site" in
// practice even though the pure matching logic lives here.
func evaluate(p proposal.Proposal, pol *policy.Policy) matchResult {
	toolEntry, ok := pol.Tool(p.Tool)
	if !ok || !toolEntry.Enabled() {
		return matchResult{verdict: VerdictReject}
	}

	rule, ok := toolEntry.Action(p.Action)
	if !ok {
		return matchResult{verdict: VerdictReject}
	}

	argument := extractArgument(p.Argument)
	if isBlank(argument) || isAllNUL(argument) {
		return matchResult{verdict: VerdictReject}
	}

	idx, matched := rule.Matches(argument)
	if !matched {
		return matchResult{verdict: VerdictReject}
	}

	switch rule.Tier {
	case tier.Observe, tier.Act:
		return matchResult{verdict: VerdictAllow, rule: &rule, patternIdx: idx}
	case tier.Commit:
		return matchResult{verdict: VerdictEscalate, rule: &rule, patternIdx: idx}
	default:
		// Unreachable: the loader only ever produces the three known
		// tiers. A fourth would be an internal invariant violation.
		return matchResult{verdict: VerdictReject}
	}
}

// extractArgument trims leading whitespace. Patterns are matched against
// this raw text, not a shell-parsed form — the policy author owns the
// shape of their anchors.
func extractArgument(s string) string {
	return strings.TrimLeft(s, " \t\n\r\v\f")
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func isAllNUL(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != 0 {
			return false
		}
	}
	return true
}
