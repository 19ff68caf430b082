// Package tier defines the three-level capability lattice that every
// ActionRule in a policy is labeled with.
package tier

// Tier is a capability severity level. The ordering Observe < Act < Commit
// is used only for reasoning about severity; the evaluator never promotes
// a matched rule's tier.
type Tier int

const (
	// Observe denotes a read-only, negligible-consequence action. It is
	// the implicit default for any action not covered by policy (which
	// still resolves to Reject, not Observe — deny-by-default wins).
	Observe Tier = iota
	// Act denotes a reversible state change.
	Act
	// Commit denotes an irreversible or high-consequence change that
	// requires human approval before execution.
	Commit
)

// String returns the lowercase policy-file spelling of the tier.
func (t Tier) String() string {
	switch t {
	case Observe:
		return "observe"
	case Act:
		return "act"
	case Commit:
		return "commit"
	default:
		return "unknown"
	}
}

// Parse resolves a policy-file tier string to a Tier. ok is false for any
// string that isn't exactly "observe", "act", or "commit" — the loader
// treats that as a fatal load error.
func Parse(s string) (t Tier, ok bool) {
	switch s {
	case "observe":
		return Observe, true
	case "act":
		return Act, true
	case "commit":
		return Commit, true
	default:
		return 0, false
	}
}

// Less reports whether t is strictly less severe than other.
func (t Tier) Less(other Tier) bool {
	return t < other
}
