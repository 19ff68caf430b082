// Package enforce is the enforcement core: the capability-token
// type-state discipline, the pattern-based evaluator, the approval gate,
// and the single public entry point (Facade.Enforce) the agent loop uses
// to turn a Proposal into a Decision.
//
// Facade is the only type in this package that is meant to be driven from
// outside — everything else (Token, EvaluatedProposal, evaluate,
// matchResult) exists to make that one call site the sole minter of
// capability tokens and the sole promoter of proposals to their evaluated
// phase.
package enforce

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kennwilliamson/cherub/internal/policy"
	"github.com/kennwilliamson/cherub/internal/proposal"
)

// Recorder receives decision and approval telemetry. *metrics.Metrics
// satisfies this; tests can pass a nil Recorder to skip instrumentation.
type Recorder interface {
	ObserveDecision(tool, verdict string, duration time.Duration)
	IncAuditDrop()
}

// Facade is the single public entry point into the enforcement core. The
// agent loop calls Enforce for every proposal it parses from a model's
// structured tool-use reply; nothing else in this repository is permitted
// to construct a Token or an EvaluatedProposal.
type Facade struct {
	policy   atomic.Pointer[policy.Policy]
	gate     *ApprovalCoordinator
	sink     DecisionSink
	logger   *slog.Logger
	recorder Recorder
}

// NewFacade builds a Facade over an already-loaded Policy. Pass
// NopSink{} for sink if audit persistence isn't configured, and a nil
// recorder to skip metrics instrumentation.
func NewFacade(pol *policy.Policy, gate *ApprovalCoordinator, sink DecisionSink, logger *slog.Logger, recorder Recorder) *Facade {
	if pol == nil {
		pol = policy.Empty()
	}
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	f := &Facade{gate: gate, sink: sink, logger: logger, recorder: recorder}
	f.policy.Store(pol)
	return f
}

// Reload atomically replaces the policy in effect. In-flight calls to
// Enforce see either the old or the new policy in full — never a mix —
// because the pointer swap is the only mutation.
func (f *Facade) Reload(pol *policy.Policy) {
	if pol == nil {
		pol = policy.Empty()
	}
	f.policy.Store(pol)
}

// Enforce evaluates p against the current policy and, for an Escalate
// verdict, blocks on the approval gate before returning. It is the sole
// call site that constructs an EvaluatedProposal and mints a Token.
//
// The DecisionRecord is appended to the sink before Enforce returns an
// Allow Decision, so the append happens before any token reaches a tool,
// since the caller cannot reach the tool until Enforce has returned. A
// failed append is logged and counted (see publish); the Allow is still
// returned.
func (f *Facade) Enforce(ctx context.Context, p proposal.Proposal) (EvaluatedProposal, Decision, error) {
	start := time.Now()
	pol := f.policy.Load()
	mr := evaluate(p, pol)

	record := DecisionRecord{
		Timestamp:      start.UTC(),
		Tool:           p.Tool,
		Action:         p.Action,
		ArgumentDigest: digestArgument(p.Argument),
	}
	if mr.rule != nil {
		record.MatchedRuleID = fmt.Sprintf("%s.%s", mr.rule.Tool, mr.rule.Action)
	}

	switch mr.verdict {
	case VerdictAllow:
		record.Verdict = "allow"
		f.publish(ctx, record)
		f.record(p.Tool, record.Verdict, start)
		nonce := newNonce()
		return newEvaluated(p, nonce), allowDecision(mintToken(nonce)), nil

	case VerdictEscalate:
		approved, status := f.gate.Open(ctx, p.Tool, p.Action, p.Argument)
		record.Verdict = "escalate_" + string(status)
		f.publish(ctx, record)
		f.record(p.Tool, record.Verdict, start)
		if approved {
			nonce := newNonce()
			return newEvaluated(p, nonce), allowDecision(mintToken(nonce)), nil
		}
		return nil, rejectDecision(), nil

	default: // VerdictReject
		record.Verdict = "reject"
		f.publish(ctx, record)
		f.record(p.Tool, record.Verdict, start)
		return nil, rejectDecision(), nil
	}
}

// record forwards decision telemetry to the configured Recorder, if any.
func (f *Facade) record(tool, verdict string, start time.Time) {
	if f.recorder == nil {
		return
	}
	f.recorder.ObserveDecision(tool, verdict, time.Since(start))
}

// publish enqueues a DecisionRecord. Every branch of Enforce calls this
// exactly once, so every facade call emits exactly one DecisionRecord. A
// publish failure is logged to the operator's channel — never the
// agent's — and does not change the verdict already decided.
func (f *Facade) publish(ctx context.Context, r DecisionRecord) {
	if err := f.sink.Append(ctx, r); err != nil {
		f.logger.Error("decision sink append failed", "error", err, "tool", r.Tool, "action", r.Action)
		if f.recorder != nil {
			f.recorder.IncAuditDrop()
		}
	}
}

// List returns the currently pending approval gates, for an admin surface.
func (f *Facade) List() []PendingApproval {
	return f.gate.List()
}

// Approve resolves a pending approval gate by its correlation id.
func (f *Facade) Approve(id string) error { return f.gate.Approve(id) }

// Deny resolves a pending approval gate by its correlation id.
func (f *Facade) Deny(id string) error { return f.gate.Deny(id) }
