package enforce

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultApprovalTimeout is the default wait before a pending approval
// resolves to TimedOut.
const DefaultApprovalTimeout = 60 * time.Second

// DefaultMaxPending is the default capacity of concurrently pending
// approval gates; the oldest Pending gate is auto-denied on overflow.
const DefaultMaxPending = 100

// GateStatus is one state of the approval gate state machine: Pending is
// the only non-terminal state; Approved, Denied, and TimedOut are
// terminal.
type GateStatus string

const (
	GatePending  GateStatus = "pending"
	GateApproved GateStatus = "approved"
	GateDenied   GateStatus = "denied"
	GateTimedOut GateStatus = "timed_out"
)

// PendingApproval is a read-only snapshot of an open approval gate,
// identified by an opaque correlation id. It describes only the proposal
// (tool, action, argument) — never a policy-sourced string — matching the
// opacity requirement for anything a human approver or admin UI sees.
type PendingApproval struct {
	ID        string
	Tool      string
	Action    string
	Argument  string
	CreatedAt time.Time
}

type gateResult struct {
	approved bool
}

type pendingGate struct {
	PendingApproval
	status GateStatus
	result chan gateResult
}

// GateRecorder receives approval-gate queue telemetry. *metrics.Metrics
// satisfies this.
type GateRecorder interface {
	SetApprovalsPending(n int)
	ObserveApprovalResolution(status string)
}

// ApprovalCoordinator owns every Pending gate behind a single mutex and
// resolves them via channels rather than exposing any lock to callers:
// approval state is owned by a single coordinator and accessed only
// through message passing.
type ApprovalCoordinator struct {
	mu       sync.Mutex
	pending  map[string]*pendingGate
	order    []string
	maxSize  int
	timeout  time.Duration
	logger   *slog.Logger
	recorder GateRecorder
}

// NewApprovalCoordinator builds a coordinator with the given default
// timeout and capacity. A zero timeout or non-positive capacity falls
// back to the package defaults. recorder may be nil to skip metrics.
func NewApprovalCoordinator(timeout time.Duration, maxPending int, logger *slog.Logger, recorder GateRecorder) *ApprovalCoordinator {
	if timeout <= 0 {
		timeout = DefaultApprovalTimeout
	}
	if maxPending <= 0 {
		maxPending = DefaultMaxPending
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ApprovalCoordinator{
		pending:  make(map[string]*pendingGate),
		maxSize:  maxPending,
		timeout:  timeout,
		logger:   logger,
		recorder: recorder,
	}
}

func (c *ApprovalCoordinator) reportPending() {
	if c.recorder == nil {
		return
	}
	c.mu.Lock()
	n := len(c.order)
	c.mu.Unlock()
	c.recorder.SetApprovalsPending(n)
}

// Open creates a new Pending gate for the given proposal fields and blocks
// until an operator approves, denies, the timeout elapses, or ctx is
// cancelled (cancellation resolves to Denied, indistinguishable from an
// explicit denial). It never accepts or logs policy-sourced strings.
func (c *ApprovalCoordinator) Open(ctx context.Context, toolName, actionName, argument string) (approved bool, status GateStatus) {
	g := &pendingGate{
		PendingApproval: PendingApproval{
			ID:        uuid.New().String(),
			Tool:      toolName,
			Action:    actionName,
			Argument:  argument,
			CreatedAt: time.Now().UTC(),
		},
		status: GatePending,
		result: make(chan gateResult, 1),
	}
	c.add(g)
	c.reportPending()

	c.logger.Info("tool call blocked pending approval",
		"approval_id", g.ID, "tool", toolName, "action", actionName, "timeout", c.timeout)

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	var res gateResult
	var final GateStatus
	select {
	case res = <-g.result:
		final = c.finalStatus(g.ID)
	case <-timer.C:
		res = gateResult{approved: false}
		final = GateTimedOut
		c.setStatus(g.ID, GateTimedOut)
		c.logger.Info("approval timed out", "approval_id", g.ID, "tool", toolName)
	case <-ctx.Done():
		c.setStatus(g.ID, GateDenied)
		c.remove(g.ID)
		c.reportPending()
		c.logger.Info("approval cancelled", "approval_id", g.ID, "tool", toolName)
		if c.recorder != nil {
			c.recorder.ObserveApprovalResolution(string(GateDenied))
		}
		return false, GateDenied
	}

	c.remove(g.ID)
	c.reportPending()
	if c.recorder != nil {
		c.recorder.ObserveApprovalResolution(string(final))
	}
	return res.approved, final
}

func (c *ApprovalCoordinator) add(g *pendingGate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.order) >= c.maxSize {
		oldID := c.order[0]
		c.order = c.order[1:]
		if old, ok := c.pending[oldID]; ok {
			old.status = GateDenied
			select {
			case old.result <- gateResult{approved: false}:
			default:
			}
			delete(c.pending, oldID)
		}
	}

	c.pending[g.ID] = g
	c.order = append(c.order, g.ID)
}

func (c *ApprovalCoordinator) setStatus(id string, status GateStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.pending[id]; ok {
		g.status = status
	}
}

func (c *ApprovalCoordinator) finalStatus(id string) GateStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.pending[id]; ok {
		return g.status
	}
	return GateDenied
}

func (c *ApprovalCoordinator) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Approve resolves a Pending gate to Approved.
func (c *ApprovalCoordinator) Approve(id string) error {
	return c.resolve(id, GateApproved, true)
}

// Deny resolves a Pending gate to Denied.
func (c *ApprovalCoordinator) Deny(id string) error {
	return c.resolve(id, GateDenied, false)
}

func (c *ApprovalCoordinator) resolve(id string, status GateStatus, approved bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.pending[id]
	if !ok {
		return fmt.Errorf("approval %s not found", id)
	}
	if g.status != GatePending {
		return fmt.Errorf("approval %s is already %s", id, g.status)
	}

	g.status = status
	select {
	case g.result <- gateResult{approved: approved}:
	default:
	}
	return nil
}

// List returns all currently Pending gates, for an admin surface. The
// returned values carry only proposal data, never policy internals.
func (c *ApprovalCoordinator) List() []PendingApproval {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]PendingApproval, 0, len(c.order))
	for _, id := range c.order {
		if g, ok := c.pending[id]; ok && g.status == GatePending {
			out = append(out, g.PendingApproval)
		}
	}
	return out
}
