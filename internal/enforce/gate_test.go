package enforce

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// waitForPending polls until the coordinator reports a gate, returning its
// id. Open() enqueues the gate synchronously before it blocks, so this
// converges within a handful of iterations under any scheduler.
func waitForPending(t *testing.T, c *ApprovalCoordinator) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if pending := c.List(); len(pending) > 0 {
			return pending[0].ID
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for a pending approval gate")
	return ""
}

func TestApprovalCoordinator_Approve(t *testing.T) {
	t.Parallel()
	defer goleak.VerifyNone(t)

	c := NewApprovalCoordinator(5*time.Second, 10, nil, nil)

	resultCh := make(chan struct {
		approved bool
		status   GateStatus
	}, 1)
	go func() {
		approved, status := c.Open(context.Background(), "bash", "rm", "rm -rf /tmp")
		resultCh <- struct {
			approved bool
			status   GateStatus
		}{approved, status}
	}()

	id := waitForPending(t, c)

	if err := c.Approve(id); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	res := <-resultCh
	if !res.approved || res.status != GateApproved {
		t.Errorf("got (%v, %v), want (true, Approved)", res.approved, res.status)
	}
}

func TestApprovalCoordinator_Deny(t *testing.T) {
	t.Parallel()
	defer goleak.VerifyNone(t)

	c := NewApprovalCoordinator(5*time.Second, 10, nil, nil)

	resultCh := make(chan bool, 1)
	go func() {
		approved, _ := c.Open(context.Background(), "bash", "rm", "rm -rf /tmp")
		resultCh <- approved
	}()

	id := waitForPending(t, c)

	if err := c.Deny(id); err != nil {
		t.Fatalf("Deny: %v", err)
	}
	if approved := <-resultCh; approved {
		t.Error("expected denial to resolve approved=false")
	}
}

func TestApprovalCoordinator_Timeout(t *testing.T) {
	t.Parallel()
	defer goleak.VerifyNone(t)

	c := NewApprovalCoordinator(20*time.Millisecond, 10, nil, nil)
	approved, status := c.Open(context.Background(), "bash", "rm", "rm -rf /tmp")
	if approved || status != GateTimedOut {
		t.Errorf("got (%v, %v), want (false, TimedOut)", approved, status)
	}
}

func TestApprovalCoordinator_ContextCancellation(t *testing.T) {
	t.Parallel()
	defer goleak.VerifyNone(t)

	c := NewApprovalCoordinator(5*time.Second, 10, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	resultCh := make(chan GateStatus, 1)
	go func() {
		_, status := c.Open(ctx, "bash", "rm", "rm -rf /tmp")
		resultCh <- status
	}()

	cancel()
	if status := <-resultCh; status != GateDenied {
		t.Errorf("status = %v, want Denied", status)
	}
}

func TestApprovalCoordinator_DoubleResolveErrors(t *testing.T) {
	t.Parallel()
	defer goleak.VerifyNone(t)

	c := NewApprovalCoordinator(5*time.Second, 10, nil, nil)

	resultCh := make(chan struct{})
	go func() {
		c.Open(context.Background(), "bash", "rm", "rm -rf /tmp")
		close(resultCh)
	}()

	id := waitForPending(t, c)

	if err := c.Approve(id); err != nil {
		t.Fatalf("first Approve: %v", err)
	}
	<-resultCh

	if err := c.Approve(id); err == nil {
		t.Error("expected error resolving an already-finished gate")
	}
}

func TestApprovalCoordinator_OverflowEvictsOldest(t *testing.T) {
	t.Parallel()
	defer goleak.VerifyNone(t)

	c := NewApprovalCoordinator(5*time.Second, 1, nil, nil)

	done1 := make(chan bool, 1)
	go func() {
		approved, _ := c.Open(context.Background(), "bash", "rm", "first")
		done1 <- approved
	}()

	waitForPending(t, c)

	done2 := make(chan bool, 1)
	go func() {
		approved, _ := c.Open(context.Background(), "bash", "rm", "second")
		done2 <- approved
	}()

	if approved := <-done1; approved {
		t.Error("evicted gate should resolve to not-approved")
	}

	id := waitForPending(t, c)
	_ = c.Approve(id)
	<-done2
}
