package tool

import (
	"context"
	"testing"
	"time"

	"github.com/kennwilliamson/cherub/internal/enforce"
	"github.com/kennwilliamson/cherub/internal/policy"
	"github.com/kennwilliamson/cherub/internal/proposal"
)

const bashTestPolicy = `
[tools.bash]
enabled = true

[tools.bash.actions.run]
tier = "act"
patterns = [".*"]

[tools.http]
enabled = true

[tools.http.actions.get]
tier = "act"
patterns = [".*"]

[tools.http.actions.run]
tier = "act"
patterns = [".*"]
`

func mustEnforce(t *testing.T, tool, action, argument string) (enforce.EvaluatedProposal, enforce.Token) {
	t.Helper()
	pol, err := policy.NewLoader().Load([]byte(bashTestPolicy))
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	gate := enforce.NewApprovalCoordinator(time.Second, 10, nil, nil)
	f := enforce.NewFacade(pol, gate, nil, nil, nil)

	ep, decision, err := f.Enforce(context.Background(), proposal.New(tool, action, argument, nil))
	if err != nil {
		t.Fatalf("Enforce: %v", err)
	}
	tok, ok := decision.Token()
	if !ok {
		t.Fatalf("expected an Allow decision for %s.%s %q", tool, action, argument)
	}
	return ep, tok
}

func TestBash_Execute_Success(t *testing.T) {
	t.Parallel()

	ep, tok := mustEnforce(t, "bash", "run", "echo hello")
	out, err := (Bash{}).Execute(context.Background(), ep, tok)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Text != "hello\n" {
		t.Errorf("Text = %q, want %q", out.Text, "hello\n")
	}
}

func TestBash_Execute_NonZeroExit(t *testing.T) {
	t.Parallel()

	ep, tok := mustEnforce(t, "bash", "run", "exit 7")
	_, err := (Bash{}).Execute(context.Background(), ep, tok)
	if err == nil {
		t.Fatal("expected an error for a non-zero exit")
	}
}

func TestBash_Execute_Timeout(t *testing.T) {
	t.Parallel()

	ep, tok := mustEnforce(t, "bash", "run", "sleep 5")
	start := time.Now()
	_, err := (Bash{Timeout: 50 * time.Millisecond}).Execute(context.Background(), ep, tok)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Execute took %s, want well under the sleep duration (process group should be killed)", elapsed)
	}
}

func TestBash_Execute_NonceMismatchPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected a panic when the token doesn't match the proposal")
		}
	}()

	ep, _ := mustEnforce(t, "bash", "run", "echo a")
	_, otherTok := mustEnforce(t, "bash", "run", "echo b")
	_, _ = (Bash{}).Execute(context.Background(), ep, otherTok)
}

func TestBash_Execute_DefaultShellAndTimeout(t *testing.T) {
	t.Parallel()

	b := Bash{}
	if b.shell() != "bash" {
		t.Errorf("shell() = %q, want %q", b.shell(), "bash")
	}
	if b.timeout() != DefaultTimeout {
		t.Errorf("timeout() = %s, want %s", b.timeout(), DefaultTimeout)
	}
}
