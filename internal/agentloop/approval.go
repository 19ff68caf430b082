package agentloop

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kennwilliamson/cherub/internal/enforce"
)

// ApprovalConsole renders pending Commit-tier approvals to an operator
// terminal and resolves them from typed y/n input. It is a concrete
// stand-in for whatever approval channel (Slack, a ticketing webhook, an
// admin UI) a real deployment wires the gate to.
type ApprovalConsole struct {
	Facade *enforce.Facade
	In     io.Reader
	Out    io.Writer
}

// PromptOnce lists every pending approval and asks the operator to
// resolve each of them in turn. Returns the number of approvals acted on.
func (a *ApprovalConsole) PromptOnce() int {
	pending := a.Facade.List()
	reader := bufio.NewReader(a.In)

	resolved := 0
	for _, p := range pending {
		fmt.Fprintf(a.Out, "approve %s.%s %q? [y/N] ", p.Tool, p.Action, p.Argument)
		line, err := reader.ReadString('\n')
		if err != nil {
			return resolved
		}

		answer := strings.ToLower(strings.TrimSpace(line))
		var resolveErr error
		if answer == "y" || answer == "yes" {
			resolveErr = a.Facade.Approve(p.ID)
		} else {
			resolveErr = a.Facade.Deny(p.ID)
		}
		if resolveErr == nil {
			resolved++
		}
	}
	return resolved
}
