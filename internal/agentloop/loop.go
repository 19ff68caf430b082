// Package agentloop provides a minimal reference agent loop: it reads
// newline-delimited tool-call proposals, runs each through the
// enforcement facade, and dispatches the resulting authorization to the
// tool registry. Anywhere a deployment has an actual model client, that
// client's structured tool-use output becomes the Proposal fed in here —
// this package stands in for that integration in the reference build.
package agentloop

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/kennwilliamson/cherub/internal/enforce"
	"github.com/kennwilliamson/cherub/internal/proposal"
	"github.com/kennwilliamson/cherub/internal/tool"
)

// Request is one line of agent input: a proposed tool call.
type Request struct {
	Tool     string          `json:"tool"`
	Action   string          `json:"action"`
	Argument string          `json:"argument"`
	Params   json.RawMessage `json:"params,omitempty"`
}

// Loop wires a Facade and tool Registry together and drives them from a
// stream of Requests.
type Loop struct {
	Facade   *enforce.Facade
	Registry *tool.Registry
	Logger   *slog.Logger
}

// Run reads one JSON Request per line from r until EOF or ctx
// cancellation, writing each result as one line of JSON to w. Every line
// is processed independently regardless of prior outcomes — a rejected
// proposal never short-circuits the lines that follow it.
func (l *Loop) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			l.logger().Error("malformed proposal line", "error", err)
			continue
		}

		resp := l.handle(ctx, req)
		out, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("marshal response: %w", err)
		}
		if _, err := w.Write(append(out, '\n')); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return scanner.Err()
}

// Response is what the agent loop reports back per Request. Message is
// set only on rejection and is always enforce.AgentRejectionMessage —
// nothing here ever carries policy-internal detail to the agent.
type Response struct {
	Tool    string `json:"tool"`
	Action  string `json:"action"`
	Output  string `json:"output,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (l *Loop) handle(ctx context.Context, req Request) Response {
	var params any
	if len(req.Params) > 0 {
		_ = json.Unmarshal(req.Params, &params)
	}

	p := proposal.New(req.Tool, req.Action, req.Argument, params)
	ep, decision, err := l.Facade.Enforce(ctx, p)
	if err != nil {
		return Response{Tool: req.Tool, Action: req.Action, Error: err.Error()}
	}

	tok, ok := decision.Token()
	if !ok {
		return Response{Tool: req.Tool, Action: req.Action, Message: decision.AgentMessage()}
	}

	out, err := l.Registry.Dispatch(ctx, ep, tok)
	if err != nil {
		return Response{Tool: req.Tool, Action: req.Action, Error: err.Error()}
	}
	return Response{Tool: req.Tool, Action: req.Action, Output: out.Text}
}

func (l *Loop) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
