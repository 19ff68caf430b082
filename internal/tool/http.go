package tool

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/kennwilliamson/cherub/internal/enforce"
)

// HTTP performs a GET against the argument URL. Actions beyond "get" are
// rejected at this layer rather than by the policy engine, since the
// set of verbs a given deployment wants to expose is a tool-author
// decision, not a policy-author one.
type HTTP struct {
	Client  *http.Client
	Timeout time.Duration
}

func (h HTTP) client() *http.Client {
	if h.Client != nil {
		return h.Client
	}
	return http.DefaultClient
}

func (h HTTP) timeout() time.Duration {
	if h.Timeout <= 0 {
		return DefaultTimeout
	}
	return h.Timeout
}

func (h HTTP) Execute(ctx context.Context, ep enforce.EvaluatedProposal, tok enforce.Token) (Output, error) {
	enforce.CheckNonce(ep, tok)

	p := ep.Proposal()
	if p.Action != "get" {
		return Output{}, &Error{Tool: p.Tool, Action: p.Action, Err: errUnsupportedAction}
	}

	runCtx, cancel := context.WithTimeout(ctx, h.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(runCtx, http.MethodGet, p.Argument, nil)
	if err != nil {
		return Output{}, &Error{Tool: p.Tool, Action: p.Action, Err: err}
	}

	resp, err := h.client().Do(req)
	if err != nil {
		return Output{}, &Error{Tool: p.Tool, Action: p.Action, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Output{}, &Error{Tool: p.Tool, Action: p.Action, Err: err}
	}

	return Output{Text: string(body)}, nil
}

var errUnsupportedAction = httpActionError("http tool only supports the \"get\" action")

type httpActionError string

func (e httpActionError) Error() string { return string(e) }
