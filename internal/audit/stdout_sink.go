package audit

import (
	"context"
	"encoding/json"
	"io"

	"github.com/kennwilliamson/cherub/internal/enforce"
)

// StdoutSink writes each DecisionRecord as a JSON line to the given
// writer. Used when audit.output is "stdout" (the default).
type StdoutSink struct {
	w io.Writer
}

var _ enforce.DecisionSink = StdoutSink{}

// NewStdoutSink builds a StdoutSink writing to w.
func NewStdoutSink(w io.Writer) StdoutSink {
	return StdoutSink{w: w}
}

func (s StdoutSink) Append(ctx context.Context, r enforce.DecisionRecord) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = s.w.Write(data)
	return err
}
