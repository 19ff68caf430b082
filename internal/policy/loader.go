package policy

import (
	"bytes"
	"fmt"
	"io"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/kennwilliamson/cherub/internal/tier"
)

// MaxFileSize is the default fatal-at-load cap on a policy file's size.
const MaxFileSize = 1 << 20 // 1 MiB

// LoadError wraps any fatal policy load failure (missing file, oversized
// file, malformed syntax, unknown field, bad tier value, uncompilable
// pattern). All LoadErrors are fatal: the runtime does not start with a
// partial policy.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("policy load: %v", e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// fileSchema is the on-disk TOML shape:
//
//	[tools.<toolname>]
//	enabled = <bool>
//
//	[tools.<toolname>.actions.<actionname>]
//	tier = "observe" | "act" | "commit"
//	patterns = ["<regex1>", ...]
type fileSchema struct {
	Tools map[string]toolSchema `toml:"tools"`
}

type toolSchema struct {
	Enabled bool                    `toml:"enabled"`
	Actions map[string]actionSchema `toml:"actions"`
}

type actionSchema struct {
	Tier     string   `toml:"tier"`
	Patterns []string `toml:"patterns"`
}

// Loader compiles policy source (a path or a byte buffer) into a frozen
// Policy. A Loader holds no mutable state across calls; it exists only to
// carry the configured size cap.
type Loader struct {
	MaxSize int64 // 0 means MaxFileSize
}

// NewLoader returns a Loader using the default size cap.
func NewLoader() *Loader {
	return &Loader{MaxSize: MaxFileSize}
}

func (l *Loader) maxSize() int64 {
	if l.MaxSize <= 0 {
		return MaxFileSize
	}
	return l.MaxSize
}

// LoadFile reads and compiles the policy at path.
func (l *Loader) LoadFile(path string) (*Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	if info.Size() > l.maxSize() {
		return nil, &LoadError{Err: fmt.Errorf("%s: file size %d exceeds cap %d", path, info.Size(), l.maxSize())}
	}

	data, err := io.ReadAll(io.LimitReader(f, l.maxSize()+1))
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return l.Load(data)
}

// Load compiles policy source from an in-memory buffer.
func (l *Loader) Load(data []byte) (*Policy, error) {
	if int64(len(data)) > l.maxSize() {
		return nil, &LoadError{Err: fmt.Errorf("policy source exceeds cap %d bytes", l.maxSize())}
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc fileSchema
	if err := dec.Decode(&doc); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("malformed policy: %w", err)}
	}

	tools := make(map[string]ToolEntry, len(doc.Tools))
	for toolName, toolDoc := range doc.Tools {
		actions := make(map[string]ActionRule, len(toolDoc.Actions))
		for actionName, actionDoc := range toolDoc.Actions {
			t, ok := tier.Parse(actionDoc.Tier)
			if !ok {
				return nil, &LoadError{Err: fmt.Errorf("tools.%s.actions.%s: unknown tier %q", toolName, actionName, actionDoc.Tier)}
			}
			if len(actionDoc.Patterns) == 0 {
				return nil, &LoadError{Err: fmt.Errorf("tools.%s.actions.%s: must have at least one pattern", toolName, actionName)}
			}
			patterns := make([]Pattern, 0, len(actionDoc.Patterns))
			for _, src := range actionDoc.Patterns {
				p, err := compilePattern(src)
				if err != nil {
					return nil, &LoadError{Err: fmt.Errorf("tools.%s.actions.%s: %w", toolName, actionName, err)}
				}
				patterns = append(patterns, p)
			}
			actions[actionName] = ActionRule{
				Tool:     toolName,
				Action:   actionName,
				Tier:     t,
				Patterns: patterns,
			}
		}
		tools[toolName] = ToolEntry{enabled: toolDoc.Enabled, actions: actions}
	}

	return &Policy{tools: tools}, nil
}
