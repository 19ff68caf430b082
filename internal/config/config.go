// Package config provides configuration types and loading for cherub.
//
// It intentionally stays small: a runtime mediating tool invocations has
// one real external input (where the policy file lives) plus the usual
// server/logging knobs. There is no admin UI, no multi-tenant story, no
// remote policy store in this edition.
package config

// Config is the top-level configuration for cherub.
type Config struct {
	// Server configures the admin/approval HTTP surface.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Policy configures where the policy file is found and how reloads
	// are triggered.
	Policy PolicyConfig `yaml:"policy" mapstructure:"policy"`

	// Audit configures where decision records are persisted.
	Audit AuditConfig `yaml:"audit" mapstructure:"audit"`

	// Approval configures the approval gate's timeout and capacity.
	Approval ApprovalConfig `yaml:"approval" mapstructure:"approval"`

	// DevMode enables verbose logging (SetDefaults forces the log level
	// to "debug"). It does not affect policy loading.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the admin HTTP listener exposing pending
// approvals and metrics.
type ServerConfig struct {
	// HTTPAddr is the address the admin surface listens on.
	// Defaults to "127.0.0.1:8787" if empty.
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"omitempty,hostname_port"`

	// LogLevel sets the minimum log level: "debug", "info", "warn", "error".
	// Defaults to "info". DevMode=true overrides to "debug".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// PolicyConfig configures policy-file resolution.
type PolicyConfig struct {
	// Path is the policy TOML file. When empty, the loader searches the
	// standard locations documented in ResolvePolicyPath, and falls back to an
	// empty (default-deny) policy if none is found.
	Path string `yaml:"path" mapstructure:"path"`
}

// AuditConfig configures where decision records are written.
// Valid values: "stdout" or "file://<absolute-path>".
type AuditConfig struct {
	Output string `yaml:"output" mapstructure:"output" validate:"omitempty,audit_output"`
}

// ApprovalConfig configures the human-approval gate.
type ApprovalConfig struct {
	// TimeoutSeconds bounds how long a Commit-tier proposal waits for a
	// human decision before resolving to TimedOut. Defaults to 60.
	TimeoutSeconds int `yaml:"timeout_seconds" mapstructure:"timeout_seconds" validate:"omitempty,min=1"`

	// MaxPending bounds the number of concurrently outstanding approval
	// gates; the oldest pending gate is auto-denied past this limit.
	// Defaults to 100.
	MaxPending int `yaml:"max_pending" mapstructure:"max_pending" validate:"omitempty,min=1"`
}

// SetDefaults fills in zero-valued fields with their documented defaults,
// without disturbing values already set by a config file or env var —
// the same "defaults only fill gaps" contract the rest of this codebase's
// configuration loading follows.
func (c *Config) SetDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8787"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Audit.Output == "" {
		c.Audit.Output = "stdout"
	}
	if c.Approval.TimeoutSeconds == 0 {
		c.Approval.TimeoutSeconds = 60
	}
	if c.Approval.MaxPending == 0 {
		c.Approval.MaxPending = 100
	}
	if c.DevMode {
		c.Server.LogLevel = "debug"
	}
}
