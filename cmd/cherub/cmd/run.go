package cmd

import (
	"context"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/kennwilliamson/cherub/internal/admin"
	"github.com/kennwilliamson/cherub/internal/agentloop"
	"github.com/kennwilliamson/cherub/internal/audit"
	"github.com/kennwilliamson/cherub/internal/config"
	"github.com/kennwilliamson/cherub/internal/enforce"
	"github.com/kennwilliamson/cherub/internal/metrics"
	"github.com/kennwilliamson/cherub/internal/policy"
	"github.com/kennwilliamson/cherub/internal/tool"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reference agent loop under enforcement",
	Long: `Read newline-delimited tool-call proposals from stdin, evaluate each
against the configured policy, block on human approval for commit-tier
actions, and dispatch authorized calls to the bash/http reference tools.

A SIGHUP reloads the policy file without restarting the process.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if policyFile != "" {
		cfg.Policy.Path = policyFile
	}

	logLevel := parseLogLevel(cfg.Server.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	defer stop()

	loader := policy.NewLoader()
	pol, resolvedPath, err := loadPolicy(loader, cfg, logger)
	if err != nil {
		return fmt.Errorf("load policy %q: %w", resolvedPath, err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	sink, closeSink, err := buildSink(cfg, logger)
	if err != nil {
		return fmt.Errorf("build audit sink: %w", err)
	}
	defer closeSink()

	gate := enforce.NewApprovalCoordinator(
		time.Duration(cfg.Approval.TimeoutSeconds)*time.Second,
		cfg.Approval.MaxPending,
		logger,
		m,
	)
	facade := enforce.NewFacade(pol, gate, sink, logger, m)

	registry := tool.NewRegistry()
	registry.Register("bash", tool.Bash{})
	registry.Register("http", tool.HTTP{})

	if sig := reloadSignal(); sig != nil {
		reloads := make(chan os.Signal, 1)
		signal.Notify(reloads, sig)
		go func() {
			for range reloads {
				newPol, path, err := loadPolicy(loader, cfg, logger)
				if err != nil {
					logger.Error("policy reload failed, keeping previous policy", "path", path, "error", err)
					continue
				}
				facade.Reload(newPol)
				logger.Info("policy reloaded", "path", path)
			}
		}()
	}

	adminSrv := &stdhttp.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: admin.NewHandler(facade, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	}
	go func() {
		if err := adminSrv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			logger.Error("admin server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = adminSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("cherub starting", "policy", resolvedPath, "admin_addr", cfg.Server.HTTPAddr, "tools", []string{"bash", "http"})

	loop := &agentloop.Loop{Facade: facade, Registry: registry, Logger: logger}
	return loop.Run(ctx, os.Stdin, os.Stdout)
}

// loadPolicy resolves the configured policy path and loads it. An absent
// (unconfigured) policy file falls back to an empty, default-deny policy.
// A path that resolves but fails to load (unknown field, bad tier,
// uncompilable pattern, oversize file) is returned as an error — the
// caller decides whether that's fatal (startup) or non-fatal (reload).
func loadPolicy(loader *policy.Loader, cfg *config.Config, logger *slog.Logger) (*policy.Policy, string, error) {
	path := config.ResolvePolicyPath(cfg.Policy.Path)
	if path == "" {
		logger.Warn("no policy file found, running with an empty (default-deny) policy")
		return policy.Empty(), "", nil
	}
	pol, err := loader.LoadFile(path)
	if err != nil {
		return nil, path, err
	}
	return pol, path, nil
}

func buildSink(cfg *config.Config, logger *slog.Logger) (enforce.DecisionSink, func(), error) {
	noop := func() {}

	if cfg.Audit.Output == "stdout" || cfg.Audit.Output == "" {
		return audit.NewStdoutSink(os.Stdout), noop, nil
	}

	if path := strings.TrimPrefix(cfg.Audit.Output, "file://"); path != cfg.Audit.Output {
		// audit.Output names a single file per the config schema
		// ("file:///var/log/cherub/audit.log"), but FileSink owns its own
		// date-stamped naming within a directory, so the configured path's
		// parent directory is what gets passed through.
		sink, err := audit.NewFileSink(audit.Config{Dir: filepath.Dir(path)}, logger)
		if err != nil {
			return nil, noop, err
		}
		return sink, func() { _ = sink.Close() }, nil
	}

	return nil, noop, fmt.Errorf("unsupported audit output %q", cfg.Audit.Output)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
