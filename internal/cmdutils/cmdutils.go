// Package cmdutils holds the command-line plumbing shared by the benchmark
// executables: common flags, configuration loading and panic handling.
package cmdutils

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"hostbench/internal/config"
	"hostbench/internal/metrics"
	"hostbench/internal/telemetry"
)

// AddCommonFlags registers the persistent flags every tool accepts.
func AddCommonFlags(cmd *cobra.Command) {
	addCommonFlags(cmd.PersistentFlags())
}

func addCommonFlags(f *pflag.FlagSet) {
	f.String("config", "", "config file (default is ./hostbench.yaml)")
	f.BoolP("verbose", "v", false, "Enable verbose/debug logging")
	f.String("log-file", "", "Also write logs to this file")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9100)")
}

// Setup loads configuration for cmd, binding the given flag-to-key pairs in
// addition to the common ones, validates the common settings plus section and
// installs the logger.
func Setup(cmd *cobra.Command, section config.Section, bindings map[string]string) (*config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	if err := config.Load(cfgFile); err != nil {
		return nil, err
	}

	all := map[string]string{
		"verbose":      "verbose",
		"log-file":     "log_file",
		"metrics-addr": "metrics_addr",
	}
	for flag, key := range bindings {
		all[flag] = key
	}
	for flag, key := range all {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
			}
		}
	}

	cfg, err := config.Get()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg, section); err != nil {
		return nil, err
	}

	telemetry.InitLogger(cfg.Verbose, cfg.LogFile)
	return cfg, nil
}

// StartMetrics serves m when addr is set. The returned stop function is
// always safe to call.
func StartMetrics(addr string, m *metrics.Metrics) (func(), error) {
	if addr == "" {
		return func() {}, nil
	}
	srv, err := telemetry.StartMetricsServer(addr, m.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to start metrics server: %w", err)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// RecoverAndExit turns a panic escaping main into a report on w and exit code 1.
// A monotonic clock failure surfaces this way.
func RecoverAndExit(w io.Writer, exit func(int)) {
	if r := recover(); r != nil {
		fmt.Fprintf(w, "\n=== CRITICAL ERROR: Benchmark Panic ===\n")
		fmt.Fprintf(w, "Error: %v\n\n", r)
		fmt.Fprintf(w, "Stack trace:\n%s\n", debug.Stack())
		exit(1)
	}
}

// Execute runs root and exits non-zero on error.
func Execute(root *cobra.Command, exit func(int)) {
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run '%s --help' for usage.\n", root.Name())
		exit(1)
	}
}
