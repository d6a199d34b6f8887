package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostbench/internal/benchmark"
	"hostbench/internal/syscallbench"
)

func TestLoad(t *testing.T) {
	defer viper.Reset()

	t.Run("Defaults", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())
		require.NoError(t, Load(""))

		cfg, err := Get()
		require.NoError(t, err)
		assert.Equal(t, syscallbench.DefaultSyscall, cfg.Syscall.Name)
		assert.Equal(t, syscallbench.DefaultIterations, cfg.Syscall.Iterations)
		assert.Equal(t, syscallbench.DefaultWarmup, cfg.Syscall.Warmup)
		assert.Equal(t, 50, cfg.Throttle.BurstMs)
		assert.Equal(t, 50, cfg.Throttle.SleepMs)
		assert.Equal(t, 60, cfg.Throttle.DurationSec)
		assert.Equal(t, benchmark.DefaultBatchSize, cfg.Throttle.BatchSize)
		assert.True(t, cfg.Throttle.Cgroup)
		assert.False(t, cfg.Verbose)

		entries, err := os.ReadDir(".")
		require.NoError(t, err)
		assert.Empty(t, entries, "Load must not create files")
	})

	t.Run("Load From Env", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())
		t.Setenv("HOSTBENCH_THROTTLE_BURST_MS", "75")
		t.Setenv("HOSTBENCH_SYSCALL_ITERATIONS", "500")

		require.NoError(t, Load(""))
		cfg, err := Get()
		require.NoError(t, err)
		assert.Equal(t, 75, cfg.Throttle.BurstMs)
		assert.Equal(t, 500, cfg.Syscall.Iterations)
	})

	t.Run("Load From File", func(t *testing.T) {
		viper.Reset()
		dir := t.TempDir()
		t.Chdir(dir)
		content := "throttle:\n  sleep_ms: 20\n  duration_sec: 5\nverbose: true\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "hostbench.yaml"), []byte(content), 0644))

		orig := slog.Default()
		defer slog.SetDefault(orig)
		var logs bytes.Buffer
		slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))

		require.NoError(t, Load(""))
		assert.Contains(t, logs.String(), "Using config file:")
		assert.Contains(t, logs.String(), "hostbench.yaml")
		cfg, err := Get()
		require.NoError(t, err)
		assert.Equal(t, 20, cfg.Throttle.SleepMs)
		assert.Equal(t, 5, cfg.Throttle.DurationSec)
		assert.Equal(t, 50, cfg.Throttle.BurstMs)
		assert.True(t, cfg.Verbose)
	})

	t.Run("Dotenv", func(t *testing.T) {
		viper.Reset()
		dir := t.TempDir()
		t.Chdir(dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HOSTBENCH_SYSCALL_WARMUP=7\n"), 0644))
		defer os.Unsetenv("HOSTBENCH_SYSCALL_WARMUP")

		require.NoError(t, Load(""))
		cfg, err := Get()
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Syscall.Warmup)
	})

	t.Run("Explicit File Missing", func(t *testing.T) {
		viper.Reset()
		err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorContains(t, err, "failed to read config")
	})
}
