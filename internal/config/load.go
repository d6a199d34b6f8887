package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"hostbench/internal/benchmark"
	"hostbench/internal/syscallbench"
	"hostbench/internal/telemetry"
)

// EnvPrefix is prepended to every environment override, e.g.
// HOSTBENCH_THROTTLE_BURST_MS.
const EnvPrefix = "HOSTBENCH"

// Config is the fully resolved configuration shared by both tools.
type Config struct {
	Verbose     bool           `mapstructure:"verbose"`
	LogFile     string         `mapstructure:"log_file"`
	MetricsAddr string         `mapstructure:"metrics_addr"`
	Syscall     SyscallConfig  `mapstructure:"syscall"`
	Throttle    ThrottleConfig `mapstructure:"throttle"`
}

// SyscallConfig configures the syscall latency tool.
type SyscallConfig struct {
	Name       string `mapstructure:"name"`
	Iterations int    `mapstructure:"iterations"`
	Warmup     int    `mapstructure:"warmup"`
}

// ThrottleConfig configures the duty-cycle tool.
type ThrottleConfig struct {
	BurstMs     int  `mapstructure:"burst_ms"`
	SleepMs     int  `mapstructure:"sleep_ms"`
	DurationSec int  `mapstructure:"duration_sec"`
	BatchSize   int  `mapstructure:"batch_size"`
	Cgroup      bool `mapstructure:"cgroup"`
}

// SetDefaults registers the built-in defaults with viper.
func SetDefaults() {
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_file", "")
	viper.SetDefault("metrics_addr", "")

	loop := syscallbench.DefaultConfig()
	viper.SetDefault("syscall.name", syscallbench.DefaultSyscall)
	viper.SetDefault("syscall.iterations", loop.Iterations)
	viper.SetDefault("syscall.warmup", loop.Warmup)

	viper.SetDefault("throttle.burst_ms", 50)
	viper.SetDefault("throttle.sleep_ms", 50)
	viper.SetDefault("throttle.duration_sec", 60)
	viper.SetDefault("throttle.batch_size", benchmark.DefaultBatchSize)
	viper.SetDefault("throttle.cgroup", true)
}

// Load initializes the configuration from .env, an optional config file and
// environment variables. Nothing is written to disk.
func Load(cfgFile string) error {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("hostbench")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		telemetry.LogInfof("Using config file: %s", viper.ConfigFileUsed())
	}
	return nil
}

// Get unmarshals the current viper state.
func Get() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}
