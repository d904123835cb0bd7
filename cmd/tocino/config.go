package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// runConfig collects everything the run command needs. Values come from
// the config file, overridden by TOCINO_* environment variables.
type runConfig struct {
	LogLevel string `mapstructure:"log_level"`

	OutputFile     string  `mapstructure:"output_file"`
	ListenPort     int     `mapstructure:"listen_port"`
	LegacyFormat   bool    `mapstructure:"legacy_format"`
	MaxPktsPerFile uint64  `mapstructure:"max_pkts_per_file"`
	StartTime      float64 `mapstructure:"start_time"`
	StopTime       float64 `mapstructure:"stop_time"`
	PollInterval   float64 `mapstructure:"poll_interval"`
	PurgeMaxAge    float64 `mapstructure:"purge_max_age"`
	Metadata       bool    `mapstructure:"metadata"`
	ShowAllFrames  bool    `mapstructure:"show_all_frames"`

	// RecordTo is the base name of a SQLite database to mirror events
	// into. Empty disables mirroring.
	RecordTo string `mapstructure:"record_to"`

	// MonitorPort serves the monitoring API when positive.
	MonitorPort int `mapstructure:"monitor_port"`

	// RunFor is how many simulated seconds the demonstration scenario
	// runs.
	RunFor float64 `mapstructure:"run_for"`
}

func loadRunConfig(path string) (runConfig, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("output_file", "")
	v.SetDefault("listen_port", 0)
	v.SetDefault("legacy_format", false)
	v.SetDefault("max_pkts_per_file", 100000)
	v.SetDefault("start_time", 0.0)
	v.SetDefault("stop_time", 3600.0)
	v.SetDefault("poll_interval", 0.25)
	v.SetDefault("purge_max_age", 5.0)
	v.SetDefault("metadata", false)
	v.SetDefault("show_all_frames", false)
	v.SetDefault("record_to", "")
	v.SetDefault("monitor_port", 0)
	v.SetDefault("run_for", 10.0)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return runConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("tocino")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg runConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return runConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.ListenPort != 0 && cfg.OutputFile != "" {
		return runConfig{}, fmt.Errorf(
			"output_file and listen_port are mutually exclusive")
	}
	if cfg.ListenPort < 0 || cfg.ListenPort > 65535 {
		return runConfig{}, fmt.Errorf(
			"listen_port %d out of range", cfg.ListenPort)
	}
	if cfg.RunFor <= 0 {
		return runConfig{}, fmt.Errorf("run_for must be positive")
	}

	return cfg, nil
}
