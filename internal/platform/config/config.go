// Package config loads the daemon's layered configuration: built-in
// defaults, an optional YAML file, then environment variables, in that
// order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "AUDITLOG_CONFIG_PATH"

// DefaultConfigPaths are searched in order when ConfigPathEnvVar is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/auditlog/config.yaml",
}

// Config is the daemon's full configuration, one struct per component per
// the recognized-options table.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Capture    CaptureConfig    `koanf:"capture"`
	Batcher    BatcherConfig    `koanf:"batcher"`
	Store      StoreConfig      `koanf:"store"`
	ChainLog   ChainLogConfig   `koanf:"chain_log"`
	Retention  RetentionConfig  `koanf:"retention"`
	Integrity  IntegrityConfig  `koanf:"integrity"`
	Redis      RedisConfig      `koanf:"redis"`
	Kafka      KafkaConfig      `koanf:"kafka"`
	Logging    LoggingConfig    `koanf:"logging"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type CaptureConfig struct {
	BufferSize     int    `koanf:"buffer_size"`
	DefaultActor   string `koanf:"default_actor"`
}

type BatcherConfig struct {
	MaxBatchSize int           `koanf:"max_batch_size"`
	MaxBatchAge  time.Duration `koanf:"max_batch_age"`
}

type StoreConfig struct {
	DSN          string `koanf:"dsn"`
	Synchronous  string `koanf:"synchronous"`
	WALMode      bool   `koanf:"wal_mode"`
}

type ChainLogConfig struct {
	LogDir      string `koanf:"log_dir"`
	FilePrefix  string `koanf:"file_prefix"`
	MaxFileSize int64  `koanf:"max_file_size"`
	SyncOnWrite bool   `koanf:"sync_on_write"`
}

type RetentionConfig struct {
	DefaultRetention     time.Duration             `koanf:"default_retention"`
	CategoryOverrides    map[string]time.Duration  `koanf:"category_overrides"`
	HighMultiplier       float64                   `koanf:"high_multiplier"`
	CriticalMultiplier   float64                   `koanf:"critical_multiplier"`
	ArchiveBeforeDelete  bool                      `koanf:"archive_before_delete"`
	EnableHolds          bool                      `koanf:"enable_holds"`
	EnforcementInterval  time.Duration             `koanf:"enforcement_interval"`
	BatchSize            int                       `koanf:"batch_size"`
	DryRun               bool                      `koanf:"dry_run"`
}

type IntegrityConfig struct {
	CheckInterval      time.Duration `koanf:"check_interval"`
	VerificationWindow int           `koanf:"verification_window"`
	AlertOnIssues      bool          `koanf:"alert_on_issues"`
}

type RedisConfig struct {
	URL          string        `koanf:"url"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

type KafkaConfig struct {
	Enabled bool     `koanf:"enabled"`
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Capture: CaptureConfig{
			BufferSize: 10000,
		},
		Batcher: BatcherConfig{
			MaxBatchSize: 100,
			MaxBatchAge:  time.Second,
		},
		Store: StoreConfig{
			Synchronous: "NORMAL",
			WALMode:     true,
		},
		ChainLog: ChainLogConfig{
			LogDir:      "./data/chainlog",
			FilePrefix:  "audit",
			MaxFileSize: 64 << 20,
			SyncOnWrite: false,
		},
		Retention: RetentionConfig{
			DefaultRetention:    365 * 24 * time.Hour,
			HighMultiplier:      1.0,
			CriticalMultiplier:  1.0,
			EnforcementInterval: time.Hour,
			BatchSize:           500,
		},
		Integrity: IntegrityConfig{
			CheckInterval: 5 * time.Minute,
			AlertOnIssues: true,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds a Config from defaults, an optional file, and the
// environment, in that order of precedence. path overrides the file
// search entirely when non-empty.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	configPath := path
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("AUDITLOG_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment config: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps AUDITLOG_CHAIN_LOG_MAX_FILE_SIZE -> chain_log.max_file_size,
// i.e. the prefix is stripped, the rest lowercased, and the top-level key
// (chain_log, or otherwise the first underscore-delimited segment) is split
// from the rest.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "AUDITLOG_"))
	if rest, ok := strings.CutPrefix(key, "chain_log_"); ok {
		return "chain_log." + rest
	}
	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 {
		return key
	}
	return parts[0] + "." + parts[1]
}
