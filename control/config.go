// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Application configuration: YAML file and environment, defaults via struct tags.

package control

import (
	"fmt"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/momentics/hioload-aio/internal/logging"
	"github.com/momentics/hioload-aio/reactor"
)

// Config is the full application configuration.
type Config struct {
	Reactor ReactorConfig `yaml:"reactor"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// ReactorConfig tunes the event loop.
type ReactorConfig struct {
	Workers    int  `yaml:"workers" env:"HIOLOAD_AIO_WORKERS" env-default:"4"`
	BatchSize  int  `yaml:"batchSize" env:"HIOLOAD_AIO_BATCH_SIZE" env-default:"64"`
	PinWorkers bool `yaml:"pinWorkers" env:"HIOLOAD_AIO_PIN_WORKERS"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"HIOLOAD_AIO_LOG_LEVEL" env-default:"info"`
	Format     string `yaml:"format" env:"HIOLOAD_AIO_LOG_FORMAT" env-default:"text"`
	Output     string `yaml:"output" env:"HIOLOAD_AIO_LOG_OUTPUT" env-default:"stderr"`
	FilePath   string `yaml:"filePath" env:"HIOLOAD_AIO_LOG_FILE"`
	MaxSize    int    `yaml:"maxSize" env:"HIOLOAD_AIO_LOG_MAX_SIZE" env-default:"100"`
	MaxBackups int    `yaml:"maxBackups" env:"HIOLOAD_AIO_LOG_MAX_BACKUPS" env-default:"3"`
	MaxAge     int    `yaml:"maxAge" env:"HIOLOAD_AIO_LOG_MAX_AGE" env-default:"7"`
	Compress   bool   `yaml:"compress" env:"HIOLOAD_AIO_LOG_COMPRESS"`
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"HIOLOAD_AIO_METRICS_ENABLED"`
	Listen    string `yaml:"listen" env:"HIOLOAD_AIO_METRICS_LISTEN" env-default:":9464"`
	Namespace string `yaml:"namespace" env:"HIOLOAD_AIO_METRICS_NAMESPACE" env-default:"hioload_aio"`
}

// TracingConfig controls the OTLP trace exporter.
type TracingConfig struct {
	Enabled      bool          `yaml:"enabled" env:"HIOLOAD_AIO_TRACING_ENABLED"`
	Endpoint     string        `yaml:"endpoint" env:"HIOLOAD_AIO_TRACING_ENDPOINT"`
	ServiceName  string        `yaml:"serviceName" env:"HIOLOAD_AIO_TRACING_SERVICE" env-default:"hioload-aio"`
	Insecure     bool          `yaml:"insecure" env:"HIOLOAD_AIO_TRACING_INSECURE"`
	SamplingRate float64       `yaml:"samplingRate" env:"HIOLOAD_AIO_TRACING_SAMPLING_RATE" env-default:"1.0"`
	Timeout      time.Duration `yaml:"timeout" env:"HIOLOAD_AIO_TRACING_TIMEOUT" env-default:"5s"`
}

// Load reads the configuration from path (YAML) when given, then applies
// environment overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Reactor.Workers <= 0 {
		return fmt.Errorf("config: reactor.workers must be positive, got %d", c.Reactor.Workers)
	}
	if c.Reactor.BatchSize <= 0 {
		return fmt.Errorf("config: reactor.batchSize must be positive, got %d", c.Reactor.BatchSize)
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("config: tracing.endpoint is required when tracing is enabled")
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("config: tracing.samplingRate must be within [0,1], got %v", c.Tracing.SamplingRate)
	}
	return nil
}

// LoopConfig converts to reactor.Config.
func (c ReactorConfig) LoopConfig() reactor.Config {
	return reactor.Config{Workers: c.Workers, BatchSize: c.BatchSize, PinWorkers: c.PinWorkers}
}

// LoggerConfig converts to logging.Config.
func (c LoggingConfig) LoggerConfig() logging.Config {
	return logging.Config{
		Level:      c.Level,
		Format:     c.Format,
		Output:     c.Output,
		FilePath:   c.FilePath,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
	}
}

// ConfigStore holds the active configuration snapshot and notifies listeners
// on replacement.
type ConfigStore struct {
	mu        sync.RWMutex
	path      string
	config    Config
	listeners []func(Config)
}

// NewConfigStore initializes a store with cfg. path is remembered for Reload.
func NewConfigStore(cfg *Config, path string) *ConfigStore {
	return &ConfigStore{config: *cfg, path: path}
}

// Snapshot returns a copy of the active configuration.
func (cs *ConfigStore) Snapshot() Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.config
}

// Set validates and installs cfg, then runs listeners synchronously.
func (cs *ConfigStore) Set(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cs.mu.Lock()
	cs.config = cfg
	listeners := append([]func(Config){}, cs.listeners...)
	cs.mu.Unlock()
	for _, fn := range listeners {
		fn(cfg)
	}
	return nil
}

// Reload re-reads the configuration source and installs the result.
func (cs *ConfigStore) Reload() error {
	cfg, err := Load(cs.path)
	if err != nil {
		return err
	}
	return cs.Set(*cfg)
}

// OnReload registers a listener called after every successful Set.
func (cs *ConfigStore) OnReload(fn func(Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}
