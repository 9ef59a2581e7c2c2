// config_loader.go: JSON/env configuration loading plus argus-backed hot
// reload of the level.
//
// LoadConfigFromJSON/LoadEnvConfig cover the loading shape, and
// DynamicConfigWatcher wraps argus.Watcher to watch a JSON config file
// and apply its level for live updates.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// EnvConfig mirrors the supported environment surface. Parsing never
// fails: a value outside the recognized set falls back to the default.
type EnvConfig struct {
	Level         Level
	Async         bool
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
	Color         bool
	Metrics       bool
	Structured    bool
	CrashHandler  bool
	MaxQueueSize  int
	BatchWriting  bool
}

func parseEnvBool(name string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch v {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}

func parseEnvInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// LoadEnvConfig reads the environment surface, defaulting LOG_LEVEL
// to info and every boolean/size knob to the values defaultConfig()
// would pick.
func LoadEnvConfig() EnvConfig {
	level, err := ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = Info
	}
	return EnvConfig{
		Level:         level,
		Async:         parseEnvBool("LOG_ASYNC", false),
		BufferSize:    parseEnvInt("LOG_BUFFER_SIZE", 16384),
		BatchSize:     parseEnvInt("LOG_BATCH_SIZE", 256),
		FlushInterval: time.Duration(parseEnvInt("LOG_FLUSH_INTERVAL", 5)) * time.Millisecond,
		Color:         parseEnvBool("LOG_COLOR", false),
		Metrics:       parseEnvBool("LOG_METRICS", false),
		Structured:    parseEnvBool("LOG_STRUCTURED", false),
		CrashHandler:  parseEnvBool("LOG_CRASH_HANDLER", false),
		MaxQueueSize:  parseEnvInt("LOG_MAX_QUEUE_SIZE", 16384),
		BatchWriting:  parseEnvBool("LOG_BATCH_WRITING", false),
	}
}

// ApplyTo overlays the environment configuration onto cfg.
func (e EnvConfig) ApplyTo(cfg *Config) {
	cfg.Level = e.Level
	cfg.Async = e.Async
	cfg.Collector.Capacity = e.MaxQueueSize
	cfg.Collector.BatchSize = e.BatchSize
	cfg.Collector.TickInterval = e.FlushInterval
	cfg.EnableCrashGuard = e.CrashHandler
	if e.Structured {
		cfg.Writers = []Writer{NewFormattedWriter(NewStreamWriter("stdout", os.Stdout), NewJSONFormatter())}
	}
}

func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("empty file path")
	}
	clean := filepath.Clean(filename)
	if strings.Contains(clean, "..") {
		return fmt.Errorf("path contains directory traversal: %s", filename)
	}
	return nil
}

// jsonConfigFile is the on-disk shape LoadConfigFromJSON/the argus
// watcher parse. Only the level is hot-reloaded by the watcher;
// sample_rate is returned by LoadConfigFromJSON but not applied to a
// Logger.
type jsonConfigFile struct {
	Level      string  `json:"level"`
	SampleRate float64 `json:"sample_rate"`
}

// LoadConfigFromJSON reads level/sample_rate from a JSON file on disk.
func LoadConfigFromJSON(filename string) (Level, float64, error) {
	if err := validateFilePath(filename); err != nil {
		return Info, 1, fmt.Errorf("ember: invalid config path: %w", err)
	}
	data, err := os.ReadFile(filename) // #nosec G304 -- validated above
	if err != nil {
		return Info, 1, fmt.Errorf("ember: read config: %w", err)
	}
	var jc jsonConfigFile
	if err := json.Unmarshal(data, &jc); err != nil {
		return Info, 1, fmt.Errorf("ember: parse config: %w", err)
	}
	level, err := ParseLevel(jc.Level)
	if err != nil {
		level = Info
	}
	rate := jc.SampleRate
	if rate <= 0 {
		rate = 1
	}
	return level, rate, nil
}

// DynamicConfigWatcher uses argus to watch a JSON config file and push
// level changes into a Logger's atomic threshold without a restart.
// Only the level is swapped: the file's sample_rate is not applied to
// the Logger's Sampler, and the writer set is never touched by this path.
type DynamicConfigWatcher struct {
	configPath string
	logger     *Logger

	watcher *argus.Watcher
	enabled int32
	mu      sync.Mutex
}

// NewDynamicConfigWatcher builds a watcher bound to logger for configPath.
func NewDynamicConfigWatcher(configPath string, logger *Logger) (*DynamicConfigWatcher, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("ember: config file does not exist: %w", err)
	}
	cfg := argus.Config{
		PollInterval:         2 * time.Second,
		OptimizationStrategy: argus.OptimizationAuto,
		ErrorHandler: func(err error, path string) {
			handleError(WrapError(err, ErrCodeInvalidConfig, "config watcher error").
				WithContext("path", path))
		},
	}
	watcher := argus.New(*cfg.WithDefaults())
	return &DynamicConfigWatcher{configPath: configPath, logger: logger, watcher: watcher}, nil
}

// Start begins watching the configuration file, applying the initial
// level immediately and every subsequent change as it's detected.
func (w *DynamicConfigWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if atomic.LoadInt32(&w.enabled) != 0 {
		return fmt.Errorf("ember: watcher already started")
	}

	if level, _, err := LoadConfigFromJSON(w.configPath); err == nil {
		w.logger.SetMinLevel(level)
	}

	if err := w.watcher.Watch(w.configPath, func(event argus.ChangeEvent) {
		level, _, err := LoadConfigFromJSON(event.Path)
		if err != nil {
			handleError(WrapError(err, ErrCodeInvalidConfig, "config reload failed").
				WithContext("path", event.Path))
			return
		}
		w.logger.SetMinLevel(level)
	}); err != nil {
		return fmt.Errorf("ember: watch setup failed: %w", err)
	}

	if err := w.watcher.Start(); err != nil {
		return fmt.Errorf("ember: watcher start failed: %w", err)
	}
	atomic.StoreInt32(&w.enabled, 1)
	return nil
}

// Stop stops watching the configuration file.
func (w *DynamicConfigWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if atomic.LoadInt32(&w.enabled) == 0 {
		return fmt.Errorf("ember: watcher not running")
	}
	if err := w.watcher.Stop(); err != nil {
		return fmt.Errorf("ember: watcher stop failed: %w", err)
	}
	atomic.StoreInt32(&w.enabled, 0)
	return nil
}

// IsRunning reports whether the watcher is currently active.
func (w *DynamicConfigWatcher) IsRunning() bool { return atomic.LoadInt32(&w.enabled) != 0 }

