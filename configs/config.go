// Package configs provides configuration structures and utilities for SnapCodec.
// It offers mechanisms for loading, validating, and saving configuration from various sources
// including JSON and YAML files. The package defines a comprehensive configuration structure
// that controls all aspects of the codec system.
//
// Package configs 提供SnapCodec的配置结构和工具。
// 它提供从各种来源（包括JSON和YAML文件）加载、验证和保存配置的机制。
// 该包定义了一个全面的配置结构，用于控制编解码系统的所有方面。
package configs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for SnapCodec.
// It contains all settings needed to configure the codec system,
// organized into logical sections for different components.
//
// Config 表示SnapCodec的完整配置。
// 它包含配置编解码系统所需的所有设置，
// 按不同组件的逻辑部分进行组织。
type Config struct {
	// Codec contains core serialization settings like depth limits and guards
	// Codec 包含核心序列化设置，如深度限制和防护
	Codec CodecConfig `json:"codec" yaml:"codec" mapstructure:"codec"`

	// History defines how captured snapshots are retained and expired
	// History 定义捕获的快照如何保留和过期
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`

	// HTTP configures the inspection HTTP surface
	// HTTP 配置检查HTTP接口
	HTTP HTTPConfig `json:"http" yaml:"http" mapstructure:"http"`

	// Metrics configures performance monitoring and statistics
	// Metrics 配置性能监控和统计
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`

	// Log configures the logging behavior
	// Log 配置日志行为
	Log LogConfig `json:"log" yaml:"log" mapstructure:"log"`

	// Extensions configures optional features like hot reloading
	// Extensions 配置可选功能，如热重载
	Extensions ExtensionsConfig `json:"extensions" yaml:"extensions" mapstructure:"extensions"`

	// Extra allows for custom configuration options
	// Extra 允许自定义配置选项
	Extra map[string]interface{} `json:"extra" yaml:"extra" mapstructure:"extra"`
}

// CodecConfig contains settings for the codec itself.
// These settings control the core behavior of serialization,
// such as traversal limits and key safety.
//
// CodecConfig 包含编解码器本身的设置。
// 这些设置控制序列化的核心行为，
// 如遍历限制和键安全。
type CodecConfig struct {
	// Name is the identifier for this codec instance
	// Name 是此编解码器实例的标识符
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// MaxDepth is the maximum nesting depth the walker will traverse
	// MaxDepth 是遍历器将遍历的最大嵌套深度
	MaxDepth int `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth"`

	// Strict makes serialization fail on unsupported values instead of
	// passing them through unchanged
	// Strict 使序列化在遇到不支持的值时失败，而不是原样透传
	Strict bool `json:"strict" yaml:"strict" mapstructure:"strict"`

	// GuardedKeys is the list of map keys rejected during encode and decode
	// (empty = built-in defaults)
	// GuardedKeys 是在编码和解码过程中被拒绝的映射键列表（空 = 内置默认值）
	GuardedKeys []string `json:"guarded_keys" yaml:"guarded_keys" mapstructure:"guarded_keys"`

	// Wire selects the envelope wire format ("json", "json-pretty", "gob")
	// Wire 选择信封的传输格式（"json"、"json-pretty"、"gob"）
	Wire string `json:"wire" yaml:"wire" mapstructure:"wire"`
}

// HistoryConfig contains settings for the snapshot history store.
// These settings control how many captured envelopes are retained
// and when they expire.
//
// HistoryConfig 包含快照历史存储的设置。
// 这些设置控制保留多少捕获的信封以及它们何时过期。
type HistoryConfig struct {
	// Enable determines whether snapshot history is active
	// Enable 确定是否启用快照历史
	Enable bool `json:"enable" yaml:"enable" mapstructure:"enable"`

	// MaxSnapshots is the maximum number of snapshots retained (0 = unlimited)
	// MaxSnapshots 是保留的最大快照数量（0 = 无限制）
	MaxSnapshots int `json:"max_snapshots" yaml:"max_snapshots" mapstructure:"max_snapshots"`

	// TTL is how long a snapshot is retained (negative = never expires)
	// TTL 是快照的保留时长（负值 = 永不过期）
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`

	// CleanInterval is how often expired snapshots are removed
	// CleanInterval 是清除过期快照的频率
	CleanInterval time.Duration `json:"clean_interval" yaml:"clean_interval" mapstructure:"clean_interval"`
}

// HTTPConfig contains settings for the inspection HTTP surface.
// These settings control whether and where the snapshot routes
// are served.
//
// HTTPConfig 包含检查HTTP接口的设置。
// 这些设置控制是否及在何处提供快照路由。
type HTTPConfig struct {
	// Enable determines whether the HTTP surface is served
	// Enable 确定是否提供HTTP接口
	Enable bool `json:"enable" yaml:"enable" mapstructure:"enable"`

	// Addr is the listen address, e.g. ":8080"
	// Addr 是监听地址，例如":8080"
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// BasePath is the route prefix for snapshot endpoints
	// BasePath 是快照端点的路由前缀
	BasePath string `json:"base_path" yaml:"base_path" mapstructure:"base_path"`

	// ReadTimeout bounds how long reading a request may take
	// ReadTimeout 限制读取请求的最长时间
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`

	// WriteTimeout bounds how long writing a response may take
	// WriteTimeout 限制写入响应的最长时间
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
}

// MetricsConfig contains settings for metrics collection.
// These settings control how performance data is collected,
// processed, and exposed for monitoring.
//
// MetricsConfig 包含指标收集的设置。
// 这些设置控制如何收集、处理和暴露性能数据以进行监控。
type MetricsConfig struct {
	// Enable determines whether metrics collection is active
	// Enable 确定是否启用指标收集
	Enable bool `json:"enable" yaml:"enable" mapstructure:"enable"`

	// EnableLatencyHistogram enables latency distribution tracking
	// EnableLatencyHistogram 启用延迟分布跟踪
	EnableLatencyHistogram bool `json:"enable_latency_histogram" yaml:"enable_latency_histogram" mapstructure:"enable_latency_histogram"`

	// HistogramBuckets is the number of exponential latency buckets
	// HistogramBuckets 是指数延迟桶的数量
	HistogramBuckets int `json:"histogram_buckets" yaml:"histogram_buckets" mapstructure:"histogram_buckets"`
}

// LogConfig contains settings for logging.
// These settings control the logging behavior, including
// log level, format, and output destination.
//
// LogConfig 包含日志记录的设置。
// 这些设置控制日志行为，包括日志级别、格式和输出目的地。
type LogConfig struct {
	// Level sets the minimum log level ("debug", "info", "warn", "error")
	// Level 设置最低日志级别（"debug"、"info"、"warn"、"error"）
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format specifies the log format ("text", "json")
	// Format 指定日志格式（"text"、"json"）
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// Output determines where logs are written ("stdout", "stderr", "file")
	// Output 确定日志写入的位置（"stdout"、"stderr"、"file"）
	Output string `json:"output" yaml:"output" mapstructure:"output"`

	// FilePath is the path to the log file when Output is "file"
	// FilePath 是当Output为"file"时的日志文件路径
	FilePath string `json:"file_path" yaml:"file_path" mapstructure:"file_path"`
}

// ExtensionsConfig contains settings for extensions.
// These settings control optional features that extend
// the core functionality of the codec.
//
// ExtensionsConfig 包含扩展的设置。
// 这些设置控制扩展编解码器核心功能的可选功能。
type ExtensionsConfig struct {
	// HotReload contains settings for dynamic configuration reloading
	// HotReload 包含动态配置重新加载的设置
	HotReload HotReloadConfig `json:"hot_reload" yaml:"hot_reload" mapstructure:"hot_reload"`
}

// HotReloadConfig contains settings for hot reloading.
// These settings control how configuration changes are
// detected and applied without system restart.
//
// HotReloadConfig 包含热重载的设置。
// 这些设置控制如何检测和应用配置更改而无需重启系统。
type HotReloadConfig struct {
	// Enable determines whether hot reloading is active
	// Enable 确定是否启用热重载
	Enable bool `json:"enable" yaml:"enable" mapstructure:"enable"`

	// WatchInterval is how often to check for configuration changes
	// WatchInterval 是检查配置更改的频率
	WatchInterval time.Duration `json:"watch_interval" yaml:"watch_interval" mapstructure:"watch_interval"`
}

// DefaultConfig returns a new Config with default values.
// This provides a starting point for configuration with reasonable defaults
// for all settings, which can then be customized as needed.
//
// DefaultConfig 返回具有默认值的新Config。
// 这为所有设置提供了具有合理默认值的配置起点，
// 然后可以根据需要进行自定义。
//
// Returns:
//   - *Config: A new configuration instance with default values
//
// 返回：
//   - *Config: 具有默认值的新配置实例
func DefaultConfig() *Config {
	return &Config{
		Codec: CodecConfig{
			Name:     "snapcodec",
			MaxDepth: 64,
			Strict:   false,
			Wire:     "json",
		},
		History: HistoryConfig{
			Enable:        true,
			MaxSnapshots:  1024,
			TTL:           15 * time.Minute,
			CleanInterval: time.Minute,
		},
		HTTP: HTTPConfig{
			Enable:       false,
			Addr:         ":8080",
			BasePath:     "/api/v1",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enable:                 true,
			EnableLatencyHistogram: true,
			HistogramBuckets:       24,
		},
		Log: LogConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "/var/log/snapcodec.log",
		},
		Extensions: ExtensionsConfig{
			HotReload: HotReloadConfig{
				Enable:        false,
				WatchInterval: 30 * time.Second,
			},
		},
		Extra: make(map[string]interface{}),
	}
}

// LoadFromFile loads configuration from a file.
// It supports both YAML and JSON formats, automatically
// detecting the format based on the file extension.
//
// LoadFromFile 从文件加载配置。
// 它支持YAML和JSON格式，根据文件扩展名自动检测格式。
//
// Parameters:
//   - filename: Path to the configuration file
//
// Returns:
//   - *Config: The loaded configuration
//   - error: An error if loading fails
//
// 参数：
//   - filename: 配置文件的路径
//
// 返回：
//   - *Config: 加载的配置
//   - error: 如果加载失败则返回错误
func LoadFromFile(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open configuration file: %w", err)
	}
	defer file.Close()

	config := DefaultConfig()
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(file).Decode(config)
	case ".json":
		err = json.NewDecoder(file).Decode(config)
	default:
		return nil, fmt.Errorf("unsupported configuration file format: %s", ext)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	return config, nil
}

// LoadFromReader loads configuration from an io.Reader.
// This allows loading configuration from sources other than files,
// such as network streams or in-memory data.
//
// LoadFromReader 从io.Reader加载配置。
// 这允许从文件以外的源加载配置，
// 如网络流或内存中的数据。
//
// Parameters:
//   - r: The reader providing the configuration data
//   - format: The format of the data ("json", "yaml", or "yml")
//
// Returns:
//   - *Config: The loaded configuration
//   - error: An error if loading fails
//
// 参数：
//   - r: 提供配置数据的读取器
//   - format: 数据的格式（"json"、"yaml"或"yml"）
//
// 返回：
//   - *Config: 加载的配置
//   - error: 如果加载失败则返回错误
func LoadFromReader(r io.Reader, format string) (*Config, error) {
	config := DefaultConfig()
	var err error

	switch strings.ToLower(format) {
	case "yaml", "yml":
		err = yaml.NewDecoder(r).Decode(config)
	case "json":
		err = json.NewDecoder(r).Decode(config)
	default:
		return nil, fmt.Errorf("unsupported configuration format: %s", format)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a file.
// It supports both YAML and JSON formats, automatically
// selecting the format based on the file extension.
//
// SaveToFile 将配置保存到文件。
// 它支持YAML和JSON格式，根据文件扩展名自动选择格式。
//
// Parameters:
//   - filename: Path where the configuration will be saved
//
// Returns:
//   - error: An error if saving fails
//
// 参数：
//   - filename: 配置将保存的路径
//
// 返回：
//   - error: 如果保存失败则返回错误
func (c *Config) SaveToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".yaml", ".yml":
		encoder := yaml.NewEncoder(file)
		defer encoder.Close()
		err = encoder.Encode(c)
	case ".json":
		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(c)
	default:
		return fmt.Errorf("unsupported configuration file format: %s", ext)
	}

	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	return nil
}

// Validate validates the configuration.
// It checks that all settings have valid values and
// that there are no conflicts or inconsistencies.
//
// Validate 验证配置。
// 它检查所有设置是否具有有效值，
// 并且没有冲突或不一致。
//
// Returns:
//   - error: An error describing the validation failure, or nil if valid
//
// 返回：
//   - error: 描述验证失败的错误，如果有效则为nil
func (c *Config) Validate() error {
	// Validate codec settings
	// 验证编解码器设置
	if c.Codec.MaxDepth <= 0 {
		return fmt.Errorf("codec.max_depth must be positive")
	}
	switch c.Codec.Wire {
	case "json", "json-pretty", "gob":
		// Valid wire formats
		// 有效的传输格式
	default:
		return fmt.Errorf("codec.wire must be one of: json, json-pretty, gob")
	}
	for _, key := range c.Codec.GuardedKeys {
		if key == "" {
			return fmt.Errorf("codec.guarded_keys must not contain empty keys")
		}
	}

	// Validate history settings
	// 验证历史设置
	if c.History.MaxSnapshots < 0 {
		return fmt.Errorf("history.max_snapshots must be non-negative")
	}
	if c.History.Enable && c.History.CleanInterval < time.Second {
		return fmt.Errorf("history.clean_interval must be at least 1 second")
	}

	// Validate HTTP settings
	// 验证HTTP设置
	if c.HTTP.Enable {
		if c.HTTP.Addr == "" {
			return fmt.Errorf("http.addr must be specified when http.enable is true")
		}
		if !strings.HasPrefix(c.HTTP.BasePath, "/") {
			return fmt.Errorf("http.base_path must start with '/'")
		}
		if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
			return fmt.Errorf("http timeouts must be positive")
		}
	}

	// Validate metrics settings
	// 验证指标设置
	if c.Metrics.Enable && c.Metrics.HistogramBuckets <= 0 {
		return fmt.Errorf("metrics.histogram_buckets must be positive")
	}

	// Validate log settings
	// 验证日志设置
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
		// 有效级别
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
	switch c.Log.Format {
	case "text", "json":
		// Valid formats
		// 有效格式
	default:
		return fmt.Errorf("log.format must be one of: text, json")
	}
	switch c.Log.Output {
	case "stdout", "stderr", "file":
		// Valid outputs
		// 有效输出
	default:
		return fmt.Errorf("log.output must be one of: stdout, stderr, file")
	}
	if c.Log.Output == "file" && c.Log.FilePath == "" {
		return fmt.Errorf("log.file_path must be specified when log.output is 'file'")
	}

	// Validate extensions settings
	// 验证扩展设置
	if c.Extensions.HotReload.Enable && c.Extensions.HotReload.WatchInterval < time.Second {
		return fmt.Errorf("extensions.hot_reload.watch_interval must be at least 1 second")
	}

	return nil
}
