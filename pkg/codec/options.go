package codec

import (
	"github.com/yourusername/snapcodec/internal/metrics"
)

// Config holds the configuration parameters for a Codec.
//
// Config 保存Codec的配置参数。
type Config struct {
	// MaxDepth bounds the traversal depth; 0 means unlimited.
	// Transports that accept values from untrusted callers should set a
	// finite bound.
	// MaxDepth 限制遍历深度；0表示无限制。
	// 接受不可信调用方值的传输层应设置有限上限。
	MaxDepth int

	// Strict makes values outside the supported kinds an error instead of
	// a silent pass-through copy.
	// Strict 使支持类型之外的值成为错误而非静默直通复制。
	Strict bool

	// GuardedKeys overrides the default unsafe container key set
	// ("__proto__", "constructor", "prototype") when non-empty.
	// GuardedKeys 非空时覆盖默认的不安全容器键集合
	// （"__proto__"、"constructor"、"prototype"）。
	GuardedKeys []string

	// EnableMetrics turns on metrics collection for this codec.
	// EnableMetrics 为此编解码器开启指标收集。
	EnableMetrics bool

	// HistogramBuckets is the bucket count of the latency histogram when
	// metrics are enabled.
	// HistogramBuckets 是启用指标时延迟直方图的桶数量。
	HistogramBuckets int
}

// DefaultConfig returns a Config with reasonable default values.
//
// DefaultConfig 返回具有合理默认值的Config。
func DefaultConfig() *Config {
	return &Config{
		MaxDepth:         0,
		Strict:           false,
		GuardedKeys:      nil,
		EnableMetrics:    false,
		HistogramBuckets: 10,
	}
}

// Option is a function that configures a Config.
// This pattern allows for flexible and readable configuration of codec
// instances.
//
// Option 是一个配置Config的函数。
// 这种模式允许灵活且可读地配置编解码器实例。
type Option func(*Config)

// WithMaxDepth bounds the traversal depth. If set to 0, traversal depth is
// unlimited.
//
// WithMaxDepth 限制遍历深度。设置为0时遍历深度无限制。
//
// Parameters:
//   - depth: The maximum traversal depth
//
// Returns:
//   - Option: A configuration option
func WithMaxDepth(depth int) Option {
	return func(c *Config) {
		c.MaxDepth = depth
	}
}

// WithStrictMode enables or disables strict mode. In strict mode a value
// outside the supported kinds aborts Serialize instead of passing through
// unchanged.
//
// WithStrictMode 启用或禁用严格模式。严格模式下支持类型之外的值
// 会中止Serialize而非原样直通。
//
// Parameters:
//   - strict: Whether to enable strict mode
//
// Returns:
//   - Option: A configuration option
func WithStrictMode(strict bool) Option {
	return func(c *Config) {
		c.Strict = strict
	}
}

// WithGuardedKeys overrides the set of container keys rejected by the
// safety guard.
//
// WithGuardedKeys 覆盖安全防护拒绝的容器键集合。
//
// Parameters:
//   - keys: The keys to reject
//
// Returns:
//   - Option: A configuration option
func WithGuardedKeys(keys ...string) Option {
	return func(c *Config) {
		c.GuardedKeys = keys
	}
}

// WithMetricsEnabled enables or disables metrics collection.
//
// WithMetricsEnabled 启用或禁用指标收集。
//
// Parameters:
//   - enabled: Whether to enable metrics collection
//
// Returns:
//   - Option: A configuration option
func WithMetricsEnabled(enabled bool) Option {
	return func(c *Config) {
		c.EnableMetrics = enabled
	}
}

// WithHistogramBuckets sets the latency histogram bucket count used when
// metrics are enabled.
//
// WithHistogramBuckets 设置启用指标时使用的延迟直方图桶数量。
//
// Parameters:
//   - buckets: The number of histogram buckets
//
// Returns:
//   - Option: A configuration option
func WithHistogramBuckets(buckets int) Option {
	return func(c *Config) {
		c.HistogramBuckets = buckets
	}
}

// Stats is a point-in-time view of a codec's accumulated metrics.
//
// Stats 是编解码器累积指标的瞬时视图。
type Stats struct {
	// Serializes is the number of successful Serialize calls.
	// Serializes 是成功的Serialize调用次数。
	Serializes uint64

	// Deserializes is the number of successful Deserialize calls.
	// Deserializes 是成功的Deserialize调用次数。
	Deserializes uint64

	// SerializeErrors counts Serialize calls aborted by structural errors.
	// SerializeErrors 统计因结构性错误中止的Serialize调用。
	SerializeErrors uint64

	// DeserializeErrors counts failed Deserialize calls.
	// DeserializeErrors 统计失败的Deserialize调用。
	DeserializeErrors uint64

	// GuardTrips counts safety-guard rejections.
	// GuardTrips 统计安全防护拒绝次数。
	GuardTrips uint64

	// Cycles counts true cycles truncated during encoding.
	// Cycles 统计编码期间截断的真环数量。
	Cycles uint64

	// PassThroughs counts unsupported values copied unchanged.
	// PassThroughs 统计原样复制的不支持值数量。
	PassThroughs uint64

	// Annotations counts recorded annotations by tag name.
	// Annotations 按标签名统计记录的注解数量。
	Annotations map[string]uint64
}

// statsFromSnapshot converts a metrics snapshot into the public Stats form.
func statsFromSnapshot(s *metrics.Snapshot) Stats {
	return Stats{
		Serializes:        s.Serializes,
		Deserializes:      s.Deserializes,
		SerializeErrors:   s.SerializeErrors,
		DeserializeErrors: s.DeserializeErrors,
		GuardTrips:        s.GuardTrips,
		Cycles:            s.Cycles,
		PassThroughs:      s.PassThroughs,
		Annotations:       s.Annotations,
	}
}
