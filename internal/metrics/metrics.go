// Package metrics provides codec runtime metrics collection, statistics,
// and reporting.
// Package metrics 提供编解码器运行时指标采集、统计和输出功能。
//
// This package implements metrics collection with minimal impact on the
// encode/decode path. Counters are updated atomically; the per-tag
// annotation counts use a small mutex-guarded map because the tag
// vocabulary is tiny and updates happen once per Serialize call.
//
// 本包实现对编码/解码路径影响最小的指标收集。计数器以原子方式更新；
// 按标签的注解计数使用小型互斥锁保护的映射，因为标签词汇量很小，
// 且每次Serialize调用只更新一次。
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	snaperrors "github.com/yourusername/snapcodec/pkg/errors"
	"github.com/yourusername/snapcodec/pkg/types"
)

// Config defines metrics configuration options.
// Config 定义指标配置选项。
type Config struct {
	// EnableLatencyHistogram enables latency histogram collection.
	// EnableLatencyHistogram 启用延迟直方图收集。
	EnableLatencyHistogram bool

	// HistogramBuckets specifies the number of buckets in the latency
	// histogram.
	// HistogramBuckets 指定延迟直方图中的桶数量。
	HistogramBuckets int
}

// Metrics is a codec metrics collector.
// It uses atomic operations to ensure thread safety in high-concurrency
// environments.
//
// Metrics 是编解码器指标收集器。
// 使用原子操作确保高并发环境下的线程安全。
type Metrics struct {
	// Call counters / 调用计数
	serializes        uint64 // Successful Serialize calls / 成功的Serialize次数
	deserializes      uint64 // Successful Deserialize calls / 成功的Deserialize次数
	serializeErrors   uint64 // Structural serialize failures / 结构性序列化失败次数
	deserializeErrors uint64 // Deserialize failures / 反序列化失败次数

	// Degradation and rejection counters / 降级与拒绝计数
	guardTrips   uint64 // Safety guard rejections / 安全防护拒绝次数
	cycles       uint64 // Truncated true cycles / 截断的真环次数
	passThroughs uint64 // Unsupported values copied as-is / 原样复制的不支持值次数
	rebuilt      uint64 // Inverse transforms applied by the decoder / 解码器应用的逆向转换次数

	// Latency sums / 延迟总和
	serializeLatencySum   uint64 // Sum of serialize latencies (ns) / 序列化延迟总和（纳秒）
	deserializeLatencySum uint64 // Sum of deserialize latencies (ns) / 反序列化延迟总和（纳秒）

	// Per-tag annotation counts / 按标签的注解计数
	annotations map[string]uint64
	annMu       sync.Mutex

	// Latency histogram over both operations.
	// 覆盖两种操作的延迟直方图。
	latencyHistogram *Histogram

	// Last update timestamp (Unix nano).
	// 最后更新时间（Unix纳秒）。
	lastUpdated int64
}

// New creates a new metrics collector.
//
// New 创建一个新的指标收集器。
//
// Parameters:
//   - config: The metrics configuration
//
// Returns:
//   - *Metrics: A new metrics collector instance
func New(config Config) *Metrics {
	m := &Metrics{
		annotations: make(map[string]uint64),
	}
	if config.EnableLatencyHistogram {
		m.latencyHistogram = NewHistogram(config.HistogramBuckets)
	}
	return m
}

// RecordSerialize records a successful Serialize call.
//
// RecordSerialize 记录一次成功的Serialize调用。
func (m *Metrics) RecordSerialize(d time.Duration, annotations map[string]types.Annotation, cycles, passThroughs int) {
	atomic.AddUint64(&m.serializes, 1)
	atomic.AddUint64(&m.serializeLatencySum, uint64(d.Nanoseconds()))
	atomic.AddUint64(&m.cycles, uint64(cycles))
	atomic.AddUint64(&m.passThroughs, uint64(passThroughs))
	atomic.StoreInt64(&m.lastUpdated, time.Now().UnixNano())

	if len(annotations) > 0 {
		m.annMu.Lock()
		for _, a := range annotations {
			m.annotations[a.Tag]++
		}
		m.annMu.Unlock()
	}
	if m.latencyHistogram != nil {
		m.latencyHistogram.RecordLatency(d.Nanoseconds())
	}
}

// RecordSerializeError records a Serialize call aborted by a structural
// error, classifying guard trips separately.
//
// RecordSerializeError 记录因结构性错误中止的Serialize调用，
// 并单独归类安全防护拒绝。
func (m *Metrics) RecordSerializeError(err error) {
	atomic.AddUint64(&m.serializeErrors, 1)
	if snaperrors.IsUnsafeKey(err) {
		atomic.AddUint64(&m.guardTrips, 1)
	}
	atomic.StoreInt64(&m.lastUpdated, time.Now().UnixNano())
}

// RecordDeserialize records a successful Deserialize call.
//
// RecordDeserialize 记录一次成功的Deserialize调用。
func (m *Metrics) RecordDeserialize(d time.Duration, annotationCount int) {
	atomic.AddUint64(&m.deserializes, 1)
	atomic.AddUint64(&m.rebuilt, uint64(annotationCount))
	atomic.AddUint64(&m.deserializeLatencySum, uint64(d.Nanoseconds()))
	atomic.StoreInt64(&m.lastUpdated, time.Now().UnixNano())

	if m.latencyHistogram != nil {
		m.latencyHistogram.RecordLatency(d.Nanoseconds())
	}
}

// RecordDeserializeError records a failed Deserialize call.
//
// RecordDeserializeError 记录一次失败的Deserialize调用。
func (m *Metrics) RecordDeserializeError(err error) {
	atomic.AddUint64(&m.deserializeErrors, 1)
	if snaperrors.IsUnsafeKey(err) {
		atomic.AddUint64(&m.guardTrips, 1)
	}
	atomic.StoreInt64(&m.lastUpdated, time.Now().UnixNano())
}

// Snapshot is a point-in-time copy of all collected metrics.
// Snapshot 是所有已收集指标的瞬时副本。
type Snapshot struct {
	Serializes        uint64 `json:"serializes"`
	Deserializes      uint64 `json:"deserializes"`
	SerializeErrors   uint64 `json:"serialize_errors"`
	DeserializeErrors uint64 `json:"deserialize_errors"`

	GuardTrips   uint64 `json:"guard_trips"`
	Cycles       uint64 `json:"cycles"`
	PassThroughs uint64 `json:"pass_throughs"`

	// Rebuilt counts the inverse transforms applied by the decoder.
	// Rebuilt 统计解码器应用的逆向转换次数。
	Rebuilt uint64 `json:"rebuilt"`

	// SerializeLatencyAvg is the mean serialize latency in nanoseconds.
	// SerializeLatencyAvg 是平均序列化延迟（纳秒）。
	SerializeLatencyAvg uint64 `json:"serialize_latency_avg_ns"`

	// DeserializeLatencyAvg is the mean deserialize latency in nanoseconds.
	// DeserializeLatencyAvg 是平均反序列化延迟（纳秒）。
	DeserializeLatencyAvg uint64 `json:"deserialize_latency_avg_ns"`

	// Annotations counts recorded annotations by tag name.
	// Annotations 按标签名统计记录的注解数量。
	Annotations map[string]uint64 `json:"annotations"`

	// LatencyHistogram is nil when histogram collection is disabled.
	// LatencyHistogram 在直方图收集禁用时为nil。
	LatencyHistogram *HistogramSnapshot `json:"latency_histogram,omitempty"`

	// LastUpdated is the Unix-nano timestamp of the most recent update.
	// LastUpdated 是最近一次更新的Unix纳秒时间戳。
	LastUpdated int64 `json:"last_updated"`
}

// Snapshot returns a point-in-time copy of the collected metrics.
//
// Snapshot 返回已收集指标的瞬时副本。
func (m *Metrics) Snapshot() *Snapshot {
	s := &Snapshot{
		Serializes:        atomic.LoadUint64(&m.serializes),
		Deserializes:      atomic.LoadUint64(&m.deserializes),
		SerializeErrors:   atomic.LoadUint64(&m.serializeErrors),
		DeserializeErrors: atomic.LoadUint64(&m.deserializeErrors),
		GuardTrips:        atomic.LoadUint64(&m.guardTrips),
		Cycles:            atomic.LoadUint64(&m.cycles),
		PassThroughs:      atomic.LoadUint64(&m.passThroughs),
		Rebuilt:           atomic.LoadUint64(&m.rebuilt),
		LastUpdated:       atomic.LoadInt64(&m.lastUpdated),
	}
	if s.Serializes > 0 {
		s.SerializeLatencyAvg = atomic.LoadUint64(&m.serializeLatencySum) / s.Serializes
	}
	if s.Deserializes > 0 {
		s.DeserializeLatencyAvg = atomic.LoadUint64(&m.deserializeLatencySum) / s.Deserializes
	}

	s.Annotations = make(map[string]uint64, len(m.annotations))
	m.annMu.Lock()
	for tag, n := range m.annotations {
		s.Annotations[tag] = n
	}
	m.annMu.Unlock()

	if m.latencyHistogram != nil {
		s.LatencyHistogram = m.latencyHistogram.GetSnapshot()
	}
	return s
}

// Reset clears all collected metrics.
//
// Reset 清除所有已收集的指标。
func (m *Metrics) Reset() {
	atomic.StoreUint64(&m.serializes, 0)
	atomic.StoreUint64(&m.deserializes, 0)
	atomic.StoreUint64(&m.serializeErrors, 0)
	atomic.StoreUint64(&m.deserializeErrors, 0)
	atomic.StoreUint64(&m.guardTrips, 0)
	atomic.StoreUint64(&m.cycles, 0)
	atomic.StoreUint64(&m.passThroughs, 0)
	atomic.StoreUint64(&m.rebuilt, 0)
	atomic.StoreUint64(&m.serializeLatencySum, 0)
	atomic.StoreUint64(&m.deserializeLatencySum, 0)
	atomic.StoreInt64(&m.lastUpdated, 0)

	m.annMu.Lock()
	m.annotations = make(map[string]uint64)
	m.annMu.Unlock()

	if m.latencyHistogram != nil {
		m.latencyHistogram.Reset()
	}
}
