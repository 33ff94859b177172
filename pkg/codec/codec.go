// Package codec is the public entry point of the snapshot codec. It
// converts value graphs containing extended kinds (timestamps, pattern
// matchers, sets, ordered maps, error objects, big integers, URLs, typed
// arrays, and the non-finite numeric edge cases) into transport-safe
// envelopes and back.
//
// Package codec 是快照编解码器的公共入口。它将包含扩展类型
// （时间戳、模式匹配器、集合、有序映射、错误对象、大整数、URL、
// 类型数组以及非有限数字边界情况）的值图转换为可安全传输的信封，
// 并支持逆向转换。
package codec

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/yourusername/snapcodec/internal/metrics"
	"github.com/yourusername/snapcodec/internal/rebuild"
	"github.com/yourusername/snapcodec/internal/walker"
	snaperrors "github.com/yourusername/snapcodec/pkg/errors"
	"github.com/yourusername/snapcodec/pkg/types"
)

// Meta is the annotation side table of an envelope.
//
// Meta 是信封的注解旁表。
type Meta struct {
	// Values maps escaped path strings to the extended kind recorded there.
	// The empty path denotes the root value itself.
	// Values 将转义路径字符串映射到该处记录的扩展类型。
	// 空路径表示根值本身。
	Values map[string]types.Annotation `json:"values"`
}

// Envelope is the transport-safe form of a value graph: a plain-data tree
// plus the side table of per-path type annotations. It is constructed fresh
// by each Serialize call and carries no shared state.
//
// Envelope 是值图的可安全传输形式：普通数据树加上按路径的
// 类型注解旁表。每次Serialize调用都会新建它，不携带共享状态。
type Envelope struct {
	// JSON is the plain-data tree, free of extended kinds.
	// JSON 是不含扩展类型的普通数据树。
	JSON any `json:"json"`

	// Meta is omitted entirely when the graph contained no extended kinds.
	// 当图中不含扩展类型时，Meta整体省略。
	Meta *Meta `json:"meta,omitempty"`
}

// Codec serializes and deserializes value graphs. It is safe for concurrent
// use, provided a graph passed to Serialize is not concurrently mutated
// during the call. Traversal settings can be swapped at runtime with
// Reconfigure; metrics collection is fixed at construction.
//
// Codec 序列化和反序列化值图。它可并发使用，前提是传给Serialize的图
// 在调用期间不被并发修改。遍历设置可通过Reconfigure在运行时替换；
// 指标收集在构造时固定。
type Codec struct {
	config  atomic.Pointer[Config]
	metrics *metrics.Metrics
}

// New creates a Codec with the given options applied over DefaultConfig.
//
// New 创建一个Codec，在DefaultConfig之上应用给定选项。
func New(opts ...Option) *Codec {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	c := &Codec{}
	c.config.Store(config)
	if config.EnableMetrics {
		c.metrics = metrics.New(metrics.Config{
			EnableLatencyHistogram: true,
			HistogramBuckets:       config.HistogramBuckets,
		})
	}
	return c
}

// Reconfigure applies options on top of the codec's current configuration
// and swaps the result in atomically. In-flight calls finish with the
// settings they started with. Metrics enablement cannot be changed after
// construction; options that touch it are ignored here.
//
// Reconfigure 在编解码器当前配置之上应用选项并原子地换入结果。
// 进行中的调用以其开始时的设置完成。指标启用状态构造后不可更改；
// 涉及它的选项在此处被忽略。
func (c *Codec) Reconfigure(opts ...Option) {
	current := c.config.Load()
	next := *current
	next.GuardedKeys = append([]string(nil), current.GuardedKeys...)
	for _, opt := range opts {
		opt(&next)
	}
	next.EnableMetrics = current.EnableMetrics
	next.HistogramBuckets = current.HistogramBuckets
	c.config.Store(&next)
}

// Serialize encodes a value graph into an envelope. The input is never
// mutated. It fails only on structural errors: an unsafe container key, a
// traversal deeper than the configured bound, or (in strict mode) an
// unsupported value. True cycles are truncated to null placeholders and
// values outside the supported kinds are copied unchanged; neither is an
// error.
//
// Serialize 将值图编码为信封。输入绝不被修改。它仅在结构性错误时失败：
// 不安全的容器键、超过配置上限的遍历深度，或（严格模式下）不支持的值。
// 真环被截断为null占位符，支持类型之外的值被原样复制；两者都不是错误。
func (c *Codec) Serialize(v any) (*Envelope, error) {
	start := time.Now()
	cfg := c.config.Load()
	res, err := walker.Walk(v, walker.Config{
		MaxDepth:    cfg.MaxDepth,
		Strict:      cfg.Strict,
		GuardedKeys: cfg.GuardedKeys,
	})
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordSerializeError(err)
		}
		return nil, err
	}

	env := &Envelope{JSON: res.Plain}
	if len(res.Annotations) > 0 {
		env.Meta = &Meta{Values: res.Annotations}
	}
	if c.metrics != nil {
		c.metrics.RecordSerialize(time.Since(start), res.Annotations, res.Cycles, res.PassThroughs)
	}
	return env, nil
}

// Deserialize rebuilds the original value graph from an envelope. The
// envelope is never mutated: the decoder works on a structural copy of its
// plain tree. It fails on an unknown annotation tag (a rule-set version
// mismatch between encoder and decoder) and on paths that do not resolve.
//
// Deserialize 从信封重建原始值图。信封绝不被修改：
// 解码器在其普通树的结构副本上工作。遇到未知注解标签
// （编码器与解码器规则集版本不匹配）或无法定位的路径时失败。
func (c *Codec) Deserialize(env *Envelope) (any, error) {
	start := time.Now()
	if env == nil {
		return nil, snaperrors.Wrap(snaperrors.ErrInvalidEnvelope, "nil envelope")
	}

	var annotations map[string]types.Annotation
	if env.Meta != nil {
		annotations = env.Meta.Values
	}
	v, err := rebuild.Apply(env.JSON, annotations, c.config.Load().GuardedKeys)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordDeserializeError(err)
		}
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.RecordDeserialize(time.Since(start), len(annotations))
	}
	return v, nil
}

// Stats reports the codec's accumulated metrics. It returns the zero Stats
// when metrics collection is disabled.
//
// Stats 报告编解码器累积的指标。当指标收集被禁用时返回零值Stats。
func (c *Codec) Stats() Stats {
	if c.metrics == nil {
		return Stats{}
	}
	return statsFromSnapshot(c.metrics.Snapshot())
}

// WriteMetrics renders the codec's metrics in Prometheus text exposition
// format. It writes nothing when metrics collection is disabled.
//
// WriteMetrics 以Prometheus文本导出格式渲染编解码器的指标。
// 当指标收集被禁用时不写出任何内容。
func (c *Codec) WriteMetrics(w io.Writer) error {
	if c.metrics == nil {
		return nil
	}
	return metrics.NewExporter(c.metrics, "snapcodec").Export(w)
}

// defaultCodec backs the package-level entry points.
// defaultCodec 支撑包级入口函数。
var defaultCodec = New()

// Serialize encodes a value graph using the default codec.
//
// Serialize 使用默认编解码器编码值图。
func Serialize(v any) (*Envelope, error) {
	return defaultCodec.Serialize(v)
}

// Deserialize rebuilds a value graph using the default codec.
//
// Deserialize 使用默认编解码器重建值图。
func Deserialize(env *Envelope) (any, error) {
	return defaultCodec.Deserialize(env)
}
