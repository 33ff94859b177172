// Package metrics 提供编解码器运行时指标采集、统计和输出功能
package metrics

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

const (
	// 默认的Prometheus指标前缀
	defaultMetricPrefix = "snapcodec"
)

// Exporter 提供将编解码器指标导出为Prometheus文本格式的功能
type Exporter struct {
	// 指标收集器引用
	metrics *Metrics

	// 指标前缀
	prefix string

	// 上次导出时间
	lastExportTime time.Time

	// 互斥锁
	mu sync.Mutex
}

// NewExporter 创建一个新的Prometheus文本格式导出器
func NewExporter(metrics *Metrics, prefix string) *Exporter {
	if prefix == "" {
		prefix = defaultMetricPrefix
	}
	return &Exporter{
		metrics:        metrics,
		prefix:         prefix,
		lastExportTime: time.Now(),
	}
}

// Export 导出Prometheus格式的指标并写入w
func (e *Exporter) Export(w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := e.metrics.Snapshot()
	if snapshot == nil {
		return nil
	}

	var buf bytes.Buffer
	e.lastExportTime = time.Now()

	// 调用计数
	e.addCounter(&buf, "serializes_total", "Total number of successful serialize calls", snapshot.Serializes)
	e.addCounter(&buf, "deserializes_total", "Total number of successful deserialize calls", snapshot.Deserializes)
	e.addCounter(&buf, "serialize_errors_total", "Total number of serialize calls aborted by structural errors", snapshot.SerializeErrors)
	e.addCounter(&buf, "deserialize_errors_total", "Total number of failed deserialize calls", snapshot.DeserializeErrors)

	// 降级与拒绝计数
	e.addCounter(&buf, "guard_trips_total", "Total number of safety guard rejections", snapshot.GuardTrips)
	e.addCounter(&buf, "cycles_total", "Total number of truncated cycles", snapshot.Cycles)
	e.addCounter(&buf, "pass_throughs_total", "Total number of unsupported values copied unchanged", snapshot.PassThroughs)
	e.addCounter(&buf, "rebuilt_total", "Total number of inverse transforms applied", snapshot.Rebuilt)

	// 延迟
	e.addGauge(&buf, "serialize_latency_ns", "Average serialize latency in nanoseconds", float64(snapshot.SerializeLatencyAvg))
	e.addGauge(&buf, "deserialize_latency_ns", "Average deserialize latency in nanoseconds", float64(snapshot.DeserializeLatencyAvg))

	// 按标签的注解计数
	for tag, n := range snapshot.Annotations {
		e.addCounterWithLabels(&buf, "annotations_total", "Total number of annotations recorded by tag", n, fmt.Sprintf(`tag=%q`, tag))
	}

	// 直方图数据
	if snapshot.LatencyHistogram != nil {
		e.addHistogram(&buf, "latency_histogram", "Codec latency histogram in nanoseconds", snapshot.LatencyHistogram)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// addCounter 添加计数器类型指标
func (e *Exporter) addCounter(buf *bytes.Buffer, name, help string, value uint64) {
	metricName := fmt.Sprintf("%s_%s", e.prefix, name)
	fmt.Fprintf(buf, "# HELP %s %s\n", metricName, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", metricName)
	fmt.Fprintf(buf, "%s %d\n\n", metricName, value)
}

// addCounterWithLabels 添加带标签的计数器类型指标
func (e *Exporter) addCounterWithLabels(buf *bytes.Buffer, name, help string, value uint64, labels string) {
	metricName := fmt.Sprintf("%s_%s", e.prefix, name)
	fmt.Fprintf(buf, "# HELP %s %s\n", metricName, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", metricName)
	fmt.Fprintf(buf, "%s{%s} %d\n\n", metricName, labels, value)
}

// addGauge 添加仪表类型指标
func (e *Exporter) addGauge(buf *bytes.Buffer, name, help string, value float64) {
	metricName := fmt.Sprintf("%s_%s", e.prefix, name)
	fmt.Fprintf(buf, "# HELP %s %s\n", metricName, help)
	fmt.Fprintf(buf, "# TYPE %s gauge\n", metricName)
	fmt.Fprintf(buf, "%s %g\n\n", metricName, value)
}

// addHistogram 添加直方图类型指标
func (e *Exporter) addHistogram(buf *bytes.Buffer, name, help string, h *HistogramSnapshot) {
	metricName := fmt.Sprintf("%s_%s", e.prefix, name)
	fmt.Fprintf(buf, "# HELP %s %s\n", metricName, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", metricName)

	var cumulative uint64
	for i, bound := range h.BucketBounds {
		cumulative += h.BucketCounts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%d\"} %d\n", metricName, bound, cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", metricName, h.Count)
	fmt.Fprintf(buf, "%s_sum %d\n", metricName, h.Sum)
	fmt.Fprintf(buf, "%s_count %d\n\n", metricName, h.Count)
}
