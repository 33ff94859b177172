// Package metrics 提供编解码器运行时指标采集、统计和输出功能
package metrics

import (
	"math"
	"sync"
	"sync/atomic"
)

// Histogram 延迟直方图，用于统计编码/解码延迟分布
// 使用原子操作确保高并发安全
type Histogram struct {
	// 桶边界，单位为纳秒
	bucketBounds []int64
	// 桶计数
	bucketCounts []uint64
	// 总计数
	count uint64
	// 最小值
	min int64
	// 最大值
	max int64
	// 总和
	sum int64
	// 互斥锁，用于保护非原子操作
	mu sync.RWMutex
}

// HistogramSnapshot 直方图快照
type HistogramSnapshot struct {
	BucketBounds []int64  `json:"bucket_bounds"`
	BucketCounts []uint64 `json:"bucket_counts"`
	Count        uint64   `json:"count"`
	Min          int64    `json:"min"`
	Max          int64    `json:"max"`
	Sum          int64    `json:"sum"`
	Mean         float64  `json:"mean"`
	P50          int64    `json:"p50"`
	P90          int64    `json:"p90"`
	P99          int64    `json:"p99"`
}

// NewHistogram 创建一个新的直方图
// bucketCount 为桶数量，将自动生成指数分布的桶边界
func NewHistogram(bucketCount int) *Histogram {
	if bucketCount <= 0 {
		bucketCount = 10 // 默认10个桶
	}

	// 创建指数分布的桶边界，从100纳秒到1秒
	// 编解码是纯内存操作，延迟范围远小于网络或磁盘
	minLatency := float64(100)        // 100纳秒
	maxLatency := float64(1000000000) // 1秒（纳秒单位）

	bucketBounds := make([]int64, bucketCount+1)
	for i := 0; i <= bucketCount; i++ {
		// 使用对数尺度
		power := float64(i) / float64(bucketCount)
		bucketBounds[i] = int64(minLatency * math.Pow(maxLatency/minLatency, power))
	}

	return &Histogram{
		bucketBounds: bucketBounds,
		bucketCounts: make([]uint64, bucketCount+1),
		min:          math.MaxInt64,
		max:          0,
		sum:          0,
		count:        0,
	}
}

// RecordLatency 记录一个延迟值
func (h *Histogram) RecordLatency(latencyNs int64) {
	// 更新最小值、最大值和总和
	h.updateStats(latencyNs)

	// 找到对应的桶并增加计数
	bucketIndex := h.findBucket(latencyNs)
	atomic.AddUint64(&h.bucketCounts[bucketIndex], 1)
	atomic.AddUint64(&h.count, 1)
}

// updateStats 更新统计信息
func (h *Histogram) updateStats(latencyNs int64) {
	// 更新最小值
	for {
		min := atomic.LoadInt64(&h.min)
		if latencyNs >= min {
			break
		}
		if atomic.CompareAndSwapInt64(&h.min, min, latencyNs) {
			break
		}
	}

	// 更新最大值
	for {
		max := atomic.LoadInt64(&h.max)
		if latencyNs <= max {
			break
		}
		if atomic.CompareAndSwapInt64(&h.max, max, latencyNs) {
			break
		}
	}

	// 更新总和
	atomic.AddInt64(&h.sum, latencyNs)
}

// findBucket 找到延迟值对应的桶索引
func (h *Histogram) findBucket(latencyNs int64) int {
	// 二分查找
	i, j := 0, len(h.bucketBounds)-1
	for i < j {
		mid := (i + j) / 2
		if latencyNs > h.bucketBounds[mid] {
			i = mid + 1
		} else {
			j = mid
		}
	}
	return i
}

// Reset 重置直方图
func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.bucketCounts {
		atomic.StoreUint64(&h.bucketCounts[i], 0)
	}

	atomic.StoreUint64(&h.count, 0)
	atomic.StoreInt64(&h.min, math.MaxInt64)
	atomic.StoreInt64(&h.max, 0)
	atomic.StoreInt64(&h.sum, 0)
}

// GetSnapshot 获取直方图快照
func (h *Histogram) GetSnapshot() *HistogramSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := atomic.LoadUint64(&h.count)
	if count == 0 {
		return &HistogramSnapshot{
			BucketBounds: h.bucketBounds,
			BucketCounts: make([]uint64, len(h.bucketCounts)),
		}
	}

	counts := make([]uint64, len(h.bucketCounts))
	for i := range h.bucketCounts {
		counts[i] = atomic.LoadUint64(&h.bucketCounts[i])
	}

	sum := atomic.LoadInt64(&h.sum)
	snapshot := &HistogramSnapshot{
		BucketBounds: h.bucketBounds,
		BucketCounts: counts,
		Count:        count,
		Min:          atomic.LoadInt64(&h.min),
		Max:          atomic.LoadInt64(&h.max),
		Sum:          sum,
		Mean:         float64(sum) / float64(count),
	}
	snapshot.P50 = h.percentile(counts, count, 0.50)
	snapshot.P90 = h.percentile(counts, count, 0.90)
	snapshot.P99 = h.percentile(counts, count, 0.99)
	return snapshot
}

// percentile 根据桶计数估算百分位延迟
// 返回目标百分位所在桶的上边界，作为保守估计
func (h *Histogram) percentile(counts []uint64, total uint64, q float64) int64 {
	target := uint64(math.Ceil(q * float64(total)))
	var cumulative uint64
	for i, c := range counts {
		cumulative += c
		if cumulative >= target {
			return h.bucketBounds[i]
		}
	}
	return h.bucketBounds[len(h.bucketBounds)-1]
}
