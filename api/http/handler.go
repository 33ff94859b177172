// Package http exposes the codec, the snapshot history and the provider
// registry over a small gin-based HTTP surface for runtime inspection.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/snapcodec/api/source"
	"github.com/yourusername/snapcodec/internal/history"
	"github.com/yourusername/snapcodec/pkg/codec"
	"github.com/yourusername/snapcodec/pkg/errors"
)

// SnapshotHandler handles snapshot-related HTTP requests.
//
// SnapshotHandler 处理与快照相关的HTTP请求。
type SnapshotHandler struct {
	codec   *codec.Codec
	store   *history.Store
	sources *source.Registry
}

// NewSnapshotHandler creates a new snapshot handler.
//
// Parameters:
//   - c: The codec used to serialize and deserialize value graphs
//   - store: The history store for captured snapshots; may be nil to
//     disable persistence
//   - sources: The provider registry for named runtime state sources;
//     may be nil to disable source-based capture
//
// Returns:
//   - *SnapshotHandler: A new snapshot handler instance
func NewSnapshotHandler(c *codec.Codec, store *history.Store, sources *source.Registry) *SnapshotHandler {
	return &SnapshotHandler{
		codec:   c,
		store:   store,
		sources: sources,
	}
}

// RegisterRoutes registers the snapshot routes on the given router group.
//
// RegisterRoutes 在给定的路由组上注册快照路由。
func (h *SnapshotHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/snapshots", h.CreateSnapshot)
	r.GET("/snapshots", h.ListSnapshots)
	r.GET("/snapshots/:id", h.GetSnapshot)
	r.POST("/snapshots/:id/decode", h.DecodeSnapshot)
	r.GET("/sources", h.ListSources)
	r.POST("/sources/:name/snapshot", h.CaptureSource)
	r.GET("/metrics", h.Metrics)
}

// CreateSnapshot serializes the JSON value posted in the request body and
// stores the resulting envelope in the history.
//
// CreateSnapshot 序列化请求体中提交的JSON值，并将生成的信封存入历史记录。
func (h *SnapshotHandler) CreateSnapshot(c *gin.Context) {
	var value any
	if err := c.ShouldBindJSON(&value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}

	env, err := h.codec.Serialize(value)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.IsUnsafeKey(err) || errors.IsUnsupportedValue(err) || errors.IsDepthExceeded(err) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"envelope": env})
		return
	}

	id, err := h.store.Put("http", env)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":       id,
		"envelope": env,
	})
}

// GetSnapshot returns a stored snapshot envelope by its fingerprint ID.
//
// GetSnapshot 按指纹ID返回已存储的快照信封。
func (h *SnapshotHandler) GetSnapshot(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history disabled"})
		return
	}
	id := c.Param("id")
	rec, err := h.store.Get(id)
	if err != nil {
		if errors.IsSnapshotNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found", "id": id})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        rec.ID,
		"source":    rec.Source,
		"stored_at": rec.StoredAt.Format(time.RFC3339Nano),
		"envelope":  rec.Envelope,
	})
}

// ListSnapshots returns the stored snapshot records, newest first.
//
// ListSnapshots 返回已存储的快照记录，最新的在前。
func (h *SnapshotHandler) ListSnapshots(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"count": 0, "snapshots": []any{}})
		return
	}
	records, err := h.store.List()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	items := make([]gin.H, 0, len(records))
	for _, rec := range records {
		items = append(items, gin.H{
			"id":        rec.ID,
			"source":    rec.Source,
			"stored_at": rec.StoredAt.Format(time.RFC3339Nano),
		})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "snapshots": items})
}

// DecodeSnapshot rebuilds the value graph of a stored snapshot and returns
// its plain-tree rendering. Extended values come back in their plain form,
// so the response shows the reconstructed structure rather than raw
// annotations.
//
// DecodeSnapshot 重建已存储快照的值图并返回其普通树渲染。
func (h *SnapshotHandler) DecodeSnapshot(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history disabled"})
		return
	}
	id := c.Param("id")
	rec, err := h.store.Get(id)
	if err != nil {
		if errors.IsSnapshotNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found", "id": id})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	value, err := h.codec.Deserialize(rec.Envelope)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	// Re-encode so extended values render as their plain forms instead of
	// failing JSON marshalling on types like *types.Set.
	env, err := h.codec.Serialize(value)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": rec.ID, "value": env.JSON, "meta": env.Meta})
}

// ListSources returns the names of the registered state providers.
//
// ListSources 返回已注册状态提供者的名称。
func (h *SnapshotHandler) ListSources(c *gin.Context) {
	if h.sources == nil {
		c.JSON(http.StatusOK, gin.H{"count": 0, "sources": []string{}})
		return
	}
	names := h.sources.Names()
	c.JSON(http.StatusOK, gin.H{"count": len(names), "sources": names})
}

// CaptureSource snapshots the current value graph of a named provider and
// stores the envelope in the history.
//
// CaptureSource 对命名提供者的当前值图拍摄快照并将信封存入历史记录。
func (h *SnapshotHandler) CaptureSource(c *gin.Context) {
	if h.sources == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no sources registered"})
		return
	}
	name := c.Param("name")
	provider, ok := h.sources.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown source", "name": name})
		return
	}

	value, err := provider.Provide(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "name": name})
		return
	}

	env, err := h.codec.Serialize(value)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.IsUnsafeKey(err) || errors.IsUnsupportedValue(err) || errors.IsDepthExceeded(err) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error(), "name": name})
		return
	}

	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"name": name, "envelope": env})
		return
	}
	id, err := h.store.Put(name, env)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":       id,
		"name":     name,
		"envelope": env,
	})
}

// Metrics writes the codec metrics in Prometheus text exposition format.
//
// Metrics 以Prometheus文本格式写出编解码器指标。
func (h *SnapshotHandler) Metrics(c *gin.Context) {
	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	if err := h.codec.WriteMetrics(c.Writer); err != nil {
		c.String(http.StatusInternalServerError, "metrics unavailable: %v", err)
	}
}
