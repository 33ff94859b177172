// Package source provides interfaces for producing the value graphs that
// the inspection transport snapshots on demand, supporting various
// acquisition strategies.
//
// Package source 提供按需产生值图以供检查传输快照的接口，
// 支持各种获取策略。
package source

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Provider is the interface that wraps the basic Provide method.
//
// Provide returns the current value graph of a named runtime state source.
// The returned graph must not be mutated concurrently while a snapshot of
// it is being taken.
//
// Provider 是包装基本Provide方法的接口。
//
// Provide 返回命名运行时状态源的当前值图。
// 在对其拍摄快照期间，返回的图不得被并发修改。
type Provider interface {
	Provide(ctx context.Context) (any, error)
}

// ProviderFunc is a function type that implements the Provider interface.
//
// ProviderFunc 是实现Provider接口的函数类型。
type ProviderFunc func(ctx context.Context) (any, error)

// Provide calls the function itself.
//
// Provide 调用函数本身。
func (f ProviderFunc) Provide(ctx context.Context) (any, error) {
	return f(ctx)
}

// NewFunctionProvider creates a new Provider from a function that produces
// a value graph.
//
// NewFunctionProvider 从产生值图的函数创建一个新的Provider。
func NewFunctionProvider(fn func(ctx context.Context) (any, error)) Provider {
	return ProviderFunc(fn)
}

// NewStaticProvider creates a Provider that always returns the same value
// graph. Useful for fixtures and tests.
//
// NewStaticProvider 创建总是返回同一值图的Provider。适用于固定数据和测试。
func NewStaticProvider(v any) Provider {
	return ProviderFunc(func(context.Context) (any, error) {
		return v, nil
	})
}

// FallbackProvider provides a fallback mechanism when the primary provider
// fails.
//
// FallbackProvider 提供当主提供者失败时的后备机制。
type FallbackProvider struct {
	Primary   Provider
	Secondary Provider
}

// Provide attempts the primary provider and falls back to the secondary on
// error.
//
// Provide 尝试主提供者，出错时回退到次要提供者。
func (f *FallbackProvider) Provide(ctx context.Context) (any, error) {
	v, err := f.Primary.Provide(ctx)
	if err != nil && f.Secondary != nil {
		return f.Secondary.Provide(ctx)
	}
	return v, err
}

// NewFallbackProvider creates a new FallbackProvider with the given primary
// and secondary providers.
//
// NewFallbackProvider 使用给定的主提供者和次要提供者创建一个新的
// FallbackProvider。
func NewFallbackProvider(primary, secondary Provider) *FallbackProvider {
	return &FallbackProvider{
		Primary:   primary,
		Secondary: secondary,
	}
}

// Registry is a thread-safe name-to-provider mapping used by the inspection
// transport to resolve snapshot targets.
//
// Registry 是检查传输用来解析快照目标的线程安全的名称到提供者映射。
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
//
// NewRegistry 创建一个空的提供者注册表。
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a named provider. Registering a duplicate name is an error
// so that two subsystems cannot silently shadow each other's state.
//
// Register 添加一个命名提供者。重复注册同一名称是错误，
// 防止两个子系统悄悄遮蔽彼此的状态。
func (r *Registry) Register(name string, p Provider) error {
	if name == "" {
		return fmt.Errorf("source: provider name is empty")
	}
	if p == nil {
		return fmt.Errorf("source: provider %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.providers[name]; dup {
		return fmt.Errorf("source: provider %q already registered", name)
	}
	r.providers[name] = p
	return nil
}

// Get returns the provider registered under name.
//
// Get 返回以name注册的提供者。
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the registered provider names in sorted order.
//
// Names 按排序顺序返回已注册的提供者名称。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
