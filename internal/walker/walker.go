// Package walker implements the encoding traversal: it descends a value
// graph, replaces every extended value with its plain-data form, and
// accumulates the per-path annotation side table.
//
// Cycle detection is identity based. Each container node on the current
// descent path contributes its pointer identity to an ancestor set scoped
// to one Walk call; a node whose identity is already present is a true
// cycle and is truncated to nil with no annotation. A sub-graph merely
// shared between two branches is not on its own ancestor path and is
// therefore copied once per reference, which is the documented behavior.
//
// Package walker 实现编码遍历：下降值图，把每个扩展值替换为其
// 普通数据形式，并累积按路径的注解旁表。
//
// 环检测基于身份。当前下降路径上的每个容器节点将其指针身份加入
// 仅作用于一次Walk调用的祖先集合；身份已存在的节点是真环，
// 被截断为nil且不写注解。仅在两个分支间共享的子图不在自身祖先
// 路径上，因此每个引用各复制一次，这是文档化的行为。
package walker

import (
	"reflect"
	"sort"

	"github.com/yourusername/snapcodec/internal/guard"
	"github.com/yourusername/snapcodec/internal/pathcodec"
	"github.com/yourusername/snapcodec/internal/registry"
	snaperrors "github.com/yourusername/snapcodec/pkg/errors"
	"github.com/yourusername/snapcodec/pkg/types"
)

// Config controls a traversal.
//
// Config 控制一次遍历。
type Config struct {
	// MaxDepth bounds the traversal depth; 0 means unlimited.
	// MaxDepth 限制遍历深度；0表示无限制。
	MaxDepth int

	// Strict makes pass-through values an error instead of a silent copy.
	// Strict 使直通值成为错误而非静默复制。
	Strict bool

	// GuardedKeys overrides the default unsafe-key set when non-empty.
	// GuardedKeys 非空时覆盖默认的不安全键集合。
	GuardedKeys []string
}

// Result is the outcome of one traversal.
//
// Result 是一次遍历的结果。
type Result struct {
	// Plain is the transformed tree, free of extended kinds.
	// Plain 是转换后的树，不含扩展类型。
	Plain any

	// Annotations maps encoded path strings to the extended kind that was
	// transformed away at that path.
	// Annotations 将编码后的路径字符串映射到在该路径上被转换掉的
	// 扩展类型。
	Annotations map[string]types.Annotation

	// Cycles counts the true cycles truncated to nil.
	// Cycles 统计被截断为nil的真环数量。
	Cycles int

	// PassThroughs counts the values copied unchanged because they fall
	// outside the supported kinds.
	// PassThroughs 统计因超出支持类型而原样复制的值数量。
	PassThroughs int
}

// traversal carries the per-call state. It is discarded when Walk returns.
// traversal 承载单次调用状态，Walk返回时即丢弃。
type traversal struct {
	cfg         Config
	guard       *guard.Guard
	ancestors   map[uintptr]struct{}
	annotations map[string]types.Annotation
	cycles      int
	passThrough int
}

// Walk encodes a value graph. It never mutates the input. On a structural
// error (unsafe key, depth bound, strict-mode pass-through) no partial
// result is returned.
//
// Walk 编码一个值图。它绝不修改输入。发生结构性错误
// （不安全键、深度限制、严格模式直通）时不返回部分结果。
func Walk(v any, cfg Config) (*Result, error) {
	t := &traversal{
		cfg:         cfg,
		guard:       guard.New(cfg.GuardedKeys),
		ancestors:   make(map[uintptr]struct{}),
		annotations: make(map[string]types.Annotation),
	}
	plain, err := t.walk(v, pathcodec.Path{})
	if err != nil {
		return nil, err
	}
	return &Result{
		Plain:        plain,
		Annotations:  t.annotations,
		Cycles:       t.cycles,
		PassThroughs: t.passThrough,
	}, nil
}

func (t *traversal) walk(v any, path pathcodec.Path) (any, error) {
	if t.cfg.MaxDepth > 0 && path.Depth() > t.cfg.MaxDepth {
		return nil, snaperrors.Wrap(snaperrors.ErrDepthExceeded, "at path %q (max %d)", path.String(), t.cfg.MaxDepth)
	}

	kind := types.KindOf(v)
	if kind == types.KindPrimitive {
		return v, nil
	}

	// True cycle: the node is its own ancestor. Truncate silently.
	// 真环：节点是自身的祖先。静默截断。
	id, hasID := identityOf(v)
	if hasID {
		if _, onPath := t.ancestors[id]; onPath {
			t.cycles++
			return nil, nil
		}
	}

	if rule, ok := registry.Match(v); ok {
		key := path.String()
		// A lone empty map key renders identically to the root path, so an
		// annotation recorded there would be misapplied to the root during
		// decoding. Refuse it on the encode side, where the input is still
		// in hand.
		// 单独的空映射键与根路径的渲染结果相同，在该处记录的注解会在
		// 解码时被误用到根上。在输入仍然可得的编码侧拒绝它。
		if key == "" && path.Depth() > 0 {
			return nil, snaperrors.Wrap(snaperrors.ErrInvalidPath, "extended value under a lone empty map key is not addressable")
		}
		t.annotations[key] = rule.Tag(v)
		v = rule.Forward(v)
	}

	if hasID {
		t.ancestors[id] = struct{}{}
		defer delete(t.ancestors, id)
	}

	switch c := v.(type) {
	case map[string]any:
		return t.walkMap(c, path)
	case []any:
		return t.walkList(c, path)
	}

	if types.KindOf(v) == types.KindPassThrough {
		if t.cfg.Strict {
			return nil, snaperrors.Wrap(snaperrors.ErrUnsupportedValue, "%T at path %q", v, path.String())
		}
		t.passThrough++
	}
	return v, nil
}

// walkMap copies a plain map, walking each entry. Keys are visited in
// sorted order so repeated encodings of the same graph are identical.
//
// walkMap 复制普通映射并遍历每个条目。键按排序顺序访问，
// 因此同一图的重复编码结果一致。
func (t *traversal) walkMap(m map[string]any, path pathcodec.Path) (any, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(m))
	for _, k := range keys {
		if err := t.guard.Check(k); err != nil {
			return nil, snaperrors.Wrap(err, "at path %q", path.String())
		}
		child, err := t.walk(m[k], path.Child(pathcodec.Key(k)))
		if err != nil {
			return nil, err
		}
		out[k] = child
	}
	return out, nil
}

func (t *traversal) walkList(l []any, path pathcodec.Path) (any, error) {
	out := make([]any, len(l))
	for i, e := range l {
		child, err := t.walk(e, path.Child(pathcodec.Index(i)))
		if err != nil {
			return nil, err
		}
		out[i] = child
	}
	return out, nil
}

// identityOf returns a stable identity for container-shaped values. Slice
// identity is the backing-array pointer, which only exists for non-empty
// slices; an empty slice has no children and cannot participate in a cycle.
//
// identityOf 返回容器形态值的稳定身份。切片身份是底层数组指针，
// 仅对非空切片存在；空切片没有子节点，不可能参与环。
func identityOf(v any) (uintptr, bool) {
	switch c := v.(type) {
	case map[string]any:
		return reflect.ValueOf(c).Pointer(), true
	case []any:
		if len(c) == 0 {
			return 0, false
		}
		return reflect.ValueOf(c).Pointer(), true
	case *types.Set:
		return reflect.ValueOf(c).Pointer(), true
	case *types.OrderedMap:
		return reflect.ValueOf(c).Pointer(), true
	case *types.ErrorValue:
		return reflect.ValueOf(c).Pointer(), true
	default:
		return 0, false
	}
}
