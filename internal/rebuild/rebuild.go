// Package rebuild implements the decoding half of the codec: given a plain
// tree and its annotation side table, it replays the inverse transforms at
// the recorded paths to restore the original extended values.
//
// Annotations are applied in ascending path-depth order (ties broken
// lexicographically), so a parent is always rebuilt before any path inside
// it is resolved. Navigation therefore has to understand not only plain
// containers but also already-rebuilt extended containers: a set is indexed
// by element position, an ordered map by entry position and then 0 (key) or
// 1 (value), and an error object by its "cause" slot.
//
// Package rebuild 实现编解码器的解码部分：给定普通树及其注解旁表，
// 在记录的路径上重放逆向转换以恢复原始扩展值。
//
// 注解按路径深度升序应用（相同深度按字典序），因此父节点总是在
// 其内部路径被解析之前重建。导航因此不仅要理解普通容器，
// 还要理解已重建的扩展容器：集合按元素位置索引，有序映射先按
// 条目位置再按0（键）或1（值）索引，错误对象按其"cause"槽位索引。
package rebuild

import (
	"sort"

	"github.com/yourusername/snapcodec/internal/guard"
	"github.com/yourusername/snapcodec/internal/pathcodec"
	"github.com/yourusername/snapcodec/internal/registry"
	snaperrors "github.com/yourusername/snapcodec/pkg/errors"
	"github.com/yourusername/snapcodec/pkg/types"
)

// Apply rebuilds extended values inside a structural copy of root. The
// input tree is never mutated. guardedKeys overrides the default unsafe-key
// set when non-empty.
//
// Apply 在root的结构副本内重建扩展值。输入树绝不被修改。
// guardedKeys非空时覆盖默认的不安全键集合。
func Apply(root any, annotations map[string]types.Annotation, guardedKeys []string) (any, error) {
	work := deepCopy(root)
	if len(annotations) == 0 {
		return work, nil
	}

	g := guard.New(guardedKeys)

	type entry struct {
		raw  string
		path pathcodec.Path
		ann  types.Annotation
	}
	entries := make([]entry, 0, len(annotations))
	for raw, a := range annotations {
		p, err := pathcodec.Parse(raw)
		if err != nil {
			return nil, snaperrors.Wrap(snaperrors.ErrInvalidPath, "%v", err)
		}
		entries = append(entries, entry{raw: raw, path: p, ann: a})
	}
	sort.Slice(entries, func(i, j int) bool {
		if d1, d2 := entries[i].path.Depth(), entries[j].path.Depth(); d1 != d2 {
			return d1 < d2
		}
		return entries[i].raw < entries[j].raw
	})

	for _, e := range entries {
		rule, err := registry.Lookup(e.ann)
		if err != nil {
			return nil, err
		}

		if e.path.Depth() == 0 {
			work, err = rule.Inverse(work, e.ann)
			if err != nil {
				return nil, err
			}
			continue
		}

		parent := work
		for _, seg := range e.path[:e.path.Depth()-1] {
			parent, err = step(parent, seg, g)
			if err != nil {
				return nil, snaperrors.Wrap(err, "navigating path %q", e.raw)
			}
		}
		last := e.path[e.path.Depth()-1]
		cur, err := step(parent, last, g)
		if err != nil {
			return nil, snaperrors.Wrap(err, "navigating path %q", e.raw)
		}
		rebuilt, err := rule.Inverse(cur, e.ann)
		if err != nil {
			return nil, err
		}
		if err := assign(parent, last, rebuilt, g); err != nil {
			return nil, snaperrors.Wrap(err, "assigning path %q", e.raw)
		}
	}
	return work, nil
}

// step reads the child addressed by seg out of a container, which may be a
// plain container or an already-rebuilt extended one.
func step(container any, seg pathcodec.Segment, g *guard.Guard) (any, error) {
	switch c := container.(type) {
	case map[string]any:
		key := seg.Key()
		if err := g.Check(key); err != nil {
			return nil, err
		}
		v, ok := c[key]
		if !ok {
			return nil, snaperrors.Wrap(snaperrors.ErrInvalidPath, "missing key %q", key)
		}
		return v, nil
	case []any:
		i, err := seg.Index()
		if err != nil {
			return nil, snaperrors.Wrap(snaperrors.ErrInvalidPath, "%v", err)
		}
		if i < 0 || i >= len(c) {
			return nil, snaperrors.Wrap(snaperrors.ErrInvalidPath, "index %d out of range [0,%d)", i, len(c))
		}
		return c[i], nil
	case *types.Set:
		i, err := seg.Index()
		if err != nil {
			return nil, snaperrors.Wrap(snaperrors.ErrInvalidPath, "%v", err)
		}
		elems := c.Values()
		if i < 0 || i >= len(elems) {
			return nil, snaperrors.Wrap(snaperrors.ErrInvalidPath, "set index %d out of range [0,%d)", i, len(elems))
		}
		return elems[i], nil
	case *types.OrderedMap:
		i, err := seg.Index()
		if err != nil {
			return nil, snaperrors.Wrap(snaperrors.ErrInvalidPath, "%v", err)
		}
		e, err := c.EntryAt(i)
		if err != nil {
			return nil, snaperrors.Wrap(snaperrors.ErrInvalidPath, "%v", err)
		}
		return e, nil
	case *types.Entry:
		i, err := seg.Index()
		if err != nil {
			return nil, snaperrors.Wrap(snaperrors.ErrInvalidPath, "%v", err)
		}
		switch i {
		case 0:
			return c.Key, nil
		case 1:
			return c.Value, nil
		default:
			return nil, snaperrors.Wrap(snaperrors.ErrInvalidPath, "map pair slot %d is not 0 or 1", i)
		}
	case *types.ErrorValue:
		if seg.Key() != "cause" {
			return nil, snaperrors.Wrap(snaperrors.ErrInvalidPath, "error object has no navigable slot %q", seg.Key())
		}
		return c.Cause, nil
	default:
		return nil, snaperrors.Wrap(snaperrors.ErrInvalidPath, "cannot navigate into %T", container)
	}
}

// assign writes a rebuilt value into the slot addressed by seg.
func assign(container any, seg pathcodec.Segment, v any, g *guard.Guard) error {
	switch c := container.(type) {
	case map[string]any:
		key := seg.Key()
		if err := g.Check(key); err != nil {
			return err
		}
		c[key] = v
		return nil
	case []any:
		i, err := seg.Index()
		if err != nil {
			return snaperrors.Wrap(snaperrors.ErrInvalidPath, "%v", err)
		}
		if i < 0 || i >= len(c) {
			return snaperrors.Wrap(snaperrors.ErrInvalidPath, "index %d out of range [0,%d)", i, len(c))
		}
		c[i] = v
		return nil
	case *types.Set:
		i, err := seg.Index()
		if err != nil {
			return snaperrors.Wrap(snaperrors.ErrInvalidPath, "%v", err)
		}
		if err := c.Replace(i, v); err != nil {
			return snaperrors.Wrap(snaperrors.ErrInvalidPath, "%v", err)
		}
		return nil
	case *types.Entry:
		i, err := seg.Index()
		if err != nil {
			return snaperrors.Wrap(snaperrors.ErrInvalidPath, "%v", err)
		}
		switch i {
		case 0:
			c.Key = v
		case 1:
			c.Value = v
		default:
			return snaperrors.Wrap(snaperrors.ErrInvalidPath, "map pair slot %d is not 0 or 1", i)
		}
		return nil
	case *types.ErrorValue:
		if seg.Key() != "cause" {
			return snaperrors.Wrap(snaperrors.ErrInvalidPath, "error object has no assignable slot %q", seg.Key())
		}
		c.Cause = v
		return nil
	default:
		return snaperrors.Wrap(snaperrors.ErrInvalidPath, "cannot assign into %T", container)
	}
}

// deepCopy takes a structural copy of the plain containers of a tree.
// Leaves are shared; the decoder only ever replaces slots, never mutates
// leaves in place.
//
// deepCopy 对树的普通容器做结构复制。叶子是共享的；
// 解码器只替换槽位，从不原地修改叶子。
func deepCopy(v any) any {
	switch c := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(c))
		for k, e := range c {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(c))
		for i, e := range c {
			out[i] = deepCopy(e)
		}
		return out
	default:
		return v
	}
}
