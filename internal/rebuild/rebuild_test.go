// Package rebuild — this file contains tests for the decode-side annotation
// replay: ordering, navigation through rebuilt containers, guarding, and
// input immutability.
//
// Package rebuild — 本文件包含解码侧注解重放的测试：顺序、
// 穿越已重建容器的导航、防护以及输入不可变性。
package rebuild

import (
	"math"
	"math/big"
	"reflect"
	"testing"
	"time"

	snaperrors "github.com/yourusername/snapcodec/pkg/errors"
	"github.com/yourusername/snapcodec/pkg/types"
)

// TestApplyNoAnnotations verifies that an empty side table yields a
// structural copy of the input.
//
// TestApplyNoAnnotations 验证空旁表产生输入的结构副本。
func TestApplyNoAnnotations(t *testing.T) {
	in := map[string]any{"a": []any{1, 2}}
	out, err := Apply(in, nil, nil)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("Output %#v differs from input %#v", out, in)
	}

	// The copy must not alias the input containers
	// 副本不得与输入容器共享
	out.(map[string]any)["a"].([]any)[0] = 99
	if in["a"].([]any)[0] != 1 {
		t.Error("Apply aliased the input tree")
	}
}

// TestApplyRootAnnotation verifies an annotation at the empty path rebuilds
// the root value itself.
//
// TestApplyRootAnnotation 验证空路径上的注解重建根值本身。
func TestApplyRootAnnotation(t *testing.T) {
	out, err := Apply("2025-01-02T03:04:05Z", map[string]types.Annotation{
		"": types.Simple("timestamp"),
	}, nil)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	ts, ok := out.(time.Time)
	if !ok {
		t.Fatalf("Rebuilt %T, expected time.Time", out)
	}
	if !ts.Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("Rebuilt %v", ts)
	}
}

// TestApplyNestedInsideSet verifies parent-before-child ordering: the set at
// the shallower path is rebuilt first, then the timestamp inside it is
// rebuilt by navigating the set by element position.
//
// TestApplyNestedInsideSet 验证先父后子的顺序：较浅路径上的集合
// 先重建，随后通过按元素位置导航集合重建其内部的时间戳。
func TestApplyNestedInsideSet(t *testing.T) {
	plain := map[string]any{
		"tags": []any{"a", "2025-01-01T00:00:00Z"},
	}
	out, err := Apply(plain, map[string]types.Annotation{
		"tags":   types.Simple("set"),
		"tags.1": types.Simple("timestamp"),
	}, nil)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	s, ok := out.(map[string]any)["tags"].(*types.Set)
	if !ok {
		t.Fatalf("tags rebuilt as %T, expected *types.Set", out.(map[string]any)["tags"])
	}
	if _, ok := s.Values()[1].(time.Time); !ok {
		t.Errorf("Set element 1 = %T, expected time.Time", s.Values()[1])
	}
}

// TestApplyNestedInsideOrderedMap verifies navigation through a rebuilt
// ordered map: entry position, then slot 0 for the key or 1 for the value.
//
// TestApplyNestedInsideOrderedMap 验证穿越已重建有序映射的导航：
// 条目位置，然后槽位0为键、1为值。
func TestApplyNestedInsideOrderedMap(t *testing.T) {
	plain := []any{
		[]any{"when", "2025-06-01T12:00:00Z"},
		[]any{"9007199254740993", "big-key"},
	}
	out, err := Apply(plain, map[string]types.Annotation{
		"":    types.Simple("map"),
		"0.1": types.Simple("timestamp"),
		"1.0": types.Simple("bigint"),
	}, nil)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	m, ok := out.(*types.OrderedMap)
	if !ok {
		t.Fatalf("Rebuilt %T, expected *types.OrderedMap", out)
	}
	entries := m.Entries()
	if _, ok := entries[0].Value.(time.Time); !ok {
		t.Errorf("Entry 0 value = %T, expected time.Time", entries[0].Value)
	}
	if _, ok := entries[1].Key.(*big.Int); !ok {
		t.Errorf("Entry 1 key = %T, expected *big.Int", entries[1].Key)
	}
}

// TestApplyNestedInsideErrorCause verifies navigation into a rebuilt error
// object's cause slot.
//
// TestApplyNestedInsideErrorCause 验证导航进入已重建错误对象的
// cause槽位。
func TestApplyNestedInsideErrorCause(t *testing.T) {
	plain := map[string]any{
		"err": map[string]any{
			"name":    "WrapError",
			"message": "outer",
			"cause":   "NaN",
		},
	}
	out, err := Apply(plain, map[string]types.Annotation{
		"err":       types.Simple("error"),
		"err.cause": types.Simple("number"),
	}, nil)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	e := out.(map[string]any)["err"].(*types.ErrorValue)
	f, ok := e.Cause.(float64)
	if !ok || !math.IsNaN(f) {
		t.Errorf("Cause = %#v, expected NaN", e.Cause)
	}
}

// TestApplyUnknownAnnotation verifies decoding fails loudly on a tag outside
// the rule vocabulary.
//
// TestApplyUnknownAnnotation 验证遇到规则词汇之外的标签时解码
// 显式失败。
func TestApplyUnknownAnnotation(t *testing.T) {
	_, err := Apply("x", map[string]types.Annotation{
		"": types.Simple("not-a-real-kind"),
	}, nil)
	if err == nil {
		t.Fatal("Apply succeeded, expected unknown-annotation error")
	}
	if !snaperrors.IsUnknownAnnotation(err) {
		t.Errorf("Error does not wrap ErrUnknownAnnotation: %v", err)
	}
}

// TestApplyInvalidPaths verifies unresolvable and malformed paths fail.
//
// TestApplyInvalidPaths 验证无法定位和格式错误的路径会失败。
func TestApplyInvalidPaths(t *testing.T) {
	plain := map[string]any{"a": []any{1}}

	cases := map[string]types.Annotation{
		"missing":   types.Simple("timestamp"),
		"a.5":       types.Simple("timestamp"),
		`dangling\`: types.Simple("timestamp"),
	}
	for raw, ann := range cases {
		_, err := Apply(plain, map[string]types.Annotation{raw: ann}, nil)
		if err == nil {
			t.Errorf("Apply succeeded for path %q, expected error", raw)
			continue
		}
		if !snaperrors.IsInvalidPath(err) {
			t.Errorf("Path %q error does not wrap ErrInvalidPath: %v", raw, err)
		}
	}
}

// TestApplyGuardsNavigatedKeys verifies envelope paths through guarded keys
// are rejected even when the tree itself contains them.
//
// TestApplyGuardsNavigatedKeys 验证即便树本身含有防护键，
// 途经防护键的信封路径也会被拒绝。
func TestApplyGuardsNavigatedKeys(t *testing.T) {
	plain := map[string]any{"__proto__": "2025-01-01T00:00:00Z"}
	_, err := Apply(plain, map[string]types.Annotation{
		"__proto__": types.Simple("timestamp"),
	}, nil)
	if err == nil {
		t.Fatal("Apply succeeded, expected guard rejection")
	}
	if !snaperrors.IsUnsafeKey(err) {
		t.Errorf("Error does not wrap ErrUnsafeKey: %v", err)
	}
}

// TestApplyDoesNotMutateInput verifies the input plain tree survives a
// decode untouched.
//
// TestApplyDoesNotMutateInput 验证输入普通树在解码后保持原样。
func TestApplyDoesNotMutateInput(t *testing.T) {
	plain := map[string]any{"when": "2025-01-01T00:00:00Z"}
	_, err := Apply(plain, map[string]types.Annotation{
		"when": types.Simple("timestamp"),
	}, nil)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if _, ok := plain["when"].(string); !ok {
		t.Errorf("Input mutated: when = %T", plain["when"])
	}
}
