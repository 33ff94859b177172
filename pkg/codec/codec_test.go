// Package codec — this file contains the round-trip tests for the public
// Serialize/Deserialize surface: every extended kind, envelope shape,
// idempotence, and the failure modes.
//
// Package codec — 本文件包含公共Serialize/Deserialize接口的往返测试：
// 每种扩展类型、信封形态、幂等性以及失败模式。
package codec

import (
	"encoding/json"
	"math"
	"math/big"
	"net/url"
	"reflect"
	"testing"
	"time"

	snaperrors "github.com/yourusername/snapcodec/pkg/errors"
	"github.com/yourusername/snapcodec/pkg/types"
)

// roundTrip serializes v and deserializes the envelope back.
//
// roundTrip 序列化v并将信封反序列化回来。
func roundTrip(t *testing.T, v any) any {
	t.Helper()
	env, err := Serialize(v)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	out, err := Deserialize(env)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	return out
}

// TestRoundTripTimestamp verifies a timestamp keeps its instant.
//
// TestRoundTripTimestamp 验证时间戳保留其时刻。
func TestRoundTripTimestamp(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 589000000, time.UTC)
	out := roundTrip(t, map[string]any{"when": ts}).(map[string]any)
	got, ok := out["when"].(time.Time)
	if !ok {
		t.Fatalf("when = %T, expected time.Time", out["when"])
	}
	if !got.Equal(ts) {
		t.Errorf("Rebuilt %v, expected %v", got, ts)
	}
}

// TestRoundTripPattern verifies source and flags survive.
//
// TestRoundTripPattern 验证源码和标志得以保留。
func TestRoundTripPattern(t *testing.T) {
	p := &types.Pattern{Source: "a.b", Flags: "gi"}
	out := roundTrip(t, map[string]any{"p": p}).(map[string]any)
	got, ok := out["p"].(*types.Pattern)
	if !ok {
		t.Fatalf("p = %T, expected *types.Pattern", out["p"])
	}
	if !got.Equal(p) {
		t.Errorf("Rebuilt %v, expected %v", got, p)
	}
}

// TestRoundTripSet verifies uniqueness and element order survive.
//
// TestRoundTripSet 验证唯一性和元素顺序得以保留。
func TestRoundTripSet(t *testing.T) {
	s := types.NewSet(1, 2, 2, 3)
	out := roundTrip(t, s)
	got, ok := out.(*types.Set)
	if !ok {
		t.Fatalf("Rebuilt %T, expected *types.Set", out)
	}
	if got.Len() != 3 {
		t.Fatalf("Rebuilt set has %d elements, expected 3", got.Len())
	}
	if !reflect.DeepEqual(got.Values(), s.Values()) {
		t.Errorf("Rebuilt %v, expected %v", got.Values(), s.Values())
	}
}

// TestRoundTripOrderedMap verifies entries survive in order.
//
// TestRoundTripOrderedMap 验证条目按顺序保留。
func TestRoundTripOrderedMap(t *testing.T) {
	m := types.NewOrderedMap()
	m.Set("k", 1)
	m.Set("j", 2)
	out := roundTrip(t, m)
	got, ok := out.(*types.OrderedMap)
	if !ok {
		t.Fatalf("Rebuilt %T, expected *types.OrderedMap", out)
	}
	if !reflect.DeepEqual(got.Entries(), m.Entries()) {
		t.Errorf("Rebuilt %v, expected %v", got.Entries(), m.Entries())
	}
}

// TestRoundTripError verifies error objects, including a nested cause chain.
//
// TestRoundTripError 验证错误对象，包括嵌套的原因链。
func TestRoundTripError(t *testing.T) {
	e := &types.ErrorValue{
		Name:    "TypeError",
		Message: "x",
		Cause: &types.ErrorValue{
			Name:    "IOError",
			Message: "disk",
		},
	}
	out := roundTrip(t, map[string]any{"err": e}).(map[string]any)
	got, ok := out["err"].(*types.ErrorValue)
	if !ok {
		t.Fatalf("err = %T, expected *types.ErrorValue", out["err"])
	}
	if got.Name != "TypeError" || got.Message != "x" {
		t.Errorf("Rebuilt %+v", got)
	}
	cause, ok := got.Cause.(*types.ErrorValue)
	if !ok {
		t.Fatalf("Cause = %T, expected *types.ErrorValue", got.Cause)
	}
	if cause.Name != "IOError" || cause.Message != "disk" {
		t.Errorf("Rebuilt cause %+v", cause)
	}
}

// TestRoundTripBigInt verifies integers beyond float64 precision survive.
//
// TestRoundTripBigInt 验证超出float64精度的整数得以保留。
func TestRoundTripBigInt(t *testing.T) {
	n := new(big.Int)
	n.SetString("9007199254740993", 10) // 2^53 + 1
	out := roundTrip(t, map[string]any{"n": n}).(map[string]any)
	got, ok := out["n"].(*big.Int)
	if !ok {
		t.Fatalf("n = %T, expected *big.Int", out["n"])
	}
	if got.Cmp(n) != 0 {
		t.Errorf("Rebuilt %v, expected %v", got, n)
	}
}

// TestRoundTripURL verifies absolute URLs survive.
//
// TestRoundTripURL 验证绝对URL得以保留。
func TestRoundTripURL(t *testing.T) {
	u, _ := url.Parse("https://example.com/a?b=1")
	out := roundTrip(t, map[string]any{"u": u}).(map[string]any)
	got, ok := out["u"].(*url.URL)
	if !ok {
		t.Fatalf("u = %T, expected *url.URL", out["u"])
	}
	if got.String() != "https://example.com/a?b=1" {
		t.Errorf("Rebuilt %v", got)
	}
}

// TestRoundTripTypedArrays verifies typed arrays of several element widths
// keep their values and concrete types.
//
// TestRoundTripTypedArrays 验证多种元素宽度的类型数组保留其值
// 和具体类型。
func TestRoundTripTypedArrays(t *testing.T) {
	arrays := []any{
		[]uint8{0, 127, 255},
		[]int32{-70000, 0, 70000},
		[]int64{math.MinInt64, math.MaxInt64},
		[]float64{0.5, -1.25},
	}
	for _, arr := range arrays {
		out := roundTrip(t, map[string]any{"a": arr}).(map[string]any)
		if !reflect.DeepEqual(out["a"], arr) {
			t.Errorf("Rebuilt %#v, expected %#v", out["a"], arr)
		}
	}
}

// TestRoundTripSpecialNumbers verifies NaN, the infinities, and negative
// zero survive, including the sign bit.
//
// TestRoundTripSpecialNumbers 验证NaN、无穷和负零得以保留，
// 包括符号位。
func TestRoundTripSpecialNumbers(t *testing.T) {
	in := map[string]any{
		"nan":  math.NaN(),
		"pinf": math.Inf(1),
		"ninf": math.Inf(-1),
		"nz":   math.Copysign(0, -1),
	}
	out := roundTrip(t, in).(map[string]any)

	if f := out["nan"].(float64); !math.IsNaN(f) {
		t.Errorf("nan = %v", f)
	}
	if f := out["pinf"].(float64); !math.IsInf(f, 1) {
		t.Errorf("pinf = %v", f)
	}
	if f := out["ninf"].(float64); !math.IsInf(f, -1) {
		t.Errorf("ninf = %v", f)
	}
	if f := out["nz"].(float64); f != 0 || !math.Signbit(f) {
		t.Errorf("nz = %v (signbit %v)", f, math.Signbit(f))
	}
}

// TestRoundTripUndefined verifies the explicit no-value marker is told apart
// from plain nil.
//
// TestRoundTripUndefined 验证显式无值标记与普通nil得以区分。
func TestRoundTripUndefined(t *testing.T) {
	in := map[string]any{"u": types.Undefined{}, "n": nil}
	out := roundTrip(t, in).(map[string]any)
	if _, ok := out["u"].(types.Undefined); !ok {
		t.Errorf("u = %T, expected types.Undefined", out["u"])
	}
	if out["n"] != nil {
		t.Errorf("n = %v, expected nil", out["n"])
	}
}

// TestPlainGraphOmitsMeta verifies a graph with no extended kinds yields an
// envelope whose Meta is absent entirely, also on the JSON wire.
//
// TestPlainGraphOmitsMeta 验证不含扩展类型的图产生Meta整体缺席的
// 信封，在JSON线路上亦然。
func TestPlainGraphOmitsMeta(t *testing.T) {
	env, err := Serialize(map[string]any{"a": 1, "b": []any{1, 2, 3}})
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if env.Meta != nil {
		t.Errorf("Meta = %+v, expected nil", env.Meta)
	}

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, has := raw["meta"]; has {
		t.Errorf("Wire form contains meta key: %s", data)
	}
}

// TestSerializeIdempotent verifies that re-encoding a round-tripped graph
// yields an identical envelope.
//
// TestSerializeIdempotent 验证重新编码往返后的图产生相同的信封。
func TestSerializeIdempotent(t *testing.T) {
	in := map[string]any{
		"when": time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		"tags": types.NewSet("a", "b"),
		"n":    math.Inf(1),
	}

	env1, err := Serialize(in)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	mid, err := Deserialize(env1)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	env2, err := Serialize(mid)
	if err != nil {
		t.Fatalf("Re-serialize failed: %v", err)
	}

	w := NewJSONWire(false)
	d1, err := w.Marshal(env1)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	d2, err := w.Marshal(env2)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(d1) != string(d2) {
		t.Errorf("Envelopes differ:\n%s\n%s", d1, d2)
	}
}

// TestDeserializeUnknownAnnotation verifies decoding fails loudly on a tag
// the rule set does not know.
//
// TestDeserializeUnknownAnnotation 验证遇到规则集不认识的标签时
// 解码显式失败。
func TestDeserializeUnknownAnnotation(t *testing.T) {
	env := &Envelope{
		JSON: "x",
		Meta: &Meta{Values: map[string]types.Annotation{
			"": types.Simple("not-a-real-kind"),
		}},
	}
	_, err := Deserialize(env)
	if err == nil {
		t.Fatal("Deserialize succeeded, expected error")
	}
	if !snaperrors.IsUnknownAnnotation(err) {
		t.Errorf("Error does not wrap ErrUnknownAnnotation: %v", err)
	}
}

// TestSerializeGuardRejection verifies no partial envelope escapes a guard
// trip.
//
// TestSerializeGuardRejection 验证防护拒绝时不会泄漏部分信封。
func TestSerializeGuardRejection(t *testing.T) {
	env, err := Serialize(map[string]any{"__proto__": 1})
	if err == nil {
		t.Fatal("Serialize succeeded, expected guard rejection")
	}
	if !snaperrors.IsUnsafeKey(err) {
		t.Errorf("Error does not wrap ErrUnsafeKey: %v", err)
	}
	if env != nil {
		t.Errorf("Partial envelope returned: %+v", env)
	}
}

// TestDeserializeNilEnvelope verifies a nil envelope is rejected.
//
// TestDeserializeNilEnvelope 验证nil信封被拒绝。
func TestDeserializeNilEnvelope(t *testing.T) {
	_, err := Deserialize(nil)
	if err == nil {
		t.Fatal("Deserialize(nil) succeeded, expected error")
	}
	if !snaperrors.IsInvalidEnvelope(err) {
		t.Errorf("Error does not wrap ErrInvalidEnvelope: %v", err)
	}
}

// TestCycleTruncation verifies a self-referencing graph serializes with the
// cycle edge as null and no error.
//
// TestCycleTruncation 验证自引用图序列化时环边为null且不报错。
func TestCycleTruncation(t *testing.T) {
	m := map[string]any{"v": 1}
	m["self"] = m

	env, err := Serialize(m)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	plain := env.JSON.(map[string]any)
	if plain["self"] != nil {
		t.Errorf("Cycle edge = %#v, expected nil", plain["self"])
	}
	if env.Meta != nil {
		t.Errorf("Cycle produced annotations: %+v", env.Meta)
	}
}

// TestRoundTripThroughJSONWire verifies a full wire trip: Serialize, JSON
// marshal, JSON unmarshal, Deserialize, for a mixed graph.
//
// TestRoundTripThroughJSONWire 验证完整的线路往返：Serialize、
// JSON编组、JSON解组、Deserialize，覆盖混合图。
func TestRoundTripThroughJSONWire(t *testing.T) {
	ts := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)
	u, _ := url.Parse("https://example.com/x")
	in := map[string]any{
		"when":    ts,
		"where":   u,
		"samples": []int64{1, math.MaxInt64},
		"big":     big.NewInt(42),
		"nested":  []any{map[string]any{"n": math.NaN()}},
	}

	env, err := Serialize(in)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	w := NewJSONWire(false)
	data, err := w.Marshal(env)
	if err != nil {
		t.Fatalf("Wire marshal failed: %v", err)
	}
	back, err := w.Unmarshal(data)
	if err != nil {
		t.Fatalf("Wire unmarshal failed: %v", err)
	}
	out, err := Deserialize(back)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}

	got := out.(map[string]any)
	if !got["when"].(time.Time).Equal(ts) {
		t.Errorf("when = %v", got["when"])
	}
	if got["where"].(*url.URL).String() != u.String() {
		t.Errorf("where = %v", got["where"])
	}
	if !reflect.DeepEqual(got["samples"], []int64{1, math.MaxInt64}) {
		t.Errorf("samples = %#v", got["samples"])
	}
	if got["big"].(*big.Int).Int64() != 42 {
		t.Errorf("big = %v", got["big"])
	}
	n := got["nested"].([]any)[0].(map[string]any)["n"].(float64)
	if !math.IsNaN(n) {
		t.Errorf("nested.0.n = %v", n)
	}
}

// TestSerializeDoesNotMutateInput verifies the public surface honors the
// no-mutation contract.
//
// TestSerializeDoesNotMutateInput 验证公共接口遵守不修改输入的契约。
func TestSerializeDoesNotMutateInput(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	in := map[string]any{"when": ts}
	if _, err := Serialize(in); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if _, ok := in["when"].(time.Time); !ok {
		t.Error("Input mutated by Serialize")
	}
}

// TestCodecStats verifies the metrics-enabled codec counts operations.
//
// TestCodecStats 验证启用指标的编解码器统计操作次数。
func TestCodecStats(t *testing.T) {
	c := New(WithMetricsEnabled(true))

	env, err := c.Serialize(map[string]any{"when": time.Now().UTC()})
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if _, err := c.Deserialize(env); err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if _, err := c.Serialize(map[string]any{"__proto__": 1}); err == nil {
		t.Fatal("Serialize succeeded, expected guard rejection")
	}

	stats := c.Stats()
	if stats.Serializes != 1 {
		t.Errorf("Serializes = %d, expected 1", stats.Serializes)
	}
	if stats.Deserializes != 1 {
		t.Errorf("Deserializes = %d, expected 1", stats.Deserializes)
	}
	if stats.SerializeErrors != 1 {
		t.Errorf("SerializeErrors = %d, expected 1", stats.SerializeErrors)
	}
	if stats.GuardTrips != 1 {
		t.Errorf("GuardTrips = %d, expected 1", stats.GuardTrips)
	}
	if stats.Annotations["timestamp"] != 1 {
		t.Errorf("Annotations = %v, expected timestamp count 1", stats.Annotations)
	}
}

// TestStrictModeOption verifies WithStrictMode propagates to the traversal.
//
// TestStrictModeOption 验证WithStrictMode传递到遍历过程。
func TestStrictModeOption(t *testing.T) {
	type opaque struct{ X int }

	lenient := New()
	if _, err := lenient.Serialize(map[string]any{"v": &opaque{1}}); err != nil {
		t.Errorf("Lenient codec failed: %v", err)
	}

	strict := New(WithStrictMode(true))
	if _, err := strict.Serialize(map[string]any{"v": &opaque{1}}); err == nil {
		t.Error("Strict codec succeeded, expected error")
	} else if !snaperrors.IsUnsupportedValue(err) {
		t.Errorf("Error does not wrap ErrUnsupportedValue: %v", err)
	}
}

// TestRoundTripSetOfLookalikePatterns verifies a set whose distinct extended
// elements share a plain form keeps both elements through decoding: the set
// inverse must not re-deduplicate the already-deduplicated encoded list,
// or the positional child annotations stop resolving.
//
// TestRoundTripSetOfLookalikePatterns 验证当集合中不同的扩展元素共享
// 普通形式时，两个元素都能在解码后保留：集合的逆变换不得对已经去重的
// 编码列表再次去重，否则按位置寻址的子注解将无法解析。
func TestRoundTripSetOfLookalikePatterns(t *testing.T) {
	p1 := &types.Pattern{Source: "a", Flags: "g"}
	p2 := &types.Pattern{Source: "a", Flags: "g"}
	s := types.NewSet(p1, p2)
	if s.Len() != 2 {
		t.Fatalf("Input set has %d elements, expected 2 distinct pointers", s.Len())
	}

	env, err := Serialize(s)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if env.Meta == nil || len(env.Meta.Values) != 3 {
		t.Fatalf("Annotations = %v, expected set plus two element entries", env.Meta)
	}

	out, err := Deserialize(env)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	got, ok := out.(*types.Set)
	if !ok {
		t.Fatalf("Rebuilt %T, expected *types.Set", out)
	}
	if got.Len() != 2 {
		t.Fatalf("Rebuilt set has %d elements, expected 2", got.Len())
	}
	for i, e := range got.Values() {
		p, ok := e.(*types.Pattern)
		if !ok {
			t.Fatalf("Element %d is %T, expected *types.Pattern", i, e)
		}
		if !p.Equal(p1) {
			t.Errorf("Element %d = %v, expected %v", i, p, p1)
		}
	}
}

// TestRoundTripEscapedKeys verifies keys containing the path separator and
// escape character carry extended values through a full encode/decode cycle.
//
// TestRoundTripEscapedKeys 验证含有路径分隔符和转义字符的键
// 能携带扩展值通过完整的编码/解码循环。
func TestRoundTripEscapedKeys(t *testing.T) {
	ts := time.Date(2025, 7, 4, 8, 30, 0, 0, time.UTC)
	in := map[string]any{
		"a.b":        ts,
		`back\slash`: types.NewSet("x", "y"),
		`mixed\.key`: map[string]any{
			"n.ested": big.NewInt(7),
		},
	}

	out := roundTrip(t, in).(map[string]any)

	got, ok := out["a.b"].(time.Time)
	if !ok || !got.Equal(ts) {
		t.Errorf("a.b = %#v, expected %v", out["a.b"], ts)
	}
	s, ok := out[`back\slash`].(*types.Set)
	if !ok || s.Len() != 2 {
		t.Errorf(`back\slash = %#v, expected a 2-element set`, out[`back\slash`])
	}
	inner, ok := out[`mixed\.key`].(map[string]any)
	if !ok {
		t.Fatalf(`mixed\.key = %T, expected a map`, out[`mixed\.key`])
	}
	n, ok := inner["n.ested"].(*big.Int)
	if !ok || n.Int64() != 7 {
		t.Errorf("n.ested = %#v, expected *big.Int 7", inner["n.ested"])
	}
}

// TestEmptyMapKey verifies the lone-empty-key edge: a plain value under an
// empty key round trips, but an extended value there is rejected at encode
// time because its path would render identically to the root.
//
// TestEmptyMapKey 验证单独空键的边界情况：空键下的普通值可以往返，
// 但该处的扩展值在编码时被拒绝，因为其路径与根路径的渲染结果相同。
func TestEmptyMapKey(t *testing.T) {
	out := roundTrip(t, map[string]any{"": 1}).(map[string]any)
	if out[""] != 1 {
		t.Errorf("Plain empty-key value = %v, expected 1", out[""])
	}

	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if _, err := Serialize(map[string]any{"": ts}); err == nil {
		t.Fatal("Serialize succeeded, expected rejection of annotated empty key")
	} else if !snaperrors.IsInvalidPath(err) {
		t.Errorf("Error does not wrap ErrInvalidPath: %v", err)
	}

	// A nested empty key is unambiguous and round trips normally.
	// 嵌套的空键没有歧义，正常往返。
	nested := roundTrip(t, map[string]any{"": map[string]any{"x": ts}}).(map[string]any)
	got, ok := nested[""].(map[string]any)["x"].(time.Time)
	if !ok || !got.Equal(ts) {
		t.Errorf("Nested empty-key value = %#v, expected %v", nested[""], ts)
	}
}

// TestReconfigure verifies runtime reconfiguration swaps traversal settings
// while keeping metrics collection as constructed.
//
// TestReconfigure 验证运行时重新配置替换遍历设置，
// 同时保持构造时的指标收集状态。
func TestReconfigure(t *testing.T) {
	c := New(WithMaxDepth(1), WithMetricsEnabled(true))

	deep := map[string]any{"a": map[string]any{"b": 1}}
	if _, err := c.Serialize(deep); err == nil {
		t.Fatal("Serialize succeeded, expected depth rejection")
	} else if !snaperrors.IsDepthExceeded(err) {
		t.Fatalf("Error does not wrap ErrDepthExceeded: %v", err)
	}

	c.Reconfigure(WithMaxDepth(8), WithGuardedKeys("secret"))
	if _, err := c.Serialize(deep); err != nil {
		t.Errorf("Serialize failed after raising the depth bound: %v", err)
	}
	if _, err := c.Serialize(map[string]any{"secret": 1}); err == nil {
		t.Error("Serialize succeeded, expected custom guard rejection")
	} else if !snaperrors.IsUnsafeKey(err) {
		t.Errorf("Error does not wrap ErrUnsafeKey: %v", err)
	}

	// Metrics enablement is fixed at construction.
	// 指标启用状态在构造时固定。
	c.Reconfigure(WithMetricsEnabled(false))
	if c.Stats().Serializes == 0 {
		t.Error("Stats lost after Reconfigure, metrics should stay enabled")
	}
}
