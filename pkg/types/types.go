// Package types defines the extended value kinds supported by the snapshot
// codec and the classification predicates that map an arbitrary runtime value
// onto exactly one kind.
//
// Package types 定义快照编解码器支持的扩展值类型，
// 以及将任意运行时值映射到唯一类型的分类谓词。
package types

import (
	"fmt"
	"math"
	"math/big"
	"net/url"
	"reflect"
	"time"
)

// Undefined is the canonical "no value" marker. It is distinct from nil so
// that a round trip can tell an explicitly-absent slot apart from a plain
// null.
//
// Undefined 是规范的"无值"标记。它与nil不同，
// 因此往返转换可以区分显式缺失的槽位和普通的null。
type Undefined struct{}

// String implements fmt.Stringer.
func (Undefined) String() string { return "undefined" }

// Pattern is a source/flags pattern matcher. The codec preserves it textually
// and makes no attempt to compile or validate the pattern dialect.
//
// Pattern 是源码/标志形式的模式匹配器。编解码器以文本形式保留它，
// 不尝试编译或验证模式方言。
type Pattern struct {
	// Source is the pattern body without surrounding delimiters.
	// Source 是不含分隔符的模式主体。
	Source string

	// Flags holds the pattern's flag characters, e.g. "gi".
	// Flags 保存模式的标志字符，例如"gi"。
	Flags string
}

// String returns the conventional /source/flags literal form.
//
// String 返回常规的 /source/flags 字面量形式。
func (p *Pattern) String() string {
	return "/" + p.Source + "/" + p.Flags
}

// Equal reports whether two patterns have the same source and flags.
//
// Equal 报告两个模式是否具有相同的源码和标志。
func (p *Pattern) Equal(o *Pattern) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Source == o.Source && p.Flags == o.Flags
}

// ErrorValue is a transportable error object. It captures the pieces of an
// error that survive a serialization boundary: a class name, a message, an
// optional stack trace, and an optional cause, which may itself be any value.
//
// ErrorValue 是可传输的错误对象。它捕获能跨越序列化边界的错误信息：
// 类名、消息、可选的堆栈跟踪以及可选的原因（原因本身可以是任意值）。
type ErrorValue struct {
	// Name identifies the error class, e.g. "TypeError".
	// Name 标识错误类别，例如"TypeError"。
	Name string

	// Message is the human-readable error text.
	// Message 是人类可读的错误文本。
	Message string

	// Stack is an optional stack trace in whatever textual form the
	// producer had available.
	// Stack 是可选的堆栈跟踪，采用生产者可用的任意文本形式。
	Stack string

	// Cause is the optional underlying value that led to this error.
	// Cause 是导致此错误的可选底层值。
	Cause any
}

// Error implements the error interface.
func (e *ErrorValue) Error() string {
	if e.Name == "" {
		return e.Message
	}
	return e.Name + ": " + e.Message
}

// Set is an insertion-ordered collection of unique elements. Uniqueness is
// decided by Go equality for comparable elements; non-comparable elements
// (slices, maps, sets) are always kept, mirroring reference identity
// semantics.
//
// Set 是按插入顺序排列的唯一元素集合。可比较元素的唯一性由Go相等性决定；
// 不可比较的元素（切片、映射、集合）总是被保留，对应引用身份语义。
type Set struct {
	elems []any
	seen  map[any]struct{}
}

// NewSet creates a Set containing the given elements with duplicates removed.
//
// NewSet 创建一个包含给定元素的Set，重复元素会被移除。
func NewSet(elems ...any) *Set {
	s := &Set{seen: make(map[any]struct{})}
	for _, e := range elems {
		s.Add(e)
	}
	return s
}

// NewSetFromList creates a Set that keeps every element of the list at its
// position, without deduplication. The decoder uses it when replaying an
// encoded element list: the encoder already deduplicated, but the plain
// forms of two distinct extended elements may collide until their nested
// rebuilds replace them.
//
// NewSetFromList 创建一个保留列表中每个元素位置、不去重的Set。
// 解码器在回放已编码的元素列表时使用它：编码器已经去重，
// 但两个不同扩展元素的普通形式在其嵌套重建替换它们之前可能相同。
func NewSetFromList(elems []any) *Set {
	s := &Set{
		elems: make([]any, len(elems)),
		seen:  make(map[any]struct{}),
	}
	copy(s.elems, elems)
	for _, e := range elems {
		if isComparable(e) {
			s.seen[e] = struct{}{}
		}
	}
	return s
}

// Add inserts an element, keeping insertion order and dropping duplicates.
// It returns true if the element was actually added.
//
// Add 插入一个元素，保持插入顺序并丢弃重复项。
// 如果元素确实被添加则返回true。
func (s *Set) Add(e any) bool {
	if isComparable(e) {
		if _, dup := s.seen[e]; dup {
			return false
		}
		s.seen[e] = struct{}{}
	}
	s.elems = append(s.elems, e)
	return true
}

// Has reports whether a comparable element is present. Non-comparable
// elements always report false.
//
// Has 报告一个可比较元素是否存在。不可比较的元素总是返回false。
func (s *Set) Has(e any) bool {
	if !isComparable(e) {
		return false
	}
	_, ok := s.seen[e]
	return ok
}

// Len returns the number of elements.
//
// Len 返回元素数量。
func (s *Set) Len() int { return len(s.elems) }

// Values returns the elements in insertion order. The returned slice is the
// set's backing storage; callers that mutate it see the mutation reflected
// in the set.
//
// Values 按插入顺序返回元素。返回的切片是集合的底层存储；
// 修改它的调用者会看到变更反映到集合中。
func (s *Set) Values() []any { return s.elems }

// Replace swaps the element at position i. The decoder uses this when a
// nested extended value inside a set is rebuilt after the set itself.
//
// Replace 替换位置i处的元素。当集合内部的嵌套扩展值在集合本身之后
// 重建时，解码器使用此方法。
func (s *Set) Replace(i int, e any) error {
	if i < 0 || i >= len(s.elems) {
		return fmt.Errorf("set index %d out of range [0,%d)", i, len(s.elems))
	}
	old := s.elems[i]
	if isComparable(old) {
		delete(s.seen, old)
	}
	if isComparable(e) {
		s.seen[e] = struct{}{}
	}
	s.elems[i] = e
	return nil
}

// Entry is a single key/value pair of an OrderedMap.
//
// Entry 是OrderedMap的单个键值对。
type Entry struct {
	Key   any
	Value any
}

// OrderedMap is a key-unique map that preserves insertion order and accepts
// arbitrary keys, not just strings.
//
// OrderedMap 是保持插入顺序的键唯一映射，接受任意键而不仅仅是字符串。
type OrderedMap struct {
	entries []Entry
	index   map[any]int
}

// NewOrderedMap creates an empty OrderedMap.
//
// NewOrderedMap 创建一个空的OrderedMap。
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{index: make(map[any]int)}
}

// Set stores a key/value pair. An existing comparable key is updated in
// place without disturbing insertion order; non-comparable keys are always
// appended.
//
// Set 存储一个键值对。已存在的可比较键会原地更新而不打乱插入顺序；
// 不可比较的键总是被追加。
func (m *OrderedMap) Set(key, value any) {
	if isComparable(key) {
		if i, ok := m.index[key]; ok {
			m.entries[i].Value = value
			return
		}
		m.index[key] = len(m.entries)
	}
	m.entries = append(m.entries, Entry{Key: key, Value: value})
}

// Get returns the value stored under a comparable key.
//
// Get 返回存储在可比较键下的值。
func (m *OrderedMap) Get(key any) (any, bool) {
	if !isComparable(key) {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Len returns the number of entries.
//
// Len 返回条目数量。
func (m *OrderedMap) Len() int { return len(m.entries) }

// Entries returns the entries in insertion order. The returned slice aliases
// the map's backing storage.
//
// Entries 按插入顺序返回条目。返回的切片与映射的底层存储共享。
func (m *OrderedMap) Entries() []Entry { return m.entries }

// EntryAt returns a pointer to the i-th entry for in-place rebuilding.
//
// EntryAt 返回指向第i个条目的指针，用于原地重建。
func (m *OrderedMap) EntryAt(i int) (*Entry, error) {
	if i < 0 || i >= len(m.entries) {
		return nil, fmt.Errorf("map entry index %d out of range [0,%d)", i, len(m.entries))
	}
	return &m.entries[i], nil
}

// isComparable reports whether e can be used as a Go map key without
// panicking.
//
// isComparable 报告e是否可以作为Go映射键使用而不会引发panic。
func isComparable(e any) bool {
	if e == nil {
		return true
	}
	return reflect.TypeOf(e).Comparable()
}

// Kind classifies a runtime value for the codec. The classifications are
// mutually exclusive and collectively exhaustive: every value maps to
// exactly one Kind, with PassThrough as the escape hatch for values the
// codec does not model.
//
// Kind 为编解码器分类运行时值。分类互斥且完备：
// 每个值恰好映射到一个Kind，PassThrough是编解码器
// 未建模值的逃生通道。
type Kind int

const (
	// KindPrimitive covers nil, booleans, strings, and finite numbers.
	// KindPrimitive 涵盖nil、布尔值、字符串和有限数字。
	KindPrimitive Kind = iota

	// KindList is a plain ordered list ([]any).
	// KindList 是普通有序列表（[]any）。
	KindList

	// KindMap is a plain string-keyed map (map[string]any).
	// KindMap 是普通字符串键映射（map[string]any）。
	KindMap

	// KindUndefined is the explicit no-value marker.
	// KindUndefined 是显式的无值标记。
	KindUndefined

	// KindBigInt is an arbitrary-precision integer (*big.Int).
	// KindBigInt 是任意精度整数（*big.Int）。
	KindBigInt

	// KindTimestamp is an instant in time (time.Time).
	// KindTimestamp 是时间点（time.Time）。
	KindTimestamp

	// KindError is a transportable error object (*ErrorValue).
	// KindError 是可传输的错误对象（*ErrorValue）。
	KindError

	// KindPattern is a source/flags pattern matcher (*Pattern).
	// KindPattern 是源码/标志模式匹配器（*Pattern）。
	KindPattern

	// KindSet is a unique-element collection (*Set).
	// KindSet 是唯一元素集合（*Set）。
	KindSet

	// KindOrderedMap is an insertion-ordered key/value map (*OrderedMap).
	// KindOrderedMap 是按插入顺序排列的键值映射（*OrderedMap）。
	KindOrderedMap

	// KindSpecialNumber covers NaN, +Inf, -Inf, and negative zero, which a
	// plain numeric field cannot survive a textual transport with.
	// KindSpecialNumber 涵盖NaN、+Inf、-Inf和负零，
	// 普通数字字段无法在文本传输中保留它们。
	KindSpecialNumber

	// KindURL is an absolute resource locator (*url.URL).
	// KindURL 是绝对资源定位符（*url.URL）。
	KindURL

	// KindTypedArray is a fixed-width numeric slice such as []uint8 or
	// []float64.
	// KindTypedArray 是固定宽度数字切片，例如[]uint8或[]float64。
	KindTypedArray

	// KindPassThrough is any value outside the supported kinds. It is
	// copied into the plain tree unchanged, never transformed.
	// KindPassThrough 是支持类型之外的任意值。它会原样复制到
	// 普通树中，永不转换。
	KindPassThrough
)

// String returns the kind's name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindUndefined:
		return "undefined"
	case KindBigInt:
		return "bigint"
	case KindTimestamp:
		return "timestamp"
	case KindError:
		return "error"
	case KindPattern:
		return "regexp"
	case KindSet:
		return "set"
	case KindOrderedMap:
		return "orderedmap"
	case KindSpecialNumber:
		return "number"
	case KindURL:
		return "url"
	case KindTypedArray:
		return "typedarray"
	default:
		return "passthrough"
	}
}

// KindOf classifies a runtime value into exactly one Kind.
//
// The numeric edge cases (NaN, ±Inf, -0) are tested before the generic
// primitive classification so that a float64 holding one of them is never
// reported as a plain primitive.
//
// KindOf 将运行时值分类到唯一的Kind。
//
// 数字边界情况（NaN、±Inf、-0）在通用原始类型分类之前测试，
// 因此持有这些值的float64永远不会被报告为普通原始类型。
func KindOf(v any) Kind {
	switch t := v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return KindPrimitive
	case float64:
		if IsSpecialFloat(t) {
			return KindSpecialNumber
		}
		return KindPrimitive
	case float32:
		if IsSpecialFloat(float64(t)) {
			return KindSpecialNumber
		}
		return KindPrimitive
	case Undefined, *Undefined:
		return KindUndefined
	case *big.Int:
		return KindBigInt
	case time.Time, *time.Time:
		return KindTimestamp
	case *ErrorValue:
		return KindError
	case *Pattern:
		return KindPattern
	case *Set:
		return KindSet
	case *OrderedMap:
		return KindOrderedMap
	case *url.URL:
		return KindURL
	case []any:
		return KindList
	case map[string]any:
		return KindMap
	case []int8, []int16, []int32, []int64,
		[]uint16, []uint32, []uint64,
		[]float32, []float64:
		return KindTypedArray
	case []byte:
		// []byte is []uint8; it classifies as the uint8 typed array.
		// []byte 即[]uint8，归类为uint8类型数组。
		return KindTypedArray
	default:
		return KindPassThrough
	}
}

// IsSpecialFloat reports whether f is one of the values that cannot survive
// a plain numeric field: NaN, +Inf, -Inf, or negative zero.
//
// IsSpecialFloat 报告f是否为无法在普通数字字段中保留的值：
// NaN、+Inf、-Inf或负零。
func IsSpecialFloat(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0) || (f == 0 && math.Signbit(f))
}
