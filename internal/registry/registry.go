// Package registry holds the transform rules that map each extended value
// kind to its plain-data representation and back.
//
// The dynamic first-match-wins rule list of the original design is replaced
// by closed dispatch on types.Kind: the encoder resolves a rule from the
// classification of the value, the decoder resolves a rule from the
// annotation tag. Ordering hazards between rules cannot arise because the
// classification itself is exhaustive and mutually exclusive (the numeric
// edge cases are separated from plain numbers inside types.KindOf).
//
// Package registry 保存将每个扩展值类型映射到普通数据表示
// 及其逆向映射的转换规则。
//
// 原设计中动态的"先匹配者胜"规则列表被基于types.Kind的封闭分发取代：
// 编码器从值的分类解析规则，解码器从注解标签解析规则。
// 因为分类本身是完备且互斥的（数字边界情况在types.KindOf内部
// 与普通数字分离），规则间的顺序隐患不会出现。
package registry

import (
	"fmt"
	"math"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"

	snaperrors "github.com/yourusername/snapcodec/pkg/errors"
	"github.com/yourusername/snapcodec/pkg/types"
)

// Annotation tag names. These are the wire vocabulary of the side table and
// must never change meaning between releases.
//
// 注解标签名称。它们是旁表的线路词汇，其含义在版本间绝不能改变。
const (
	TagUndefined  = "undefined"
	TagBigInt     = "bigint"
	TagTimestamp  = "timestamp"
	TagError      = "error"
	TagPattern    = "regexp"
	TagSet        = "set"
	TagOrderedMap = "map"
	TagNumber     = "number"
	TagURL        = "url"
	TagTypedArray = "typedarray"
)

// Rule pairs a forward transform (extended value to plain form) with its
// inverse. Inverse is a left inverse of Forward: for every value v of the
// rule's kind, Inverse(Forward(v), Tag(v)) equals v under that kind's
// equality notion.
//
// Rule 将正向转换（扩展值到普通形式）与其逆向转换配对。
// Inverse是Forward的左逆：对规则类型的每个值v，
// Inverse(Forward(v), Tag(v))在该类型的相等性意义下等于v。
type Rule struct {
	// Tag produces the annotation for a matched value. Most rules return a
	// fixed tag; the typed-array rule derives the element width from the
	// value.
	// Tag 为匹配的值生成注解。大多数规则返回固定标签；
	// 类型数组规则从值推导元素宽度。
	Tag func(v any) types.Annotation

	// Forward replaces an extended value with its plain-data equivalent.
	// Forward 将扩展值替换为其普通数据等价物。
	Forward func(v any) any

	// Inverse rebuilds the extended value from its plain form and the
	// recorded annotation.
	// Inverse 根据普通形式和记录的注解重建扩展值。
	Inverse func(plain any, a types.Annotation) (any, error)
}

// rulesByKind dispatches the encoder; rulesByTag dispatches the decoder.
var (
	rulesByKind map[types.Kind]*Rule
	rulesByTag  map[string]*Rule
)

func init() {
	rulesByKind = map[types.Kind]*Rule{
		types.KindUndefined:     undefinedRule(),
		types.KindBigInt:        bigIntRule(),
		types.KindTimestamp:     timestampRule(),
		types.KindError:         errorRule(),
		types.KindPattern:       patternRule(),
		types.KindSet:           setRule(),
		types.KindOrderedMap:    orderedMapRule(),
		types.KindSpecialNumber: numberRule(),
		types.KindURL:           urlRule(),
		types.KindTypedArray:    typedArrayRule(),
	}
	rulesByTag = map[string]*Rule{
		TagUndefined:  rulesByKind[types.KindUndefined],
		TagBigInt:     rulesByKind[types.KindBigInt],
		TagTimestamp:  rulesByKind[types.KindTimestamp],
		TagError:      rulesByKind[types.KindError],
		TagPattern:    rulesByKind[types.KindPattern],
		TagSet:        rulesByKind[types.KindSet],
		TagOrderedMap: rulesByKind[types.KindOrderedMap],
		TagNumber:     rulesByKind[types.KindSpecialNumber],
		TagURL:        rulesByKind[types.KindURL],
		TagTypedArray: rulesByKind[types.KindTypedArray],
	}
}

// Match returns the transform rule for a value, or false when the value is
// a primitive, a plain container, or a pass-through.
//
// Match 返回值的转换规则；当值是原始类型、普通容器或
// 直通值时返回false。
func Match(v any) (*Rule, bool) {
	r, ok := rulesByKind[types.KindOf(v)]
	return r, ok
}

// Lookup resolves an annotation to its rule. An unknown tag is a contract
// violation between encoder and decoder rule sets and fails loudly.
//
// Lookup 将注解解析为其规则。未知标签是编码器与解码器规则集之间的
// 契约违规，会显式失败。
func Lookup(a types.Annotation) (*Rule, error) {
	r, ok := rulesByTag[a.Tag]
	if !ok {
		return nil, snaperrors.Wrap(snaperrors.ErrUnknownAnnotation, "tag %q", a.Tag)
	}
	return r, nil
}

func undefinedRule() *Rule {
	return &Rule{
		Tag:     func(any) types.Annotation { return types.Simple(TagUndefined) },
		Forward: func(any) any { return nil },
		Inverse: func(any, types.Annotation) (any, error) {
			return types.Undefined{}, nil
		},
	}
}

func bigIntRule() *Rule {
	return &Rule{
		Tag: func(any) types.Annotation { return types.Simple(TagBigInt) },
		Forward: func(v any) any {
			return v.(*big.Int).String()
		},
		Inverse: func(plain any, _ types.Annotation) (any, error) {
			s, ok := plain.(string)
			if !ok {
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "bigint plain form must be a string, got %T", plain)
			}
			n, ok := new(big.Int).SetString(s, 10)
			if !ok {
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "invalid bigint digits %q", s)
			}
			return n, nil
		},
	}
}

func timestampRule() *Rule {
	return &Rule{
		Tag: func(any) types.Annotation { return types.Simple(TagTimestamp) },
		Forward: func(v any) any {
			switch t := v.(type) {
			case time.Time:
				return t.Format(time.RFC3339Nano)
			case *time.Time:
				return t.Format(time.RFC3339Nano)
			}
			return nil
		},
		Inverse: func(plain any, _ types.Annotation) (any, error) {
			s, ok := plain.(string)
			if !ok {
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "timestamp plain form must be a string, got %T", plain)
			}
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "invalid timestamp %q", s)
			}
			return t, nil
		},
	}
}

func errorRule() *Rule {
	return &Rule{
		Tag: func(any) types.Annotation { return types.Simple(TagError) },
		Forward: func(v any) any {
			e := v.(*types.ErrorValue)
			m := map[string]any{
				"name":    e.Name,
				"message": e.Message,
			}
			if e.Stack != "" {
				m["stack"] = e.Stack
			}
			if e.Cause != nil {
				m["cause"] = e.Cause
			}
			return m
		},
		Inverse: func(plain any, _ types.Annotation) (any, error) {
			m, ok := plain.(map[string]any)
			if !ok {
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "error plain form must be a map, got %T", plain)
			}
			e := &types.ErrorValue{}
			if name, ok := m["name"].(string); ok {
				e.Name = name
			}
			if msg, ok := m["message"].(string); ok {
				e.Message = msg
			}
			if stack, ok := m["stack"].(string); ok {
				e.Stack = stack
			}
			if cause, ok := m["cause"]; ok {
				e.Cause = cause
			}
			return e, nil
		},
	}
}

func patternRule() *Rule {
	return &Rule{
		Tag: func(any) types.Annotation { return types.Simple(TagPattern) },
		Forward: func(v any) any {
			return v.(*types.Pattern).String()
		},
		Inverse: func(plain any, _ types.Annotation) (any, error) {
			s, ok := plain.(string)
			if !ok {
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "regexp plain form must be a string, got %T", plain)
			}
			// The source may itself contain '/', so the flags start after
			// the last slash.
			// 源码本身可能包含'/'，因此标志在最后一个斜杠之后。
			last := strings.LastIndexByte(s, '/')
			if len(s) < 2 || s[0] != '/' || last == 0 {
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "invalid regexp literal %q", s)
			}
			return &types.Pattern{Source: s[1:last], Flags: s[last+1:]}, nil
		},
	}
}

func setRule() *Rule {
	return &Rule{
		Tag: func(any) types.Annotation { return types.Simple(TagSet) },
		Forward: func(v any) any {
			src := v.(*types.Set).Values()
			out := make([]any, len(src))
			copy(out, src)
			return out
		},
		Inverse: func(plain any, _ types.Annotation) (any, error) {
			elems, ok := plain.([]any)
			if !ok {
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "set plain form must be a list, got %T", plain)
			}
			// The encoder already deduplicated. Deduplicating again here
			// would shift positions when two distinct extended elements
			// share a plain form, and nested annotations are addressed by
			// position.
			// 编码器已经去重。此处再次去重会在两个不同扩展元素共享
			// 普通形式时移动位置，而嵌套注解按位置寻址。
			return types.NewSetFromList(elems), nil
		},
	}
}

func orderedMapRule() *Rule {
	return &Rule{
		Tag: func(any) types.Annotation { return types.Simple(TagOrderedMap) },
		Forward: func(v any) any {
			entries := v.(*types.OrderedMap).Entries()
			out := make([]any, len(entries))
			for i, e := range entries {
				out[i] = []any{e.Key, e.Value}
			}
			return out
		},
		Inverse: func(plain any, _ types.Annotation) (any, error) {
			pairs, ok := plain.([]any)
			if !ok {
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "map plain form must be a list of pairs, got %T", plain)
			}
			m := types.NewOrderedMap()
			for i, p := range pairs {
				pair, ok := p.([]any)
				if !ok || len(pair) != 2 {
					return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "map entry %d is not a [key, value] pair", i)
				}
				m.Set(pair[0], pair[1])
			}
			return m, nil
		},
	}
}

func numberRule() *Rule {
	return &Rule{
		Tag: func(any) types.Annotation { return types.Simple(TagNumber) },
		Forward: func(v any) any {
			f, ok := v.(float64)
			if !ok {
				f = float64(v.(float32))
			}
			switch {
			case math.IsNaN(f):
				return "NaN"
			case math.IsInf(f, 1):
				return "Infinity"
			case math.IsInf(f, -1):
				return "-Infinity"
			default:
				return "-0"
			}
		},
		Inverse: func(plain any, _ types.Annotation) (any, error) {
			s, ok := plain.(string)
			if !ok {
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "number plain form must be a string, got %T", plain)
			}
			switch s {
			case "NaN":
				return math.NaN(), nil
			case "Infinity":
				return math.Inf(1), nil
			case "-Infinity":
				return math.Inf(-1), nil
			case "-0":
				return math.Copysign(0, -1), nil
			default:
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "unknown special number %q", s)
			}
		},
	}
}

func urlRule() *Rule {
	return &Rule{
		Tag: func(any) types.Annotation { return types.Simple(TagURL) },
		Forward: func(v any) any {
			return v.(*url.URL).String()
		},
		Inverse: func(plain any, _ types.Annotation) (any, error) {
			s, ok := plain.(string)
			if !ok {
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "url plain form must be a string, got %T", plain)
			}
			u, err := url.Parse(s)
			if err != nil {
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "invalid url %q", s)
			}
			if !u.IsAbs() {
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "url %q is not absolute", s)
			}
			return u, nil
		},
	}
}

// Typed-array element width names used as the compound sub-tag.
// 作为复合子标签使用的类型数组元素宽度名称。
const (
	ElemInt8    = "int8"
	ElemUint8   = "uint8"
	ElemInt16   = "int16"
	ElemUint16  = "uint16"
	ElemInt32   = "int32"
	ElemUint32  = "uint32"
	ElemInt64   = "int64"
	ElemUint64  = "uint64"
	ElemFloat32 = "float32"
	ElemFloat64 = "float64"
)

func typedArrayRule() *Rule {
	return &Rule{
		Tag: func(v any) types.Annotation {
			return types.Compound(TagTypedArray, typedArrayElem(v))
		},
		Forward: typedArrayForward,
		Inverse: typedArrayInverse,
	}
}

func typedArrayElem(v any) string {
	switch v.(type) {
	case []int8:
		return ElemInt8
	case []uint8:
		return ElemUint8
	case []int16:
		return ElemInt16
	case []uint16:
		return ElemUint16
	case []int32:
		return ElemInt32
	case []uint32:
		return ElemUint32
	case []int64:
		return ElemInt64
	case []uint64:
		return ElemUint64
	case []float32:
		return ElemFloat32
	default:
		return ElemFloat64
	}
}

// typedArrayForward widens elements to float64, except the 64-bit integer
// widths, whose full range does not fit a float64 and which therefore travel
// as decimal digit strings.
//
// typedArrayForward 将元素扩展为float64，但64位整数宽度除外——
// 其完整范围无法放入float64，因此以十进制数字字符串传输。
func typedArrayForward(v any) any {
	switch s := v.(type) {
	case []int8:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = float64(e)
		}
		return out
	case []uint8:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = float64(e)
		}
		return out
	case []int16:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = float64(e)
		}
		return out
	case []uint16:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = float64(e)
		}
		return out
	case []int32:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = float64(e)
		}
		return out
	case []uint32:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = float64(e)
		}
		return out
	case []int64:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = strconv.FormatInt(e, 10)
		}
		return out
	case []uint64:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = strconv.FormatUint(e, 10)
		}
		return out
	case []float32:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = float64(e)
		}
		return out
	case []float64:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	}
	return v
}

func typedArrayInverse(plain any, a types.Annotation) (any, error) {
	elems, ok := plain.([]any)
	if !ok {
		return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "typedarray plain form must be a list, got %T", plain)
	}
	switch a.Elem {
	case ElemInt8:
		return rebuildInts(elems, a.Elem, func(n int64) int8 { return int8(n) })
	case ElemUint8:
		return rebuildUints(elems, a.Elem, func(n uint64) uint8 { return uint8(n) })
	case ElemInt16:
		return rebuildInts(elems, a.Elem, func(n int64) int16 { return int16(n) })
	case ElemUint16:
		return rebuildUints(elems, a.Elem, func(n uint64) uint16 { return uint16(n) })
	case ElemInt32:
		return rebuildInts(elems, a.Elem, func(n int64) int32 { return int32(n) })
	case ElemUint32:
		return rebuildUints(elems, a.Elem, func(n uint64) uint32 { return uint32(n) })
	case ElemInt64:
		return rebuildInts(elems, a.Elem, func(n int64) int64 { return n })
	case ElemUint64:
		return rebuildUints(elems, a.Elem, func(n uint64) uint64 { return n })
	case ElemFloat32:
		out := make([]float32, len(elems))
		for i, e := range elems {
			f, err := asFloat(e)
			if err != nil {
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "typedarray[%d]: %v", i, err)
			}
			out[i] = float32(f)
		}
		return out, nil
	case ElemFloat64:
		out := make([]float64, len(elems))
		for i, e := range elems {
			f, err := asFloat(e)
			if err != nil {
				return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "typedarray[%d]: %v", i, err)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, snaperrors.Wrap(snaperrors.ErrUnknownAnnotation, "typedarray element width %q", a.Elem)
	}
}

// rebuildInts converts plain elements to a signed integer slice of width T.
func rebuildInts[T any](elems []any, elem string, conv func(int64) T) (any, error) {
	out := make([]T, len(elems))
	for i, e := range elems {
		n, err := asInt(e)
		if err != nil {
			return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "typedarray(%s)[%d]: %v", elem, i, err)
		}
		out[i] = conv(n)
	}
	return out, nil
}

// rebuildUints converts plain elements to an unsigned integer slice of
// width T.
func rebuildUints[T any](elems []any, elem string, conv func(uint64) T) (any, error) {
	out := make([]T, len(elems))
	for i, e := range elems {
		n, err := asUint(e)
		if err != nil {
			return nil, snaperrors.Wrap(snaperrors.ErrDeserializationFailed, "typedarray(%s)[%d]: %v", elem, i, err)
		}
		out[i] = conv(n)
	}
	return out, nil
}

// asFloat accepts the numeric shapes that survive a JSON round trip as well
// as in-memory plain forms.
func asFloat(e any) (float64, error) {
	switch n := e.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("element %v (%T) is not a number", e, e)
	}
}

func asInt(e any) (int64, error) {
	switch n := e.(type) {
	case float64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case string:
		v, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("element %q is not an integer", n)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("element %v (%T) is not an integer", e, e)
	}
}

func asUint(e any) (uint64, error) {
	switch n := e.(type) {
	case float64:
		if n < 0 {
			return 0, fmt.Errorf("element %v is negative", n)
		}
		return uint64(n), nil
	case int:
		if n < 0 {
			return 0, fmt.Errorf("element %v is negative", n)
		}
		return uint64(n), nil
	case uint64:
		return n, nil
	case string:
		v, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("element %q is not an unsigned integer", n)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("element %v (%T) is not an unsigned integer", e, e)
	}
}
