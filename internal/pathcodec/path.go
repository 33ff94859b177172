// Package pathcodec implements the escaped-string encoding of traversal
// paths used as the key space of an envelope's annotation side table.
//
// A path is a sequence of segments, each a string map key or an integer
// list index. The string form joins segments with an unescaped '.' and
// escapes '\' and '.' inside segments by prefixing them with '\', so that
// Parse(p.String()) == p for every well-formed path, including segments
// that themselves contain the separator or escape character. The empty
// string is reserved for the root path.
//
// Package pathcodec 实现遍历路径的转义字符串编码，
// 用作信封注解旁表的键空间。
//
// 路径是段的序列，每段是字符串映射键或整数列表索引。
// 字符串形式用未转义的'.'连接各段，段内的'\'和'.'通过前缀'\'转义，
// 因此对每个格式良好的路径都有 Parse(p.String()) == p，
// 包括段内含有分隔符或转义符的情况。空字符串保留给根路径。
package pathcodec

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	separator = '.'
	escape    = '\\'
)

// Segment is one step of a traversal path: either a string key into a map
// or an integer index into a list.
//
// Segment 是遍历路径的一步：映射的字符串键或列表的整数索引。
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key creates a string-key segment.
//
// Key 创建字符串键段。
func Key(k string) Segment {
	return Segment{key: k}
}

// Index creates an integer-index segment.
//
// Index 创建整数索引段。
func Index(i int) Segment {
	return Segment{index: i, isIndex: true}
}

// IsIndex reports whether the segment is an integer index.
//
// IsIndex 报告该段是否为整数索引。
func (s Segment) IsIndex() bool { return s.isIndex }

// Key returns the string key. For index segments it returns the decimal
// form, which is how an index addresses a string-keyed container.
//
// Key 返回字符串键。对于索引段返回其十进制形式，
// 这是索引寻址字符串键容器的方式。
func (s Segment) Key() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Index returns the integer index. For key segments it parses the key as a
// decimal integer, which is how a numeric key addresses a list.
//
// Index 返回整数索引。对于键段会将键解析为十进制整数，
// 这是数字键寻址列表的方式。
func (s Segment) Index() (int, error) {
	if s.isIndex {
		return s.index, nil
	}
	i, err := strconv.Atoi(s.key)
	if err != nil {
		return 0, fmt.Errorf("segment %q is not a list index", s.key)
	}
	return i, nil
}

// Path is a traversal path from the root of a plain tree to a node.
// A nil or empty Path denotes the root itself.
//
// Path 是从普通树根到节点的遍历路径。nil或空Path表示根本身。
type Path []Segment

// Child returns a new path extended by one segment. The receiver is not
// modified and the result does not alias its storage, so sibling branches
// of a traversal cannot clobber each other.
//
// Child 返回延长一段的新路径。接收者不被修改，结果不与其存储共享，
// 因此遍历的兄弟分支不会互相破坏。
func (p Path) Child(s Segment) Path {
	child := make(Path, len(p)+1)
	copy(child, p)
	child[len(p)] = s
	return child
}

// Depth returns the number of segments.
//
// Depth 返回段数。
func (p Path) Depth() int { return len(p) }

// String encodes the path into its escaped side-table key form. The
// encoding is injective with one exception: a path of exactly one empty key
// renders like the root path, so the encoder refuses to record annotations
// at such a path.
//
// String 将路径编码为转义的旁表键形式。编码是单射的，仅有一个例外：
// 恰好由一个空键构成的路径与根路径的渲染结果相同，
// 因此编码器拒绝在该路径上记录注解。
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte(separator)
		}
		escapeSegment(&b, seg.Key())
	}
	return b.String()
}

// escapeSegment writes seg with every escape and separator character
// prefixed by the escape character.
func escapeSegment(b *strings.Builder, seg string) {
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		if c == escape || c == separator {
			b.WriteByte(escape)
		}
		b.WriteByte(c)
	}
}

// Parse decodes an escaped side-table key back into a Path. Digit-only
// segments parse as index segments, matching the walker's encoding of list
// positions. The empty string parses as the root path.
//
// Parse 将转义的旁表键解码回Path。纯数字段解析为索引段，
// 与遍历器对列表位置的编码一致。空字符串解析为根路径。
func Parse(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	var (
		path Path
		seg  strings.Builder
	)
	flush := func() {
		path = append(path, segmentOf(seg.String()))
		seg.Reset()
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case escape:
			if i+1 >= len(s) {
				return nil, fmt.Errorf("dangling escape at end of path %q", s)
			}
			i++
			next := s[i]
			if next != escape && next != separator {
				return nil, fmt.Errorf("invalid escape sequence %q in path %q", string([]byte{escape, next}), s)
			}
			seg.WriteByte(next)
		case separator:
			flush()
		default:
			seg.WriteByte(s[i])
		}
	}
	flush()
	return path, nil
}

// segmentOf turns a raw decoded segment into a Segment, classifying
// canonical decimal text (digits only, no sign, no leading zero) as a list
// index so that Parse(p.String()) == p holds for every segment.
func segmentOf(raw string) Segment {
	if !isCanonicalIndex(raw) {
		return Key(raw)
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return Key(raw)
	}
	return Index(i)
}

// isCanonicalIndex reports whether s is the canonical decimal form of a
// non-negative integer. "007" is not canonical and stays a string key.
func isCanonicalIndex(s string) bool {
	if s == "" {
		return false
	}
	if len(s) > 1 && s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
