// Package types — this file defines the annotation tags recorded in an
// envelope's side table.
//
// Package types — 本文件定义记录在信封旁表中的注解标签。
package types

import (
	"encoding/json"
	"fmt"
)

// Annotation names the extended kind that was transformed away at a given
// path, so the decoder knows which inverse transform to apply there.
//
// Most annotations are a bare tag. Typed arrays additionally carry an
// element-width discriminator, serialized as a two-element array on the
// wire: ["typedarray", "uint8"].
//
// Annotation 指明在给定路径上被转换掉的扩展类型，
// 以便解码器知道在该处应用哪个逆向转换。
//
// 大多数注解是简单标签。类型数组额外携带元素宽度判别符，
// 在线路上序列化为双元素数组：["typedarray", "uint8"]。
type Annotation struct {
	// Tag is the extended-kind name, e.g. "timestamp" or "typedarray".
	// Tag 是扩展类型名称，例如"timestamp"或"typedarray"。
	Tag string

	// Elem is the sub-discriminator, set only for compound tags.
	// Elem 是子判别符，仅用于复合标签。
	Elem string
}

// Simple creates a bare annotation tag.
//
// Simple 创建一个简单注解标签。
func Simple(tag string) Annotation {
	return Annotation{Tag: tag}
}

// Compound creates a tag with a sub-discriminator.
//
// Compound 创建带子判别符的标签。
func Compound(tag, elem string) Annotation {
	return Annotation{Tag: tag, Elem: elem}
}

// String returns a diagnostic form of the annotation.
func (a Annotation) String() string {
	if a.Elem == "" {
		return a.Tag
	}
	return a.Tag + "/" + a.Elem
}

// MarshalJSON writes a bare string for simple tags and a two-element array
// for compound tags.
//
// MarshalJSON 为简单标签写出裸字符串，为复合标签写出双元素数组。
func (a Annotation) MarshalJSON() ([]byte, error) {
	if a.Elem == "" {
		return json.Marshal(a.Tag)
	}
	return json.Marshal([2]string{a.Tag, a.Elem})
}

// UnmarshalJSON accepts both the bare-string and two-element-array forms.
//
// UnmarshalJSON 接受裸字符串和双元素数组两种形式。
func (a *Annotation) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		a.Tag, a.Elem = tag, ""
		return nil
	}
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("annotation must be a string or a [tag, elem] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("compound annotation must have exactly 2 elements, got %d", len(pair))
	}
	a.Tag, a.Elem = pair[0], pair[1]
	return nil
}
