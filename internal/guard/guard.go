// Package guard rejects container keys that would corrupt prototype linkage
// or constructor identity in a dynamically-dispatched consumer of the plain
// tree. The encoder applies it to every dynamic map key before recursing;
// the decoder applies it again when navigating map keys parsed from an
// envelope, since envelopes may arrive from untrusted peers.
//
// Package guard 拒绝会破坏普通树动态分发消费方的原型链接或
// 构造器身份的容器键。编码器在递归前对每个动态映射键应用它；
// 解码器在导航从信封解析的映射键时再次应用它，
// 因为信封可能来自不可信的对端。
package guard

import (
	snaperrors "github.com/yourusername/snapcodec/pkg/errors"
)

// DefaultKeys are the prototype-linkage and constructor-identity field
// names rejected by default.
//
// DefaultKeys 是默认拒绝的原型链接和构造器身份字段名。
var DefaultKeys = []string{"__proto__", "constructor", "prototype"}

// Guard is a set of rejected container keys.
//
// Guard 是被拒绝的容器键集合。
type Guard struct {
	keys map[string]struct{}
}

// New creates a Guard rejecting the given keys. A nil or empty list yields
// the default key set.
//
// New 创建拒绝给定键的Guard。nil或空列表产生默认键集合。
func New(keys []string) *Guard {
	if len(keys) == 0 {
		keys = DefaultKeys
	}
	g := &Guard{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		g.keys[k] = struct{}{}
	}
	return g
}

// Check returns a structural error if key is rejected.
//
// Check 如果键被拒绝则返回结构性错误。
func (g *Guard) Check(key string) error {
	if _, bad := g.keys[key]; bad {
		return snaperrors.Wrap(snaperrors.ErrUnsafeKey, "key %q (prototype pollution risk)", key)
	}
	return nil
}
