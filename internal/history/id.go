// Package history 为检查传输提供有界的、按TTL过期的近期快照信封存储。
// 本文件实现快照指纹：基于信封线路形式的FNV-1a哈希。
package history

import (
	"fmt"
	"hash/fnv"

	"github.com/yourusername/snapcodec/pkg/codec"
	snaperrors "github.com/yourusername/snapcodec/pkg/errors"
)

// Fingerprint derives a stable snapshot ID from an envelope's canonical
// JSON wire form using FNV-1a. Two envelopes with identical wire bytes get
// identical IDs, which makes history storage idempotent.
//
// Fingerprint 使用FNV-1a从信封的规范JSON线路形式推导稳定的快照ID。
// 线路字节相同的两个信封得到相同的ID，使历史存储具有幂等性。
func Fingerprint(env *codec.Envelope) (string, error) {
	data, err := codec.NewJSONWire(false).Marshal(env)
	if err != nil {
		return "", snaperrors.Wrap(err, "fingerprinting envelope")
	}
	h := fnv.New64a()
	h.Write(data)
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
