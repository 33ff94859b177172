// This file provides the wire codecs that turn an Envelope into bytes for
// the transport boundary. JSON is the primary interchange form; Gob is a
// compact binary alternative for Go-to-Go transports.
//
// 本文件提供在传输边界将Envelope转换为字节的线路编解码器。
// JSON是主要交换形式；Gob是面向Go到Go传输的紧凑二进制替代。
package codec

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"

	snaperrors "github.com/yourusername/snapcodec/pkg/errors"
)

func init() {
	// The plain tree travels as interface values inside the envelope, so
	// the container shapes must be registered with gob.
	// 普通树在信封内以接口值传输，因此容器形态必须向gob注册。
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// WireCodec defines the interface for encoding and decoding envelopes.
// Implementations of this interface can be used to customize how envelopes
// are serialized at the transport boundary.
//
// WireCodec 定义信封编码和解码的接口。
// 此接口的实现可用于自定义信封在传输边界的序列化方式。
type WireCodec interface {
	// Marshal serializes an envelope into bytes.
	//
	// Marshal 将信封序列化为字节。
	//
	// Parameters:
	//   - env: The envelope to serialize
	//
	// Returns:
	//   - []byte: The serialized bytes
	//   - error: An error if serialization fails
	Marshal(env *Envelope) ([]byte, error)

	// Unmarshal deserializes bytes into an envelope.
	//
	// Unmarshal 将字节反序列化为信封。
	//
	// Parameters:
	//   - data: The bytes to deserialize
	//
	// Returns:
	//   - *Envelope: The decoded envelope
	//   - error: An error if deserialization fails
	Unmarshal(data []byte) (*Envelope, error)

	// Name returns the name of this wire codec.
	// This is useful for identification and debugging.
	//
	// Name 返回此线路编解码器的名称。
	// 这对于标识和调试很有用。
	//
	// Returns:
	//   - string: The wire codec name
	Name() string
}

// JSONWire implements WireCodec using JSON serialization. It is the
// canonical interchange form of an envelope.
//
// JSONWire 使用JSON序列化实现WireCodec。它是信封的规范交换形式。
type JSONWire struct {
	// Pretty determines whether to use indented JSON encoding.
	// Pretty 决定是否使用缩进的JSON编码。
	Pretty bool
}

// Marshal serializes an envelope into JSON bytes.
// If Pretty is true, the output will be indented.
//
// Marshal 将信封序列化为JSON字节。如果Pretty为true，输出将带有缩进。
func (w *JSONWire) Marshal(env *Envelope) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if w.Pretty {
		data, err = json.MarshalIndent(env, "", "  ")
	} else {
		data, err = json.Marshal(env)
	}
	if err != nil {
		return nil, snaperrors.Wrap(snaperrors.ErrSerializationFailed, "%v", err)
	}
	return data, nil
}

// Unmarshal deserializes JSON bytes into an envelope. Numbers in the plain
// tree decode as float64, which is the numeric shape the inverse transforms
// accept.
//
// Unmarshal 将JSON字节反序列化为信封。普通树中的数字解码为float64，
// 这是逆向转换接受的数字形态。
func (w *JSONWire) Unmarshal(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, snaperrors.Wrap(snaperrors.ErrInvalidEnvelope, "%v", err)
	}
	return &env, nil
}

// Name returns the name of this wire codec.
//
// Name 返回此线路编解码器的名称。
//
// Returns:
//   - string: Always returns "json"
func (w *JSONWire) Name() string {
	return "json"
}

// NewJSONWire creates a new JSONWire.
//
// NewJSONWire 创建一个新的JSONWire。
//
// Parameters:
//   - pretty: Whether to use indented JSON encoding
//
// Returns:
//   - *JSONWire: A new JSON wire codec instance
func NewJSONWire(pretty bool) *JSONWire {
	return &JSONWire{Pretty: pretty}
}

// GobWire implements WireCodec using Gob serialization. Gob is a binary
// format optimized for Go-to-Go transports; it preserves the plain tree's
// concrete Go types instead of widening numbers to float64.
//
// GobWire 使用Gob序列化实现WireCodec。Gob是为Go到Go传输优化的
// 二进制格式；它保留普通树的具体Go类型而不将数字扩展为float64。
type GobWire struct{}

// Marshal serializes an envelope into Gob bytes.
//
// Marshal 将信封序列化为Gob字节。
func (w *GobWire) Marshal(env *Envelope) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(env); err != nil {
		return nil, snaperrors.Wrap(snaperrors.ErrSerializationFailed, "%v", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes Gob bytes into an envelope.
//
// Unmarshal 将Gob字节反序列化为信封。
func (w *GobWire) Unmarshal(data []byte) (*Envelope, error) {
	var env Envelope
	dec := gob.NewDecoder(bytes.NewBuffer(data))
	if err := dec.Decode(&env); err != nil {
		return nil, snaperrors.Wrap(snaperrors.ErrInvalidEnvelope, "%v", err)
	}
	return &env, nil
}

// Name returns the name of this wire codec.
//
// Name 返回此线路编解码器的名称。
//
// Returns:
//   - string: Always returns "gob"
func (w *GobWire) Name() string {
	return "gob"
}

// NewGobWire creates a new GobWire.
//
// NewGobWire 创建一个新的GobWire。
//
// Returns:
//   - *GobWire: A new Gob wire codec instance
func NewGobWire() *GobWire {
	return &GobWire{}
}

// DefaultWire returns the default wire codec (JSON).
// This is used when no specific wire codec is specified.
//
// DefaultWire 返回默认线路编解码器（JSON）。
// 当未指定特定线路编解码器时使用。
//
// Returns:
//   - WireCodec: A default JSON wire codec instance
func DefaultWire() WireCodec {
	return NewJSONWire(false)
}

// GetWire returns a wire codec by name.
// Supported names: "json", "json-pretty", "gob".
//
// GetWire 通过名称返回线路编解码器。
// 支持的名称："json"、"json-pretty"、"gob"。
//
// Parameters:
//   - name: The wire codec name
//
// Returns:
//   - WireCodec: The requested wire codec
//   - error: An error if the wire codec name is unknown
func GetWire(name string) (WireCodec, error) {
	switch name {
	case "json":
		return NewJSONWire(false), nil
	case "json-pretty":
		return NewJSONWire(true), nil
	case "gob":
		return NewGobWire(), nil
	default:
		return nil, fmt.Errorf("unknown wire codec: %s", name)
	}
}
