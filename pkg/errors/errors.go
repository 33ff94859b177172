// Package errors provides standardized error types for the snapshot codec.
// It defines common error types, error wrapping, and helper functions
// for error checking and handling in the codec implementation.
//
// Package errors 提供快照编解码器的标准化错误类型。
// 它定义了常见错误类型、错误包装和用于编解码器实现中
// 错误检查和处理的辅助函数。
package errors

import (
	"errors"
	"fmt"
)

// Standard errors that can be returned by the codec.
// These provide consistent error types across the codec implementation.
//
// 编解码器可能返回的标准错误。
// 这些提供了编解码器实现中一致的错误类型。
var (
	// ErrUnsafeKey is returned when a container key would corrupt dynamic
	// dispatch on the receiving side (prototype pollution risk).
	// 当容器键会破坏接收端的动态分发时返回ErrUnsafeKey（原型污染风险）。
	ErrUnsafeKey = errors.New("snapcodec: unsafe container key")

	// ErrUnknownAnnotation is returned when the decoder encounters an
	// annotation tag with no registered inverse transform.
	// 当解码器遇到没有已注册逆向转换的注解标签时返回ErrUnknownAnnotation。
	ErrUnknownAnnotation = errors.New("snapcodec: unknown annotation")

	// ErrInvalidPath is returned when an annotation path cannot be parsed
	// or does not resolve against the plain tree.
	// 当注解路径无法解析或无法在普通树中定位时返回ErrInvalidPath。
	ErrInvalidPath = errors.New("snapcodec: invalid annotation path")

	// ErrInvalidEnvelope is returned when an envelope is structurally
	// malformed.
	// 当信封结构格式错误时返回ErrInvalidEnvelope。
	ErrInvalidEnvelope = errors.New("snapcodec: invalid envelope")

	// ErrUnsupportedValue is returned in strict mode when a value outside
	// the supported kinds is encountered.
	// 在严格模式下遇到支持类型之外的值时返回ErrUnsupportedValue。
	ErrUnsupportedValue = errors.New("snapcodec: unsupported value")

	// ErrDepthExceeded is returned when traversal exceeds the configured
	// maximum depth.
	// 当遍历超过配置的最大深度时返回ErrDepthExceeded。
	ErrDepthExceeded = errors.New("snapcodec: max traversal depth exceeded")

	// ErrSerializationFailed is returned when envelope wire encoding fails.
	// 当信封线路编码失败时返回ErrSerializationFailed。
	ErrSerializationFailed = errors.New("snapcodec: serialization failed")

	// ErrDeserializationFailed is returned when an inverse transform cannot
	// rebuild the original value from its plain form.
	// 当逆向转换无法从普通形式重建原始值时返回ErrDeserializationFailed。
	ErrDeserializationFailed = errors.New("snapcodec: deserialization failed")

	// ErrStoreClosed is returned when an operation is performed on a closed
	// snapshot history store.
	// 当对已关闭的快照历史存储执行操作时返回ErrStoreClosed。
	ErrStoreClosed = errors.New("snapcodec: snapshot store is closed")

	// ErrSnapshotNotFound is returned when a snapshot ID is not present in
	// the history store.
	// 当快照ID不在历史存储中时返回ErrSnapshotNotFound。
	ErrSnapshotNotFound = errors.New("snapcodec: snapshot not found")
)

// IsUnsafeKey returns true if the error is ErrUnsafeKey or wraps ErrUnsafeKey.
//
// IsUnsafeKey 如果错误是ErrUnsafeKey或包装了ErrUnsafeKey则返回true。
func IsUnsafeKey(err error) bool {
	return errors.Is(err, ErrUnsafeKey)
}

// IsUnknownAnnotation returns true if the error is ErrUnknownAnnotation or
// wraps ErrUnknownAnnotation.
//
// IsUnknownAnnotation 如果错误是ErrUnknownAnnotation或包装了
// ErrUnknownAnnotation则返回true。
func IsUnknownAnnotation(err error) bool {
	return errors.Is(err, ErrUnknownAnnotation)
}

// IsInvalidPath returns true if the error is ErrInvalidPath or wraps
// ErrInvalidPath.
//
// IsInvalidPath 如果错误是ErrInvalidPath或包装了ErrInvalidPath则返回true。
func IsInvalidPath(err error) bool {
	return errors.Is(err, ErrInvalidPath)
}

// IsInvalidEnvelope returns true if the error is ErrInvalidEnvelope or wraps
// ErrInvalidEnvelope.
//
// IsInvalidEnvelope 如果错误是ErrInvalidEnvelope或包装了
// ErrInvalidEnvelope则返回true。
func IsInvalidEnvelope(err error) bool {
	return errors.Is(err, ErrInvalidEnvelope)
}

// IsUnsupportedValue returns true if the error is ErrUnsupportedValue or
// wraps ErrUnsupportedValue.
//
// IsUnsupportedValue 如果错误是ErrUnsupportedValue或包装了
// ErrUnsupportedValue则返回true。
func IsUnsupportedValue(err error) bool {
	return errors.Is(err, ErrUnsupportedValue)
}

// IsDepthExceeded returns true if the error is ErrDepthExceeded or wraps
// ErrDepthExceeded.
//
// IsDepthExceeded 如果错误是ErrDepthExceeded或包装了ErrDepthExceeded
// 则返回true。
func IsDepthExceeded(err error) bool {
	return errors.Is(err, ErrDepthExceeded)
}

// IsSerializationFailed returns true if the error is ErrSerializationFailed
// or wraps ErrSerializationFailed.
//
// IsSerializationFailed 如果错误是ErrSerializationFailed或包装了
// ErrSerializationFailed则返回true。
func IsSerializationFailed(err error) bool {
	return errors.Is(err, ErrSerializationFailed)
}

// IsDeserializationFailed returns true if the error is
// ErrDeserializationFailed or wraps ErrDeserializationFailed.
//
// IsDeserializationFailed 如果错误是ErrDeserializationFailed或包装了
// ErrDeserializationFailed则返回true。
func IsDeserializationFailed(err error) bool {
	return errors.Is(err, ErrDeserializationFailed)
}

// IsStoreClosed returns true if the error is ErrStoreClosed or wraps
// ErrStoreClosed.
//
// IsStoreClosed 如果错误是ErrStoreClosed或包装了ErrStoreClosed则返回true。
func IsStoreClosed(err error) bool {
	return errors.Is(err, ErrStoreClosed)
}

// IsSnapshotNotFound returns true if the error is ErrSnapshotNotFound or
// wraps ErrSnapshotNotFound.
//
// IsSnapshotNotFound 如果错误是ErrSnapshotNotFound或包装了
// ErrSnapshotNotFound则返回true。
func IsSnapshotNotFound(err error) bool {
	return errors.Is(err, ErrSnapshotNotFound)
}

// Wrap wraps an error with additional context while preserving the original
// error for errors.Is checks.
//
// Wrap 用附加上下文包装错误，同时保留原始错误以供errors.Is检查。
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
