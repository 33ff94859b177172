// Package api provides the main entry point for the SnapCodec API.
// It re-exports the core types and functions from the sub-packages.
package api

import (
	"github.com/yourusername/snapcodec/api/source"
	"github.com/yourusername/snapcodec/pkg/codec"
	"github.com/yourusername/snapcodec/pkg/errors"
	"github.com/yourusername/snapcodec/pkg/types"
)

// Codec converts value graphs to portable envelopes and back.
// It is re-exported from the codec package.
type Codec = codec.Codec

// Envelope is the portable representation of an encoded value graph.
// It is re-exported from the codec package.
type Envelope = codec.Envelope

// Meta carries the reconstruction annotations of an envelope.
// It is re-exported from the codec package.
type Meta = codec.Meta

// Option is a function type for configuring a codec instance.
// It is re-exported from the codec package.
type Option = codec.Option

// Config holds the configuration parameters for a codec instance.
// It is re-exported from the codec package.
type Config = codec.Config

// Stats represents codec usage statistics.
// It is re-exported from the codec package.
type Stats = codec.Stats

// WireCodec serializes envelopes to bytes for transport or storage.
// It is re-exported from the codec package.
type WireCodec = codec.WireCodec

// Set is an unordered unique collection with stable insertion order.
// It is re-exported from the types package.
type Set = types.Set

// OrderedMap is a key/value mapping that preserves insertion order.
// It is re-exported from the types package.
type OrderedMap = types.OrderedMap

// Pattern is a portable text-matching pattern with source and flags.
// It is re-exported from the types package.
type Pattern = types.Pattern

// ErrorValue is a structured error object with an optional cause chain.
// It is re-exported from the types package.
type ErrorValue = types.ErrorValue

// Provider produces value graphs for snapshotting.
// It is re-exported from the source package.
type Provider = source.Provider

// Re-export functions from the codec package.
var (
	// New creates a new codec instance with the given options.
	New = codec.New

	// Serialize encodes a value graph using the default codec.
	Serialize = codec.Serialize

	// Deserialize rebuilds a value graph using the default codec.
	Deserialize = codec.Deserialize

	// WithMaxDepth sets the maximum traversal depth.
	WithMaxDepth = codec.WithMaxDepth

	// WithStrictMode makes unsupported values fail instead of passing through.
	WithStrictMode = codec.WithStrictMode

	// WithGuardedKeys overrides the set of rejected map keys.
	WithGuardedKeys = codec.WithGuardedKeys

	// WithMetricsEnabled enables or disables usage metrics collection.
	WithMetricsEnabled = codec.WithMetricsEnabled

	// WithHistogramBuckets sets the latency histogram bucket count.
	WithHistogramBuckets = codec.WithHistogramBuckets

	// DefaultConfig returns a Config with reasonable default values.
	DefaultConfig = codec.DefaultConfig

	// NewJSONWire creates a JSON wire codec for envelopes.
	NewJSONWire = codec.NewJSONWire

	// NewGobWire creates a gob wire codec for envelopes.
	NewGobWire = codec.NewGobWire
)

// Re-export constructors from the types package.
var (
	// NewSet creates an empty unique set.
	NewSet = types.NewSet

	// NewOrderedMap creates an empty insertion-ordered map.
	NewOrderedMap = types.NewOrderedMap
)

// Re-export functions from the source package.
var (
	// NewFunctionProvider creates a Provider from a function.
	NewFunctionProvider = source.NewFunctionProvider

	// NewStaticProvider creates a Provider that returns a fixed value.
	NewStaticProvider = source.NewStaticProvider

	// NewRegistry creates an empty provider registry.
	NewRegistry = source.NewRegistry
)

// Re-export error checking functions from the errors package.
var (
	// IsUnsafeKey returns true if the error is ErrUnsafeKey or wraps ErrUnsafeKey.
	IsUnsafeKey = errors.IsUnsafeKey

	// IsUnknownAnnotation returns true if the error is ErrUnknownAnnotation or wraps ErrUnknownAnnotation.
	IsUnknownAnnotation = errors.IsUnknownAnnotation

	// IsInvalidPath returns true if the error is ErrInvalidPath or wraps ErrInvalidPath.
	IsInvalidPath = errors.IsInvalidPath

	// IsInvalidEnvelope returns true if the error is ErrInvalidEnvelope or wraps ErrInvalidEnvelope.
	IsInvalidEnvelope = errors.IsInvalidEnvelope

	// IsUnsupportedValue returns true if the error is ErrUnsupportedValue or wraps ErrUnsupportedValue.
	IsUnsupportedValue = errors.IsUnsupportedValue

	// IsDepthExceeded returns true if the error is ErrDepthExceeded or wraps ErrDepthExceeded.
	IsDepthExceeded = errors.IsDepthExceeded

	// IsSerializationFailed returns true if the error is ErrSerializationFailed or wraps ErrSerializationFailed.
	IsSerializationFailed = errors.IsSerializationFailed

	// IsDeserializationFailed returns true if the error is ErrDeserializationFailed or wraps ErrDeserializationFailed.
	IsDeserializationFailed = errors.IsDeserializationFailed
)
