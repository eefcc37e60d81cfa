package nbt

import (
	"encoding/binary"

	"github.com/klauspost/compress/gzip"
)

// Endianness selects the byte order of fixed-width numbers and length
// prefixes. Java edition uses BigEndian; Bedrock edition files and
// payloads use LittleEndian.
type Endianness uint8

const (
	BigEndian Endianness = iota
	LittleEndian
)

func (e Endianness) String() string {
	if e == LittleEndian {
		return "little-endian"
	}
	return "big-endian"
}

type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

func (e Endianness) order() byteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// KeyOrder selects the order in which compound entries are written.
type KeyOrder uint8

const (
	// InsertionOrder writes entries in the order they were added or decoded.
	InsertionOrder KeyOrder = iota
	// SortedOrder writes entries in lexical key order.
	SortedOrder
)

const (
	// DefaultMaxDepth matches the nesting limit of the reference client.
	DefaultMaxDepth = 512

	DefaultCompression = gzip.DefaultCompression
	BestSpeed          = gzip.BestSpeed
	BestCompression    = gzip.BestCompression
)

// Config holds the settings shared by decoders, encoders and the
// data-model bridge. The zero value is not used directly; see newConfig.
type Config struct {
	Endian      Endianness
	Order       KeyOrder
	MaxDepth    int
	Compression Compression
	Level       int
	RootName    string

	// StrictKeys makes duplicate compound keys a decoding error instead of
	// letting the last value win.
	StrictKeys bool
	// DisallowUnknownFields makes compound keys with no matching struct
	// field a deserialization error.
	DisallowUnknownFields bool
}

// Option configures a Config.
type Option func(*Config)

func newConfig(compression Compression, opts []Option) Config {
	cfg := Config{
		MaxDepth:    DefaultMaxDepth,
		Compression: compression,
		Level:       DefaultCompression,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return cfg
}

// WithEndian selects the wire byte order.
func WithEndian(e Endianness) Option {
	return func(c *Config) { c.Endian = e }
}

// WithKeyOrder selects compound key order for encoding.
func WithKeyOrder(o KeyOrder) Option {
	return func(c *Config) { c.Order = o }
}

// WithMaxDepth bounds list and compound nesting.
func WithMaxDepth(depth int) Option {
	return func(c *Config) { c.MaxDepth = depth }
}

// WithCompression selects the compression framing.
func WithCompression(comp Compression) Option {
	return func(c *Config) { c.Compression = comp }
}

// WithLevel sets the gzip/zlib compression level used when writing.
func WithLevel(level int) Option {
	return func(c *Config) { c.Level = level }
}

// WithRootName sets the root name written by Marshal and MarshalBlob.
func WithRootName(name string) Option {
	return func(c *Config) { c.RootName = name }
}

// StrictKeys rejects duplicate compound keys while decoding.
func StrictKeys() Option {
	return func(c *Config) { c.StrictKeys = true }
}

// DisallowUnknownFields rejects compound keys that match no struct field.
func DisallowUnknownFields() Option {
	return func(c *Config) { c.DisallowUnknownFields = true }
}
