package nbt

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidType       = errors.New("nbt: invalid tag type")
	ErrNegativeLength    = errors.New("nbt: negative length")
	ErrMaxDepth          = errors.New("nbt: maximum nesting depth exceeded")
	ErrNoRootCompound    = errors.New("nbt: root is not a compound")
	ErrMissingListType   = errors.New("nbt: non-empty list declares TAG_End elements")
	ErrDuplicateKey      = errors.New("nbt: duplicate compound key")
	ErrHeterogeneousList = errors.New("nbt: list elements must share one type")
	ErrNilTag            = errors.New("nbt: nil tag")
	ErrStringTooLong     = errors.New("nbt: string longer than 65535 bytes")
	ErrArrayTooLong      = errors.New("nbt: array or list longer than 2147483647 elements")

	ErrUnrepresentable  = errors.New("nbt: type has no NBT representation")
	ErrNonStringMapKey  = errors.New("nbt: map key is not a string")
	ErrTypeMismatch     = errors.New("nbt: tag does not fit target type")
	ErrLossyConversion  = errors.New("nbt: value does not fit target type")
	ErrNonBooleanByte   = errors.New("nbt: byte is neither 0 nor 1")
	ErrMissingField     = errors.New("nbt: missing required field")
	ErrUnknownField     = errors.New("nbt: unknown field")
	ErrLengthMismatch   = errors.New("nbt: sequence length does not match array length")
	ErrInvalidTarget    = errors.New("nbt: target must be a non-nil pointer")
	ErrUnknownCompress  = errors.New("nbt: unknown compression")
	ErrHeterogeneousSeq = errors.New("nbt: sequence elements map to different tag types")
)

// DecodingError reports malformed or truncated input.
type DecodingError struct {
	// Offset is the number of bytes consumed when the error was detected.
	Offset int64
	Err    error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("nbt: decoding at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// EncodingError reports a tree that cannot be written.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return "nbt: encoding: " + e.Err.Error()
}

func (e *EncodingError) Unwrap() error { return e.Err }

// SerializationError reports a Go value that cannot become a tag tree.
type SerializationError struct {
	// Type is the Go type at fault.
	Type string
	// Path locates the value inside the top-level value, e.g. "Inventory[3].id".
	Path string
	Err  error
}

func (e *SerializationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("nbt: serializing %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("nbt: serializing %s at %s: %v", e.Type, e.Path, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// DeserializationError reports a tag tree that does not fit the target.
type DeserializationError struct {
	Path string
	Err  error
}

func (e *DeserializationError) Error() string {
	if e.Path == "" {
		return "nbt: deserializing: " + e.Err.Error()
	}
	return fmt.Sprintf("nbt: deserializing %s: %v", e.Path, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }
