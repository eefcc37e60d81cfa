package nbt

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/delaneyj/toolbelt/bytebufferpool"
)

// Marshaler is implemented by types that build their own tag.
type Marshaler interface {
	MarshalNBT() (Tag, error)
}

var (
	tagType         = reflect.TypeFor[Tag]()
	compoundPtrType = reflect.TypeFor[*Compound]()
	marshalerType   = reflect.TypeFor[Marshaler]()
)

// ToTag converts a Go value to a tag. Structs and string-keyed maps
// become compounds, slices and arrays become lists, and scalars map to
// the narrowest matching numeric tag (int becomes Long, bool becomes
// Byte). Unsigned integers have no NBT counterpart and are rejected.
func ToTag(v any) (Tag, error) {
	return toTag(v, newConfig(Uncompressed, nil))
}

func toTag(v any, cfg Config) (Tag, error) {
	if t, ok := v.(Tag); ok {
		return t, nil
	}
	s := serializer{maxDepth: cfg.MaxDepth}
	t, err := s.value(reflect.ValueOf(v), "", hintNone)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &SerializationError{Type: fmt.Sprintf("%T", v), Err: ErrNilTag}
	}
	return t, nil
}

// MarshalBlob converts v to a blob. v must map to a compound.
func MarshalBlob(v any, opts ...Option) (*Blob, error) {
	return marshalBlob(v, newConfig(Uncompressed, opts))
}

func marshalBlob(v any, cfg Config) (*Blob, error) {
	switch v := v.(type) {
	case *Blob:
		return v, nil
	case Blob:
		return &v, nil
	}
	t, err := toTag(v, cfg)
	if err != nil {
		return nil, err
	}
	c, ok := t.(*Compound)
	if !ok {
		return nil, &SerializationError{
			Type: fmt.Sprintf("%T", v),
			Err:  fmt.Errorf("%w: got %s", ErrNoRootCompound, t.Type()),
		}
	}
	return &Blob{Name: cfg.RootName, root: c}, nil
}

// Marshal returns the complete encoding of v, compressed according to
// WithCompression.
func Marshal(v any, opts ...Option) ([]byte, error) {
	cfg := newConfig(Uncompressed, opts)
	b, err := marshalBlob(v, cfg)
	if err != nil {
		return nil, err
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := appendBlob(buf, b, cfg); err != nil {
		return nil, err
	}
	if cfg.Compression == Uncompressed {
		return slices.Clone(buf.Bytes()), nil
	}
	var out bytes.Buffer
	if err := writeFramed(&out, buf.Bytes(), cfg); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

type serializer struct {
	maxDepth int
	depth    int
}

func (s *serializer) fail(t reflect.Type, path string, err error) error {
	if se, ok := err.(*SerializationError); ok {
		return se
	}
	return &SerializationError{Type: t.String(), Path: path, Err: err}
}

// value returns nil, nil for values that are left out of the enclosing
// compound: nil pointers and nil interfaces.
func (s *serializer) value(v reflect.Value, path string, hint fieldHint) (Tag, error) {
	if !v.IsValid() {
		return nil, nil
	}
	typ := v.Type()
	switch typ.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
	}
	if typ.Implements(marshalerType) {
		t, err := v.Interface().(Marshaler).MarshalNBT()
		if err != nil {
			return nil, s.fail(typ, path, err)
		}
		return t, nil
	}
	if v.CanAddr() && reflect.PointerTo(typ).Implements(marshalerType) {
		t, err := v.Addr().Interface().(Marshaler).MarshalNBT()
		if err != nil {
			return nil, s.fail(typ, path, err)
		}
		return t, nil
	}
	if typ.Implements(tagType) && !(hint == hintList && typ.Kind() == reflect.Slice) {
		return v.Interface().(Tag), nil
	}

	switch typ.Kind() {
	case reflect.Pointer, reflect.Interface:
		return s.value(v.Elem(), path, hint)
	case reflect.Bool:
		if v.Bool() {
			return Byte(1), nil
		}
		return Byte(0), nil
	case reflect.Int8:
		return Byte(v.Int()), nil
	case reflect.Int16:
		return Short(v.Int()), nil
	case reflect.Int32:
		return Int(v.Int()), nil
	case reflect.Int64, reflect.Int:
		return Long(v.Int()), nil
	case reflect.Float32:
		return Float(v.Float()), nil
	case reflect.Float64:
		return Double(v.Float()), nil
	case reflect.String:
		return String(v.String()), nil
	case reflect.Slice, reflect.Array:
		return s.sequence(v, path, hint)
	case reflect.Map:
		return s.mapValue(v, path)
	case reflect.Struct:
		return s.structValue(v, path)
	default:
		return nil, s.fail(typ, path, ErrUnrepresentable)
	}
}

func (s *serializer) enter(t reflect.Type, path string) error {
	s.depth++
	if s.depth > s.maxDepth {
		return s.fail(t, path, fmt.Errorf("%w (%d)", ErrMaxDepth, s.maxDepth))
	}
	return nil
}

func (s *serializer) leave() {
	s.depth--
}

func (s *serializer) sequence(v reflect.Value, path string, hint fieldHint) (Tag, error) {
	typ := v.Type()
	if err := s.enter(typ, path); err != nil {
		return nil, err
	}
	defer s.leave()

	switch hint {
	case hintByteArray:
		out := make(ByteArray, v.Len())
		for i := range out {
			n, err := s.arrayElem(v.Index(i), path, i, math.MinInt8, math.MaxInt8)
			if err != nil {
				return nil, err
			}
			out[i] = int8(n)
		}
		return out, nil
	case hintIntArray:
		out := make(IntArray, v.Len())
		for i := range out {
			n, err := s.arrayElem(v.Index(i), path, i, math.MinInt32, math.MaxInt32)
			if err != nil {
				return nil, err
			}
			out[i] = int32(n)
		}
		return out, nil
	case hintLongArray:
		out := make(LongArray, v.Len())
		for i := range out {
			n, err := s.arrayElem(v.Index(i), path, i, math.MinInt64, math.MaxInt64)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}

	if typ.Elem().Kind() == reflect.Uint8 {
		return nil, s.fail(typ, path, fmt.Errorf("%w: byte slices need the bytearray option", ErrUnrepresentable))
	}
	out := make(List, 0, v.Len())
	for i := range v.Len() {
		elemPath := fmt.Sprintf("%s[%d]", path, i)
		t, err := s.value(v.Index(i), elemPath, hintNone)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, s.fail(typ.Elem(), elemPath, ErrNilTag)
		}
		if len(out) > 0 && t.Type() != out[0].Type() {
			return nil, s.fail(typ, elemPath, fmt.Errorf("%w: %s after %s", ErrHeterogeneousSeq, t.Type(), out[0].Type()))
		}
		out = append(out, t)
	}
	return out, nil
}

// arrayElem reads an integer element for a packed array. Unsigned bytes
// are reinterpreted bit for bit; every other element must fit the range.
func (s *serializer) arrayElem(v reflect.Value, path string, i int, lo, hi int64) (int64, error) {
	var n int64
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = v.Int()
	case reflect.Uint8:
		if hi != math.MaxInt8 {
			return 0, s.fail(v.Type(), fmt.Sprintf("%s[%d]", path, i), ErrUnrepresentable)
		}
		return int64(int8(v.Uint())), nil
	default:
		return 0, s.fail(v.Type(), fmt.Sprintf("%s[%d]", path, i), fmt.Errorf("%w: packed arrays hold integers", ErrUnrepresentable))
	}
	if n < lo || n > hi {
		return 0, s.fail(v.Type(), fmt.Sprintf("%s[%d]", path, i), fmt.Errorf("%w: %d", ErrLossyConversion, n))
	}
	return n, nil
}

func (s *serializer) mapValue(v reflect.Value, path string) (Tag, error) {
	typ := v.Type()
	if typ.Key().Kind() != reflect.String {
		return nil, s.fail(typ, path, ErrNonStringMapKey)
	}
	if err := s.enter(typ, path); err != nil {
		return nil, err
	}
	defer s.leave()

	keys := v.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return strings.Compare(a.String(), b.String())
	})
	c := NewCompound()
	for _, k := range keys {
		name := k.String()
		t, err := s.value(v.MapIndex(k), joinPath(path, name), hintNone)
		if err != nil {
			return nil, err
		}
		if t == nil {
			continue
		}
		c.Set(name, t)
	}
	return c, nil
}

func (s *serializer) structValue(v reflect.Value, path string) (Tag, error) {
	typ := v.Type()
	if err := s.enter(typ, path); err != nil {
		return nil, err
	}
	defer s.leave()

	c := NewCompound()
	for _, f := range cachedFields(typ) {
		fv := v.FieldByIndex(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		t, err := s.value(fv, joinPath(path, f.name), f.hint)
		if err != nil {
			return nil, err
		}
		if t == nil {
			continue
		}
		c.Set(f.name, t)
	}
	return c, nil
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
