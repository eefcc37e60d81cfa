package nbt

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
)

// Unmarshaler is implemented by types that read themselves from a tag.
type Unmarshaler interface {
	UnmarshalNBT(Tag) error
}

// Unmarshal decodes one blob from data into v. Compression is detected
// unless an option says otherwise. Bytes after the blob are ignored.
func Unmarshal(data []byte, v any, opts ...Option) error {
	cfg := newConfig(AutoDetect, opts)
	b, err := newDecoder(bytes.NewReader(data), cfg).DecodeBlob()
	if err == io.EOF {
		return &DecodingError{Err: io.ErrUnexpectedEOF}
	}
	if err != nil {
		return err
	}
	if target, ok := v.(*Blob); ok && target != nil {
		*target = *b
		return nil
	}
	return unmarshalBlob(b, v, cfg)
}

// UnmarshalBlob fills v from the root of b.
func UnmarshalBlob(b *Blob, v any, opts ...Option) error {
	return unmarshalBlob(b, v, newConfig(Uncompressed, opts))
}

func unmarshalBlob(b *Blob, v any, cfg Config) error {
	return fromTag(b.Root(), v, cfg)
}

// FromTag fills the value v points to from t. Integers convert only when
// the value fits the target exactly, and bool accepts a Byte of 0 or 1.
func FromTag(t Tag, v any, opts ...Option) error {
	return fromTag(t, v, newConfig(Uncompressed, opts))
}

func fromTag(t Tag, v any, cfg Config) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &DeserializationError{Err: fmt.Errorf("%w: got %T", ErrInvalidTarget, v)}
	}
	if t == nil {
		return &DeserializationError{Err: ErrNilTag}
	}
	d := deserializer{disallowUnknown: cfg.DisallowUnknownFields}
	return d.value(t, rv.Elem(), "")
}

type deserializer struct {
	disallowUnknown bool
}

func (d *deserializer) fail(path string, err error) error {
	if de, ok := err.(*DeserializationError); ok {
		return de
	}
	return &DeserializationError{Path: path, Err: err}
}

func (d *deserializer) mismatch(t Tag, v reflect.Value, path string) error {
	return d.fail(path, fmt.Errorf("%w: %s into %s", ErrTypeMismatch, t.Type(), v.Type()))
}

func (d *deserializer) value(t Tag, v reflect.Value, path string) error {
	typ := v.Type()
	if v.CanAddr() && typ.Kind() != reflect.Pointer {
		if u, ok := v.Addr().Interface().(Unmarshaler); ok {
			if err := u.UnmarshalNBT(t); err != nil {
				return d.fail(path, err)
			}
			return nil
		}
	}

	switch {
	case typ == tagType:
		v.Set(reflect.ValueOf(Clone(t)))
		return nil
	case typ == compoundPtrType:
		c, ok := t.(*Compound)
		if !ok {
			return d.mismatch(t, v, path)
		}
		v.Set(reflect.ValueOf(c.Clone()))
		return nil
	}

	switch typ.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			v.Set(reflect.New(typ.Elem()))
		}
		return d.value(t, v.Elem(), path)
	case reflect.Interface:
		if typ.NumMethod() != 0 {
			return d.mismatch(t, v, path)
		}
		v.Set(reflect.ValueOf(ToAny(t)))
		return nil
	case reflect.Bool:
		b, ok := t.(Byte)
		if !ok {
			return d.mismatch(t, v, path)
		}
		if b != 0 && b != 1 {
			return d.fail(path, fmt.Errorf("%w: %d", ErrNonBooleanByte, b))
		}
		v.SetBool(b == 1)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := integerOf(t)
		if !ok {
			return d.mismatch(t, v, path)
		}
		if v.OverflowInt(n) {
			return d.fail(path, fmt.Errorf("%w: %d into %s", ErrLossyConversion, n, typ))
		}
		v.SetInt(n)
	case reflect.Float32:
		f, ok := t.(Float)
		if !ok {
			return d.mismatch(t, v, path)
		}
		v.SetFloat(float64(f))
	case reflect.Float64:
		switch f := t.(type) {
		case Float:
			v.SetFloat(float64(f))
		case Double:
			v.SetFloat(float64(f))
		default:
			return d.mismatch(t, v, path)
		}
	case reflect.String:
		s, ok := t.(String)
		if !ok {
			return d.mismatch(t, v, path)
		}
		v.SetString(string(s))
	case reflect.Slice, reflect.Array:
		return d.sequence(t, v, path)
	case reflect.Map:
		return d.mapValue(t, v, path)
	case reflect.Struct:
		c, ok := t.(*Compound)
		if !ok {
			return d.mismatch(t, v, path)
		}
		return d.structValue(c, v, path)
	default:
		return d.fail(path, fmt.Errorf("%w: %s", ErrUnrepresentable, typ))
	}
	return nil
}

func integerOf(t Tag) (int64, bool) {
	switch n := t.(type) {
	case Byte:
		return int64(n), true
	case Short:
		return int64(n), true
	case Int:
		return int64(n), true
	case Long:
		return int64(n), true
	}
	return 0, false
}

// sequenceLen returns the element count of lists and packed arrays.
func sequenceLen(t Tag) (int, bool) {
	switch s := t.(type) {
	case List:
		return len(s), true
	case ByteArray:
		return len(s), true
	case IntArray:
		return len(s), true
	case LongArray:
		return len(s), true
	}
	return 0, false
}

func sequenceAt(t Tag, i int) Tag {
	switch s := t.(type) {
	case List:
		return s[i]
	case ByteArray:
		return Byte(s[i])
	case IntArray:
		return Int(s[i])
	case LongArray:
		return Long(s[i])
	}
	return nil
}

func (d *deserializer) sequence(t Tag, v reflect.Value, path string) error {
	n, ok := sequenceLen(t)
	if !ok {
		return d.mismatch(t, v, path)
	}
	typ := v.Type()
	if typ.Kind() == reflect.Array {
		if n != v.Len() {
			return d.fail(path, fmt.Errorf("%w: %d elements into %s", ErrLengthMismatch, n, typ))
		}
	} else {
		v.Set(reflect.MakeSlice(typ, n, n))
	}

	src := reflect.ValueOf(t)
	elem := typ.Elem()
	switch {
	case elem.Kind() != reflect.Interface && src.Type().Elem() == elem:
		reflect.Copy(v, src)
		return nil
	case elem.Kind() == reflect.Uint8:
		bs, ok := t.(ByteArray)
		if !ok {
			return d.mismatch(t, v, path)
		}
		for i, b := range bs {
			v.Index(i).SetUint(uint64(uint8(b)))
		}
		return nil
	}
	for i := range n {
		if err := d.value(sequenceAt(t, i), v.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (d *deserializer) mapValue(t Tag, v reflect.Value, path string) error {
	c, ok := t.(*Compound)
	if !ok {
		return d.mismatch(t, v, path)
	}
	typ := v.Type()
	if typ.Key().Kind() != reflect.String {
		return d.fail(path, ErrNonStringMapKey)
	}
	if v.IsNil() {
		v.Set(reflect.MakeMapWithSize(typ, c.Len()))
	}
	for name, entry := range c.All() {
		ev := reflect.New(typ.Elem()).Elem()
		if err := d.value(entry, ev, joinPath(path, name)); err != nil {
			return err
		}
		v.SetMapIndex(reflect.ValueOf(name).Convert(typ.Key()), ev)
	}
	return nil
}

func (d *deserializer) structValue(c *Compound, v reflect.Value, path string) error {
	fields := cachedFields(v.Type())
	for _, f := range fields {
		entry, ok := c.Get(f.name)
		if !ok {
			if f.canBeAbsent() {
				continue
			}
			return d.fail(joinPath(path, f.name), ErrMissingField)
		}
		if err := d.value(entry, v.FieldByIndex(f.index), joinPath(path, f.name)); err != nil {
			return err
		}
	}
	if d.disallowUnknown {
		for name := range c.All() {
			if !hasField(fields, name) {
				return d.fail(joinPath(path, name), ErrUnknownField)
			}
		}
	}
	return nil
}
