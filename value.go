package nbt

import (
	"fmt"
	"math"
)

// Tag is a single NBT payload. The set of implementations is closed:
// Byte, Short, Int, Long, Float, Double, ByteArray, String, List,
// *Compound, IntArray and LongArray. There is no End value; TagEnd only
// appears on the wire as a compound terminator and as the element type of
// an empty list.
type Tag interface {
	// Type returns the wire discriminant for the payload.
	Type() TagType
	isTag()
}

type (
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []int8
	String    string
	IntArray  []int32
	LongArray []int64
)

// List is an ordered, homogeneous sequence of payloads. Its element type
// is derived from its contents: TagEnd when empty, otherwise the type of
// the first element.
type List []Tag

func (Byte) Type() TagType      { return TagByte }
func (Short) Type() TagType     { return TagShort }
func (Int) Type() TagType       { return TagInt }
func (Long) Type() TagType      { return TagLong }
func (Float) Type() TagType     { return TagFloat }
func (Double) Type() TagType    { return TagDouble }
func (ByteArray) Type() TagType { return TagByteArray }
func (String) Type() TagType    { return TagString }
func (List) Type() TagType      { return TagList }
func (IntArray) Type() TagType  { return TagIntArray }
func (LongArray) Type() TagType { return TagLongArray }

func (Byte) isTag()      {}
func (Short) isTag()     {}
func (Int) isTag()       {}
func (Long) isTag()      {}
func (Float) isTag()     {}
func (Double) isTag()    {}
func (ByteArray) isTag() {}
func (String) isTag()    {}
func (List) isTag()      {}
func (IntArray) isTag()  {}
func (LongArray) isTag() {}

// NewList builds a List, rejecting nil or mixed-type elements.
func NewList(values ...Tag) (List, error) {
	l := List(values)
	if err := l.validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// ElemType returns the element type written on the wire for l.
func (l List) ElemType() TagType {
	if len(l) == 0 || l[0] == nil {
		return TagEnd
	}
	return l[0].Type()
}

func (l List) validate() error {
	if len(l) == 0 {
		return nil
	}
	if l[0] == nil {
		return fmt.Errorf("%w: list element 0", ErrNilTag)
	}
	want := l[0].Type()
	for i, v := range l {
		if v == nil {
			return fmt.Errorf("%w: list element %d", ErrNilTag, i)
		}
		if v.Type() != want {
			return fmt.Errorf("%w: element %d is %s, list holds %s", ErrHeterogeneousList, i, v.Type(), want)
		}
	}
	return nil
}

// Equal reports whether a and b are structurally identical, including the
// key order of compounds. Floating point payloads are compared bit for bit.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case Float:
		return math.Float32bits(float32(av)) == math.Float32bits(float32(b.(Float)))
	case Double:
		return math.Float64bits(float64(av)) == math.Float64bits(float64(b.(Double)))
	case ByteArray:
		return sliceEqual(av, b.(ByteArray))
	case IntArray:
		return sliceEqual(av, b.(IntArray))
	case LongArray:
		return sliceEqual(av, b.(LongArray))
	case List:
		bv := b.(List)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Compound:
		return av.Equal(b.(*Compound))
	default:
		return a == b
	}
}

func sliceEqual[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of t.
func Clone(t Tag) Tag {
	switch v := t.(type) {
	case ByteArray:
		return append(ByteArray(nil), v...)
	case IntArray:
		return append(IntArray(nil), v...)
	case LongArray:
		return append(LongArray(nil), v...)
	case List:
		out := make(List, len(v))
		for i, e := range v {
			out[i] = Clone(e)
		}
		return out
	case *Compound:
		return v.Clone()
	default:
		return t
	}
}
