package nbt

import (
	"math"
	"strconv"

	"github.com/fxamacker/cbor/v2"
)

// AsInt64 returns the tag as int64 when it is an integer, or a float
// with no fractional part that fits.
func AsInt64(t Tag) (int64, bool) {
	if n, ok := integerOf(t); ok {
		return n, true
	}
	f, ok := AsFloat64(t)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// AsFloat64 returns numeric tags as float64.
func AsFloat64(t Tag) (float64, bool) {
	switch v := t.(type) {
	case Float:
		return float64(v), true
	case Double:
		return float64(v), true
	}
	if n, ok := integerOf(t); ok {
		return float64(n), true
	}
	return 0, false
}

// AsString returns strings as-is and formats numeric tags.
func AsString(t Tag) (string, bool) {
	switch v := t.(type) {
	case String:
		return string(v), true
	case Float:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), true
	case Double:
		return strconv.FormatFloat(float64(v), 'g', -1, 64), true
	}
	if n, ok := integerOf(t); ok {
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}

// ToAny converts a tag into plain Go values: the matching fixed-size
// integers and floats, string, []int8, []int32, []int64, []any for
// lists and map[string]any for compounds.
func ToAny(t Tag) any {
	switch v := t.(type) {
	case Byte:
		return int8(v)
	case Short:
		return int16(v)
	case Int:
		return int32(v)
	case Long:
		return int64(v)
	case Float:
		return float32(v)
	case Double:
		return float64(v)
	case ByteArray:
		return append([]int8(nil), v...)
	case String:
		return string(v)
	case List:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = ToAny(e)
		}
		return out
	case *Compound:
		out := make(map[string]any, v.Len())
		for name, e := range v.All() {
			out[name] = ToAny(e)
		}
		return out
	case IntArray:
		return append([]int32(nil), v...)
	case LongArray:
		return append([]int64(nil), v...)
	default:
		return nil
	}
}

// cborMode uses Core Deterministic Encoding so equal trees always give
// identical bytes, with compound keys sorted.
var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("nbt: CBOR encoder initialization failed: " + err.Error())
	}
}

// ToCBOR encodes t as deterministic CBOR. Compounds become maps, lists
// and arrays become CBOR arrays. Compound key order is not kept.
func ToCBOR(t Tag) ([]byte, error) {
	return cborMode.Marshal(ToAny(t))
}
