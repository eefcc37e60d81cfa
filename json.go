package nbt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/minio/simdjson-go"
)

var errJSONNotObject = errors.New("nbt: json root must be an object")

// FromJSON parses a JSON object into a compound. Integers become Int when
// they fit and Long otherwise, other numbers become Double, booleans
// become Byte 0/1, and null members are dropped. Arrays become lists;
// mixed numeric arrays are widened to their widest member.
func FromJSON(data []byte) (*Compound, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("nbt: json input is empty")
	}
	if trimmed[0] != '{' {
		return nil, errJSONNotObject
	}
	if !simdjson.SupportedCPU() {
		return compoundFromJSONStream(trimmed)
	}
	parsed, err := simdjson.Parse(trimmed, nil)
	if err != nil {
		return nil, err
	}
	it := parsed.Iter()
	if it.Advance() != simdjson.TypeRoot {
		return nil, fmt.Errorf("nbt: json root not found")
	}
	typ, root, err := it.Root(nil)
	if err != nil {
		return nil, err
	}
	t, err := tagFromJSONIter(typ, root)
	if err != nil {
		return nil, err
	}
	c, ok := t.(*Compound)
	if !ok {
		return nil, errJSONNotObject
	}
	return c, nil
}

// tagFromJSONIter returns nil for JSON null.
func tagFromJSONIter(typ simdjson.Type, it *simdjson.Iter) (Tag, error) {
	switch typ {
	case simdjson.TypeNull:
		return nil, nil
	case simdjson.TypeBool:
		v, err := it.Bool()
		if err != nil {
			return nil, err
		}
		return boolTag(v), nil
	case simdjson.TypeInt:
		v, err := it.Int()
		if err != nil {
			return nil, err
		}
		return intTag(v), nil
	case simdjson.TypeUint:
		v, err := it.Uint()
		if err != nil {
			return nil, err
		}
		if v > math.MaxInt64 {
			return Double(float64(v)), nil
		}
		return intTag(int64(v)), nil
	case simdjson.TypeFloat:
		v, err := it.Float()
		if err != nil {
			return nil, err
		}
		return Double(v), nil
	case simdjson.TypeString:
		s, err := it.String()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case simdjson.TypeObject:
		obj, err := it.Object(nil)
		if err != nil {
			return nil, err
		}
		c := NewCompound()
		var parseErr error
		err = obj.ForEach(func(key []byte, elem simdjson.Iter) {
			if parseErr != nil {
				return
			}
			t, err := tagFromJSONIter(elem.Type(), &elem)
			if err != nil {
				parseErr = err
				return
			}
			if t != nil {
				c.Set(string(key), t)
			}
		}, nil)
		if err != nil {
			return nil, err
		}
		if parseErr != nil {
			return nil, parseErr
		}
		return c, nil
	case simdjson.TypeArray:
		arr, err := it.Array(nil)
		if err != nil {
			return nil, err
		}
		var elems []Tag
		iter := arr.Iter()
		for {
			t := iter.Advance()
			if t == simdjson.TypeNone {
				break
			}
			elem := iter
			v, err := tagFromJSONIter(t, &elem)
			if err != nil {
				return nil, err
			}
			if v != nil {
				elems = append(elems, v)
			}
		}
		return widenList(elems)
	default:
		return nil, fmt.Errorf("nbt: unsupported json type: %v", typ)
	}
}

// compoundFromJSONStream is the portable path for CPUs simdjson-go does
// not support. It walks encoding/json tokens so member order is kept.
func compoundFromJSONStream(data []byte) (*Compound, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	t, err := tagFromJSONToken(dec, tok)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("nbt: invalid character after top-level value")
	}
	c, ok := t.(*Compound)
	if !ok {
		return nil, errJSONNotObject
	}
	return c, nil
}

func tagFromJSONToken(dec *json.Decoder, tok json.Token) (Tag, error) {
	switch v := tok.(type) {
	case nil:
		return nil, nil
	case bool:
		return boolTag(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return intTag(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("nbt: invalid json number: %s", v)
		}
		return Double(f), nil
	case string:
		return String(v), nil
	case json.Delim:
		switch v {
		case '{':
			c := NewCompound()
			for dec.More() {
				key, err := dec.Token()
				if err != nil {
					return nil, err
				}
				name, ok := key.(string)
				if !ok {
					return nil, fmt.Errorf("nbt: json object key is %T", key)
				}
				next, err := dec.Token()
				if err != nil {
					return nil, err
				}
				t, err := tagFromJSONToken(dec, next)
				if err != nil {
					return nil, err
				}
				if t != nil {
					c.Set(name, t)
				}
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return c, nil
		case '[':
			var elems []Tag
			for dec.More() {
				next, err := dec.Token()
				if err != nil {
					return nil, err
				}
				t, err := tagFromJSONToken(dec, next)
				if err != nil {
					return nil, err
				}
				if t != nil {
					elems = append(elems, t)
				}
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return widenList(elems)
		}
	}
	return nil, fmt.Errorf("nbt: unexpected json token %v", tok)
}

func boolTag(v bool) Tag {
	if v {
		return Byte(1)
	}
	return Byte(0)
}

func intTag(v int64) Tag {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return Int(v)
	}
	return Long(v)
}

// numericRank orders the tag types a JSON number can produce.
func numericRank(t TagType) int {
	switch t {
	case TagByte:
		return 1
	case TagInt:
		return 2
	case TagLong:
		return 3
	case TagDouble:
		return 4
	}
	return 0
}

func widenList(elems []Tag) (List, error) {
	if len(elems) == 0 {
		return List{}, nil
	}
	target := elems[0].Type()
	for _, e := range elems[1:] {
		et := e.Type()
		if et == target {
			continue
		}
		if numericRank(et) == 0 || numericRank(target) == 0 {
			return nil, fmt.Errorf("%w: json array mixes %s and %s", ErrHeterogeneousList, target, et)
		}
		if numericRank(et) > numericRank(target) {
			target = et
		}
	}
	out := make(List, len(elems))
	for i, e := range elems {
		out[i] = widenNumber(e, target)
	}
	return out, nil
}

func widenNumber(t Tag, target TagType) Tag {
	if t.Type() == target {
		return t
	}
	n, _ := integerOf(t)
	switch target {
	case TagInt:
		return Int(n)
	case TagLong:
		return Long(n)
	default:
		return Double(float64(n))
	}
}

// ToJSON renders t as JSON. Compound members keep their order and
// non-finite floats are written as null.
func ToJSON(t Tag) (string, error) {
	var sb strings.Builder
	if err := WriteJSON(&sb, t); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteJSON appends JSON for t to sb.
func WriteJSON(sb *strings.Builder, t Tag) error {
	switch v := t.(type) {
	case Byte, Short, Int, Long:
		n, _ := integerOf(v)
		sb.WriteString(strconv.FormatInt(n, 10))
	case Float:
		writeJSONFloat(sb, float64(v), 32)
	case Double:
		writeJSONFloat(sb, float64(v), 64)
	case String:
		writeJSONString(sb, string(v))
	case ByteArray:
		writeJSONInts(sb, v)
	case IntArray:
		writeJSONInts(sb, v)
	case LongArray:
		writeJSONInts(sb, v)
	case List:
		sb.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := WriteJSON(sb, e); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case *Compound:
		sb.WriteByte('{')
		first := true
		for name, e := range v.All() {
			if !first {
				sb.WriteByte(',')
			}
			first = false
			writeJSONString(sb, name)
			sb.WriteByte(':')
			if err := WriteJSON(sb, e); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	case nil:
		return ErrNilTag
	default:
		return fmt.Errorf("%w: %T", ErrInvalidType, t)
	}
	return nil
}

func writeJSONFloat(sb *strings.Builder, f float64, bits int) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		sb.WriteString("null")
		return
	}
	sb.WriteString(strconv.FormatFloat(f, 'g', -1, bits))
}

func writeJSONInts[T int8 | int32 | int64](sb *strings.Builder, vals []T) {
	sb.WriteByte('[')
	for i, n := range vals {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(int64(n), 10))
	}
	sb.WriteByte(']')
}

func writeJSONString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte(hexDigit(c >> 4))
				sb.WriteByte(hexDigit(c & 0xF))
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'A' + (n - 10)
}
