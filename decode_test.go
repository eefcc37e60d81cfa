package nbt

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

// primitivesBlob is a root named "data" holding one entry of each scalar
// type.
var primitivesBlob = []byte{
	0x0a,
	0x00, 0x04, 'd', 'a', 't', 'a',
	0x01, 0x00, 0x04, 'b', 'y', 't', 'e',
	0x64,
	0x02, 0x00, 0x05, 's', 'h', 'o', 'r', 't',
	0x00, 0x64,
	0x03, 0x00, 0x03, 'i', 'n', 't',
	0x00, 0x00, 0x00, 0x64,
	0x04, 0x00, 0x04, 'l', 'o', 'n', 'g',
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x64,
	0x05, 0x00, 0x05, 'f', 'l', 'o', 'a', 't',
	0x41, 0xa0, 0x00, 0x00,
	0x06, 0x00, 0x06, 'd', 'o', 'u', 'b', 'l', 'e',
	0x40, 0x34, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x08, 0x00, 0x06, 's', 't', 'r', 'i', 'n', 'g',
	0x00, 0x09, 'H', 'e', 'r', 'o', 'b', 'r', 'i', 'n', 'e',
	0x00,
}

func primitivesCompound() *Compound {
	c := NewCompound()
	c.Set("byte", Byte(100))
	c.Set("short", Short(100))
	c.Set("int", Int(100))
	c.Set("long", Long(100))
	c.Set("float", Float(20))
	c.Set("double", Double(20))
	c.Set("string", String("Herobrine"))
	return c
}

func TestDecodePrimitives(t *testing.T) {
	b, err := NewDecoder(bytes.NewReader(primitivesBlob)).DecodeBlob()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.Name != "data" {
		t.Fatalf("name: %q", b.Name)
	}
	if !b.Root().Equal(primitivesCompound()) {
		t.Fatalf("root mismatch:\n%s", b)
	}
}

func TestDecodeLists(t *testing.T) {
	data := []byte{
		0x0a, 0x00, 0x00,
		0x09, 0x00, 0x05, 's', 'h', 'o', 'r', 't',
		0x02, 0x00, 0x00, 0x00, 0x03,
		0x00, 0x01, 0x00, 0x02, 0x00, 0x03,
		0x09, 0x00, 0x05, 'e', 'm', 'p', 't', 'y',
		0x00, 0x00, 0x00, 0x00, 0x00,
		0x09, 0x00, 0x06, 'n', 'e', 's', 't', 'e', 'd',
		0x09, 0x00, 0x00, 0x00, 0x02,
		0x02, 0x00, 0x00, 0x00, 0x02, 0x00, 0x01, 0x00, 0x02,
		0x02, 0x00, 0x00, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04,
		0x00,
	}
	b, err := NewDecoder(bytes.NewReader(data)).DecodeBlob()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := NewCompound()
	want.Set("short", List{Short(1), Short(2), Short(3)})
	want.Set("empty", List{})
	want.Set("nested", List{List{Short(1), Short(2)}, List{Short(3), Short(4)}})
	if !b.Root().Equal(want) {
		t.Fatalf("root mismatch:\n%s", b)
	}
}

func TestDecodeArrays(t *testing.T) {
	data := []byte{
		0x0a, 0x00, 0x00,
		0x07, 0x00, 0x01, 'b', 0x00, 0x00, 0x00, 0x02, 0xff, 0x01,
		0x0b, 0x00, 0x01, 'i', 0x00, 0x00, 0x00, 0x01, 0xff, 0xff, 0xff, 0xfe,
		0x0c, 0x00, 0x01, 'l', 0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00,
	}
	b, err := NewDecoder(bytes.NewReader(data)).DecodeBlob()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := NewCompound()
	want.Set("b", ByteArray{-1, 1})
	want.Set("i", IntArray{-2})
	want.Set("l", LongArray{1 << 40})
	if !b.Root().Equal(want) {
		t.Fatalf("root mismatch:\n%s", b)
	}
}

func TestDecodeModifiedUTF8Names(t *testing.T) {
	data := []byte{
		0x0a, 0x00, 0x00,
		0x08, 0x00, 0x02, 0xc0, 0x80,
		0x00, 0x06, 0xed, 0xa0, 0xbd, 0xed, 0xb8, 0x80,
		0x00,
	}
	b, err := NewDecoder(bytes.NewReader(data)).DecodeBlob()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, ok := b.Get("\x00")
	if !ok || v != String("\U0001F600") {
		t.Fatalf("got %v %v", v, ok)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"root not compound", []byte{0x01, 0x00, 0x00, 0x05}, ErrNoRootCompound},
		{"invalid type", []byte{0x0a, 0x00, 0x00, 0x0d, 0x00, 0x00}, ErrInvalidType},
		{"negative length", []byte{0x0a, 0x00, 0x00, 0x07, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff}, ErrNegativeLength},
		{"list of end", []byte{0x0a, 0x00, 0x00, 0x09, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}, ErrMissingListType},
		{"truncated", []byte{0x0a, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00}, io.ErrUnexpectedEOF},
		{"missing end", []byte{0x0a, 0x00, 0x00}, io.ErrUnexpectedEOF},
		{"bad mutf8", []byte{0x0a, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x01, 0xff, 0x00}, nil},
	}
	for _, tc := range cases {
		_, err := NewDecoder(bytes.NewReader(tc.data)).DecodeBlob()
		var de *DecodingError
		if !errors.As(err, &de) {
			t.Fatalf("%s: expected DecodingError, got %v", tc.name, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestDecodeForgedLengthFailsFast(t *testing.T) {
	data := []byte{
		0x0a, 0x00, 0x00,
		0x0c, 0x00, 0x00, 0x7f, 0xff, 0xff, 0xff,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
	}
	r := bytes.NewReader(data)
	dec := NewDecoder(r)
	_, err := dec.DecodeBlob()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
	if dec.InputOffset() != int64(len(data)) {
		t.Fatalf("offset %d, want %d", dec.InputOffset(), len(data))
	}
}

func TestDecodeEmptyStream(t *testing.T) {
	_, err := NewDecoder(bytes.NewReader(nil)).DecodeBlob()
	if err != io.EOF {
		t.Fatalf("expected bare io.EOF, got %v", err)
	}
	if _, err := ReadBlob(bytes.NewReader(nil)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("ReadBlob on empty input: %v", err)
	}
}

func TestDecodeMaxDepth(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x0a, 0x00, 0x00})
	for range 10 {
		buf.Write([]byte{0x0a, 0x00, 0x00})
	}
	for range 11 {
		buf.WriteByte(0x00)
	}
	if _, err := NewDecoder(bytes.NewReader(buf.Bytes()), WithMaxDepth(5)).DecodeBlob(); !errors.Is(err, ErrMaxDepth) {
		t.Fatalf("expected ErrMaxDepth, got %v", err)
	}
	if _, err := NewDecoder(bytes.NewReader(buf.Bytes())).DecodeBlob(); err != nil {
		t.Fatalf("default depth: %v", err)
	}
}

func TestDecodeDuplicateKeys(t *testing.T) {
	data := []byte{
		0x0a, 0x00, 0x00,
		0x01, 0x00, 0x01, 'a', 0x01,
		0x01, 0x00, 0x01, 'b', 0x02,
		0x01, 0x00, 0x01, 'a', 0x03,
		0x00,
	}
	b, err := NewDecoder(bytes.NewReader(data)).DecodeBlob()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, _ := b.Get("a"); v != Byte(3) {
		t.Fatalf("last value should win, got %v", v)
	}
	if b.Keys()[0] != "a" {
		t.Fatalf("first position should be kept: %v", b.Keys())
	}
	_, err = NewDecoder(bytes.NewReader(data), StrictKeys()).DecodeBlob()
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

// countingReader fails the test if the decoder reads past limit.
type countingReader struct {
	t     *testing.T
	r     io.Reader
	n     int
	limit int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	if c.n > c.limit {
		c.t.Fatalf("read %d bytes, limit %d", c.n, c.limit)
	}
	return n, err
}

func TestDecodeNoReadAhead(t *testing.T) {
	var stream []byte
	stream = append(stream, primitivesBlob...)
	stream = append(stream, 0xde, 0xad)
	cr := &countingReader{t: t, r: bytes.NewReader(stream), limit: len(primitivesBlob)}
	if _, err := NewDecoder(cr).DecodeBlob(); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestDecodeBackToBack(t *testing.T) {
	stream := append(append([]byte{}, primitivesBlob...), primitivesBlob...)
	dec := NewDecoder(bytes.NewReader(stream))
	for i := range 2 {
		if _, err := dec.DecodeBlob(); err != nil {
			t.Fatalf("blob %d: %v", i, err)
		}
	}
	if _, err := dec.DecodeBlob(); err != io.EOF {
		t.Fatalf("expected io.EOF after two blobs, got %v", err)
	}
}

func TestReadHeaderAndPayload(t *testing.T) {
	data := []byte{0x03, 0x00, 0x01, 'x', 0x00, 0x00, 0x01, 0x00, 0x00}
	dec := NewDecoder(bytes.NewReader(data))
	typ, name, err := dec.ReadHeader()
	if err != nil || typ != TagInt || name != "x" {
		t.Fatalf("header: %s %q %v", typ, name, err)
	}
	v, err := dec.ReadPayload(typ)
	if err != nil || v != Int(256) {
		t.Fatalf("payload: %v %v", v, err)
	}
	typ, name, err = dec.ReadHeader()
	if err != nil || typ != TagEnd || name != "" {
		t.Fatalf("end header: %s %q %v", typ, name, err)
	}
}

func TestDecodeLittleEndian(t *testing.T) {
	data := []byte{
		0x0a, 0x00, 0x00,
		0x03, 0x01, 0x00, 'n', 0x01, 0x00, 0x00, 0x00,
		0x05, 0x01, 0x00, 'f', 0x00, 0x00, 0xa0, 0x41,
		0x00,
	}
	b, err := NewDecoder(bytes.NewReader(data), WithEndian(LittleEndian)).DecodeBlob()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, _ := b.Get("n"); v != Int(1) {
		t.Fatalf("n: %v", v)
	}
	if v, _ := b.Get("f"); v != Float(20) {
		t.Fatalf("f: %v", v)
	}
}

func TestDecodeSpecialFloats(t *testing.T) {
	data := []byte{
		0x0a, 0x00, 0x00,
		0x06, 0x00, 0x01, 'd', 0x7f, 0xf0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00,
	}
	b, err := NewDecoder(bytes.NewReader(data)).DecodeBlob()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, _ := b.Get("d")
	if !math.IsInf(float64(v.(Double)), 1) {
		t.Fatalf("expected +Inf, got %v", v)
	}
}
