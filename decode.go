package nbt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/PistonDevelopers/hematite-nbt/mutf8"
)

// Decoder reads NBT from a stream. Without compression it never reads
// past the end of the blob it is decoding, so several blobs can be read
// back to back from one connection.
type Decoder struct {
	src   io.Reader
	base  io.Reader
	br    *bufio.Reader
	r     io.Reader
	order byteOrder
	cfg   Config
	off   int64
	depth int
	buf   [8]byte
}

// NewDecoder returns a decoder reading from r. Compression defaults to
// Uncompressed; use WithCompression(AutoDetect) to sniff each blob.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return newDecoder(r, newConfig(Uncompressed, opts))
}

func newDecoder(r io.Reader, cfg Config) *Decoder {
	return &Decoder{src: r, base: r, r: r, order: cfg.Endian.order(), cfg: cfg}
}

// InputOffset returns the number of uncompressed bytes consumed so far.
func (d *Decoder) InputOffset() int64 {
	return d.off
}

// Decode reads the next blob into v. A *Blob target is filled directly;
// any other target goes through the same mapping as UnmarshalBlob.
func (d *Decoder) Decode(v any) error {
	b, err := d.DecodeBlob()
	if err != nil {
		return err
	}
	if target, ok := v.(*Blob); ok && target != nil {
		*target = *b
		return nil
	}
	return unmarshalBlob(b, v, d.cfg)
}

// DecodeBlob reads the next complete blob. It returns io.EOF, unwrapped,
// when the stream ends cleanly before the blob's first byte.
func (d *Decoder) DecodeBlob() (*Blob, error) {
	d.depth = 0
	if d.cfg.Compression == Uncompressed {
		return d.decodeBlob()
	}
	if d.br == nil {
		br, ok := d.src.(*bufio.Reader)
		if !ok {
			br = bufio.NewReader(d.src)
		}
		d.br, d.base = br, br
	}
	if _, err := d.br.Peek(1); errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	zr, c, err := openFrame(d.br, d.cfg.Compression)
	if err != nil {
		return nil, d.fail(err)
	}
	d.r = zr
	defer func() { d.r = d.base }()

	b, err := d.decodeBlob()
	if err != nil {
		zr.Close()
		if err == io.EOF {
			return nil, d.fail(io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	if c != Uncompressed {
		// Drain the member so its checksum is verified and the next
		// member starts at the reader's position.
		if _, err := io.Copy(io.Discard, zr); err != nil {
			zr.Close()
			return nil, d.fail(err)
		}
	}
	if err := zr.Close(); err != nil {
		return nil, d.fail(err)
	}
	return b, nil
}

func (d *Decoder) decodeBlob() (*Blob, error) {
	n, err := io.ReadFull(d.r, d.buf[:1])
	d.off += int64(n)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, d.fail(err)
	}
	if t := TagType(d.buf[0]); t != TagCompound {
		return nil, d.fail(fmt.Errorf("%w: found %s", ErrNoRootCompound, t))
	}
	name, err := d.readString()
	if err != nil {
		return nil, err
	}
	root, err := d.readCompound()
	if err != nil {
		return nil, err
	}
	return &Blob{Name: name, root: root}, nil
}

// ReadHeader reads a type byte and, unless it is TagEnd, the name that
// follows it. Together with ReadPayload it gives access to the raw tag
// stream; both bypass compression framing.
func (d *Decoder) ReadHeader() (TagType, string, error) {
	b, err := d.readByte()
	if err != nil {
		return TagEnd, "", err
	}
	t := TagType(b)
	if !t.Valid() {
		return TagEnd, "", d.fail(fmt.Errorf("%w: %d", ErrInvalidType, b))
	}
	if t == TagEnd {
		return TagEnd, "", nil
	}
	name, err := d.readString()
	if err != nil {
		return TagEnd, "", err
	}
	return t, name, nil
}

// ReadPayload reads a bare payload of type t, the form used for list
// elements.
func (d *Decoder) ReadPayload(t TagType) (Tag, error) {
	return d.readPayload(t)
}

func (d *Decoder) readPayload(t TagType) (Tag, error) {
	switch t {
	case TagByte:
		b, err := d.readByte()
		return Byte(int8(b)), err
	case TagShort:
		if err := d.readFull(d.buf[:2]); err != nil {
			return nil, err
		}
		return Short(int16(d.order.Uint16(d.buf[:2]))), nil
	case TagInt:
		if err := d.readFull(d.buf[:4]); err != nil {
			return nil, err
		}
		return Int(int32(d.order.Uint32(d.buf[:4]))), nil
	case TagLong:
		if err := d.readFull(d.buf[:8]); err != nil {
			return nil, err
		}
		return Long(int64(d.order.Uint64(d.buf[:8]))), nil
	case TagFloat:
		if err := d.readFull(d.buf[:4]); err != nil {
			return nil, err
		}
		return Float(math.Float32frombits(d.order.Uint32(d.buf[:4]))), nil
	case TagDouble:
		if err := d.readFull(d.buf[:8]); err != nil {
			return nil, err
		}
		return Double(math.Float64frombits(d.order.Uint64(d.buf[:8]))), nil
	case TagByteArray:
		n, err := d.readLen()
		if err != nil {
			return nil, err
		}
		v, err := readArray(d, n, 1, func(b []byte) int8 { return int8(b[0]) })
		return ByteArray(v), err
	case TagString:
		s, err := d.readString()
		return String(s), err
	case TagList:
		return d.readList()
	case TagCompound:
		return d.readCompound()
	case TagIntArray:
		n, err := d.readLen()
		if err != nil {
			return nil, err
		}
		v, err := readArray(d, n, 4, func(b []byte) int32 { return int32(d.order.Uint32(b)) })
		return IntArray(v), err
	case TagLongArray:
		n, err := d.readLen()
		if err != nil {
			return nil, err
		}
		v, err := readArray(d, n, 8, func(b []byte) int64 { return int64(d.order.Uint64(b)) })
		return LongArray(v), err
	default:
		return nil, d.fail(fmt.Errorf("%w: no payload for %s", ErrInvalidType, t))
	}
}

func (d *Decoder) readList() (Tag, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	b, err := d.readByte()
	if err != nil {
		return nil, err
	}
	elem := TagType(b)
	if !elem.Valid() {
		return nil, d.fail(fmt.Errorf("%w: list element type %d", ErrInvalidType, b))
	}
	n, err := d.readLen()
	if err != nil {
		return nil, err
	}
	if elem == TagEnd && n > 0 {
		return nil, d.fail(fmt.Errorf("%w: %d elements", ErrMissingListType, n))
	}
	out := make(List, 0, min(n, 1024))
	for range n {
		v, err := d.readPayload(elem)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *Decoder) readCompound() (*Compound, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	c := NewCompound()
	for {
		t, name, err := d.ReadHeader()
		if err != nil {
			return nil, err
		}
		if t == TagEnd {
			return c, nil
		}
		v, err := d.readPayload(t)
		if err != nil {
			return nil, err
		}
		if d.cfg.StrictKeys && c.Has(name) {
			return nil, d.fail(fmt.Errorf("%w: %q", ErrDuplicateKey, name))
		}
		c.Set(name, v)
	}
}

func (d *Decoder) enter() error {
	d.depth++
	if d.depth > d.cfg.MaxDepth {
		return d.fail(fmt.Errorf("%w (%d)", ErrMaxDepth, d.cfg.MaxDepth))
	}
	return nil
}

func (d *Decoder) leave() {
	d.depth--
}

func (d *Decoder) fail(err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return &DecodingError{Offset: d.off, Err: err}
}

func (d *Decoder) readFull(p []byte) error {
	n, err := io.ReadFull(d.r, p)
	d.off += int64(n)
	if err != nil {
		return d.fail(err)
	}
	return nil
}

func (d *Decoder) readByte() (byte, error) {
	if err := d.readFull(d.buf[:1]); err != nil {
		return 0, err
	}
	return d.buf[0], nil
}

func (d *Decoder) readLen() (int, error) {
	if err := d.readFull(d.buf[:4]); err != nil {
		return 0, err
	}
	n := int32(d.order.Uint32(d.buf[:4]))
	if n < 0 {
		return 0, d.fail(fmt.Errorf("%w: %d", ErrNegativeLength, n))
	}
	return int(n), nil
}

func (d *Decoder) readString() (string, error) {
	if err := d.readFull(d.buf[:2]); err != nil {
		return "", err
	}
	n := int(d.order.Uint16(d.buf[:2]))
	if n == 0 {
		return "", nil
	}
	buf := getStringBuf(n)
	defer putStringBuf(buf)
	if err := d.readFull(buf); err != nil {
		return "", err
	}
	s, err := mutf8.Decode(buf)
	if err != nil {
		return "", d.fail(err)
	}
	return s, nil
}

// readArray reads n fixed-width elements through a bounded chunk so the
// output only grows as fast as input actually arrives.
func readArray[T any](d *Decoder, n, width int, conv func([]byte) T) ([]T, error) {
	chunk := getChunk()
	defer putChunk(chunk)
	per := len(chunk) / width
	out := make([]T, 0, min(n, per))
	for remaining := n; remaining > 0; {
		k := min(remaining, per)
		p := chunk[:k*width]
		if err := d.readFull(p); err != nil {
			return nil, err
		}
		for i := range k {
			out = append(out, conv(p[i*width:]))
		}
		remaining -= k
	}
	return out, nil
}
