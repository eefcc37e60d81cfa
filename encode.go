package nbt

import (
	"fmt"
	"io"
	"math"

	"github.com/PistonDevelopers/hematite-nbt/mutf8"
	"github.com/delaneyj/toolbelt/bytebufferpool"
)

// Encoder writes blobs to a stream. Each blob is staged in a pooled
// buffer and handed to the writer in a single call, so a failed encode
// leaves the writer untouched.
type Encoder struct {
	w   io.Writer
	cfg Config
}

// NewEncoder returns an encoder writing to w. Compression defaults to
// Uncompressed.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, cfg: newConfig(Uncompressed, opts)}
}

// Encode writes v as one blob. v may be a *Blob, a *Compound, or any Go
// value accepted by MarshalBlob.
func (e *Encoder) Encode(v any) error {
	switch v := v.(type) {
	case *Blob:
		return e.EncodeBlob(v)
	case *Compound:
		return e.EncodeBlob(&Blob{Name: e.cfg.RootName, root: v})
	}
	b, err := marshalBlob(v, e.cfg)
	if err != nil {
		return err
	}
	return e.EncodeBlob(b)
}

// EncodeBlob writes b, compressed as its own member when compression is
// enabled.
func (e *Encoder) EncodeBlob(b *Blob) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := appendBlob(buf, b, e.cfg); err != nil {
		return err
	}
	return writeFramed(e.w, buf.Bytes(), e.cfg)
}

func writeFramed(w io.Writer, p []byte, cfg Config) error {
	if cfg.Compression == Uncompressed {
		_, err := w.Write(p)
		return err
	}
	zw, err := NewWriter(w, cfg.Compression, cfg.Level)
	if err != nil {
		return &EncodingError{Err: err}
	}
	if _, err := zw.Write(p); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func appendBlob(buf *bytebufferpool.ByteBuffer, b *Blob, cfg Config) error {
	s := encodeState{
		buf:      buf,
		order:    cfg.Endian.order(),
		keys:     cfg.Order,
		maxDepth: cfg.MaxDepth,
	}
	s.scratch = getStringBuf(0)
	defer func() { putStringBuf(s.scratch) }()

	buf.WriteByte(byte(TagCompound))
	if err := s.writeString(b.Name); err != nil {
		return &EncodingError{Err: fmt.Errorf("root name: %w", err)}
	}
	if err := s.writePayload(b.Root()); err != nil {
		return &EncodingError{Err: err}
	}
	return nil
}

type encodeState struct {
	buf      *bytebufferpool.ByteBuffer
	order    byteOrder
	keys     KeyOrder
	maxDepth int
	depth    int
	tmp      [8]byte
	scratch  []byte
}

func (s *encodeState) writePayload(t Tag) error {
	switch v := t.(type) {
	case Byte:
		s.buf.WriteByte(byte(v))
	case Short:
		s.order.PutUint16(s.tmp[:2], uint16(v))
		s.buf.Write(s.tmp[:2])
	case Int:
		s.order.PutUint32(s.tmp[:4], uint32(v))
		s.buf.Write(s.tmp[:4])
	case Long:
		s.order.PutUint64(s.tmp[:8], uint64(v))
		s.buf.Write(s.tmp[:8])
	case Float:
		s.order.PutUint32(s.tmp[:4], math.Float32bits(float32(v)))
		s.buf.Write(s.tmp[:4])
	case Double:
		s.order.PutUint64(s.tmp[:8], math.Float64bits(float64(v)))
		s.buf.Write(s.tmp[:8])
	case ByteArray:
		if err := s.writeLen(len(v)); err != nil {
			return err
		}
		s.scratch = s.scratch[:0]
		for _, b := range v {
			s.scratch = append(s.scratch, byte(b))
		}
		s.buf.Write(s.scratch)
	case String:
		return s.writeString(string(v))
	case List:
		return s.writeList(v)
	case *Compound:
		if v == nil {
			return ErrNilTag
		}
		return s.writeCompound(v)
	case IntArray:
		if err := s.writeLen(len(v)); err != nil {
			return err
		}
		s.scratch = s.scratch[:0]
		for _, n := range v {
			s.scratch = s.order.AppendUint32(s.scratch, uint32(n))
		}
		s.buf.Write(s.scratch)
	case LongArray:
		if err := s.writeLen(len(v)); err != nil {
			return err
		}
		s.scratch = s.scratch[:0]
		for _, n := range v {
			s.scratch = s.order.AppendUint64(s.scratch, uint64(n))
		}
		s.buf.Write(s.scratch)
	case nil:
		return ErrNilTag
	default:
		return fmt.Errorf("%w: %T", ErrInvalidType, t)
	}
	return nil
}

func (s *encodeState) writeList(l List) error {
	if err := l.validate(); err != nil {
		return err
	}
	if err := s.enter(); err != nil {
		return err
	}
	defer s.leave()
	s.buf.WriteByte(byte(l.ElemType()))
	if err := s.writeLen(len(l)); err != nil {
		return err
	}
	for i, v := range l {
		if err := s.writePayload(v); err != nil {
			return fmt.Errorf("list element %d: %w", i, err)
		}
	}
	return nil
}

func (s *encodeState) writeCompound(c *Compound) error {
	if err := s.enter(); err != nil {
		return err
	}
	defer s.leave()
	for name, v := range c.ordered(s.keys) {
		s.buf.WriteByte(byte(v.Type()))
		if err := s.writeString(name); err != nil {
			return fmt.Errorf("key %q: %w", name, err)
		}
		if err := s.writePayload(v); err != nil {
			return fmt.Errorf("%q: %w", name, err)
		}
	}
	s.buf.WriteByte(byte(TagEnd))
	return nil
}

func (s *encodeState) writeString(v string) error {
	n := mutf8.EncodedLen(v)
	if n > math.MaxUint16 {
		return fmt.Errorf("%w: %d bytes", ErrStringTooLong, n)
	}
	s.order.PutUint16(s.tmp[:2], uint16(n))
	s.buf.Write(s.tmp[:2])
	s.scratch = mutf8.AppendEncode(s.scratch[:0], v)
	s.buf.Write(s.scratch)
	return nil
}

func (s *encodeState) writeLen(n int) error {
	if n > math.MaxInt32 {
		return fmt.Errorf("%w: %d", ErrArrayTooLong, n)
	}
	s.order.PutUint32(s.tmp[:4], uint32(n))
	s.buf.Write(s.tmp[:4])
	return nil
}

func (s *encodeState) enter() error {
	s.depth++
	if s.depth > s.maxDepth {
		return fmt.Errorf("%w (%d)", ErrMaxDepth, s.maxDepth)
	}
	return nil
}

func (s *encodeState) leave() {
	s.depth--
}

// encodedLen returns the uncompressed size of the named blob without
// encoding it. Strings are measured in MUTF-8.
func encodedLen(name string, root *Compound) int {
	return 1 + 2 + mutf8.EncodedLen(name) + payloadLen(root)
}

func payloadLen(t Tag) int {
	switch v := t.(type) {
	case ByteArray:
		return 4 + len(v)
	case IntArray:
		return 4 + 4*len(v)
	case LongArray:
		return 4 + 8*len(v)
	case String:
		return 2 + mutf8.EncodedLen(string(v))
	case List:
		n := 1 + 4
		for _, e := range v {
			n += payloadLen(e)
		}
		return n
	case *Compound:
		n := 1
		for name, e := range v.All() {
			n += 1 + 2 + mutf8.EncodedLen(name) + payloadLen(e)
		}
		return n
	case nil:
		return 0
	default:
		return t.Type().fixedWidth()
	}
}
