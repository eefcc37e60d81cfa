package nbt

import (
	"fmt"
	"io"
	"iter"

	"github.com/delaneyj/toolbelt/bytebufferpool"
)

// Blob is a complete NBT document: a named root compound.
type Blob struct {
	Name string
	root *Compound
}

// NewBlob returns a blob with an empty name and an empty root.
func NewBlob() *Blob {
	return NamedBlob("")
}

// NamedBlob returns an empty blob with the given root name.
func NamedBlob(name string) *Blob {
	return &Blob{Name: name, root: NewCompound()}
}

// Root returns the root compound. It is never nil.
func (b *Blob) Root() *Compound {
	if b.root == nil {
		b.root = NewCompound()
	}
	return b.root
}

// Insert stores v under name in the root. v may be a Tag or any Go value
// that ToTag accepts. Lists are checked for a single element type here
// rather than at encode time.
func (b *Blob) Insert(name string, v any) error {
	var (
		t   Tag
		err error
	)
	if tag, ok := v.(Tag); ok {
		t = tag
	} else if t, err = ToTag(v); err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("%w: %q", ErrNilTag, name)
	}
	if l, ok := t.(List); ok {
		if err := l.validate(); err != nil {
			return fmt.Errorf("%q: %w", name, err)
		}
	}
	b.Root().Set(name, t)
	return nil
}

// Get returns the root entry stored under name.
func (b *Blob) Get(name string) (Tag, bool) {
	return b.root.Get(name)
}

// Remove deletes a root entry and returns its payload.
func (b *Blob) Remove(name string) (Tag, bool) {
	return b.root.Remove(name)
}

// Len returns the number of root entries.
func (b *Blob) Len() int {
	return b.root.Len()
}

// Keys returns the root entry names in insertion order.
func (b *Blob) Keys() []string {
	return b.root.Keys()
}

// All iterates root entries in insertion order.
func (b *Blob) All() iter.Seq2[string, Tag] {
	return b.root.All()
}

// Equal reports whether both blobs have the same name and equal roots.
func (b *Blob) Equal(o *Blob) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.Name == o.Name && b.root.Equal(o.root)
}

// LenBytes returns the size of the uncompressed encoding of b.
func (b *Blob) LenBytes() int {
	return encodedLen(b.Name, b.Root())
}

// WriteTo writes the uncompressed big-endian encoding of b to w.
func (b *Blob) WriteTo(w io.Writer) (int64, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := appendBlob(buf, b, newConfig(Uncompressed, nil)); err != nil {
		return 0, err
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// String renders b in the indented TAG_Compound("name"): N entries form.
func (b *Blob) String() string {
	return Sprint(b.Name, b.Root())
}

// ReadBlob decodes one blob from r. Compression is detected unless an
// option says otherwise.
func ReadBlob(r io.Reader, opts ...Option) (*Blob, error) {
	opts = append([]Option{WithCompression(AutoDetect)}, opts...)
	b, err := NewDecoder(r, opts...).DecodeBlob()
	if err == io.EOF {
		return nil, &DecodingError{Err: io.ErrUnexpectedEOF}
	}
	return b, err
}
