package nbt

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Compression identifies the framing around an NBT stream.
type Compression uint8

const (
	Uncompressed Compression = iota
	Gzip
	Zlib
	// AutoDetect sniffs the first bytes of the input. It is only
	// meaningful when reading.
	AutoDetect
)

// String returns the name of the compression.
func (c Compression) String() string {
	switch c {
	case Uncompressed:
		return "none"
	case Gzip:
		return "gzip"
	case Zlib:
		return "zlib"
	case AutoDetect:
		return "auto"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// ParseCompression parses the names produced by Compression.String.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return Uncompressed, nil
	case "gzip":
		return Gzip, nil
	case "zlib":
		return Zlib, nil
	case "auto":
		return AutoDetect, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompress, name)
	}
}

// DetectCompression peeks at the next bytes of br without consuming them.
// Input that is neither gzip nor zlib is reported as Uncompressed.
func DetectCompression(br *bufio.Reader) (Compression, error) {
	head, err := br.Peek(2)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Uncompressed, nil
		}
		return Uncompressed, err
	}
	return sniff(head[0], head[1]), nil
}

func sniff(b0, b1 byte) Compression {
	if b0 == 0x1F && b1 == 0x8B {
		return Gzip
	}
	// zlib: CM must be deflate, window at most 32K, and the header
	// checksum must divide by 31.
	if b0&0x0F == 8 && b0>>4 <= 7 && (uint16(b0)<<8|uint16(b1))%31 == 0 {
		return Zlib
	}
	return Uncompressed
}

// NewReader chains a streaming decompressor in front of r. With
// AutoDetect the framing is sniffed first and the detected value is
// returned. Closing the result does not close r.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, Compression, error) {
	if c == AutoDetect {
		br, ok := r.(*bufio.Reader)
		if !ok {
			br = bufio.NewReader(r)
		}
		detected, err := DetectCompression(br)
		if err != nil {
			return nil, c, err
		}
		r, c = br, detected
	}
	switch c {
	case Uncompressed:
		return io.NopCloser(r), c, nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, c, err
		}
		return zr, c, nil
	case Zlib:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, c, err
		}
		return zr, c, nil
	default:
		return nil, c, fmt.Errorf("%w: %d", ErrUnknownCompress, c)
	}
}

// openFrame starts one compressed member on br. Unlike NewReader it reads
// exactly one gzip member so back-to-back blobs stay separable.
func openFrame(br *bufio.Reader, c Compression) (io.ReadCloser, Compression, error) {
	if c == AutoDetect {
		detected, err := DetectCompression(br)
		if err != nil {
			return nil, c, err
		}
		c = detected
	}
	switch c {
	case Gzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, c, err
		}
		zr.Multistream(false)
		return zr, c, nil
	case Zlib:
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, c, err
		}
		return zr, c, nil
	case Uncompressed:
		return io.NopCloser(br), c, nil
	default:
		return nil, c, fmt.Errorf("%w: %d", ErrUnknownCompress, c)
	}
}

// NewWriter chains a streaming compressor in front of w at the given
// level. The caller must Close the result to flush the trailer; closing
// does not close w.
func NewWriter(w io.Writer, c Compression, level int) (io.WriteCloser, error) {
	switch c {
	case Uncompressed:
		return nopWriteCloser{w}, nil
	case Gzip:
		zw, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, err
		}
		return zw, nil
	case Zlib:
		zw, err := zlib.NewWriterLevel(w, level)
		if err != nil {
			return nil, err
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("%w: cannot write %s", ErrUnknownCompress, c)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
