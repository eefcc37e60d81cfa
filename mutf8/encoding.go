package mutf8

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Encoding is Modified UTF-8 as a golang.org/x/text encoding. Its decoder
// turns Modified UTF-8 (or UTF-8) into UTF-8 and its encoder does the
// reverse, so they can wrap any reader or writer with transform.NewReader
// and transform.NewWriter.
var Encoding encoding.Encoding = mutf8Encoding{}

type mutf8Encoding struct{}

func (mutf8Encoding) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: decodeTransformer{}}
}

func (mutf8Encoding) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: encodeTransformer{}}
}

func (mutf8Encoding) String() string { return "Modified UTF-8" }

type decodeTransformer struct{ transform.NopResetter }

func (decodeTransformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r, size, st := decodeRune(src[nSrc:])
		switch st {
		case runeShort:
			if !atEOF {
				return nDst, nSrc, transform.ErrShortSrc
			}
			return nDst, nSrc, ErrInvalid
		case runeInvalid:
			return nDst, nSrc, ErrInvalid
		}
		if nDst+utf8.RuneLen(r) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
		nSrc += size
	}
	return nDst, nSrc, nil
}

type encodeTransformer struct{ transform.NopResetter }

func (encodeTransformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	var scratch [6]byte
	for nSrc < len(src) {
		if !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}
		r, size := utf8.DecodeRune(src[nSrc:])
		out := appendRune(scratch[:0], r)
		if nDst+len(out) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], out)
		nSrc += size
	}
	return nDst, nSrc, nil
}
