// Package mutf8 implements the Modified UTF-8 string encoding used by the
// Java edition of Minecraft for NBT strings.
//
// Encoding is strict: U+0000 is written as the overlong pair C0 80 and code
// points above U+FFFF are written as a UTF-16 surrogate pair, each half
// taking three bytes. Decoding is permissive and accepts both Modified UTF-8
// and standard UTF-8 input.
package mutf8

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"
)

// ErrInvalid is returned when input is valid under neither Modified UTF-8
// nor standard UTF-8.
var ErrInvalid = errors.New("mutf8: invalid byte sequence")

// Encode returns the Modified UTF-8 encoding of s.
func Encode(s string) []byte {
	return AppendEncode(make([]byte, 0, EncodedLen(s)), s)
}

// AppendEncode appends the Modified UTF-8 encoding of s to dst.
// Invalid UTF-8 in s is written as U+FFFD.
func AppendEncode(dst []byte, s string) []byte {
	if isPlainASCII(s) {
		return append(dst, s...)
	}
	for _, r := range s {
		dst = appendRune(dst, r)
	}
	return dst
}

// EncodedLen returns the number of bytes Encode(s) produces.
func EncodedLen(s string) int {
	if isPlainASCII(s) {
		return len(s)
	}
	n := 0
	for _, r := range s {
		n += runeLen(r)
	}
	return n
}

// Decode converts Modified UTF-8 or standard UTF-8 bytes to a string.
func Decode(b []byte) (string, error) {
	// utf8.Valid rejects overlong forms and encoded surrogates, so valid
	// input never needs rewriting.
	if utf8.Valid(b) {
		return string(b), nil
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		r, size, st := decodeRune(b[i:])
		if st != runeOK {
			return "", ErrInvalid
		}
		out = utf8.AppendRune(out, r)
		i += size
	}
	return string(out), nil
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c == 0 || c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func runeLen(r rune) int {
	switch {
	case r == 0:
		return 2
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 6
	}
}

func appendRune(dst []byte, r rune) []byte {
	switch {
	case r == 0:
		return append(dst, 0xC0, 0x80)
	case r < 0x80:
		return append(dst, byte(r))
	case r < 0x800:
		return append(dst, 0xC0|byte(r>>6), 0x80|byte(r)&0x3F)
	case r < 0x10000:
		return append3(dst, r)
	default:
		hi, lo := utf16.EncodeRune(r)
		return append3(append3(dst, hi), lo)
	}
}

func append3(dst []byte, r rune) []byte {
	return append(dst, 0xE0|byte(r>>12), 0x80|byte(r>>6)&0x3F, 0x80|byte(r)&0x3F)
}

type runeStatus uint8

const (
	runeOK runeStatus = iota
	runeShort
	runeInvalid
)

func isCont(c byte) bool { return c&0xC0 == 0x80 }

// decodeRune decodes one code point from b. runeShort means b ends inside
// a sequence that could still become valid with more input.
func decodeRune(b []byte) (rune, int, runeStatus) {
	if len(b) == 0 {
		return 0, 0, runeShort
	}
	c := b[0]
	switch {
	case c < 0x80:
		return rune(c), 1, runeOK
	case c&0xE0 == 0xC0:
		if len(b) < 2 {
			return 0, 0, runeShort
		}
		if !isCont(b[1]) {
			return 0, 0, runeInvalid
		}
		r := rune(c&0x1F)<<6 | rune(b[1]&0x3F)
		// C0 80 is the only overlong form allowed.
		if r < 0x80 && r != 0 {
			return 0, 0, runeInvalid
		}
		return r, 2, runeOK
	case c&0xF0 == 0xE0:
		r, st := decode3(b)
		if st != runeOK {
			return 0, 0, st
		}
		if !utf16.IsSurrogate(r) {
			return r, 3, runeOK
		}
		if r >= 0xDC00 {
			return 0, 0, runeInvalid
		}
		lo, st := decode3(b[3:])
		if st != runeOK {
			return 0, 0, st
		}
		if lo < 0xDC00 || lo > 0xDFFF {
			return 0, 0, runeInvalid
		}
		return utf16.DecodeRune(r, lo), 6, runeOK
	case c&0xF8 == 0xF0:
		if len(b) < 4 {
			for _, cc := range b[1:] {
				if !isCont(cc) {
					return 0, 0, runeInvalid
				}
			}
			return 0, 0, runeShort
		}
		r, size := utf8.DecodeRune(b[:4])
		if r == utf8.RuneError && size <= 1 {
			return 0, 0, runeInvalid
		}
		return r, size, runeOK
	default:
		return 0, 0, runeInvalid
	}
}

func decode3(b []byte) (rune, runeStatus) {
	if len(b) == 0 {
		return 0, runeShort
	}
	if b[0]&0xF0 != 0xE0 {
		return 0, runeInvalid
	}
	for i := 1; i < 3; i++ {
		if i >= len(b) {
			return 0, runeShort
		}
		if !isCont(b[i]) {
			return 0, runeInvalid
		}
	}
	r := rune(b[0]&0x0F)<<12 | rune(b[1]&0x3F)<<6 | rune(b[2]&0x3F)
	if r < 0x800 {
		return 0, runeInvalid
	}
	return r, runeOK
}
