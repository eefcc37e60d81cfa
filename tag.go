package nbt

import "fmt"

// TagType is the one-byte discriminant that precedes every tagged payload.
type TagType uint8

const (
	TagEnd TagType = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
	TagLongArray
)

var tagNames = [...]string{
	TagEnd:       "TAG_End",
	TagByte:      "TAG_Byte",
	TagShort:     "TAG_Short",
	TagInt:       "TAG_Int",
	TagLong:      "TAG_Long",
	TagFloat:     "TAG_Float",
	TagDouble:    "TAG_Double",
	TagByteArray: "TAG_ByteArray",
	TagString:    "TAG_String",
	TagList:      "TAG_List",
	TagCompound:  "TAG_Compound",
	TagIntArray:  "TAG_IntArray",
	TagLongArray: "TAG_LongArray",
}

// String returns the reference name of the tag type, e.g. "TAG_Byte".
func (t TagType) String() string {
	if t.Valid() {
		return tagNames[t]
	}
	return fmt.Sprintf("TAG_Unknown(%d)", uint8(t))
}

// Valid reports whether t is one of the thirteen defined tag types.
func (t TagType) Valid() bool {
	return t <= TagLongArray
}

// fixedWidth returns the payload width of scalar and array element types.
func (t TagType) fixedWidth() int {
	switch t {
	case TagByte, TagByteArray:
		return 1
	case TagShort:
		return 2
	case TagInt, TagFloat, TagIntArray:
		return 4
	case TagLong, TagDouble, TagLongArray:
		return 8
	default:
		return 0
	}
}
