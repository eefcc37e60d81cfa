package nbt

import (
	"reflect"
	"slices"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
)

// fieldHint forces a Go sequence onto a particular wire type.
type fieldHint uint8

const (
	hintNone fieldHint = iota
	hintList
	hintByteArray
	hintIntArray
	hintLongArray
)

type field struct {
	name      string
	index     []int
	typ       reflect.Type
	depth     int
	omitEmpty bool
	optional  bool
	hint      fieldHint
}

var fieldCache = xsync.NewMapOf[reflect.Type, []field]()

// cachedFields returns the compound entries a struct type maps to, in
// declaration order. Fields of embedded structs are promoted unless a
// shallower field claims the same name.
func cachedFields(t reflect.Type) []field {
	fields, _ := fieldCache.LoadOrCompute(t, func() []field {
		return typeFields(t)
	})
	return fields
}

func typeFields(t reflect.Type) []field {
	var all []field
	collectFields(t, nil, 0, &all)

	best := make(map[string]int, len(all))
	for i, f := range all {
		if j, ok := best[f.name]; !ok || f.depth < all[j].depth {
			best[f.name] = i
		}
	}
	out := make([]field, 0, len(best))
	for i, f := range all {
		if best[f.name] == i {
			out = append(out, f)
		}
	}
	return out
}

func collectFields(t reflect.Type, index []int, depth int, out *[]field) {
	for i := range t.NumField() {
		sf := t.Field(i)
		tag := sf.Tag.Get("nbt")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		idx := append(slices.Clone(index), i)
		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			collectFields(sf.Type, idx, depth+1, out)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		f := field{name: name, index: idx, typ: sf.Type, depth: depth}
		for opt := range strings.SplitSeq(opts, ",") {
			switch opt {
			case "omitempty":
				f.omitEmpty = true
			case "optional":
				f.optional = true
			case "list":
				f.hint = hintList
			case "bytearray":
				f.hint = hintByteArray
			case "intarray":
				f.hint = hintIntArray
			case "longarray":
				f.hint = hintLongArray
			}
		}
		*out = append(*out, f)
	}
}

// canBeAbsent reports whether a missing compound key leaves the field
// untouched instead of failing.
func (f field) canBeAbsent() bool {
	if f.omitEmpty || f.optional {
		return true
	}
	switch f.typ.Kind() {
	case reflect.Pointer, reflect.Interface:
		return true
	}
	return false
}

func hasField(fields []field, name string) bool {
	for _, f := range fields {
		if f.name == name {
			return true
		}
	}
	return false
}
