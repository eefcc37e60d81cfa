package nbt

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Fprint writes the indented dump of a named compound to w:
//
//	TAG_Compound("hello world"): 1 entries
//	{
//	  TAG_String("name"): Bananrama
//	}
//
// List elements are shown as TAG_X(None).
func Fprint(w io.Writer, name string, root *Compound) error {
	_, err := io.WriteString(w, Sprint(name, root))
	return err
}

// Sprint returns the dump Fprint writes.
func Sprint(name string, root *Compound) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s(%q): ", TagCompound, name)
	printPayload(&sb, root, 0)
	return sb.String()
}

func printPayload(sb *strings.Builder, t Tag, indent int) {
	switch v := t.(type) {
	case Byte, Short, Int, Long:
		n, _ := integerOf(v)
		sb.WriteString(strconv.FormatInt(n, 10))
	case Float:
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	case Double:
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 64))
	case String:
		sb.WriteString(string(v))
	case ByteArray:
		fmt.Fprint(sb, []int8(v))
	case IntArray:
		fmt.Fprint(sb, []int32(v))
	case LongArray:
		fmt.Fprint(sb, []int64(v))
	case List:
		if len(v) == 0 {
			sb.WriteString("zero entries")
			return
		}
		fmt.Fprintf(sb, "%d entries of type %s\n", len(v), v.ElemType())
		openBlock(sb, indent)
		for _, e := range v {
			writeIndent(sb, indent+2)
			fmt.Fprintf(sb, "%s(None): ", e.Type())
			printPayload(sb, e, indent+2)
			sb.WriteByte('\n')
		}
		closeBlock(sb, indent)
	case *Compound:
		fmt.Fprintf(sb, "%d entries\n", v.Len())
		openBlock(sb, indent)
		for name, e := range v.All() {
			writeIndent(sb, indent+2)
			fmt.Fprintf(sb, "%s(%q): ", e.Type(), name)
			printPayload(sb, e, indent+2)
			sb.WriteByte('\n')
		}
		closeBlock(sb, indent)
	}
}

func openBlock(sb *strings.Builder, indent int) {
	writeIndent(sb, indent)
	sb.WriteString("{\n")
}

func closeBlock(sb *strings.Builder, indent int) {
	writeIndent(sb, indent)
	sb.WriteByte('}')
}

func writeIndent(sb *strings.Builder, n int) {
	for range n {
		sb.WriteByte(' ')
	}
}
