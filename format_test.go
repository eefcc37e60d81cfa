package nbt

import (
	"bytes"
	"testing"
)

func TestBlobString(t *testing.T) {
	b := NamedBlob("hello world")
	if err := b.Insert("name", String("Bananrama")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	want := "TAG_Compound(\"hello world\"): 1 entries\n{\n  TAG_String(\"name\"): Bananrama\n}"
	if got := b.String(); got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
}

func TestFprintNested(t *testing.T) {
	inner := NewCompound()
	inner.Set("x", Int(1))
	root := NewCompound()
	root.Set("list", List{Short(1), Short(2)})
	root.Set("none", List{})
	root.Set("inner", inner)
	root.Set("bytes", ByteArray{1, -1})

	var buf bytes.Buffer
	if err := Fprint(&buf, "", root); err != nil {
		t.Fatalf("fprint: %v", err)
	}
	want := `TAG_Compound(""): 4 entries
{
  TAG_List("list"): 2 entries of type TAG_Short
  {
    TAG_Short(None): 1
    TAG_Short(None): 2
  }
  TAG_List("none"): zero entries
  TAG_Compound("inner"): 1 entries
  {
    TAG_Int("x"): 1
  }
  TAG_ByteArray("bytes"): [1 -1]
}`
	if got := buf.String(); got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
}
