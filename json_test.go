package nbt

import (
	"errors"
	"math"
	"testing"
)

const sampleJSON = `{"name":"Herobrine","health":20,"big":5000000000,"pos":[1,2.5,3],"flags":[true,false],"tags":["a","b"],"skip":null,"inner":{"z":1,"a":2},"empty":[]}`

func sampleCompound() *Compound {
	inner := NewCompound()
	inner.Set("z", Int(1))
	inner.Set("a", Int(2))
	c := NewCompound()
	c.Set("name", String("Herobrine"))
	c.Set("health", Int(20))
	c.Set("big", Long(5000000000))
	c.Set("pos", List{Double(1), Double(2.5), Double(3)})
	c.Set("flags", List{Byte(1), Byte(0)})
	c.Set("tags", List{String("a"), String("b")})
	c.Set("inner", inner)
	c.Set("empty", List{})
	return c
}

func TestFromJSON(t *testing.T) {
	got, err := FromJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if !got.Equal(sampleCompound()) {
		t.Fatalf("got\n%s", Sprint("", got))
	}
}

func TestFromJSONStreamMatches(t *testing.T) {
	got, err := compoundFromJSONStream([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if !got.Equal(sampleCompound()) {
		t.Fatalf("got\n%s", Sprint("", got))
	}
}

func TestFromJSONErrors(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{``, nil},
		{`[1,2]`, errJSONNotObject},
		{`"x"`, errJSONNotObject},
		{`{"a":[1,"x"]}`, ErrHeterogeneousList},
		{`{"a":`, nil},
	}
	for _, tc := range cases {
		_, err := FromJSON([]byte(tc.in))
		if err == nil {
			t.Fatalf("%q: expected error", tc.in)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%q: expected %v, got %v", tc.in, tc.want, err)
		}
	}
}

func TestWidenList(t *testing.T) {
	l, err := widenList([]Tag{Int(1), Long(1 << 40)})
	if err != nil {
		t.Fatalf("widen: %v", err)
	}
	if !Equal(l, List{Long(1), Long(1 << 40)}) {
		t.Fatalf("got %v", l)
	}
	l, err = widenList([]Tag{Byte(1), Double(0.5)})
	if err != nil {
		t.Fatalf("widen: %v", err)
	}
	if !Equal(l, List{Double(1), Double(0.5)}) {
		t.Fatalf("got %v", l)
	}
}

func TestToJSON(t *testing.T) {
	c := NewCompound()
	c.Set("s", String("a\"b\n"))
	c.Set("n", Short(-3))
	c.Set("f", Float(0.5))
	c.Set("nan", Double(math.NaN()))
	c.Set("arr", IntArray{1, 2})
	c.Set("l", List{NewCompound()})
	got, err := ToJSON(c)
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	want := `{"s":"a\"b\n","n":-3,"f":0.5,"nan":null,"arr":[1,2],"l":[{}]}`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	out, err := ToJSON(sampleCompound())
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	back, err := FromJSON([]byte(out))
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	// Booleans were written as Bytes and come back as plain integers.
	want := sampleCompound()
	want.Set("flags", List{Int(1), Int(0)})
	if !back.Equal(want) {
		t.Fatalf("got\n%s", Sprint("", back))
	}
}
