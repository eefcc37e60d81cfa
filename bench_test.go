package nbt

import (
	"bytes"
	"fmt"
	"reflect"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

type benchItem struct {
	ID     string `nbt:"id"`
	Count  int8   `nbt:"Count"`
	Slot   int8   `nbt:"Slot"`
	Damage int16  `nbt:"Damage"`
}

type benchPlayer struct {
	Name      string      `nbt:"Name"`
	Pos       []float64   `nbt:"Pos"`
	Rotation  []float32   `nbt:"Rotation"`
	Health    float32     `nbt:"Health"`
	OnGround  bool        `nbt:"OnGround"`
	Inventory []benchItem `nbt:"Inventory"`
	Heights   []int32     `nbt:"Heights,intarray"`
	Blocks    []byte      `nbt:"Blocks,bytearray"`
	States    []int64     `nbt:"States,longarray"`
}

var (
	benchValue   benchPlayer
	benchBlob    *Blob
	benchNBT     []byte
	benchGzipNBT []byte
	benchAny     any
	benchCBOR    []byte
	benchCBORDec cbor.DecMode
)

var sinkBytes []byte
var sinkAny any
var sinkBlob *Blob

func init() {
	benchValue = benchPlayer{
		Name:     "Herobrine",
		Pos:      []float64{128.5, 64, -32.25},
		Rotation: []float32{90, 0},
		Health:   20,
		OnGround: true,
		Heights:  make([]int32, 256),
		Blocks:   make([]byte, 4096),
		States:   make([]int64, 256),
	}
	for i := range 36 {
		benchValue.Inventory = append(benchValue.Inventory, benchItem{
			ID:    fmt.Sprintf("minecraft:item_%d", i),
			Count: int8(i + 1),
			Slot:  int8(i),
		})
	}
	for i := range benchValue.Blocks {
		benchValue.Blocks[i] = byte(i * 7)
	}
	for i := range benchValue.Heights {
		benchValue.Heights[i] = int32(i % 80)
	}

	var err error
	benchBlob, err = MarshalBlob(benchValue, WithRootName("Player"))
	if err != nil {
		panic(err)
	}
	benchNBT, err = Marshal(benchValue)
	if err != nil {
		panic(err)
	}
	benchGzipNBT, err = Marshal(benchValue, WithCompression(Gzip))
	if err != nil {
		panic(err)
	}
	benchAny = ToAny(benchBlob.Root())
	benchCBOR, err = ToCBOR(benchBlob.Root())
	if err != nil {
		panic(err)
	}
	benchCBORDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any{}),
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

func BenchmarkDecodeBlob(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(benchNBT)))
	for i := 0; i < b.N; i++ {
		blob, err := NewDecoder(bytes.NewReader(benchNBT)).DecodeBlob()
		if err != nil {
			b.Fatal(err)
		}
		sinkBlob = blob
	}
}

func BenchmarkDecodeGzipBlob(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		blob, err := ReadBlob(bytes.NewReader(benchGzipNBT))
		if err != nil {
			b.Fatal(err)
		}
		sinkBlob = blob
	}
}

func BenchmarkEncodeBlob(b *testing.B) {
	b.ReportAllocs()
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := enc.EncodeBlob(benchBlob); err != nil {
			b.Fatal(err)
		}
	}
	b.SetBytes(int64(buf.Len()))
}

func BenchmarkMarshalStruct(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		out, err := Marshal(benchValue)
		if err != nil {
			b.Fatal(err)
		}
		sinkBytes = out
	}
}

func BenchmarkUnmarshalStruct(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var p benchPlayer
		if err := Unmarshal(benchNBT, &p); err != nil {
			b.Fatal(err)
		}
		sinkAny = p
	}
}

func BenchmarkToCBOR(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		out, err := ToCBOR(benchBlob.Root())
		if err != nil {
			b.Fatal(err)
		}
		sinkBytes = out
	}
}

func BenchmarkCBOREncodeOnly(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		out, err := cbor.Marshal(benchAny)
		if err != nil {
			b.Fatal(err)
		}
		sinkBytes = out
	}
}

func BenchmarkCBORDecodeOnly(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(benchCBOR)))
	for i := 0; i < b.N; i++ {
		var v any
		if err := benchCBORDec.Unmarshal(benchCBOR, &v); err != nil {
			b.Fatal(err)
		}
		sinkAny = v
	}
}
