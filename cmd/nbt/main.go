package main

import (
	"log"

	"github.com/alecthomas/kong"

	nbt "github.com/PistonDevelopers/hematite-nbt"
)

type globals struct {
	LittleEndian bool   `help:"Use the little-endian (Bedrock) wire format." name:"little-endian"`
	Compression  string `help:"Compression of NBT input (auto, none, gzip, zlib) or output (none, gzip, zlib)." default:"auto" enum:"auto,none,gzip,zlib"`
	MaxDepth     int    `help:"Maximum list and compound nesting." default:"512"`
}

type cli struct {
	Globals globals `embed:""`

	Print    printCmd    `cmd:"" help:"Print every blob in an NBT stream."`
	JSON     jsonCmd     `cmd:"" name:"json" help:"Convert NBT to JSON, one object per blob."`
	FromJSON fromJSONCmd `cmd:"" name:"from-json" help:"Convert a JSON object to an NBT blob."`
	CBOR     cborCmd     `cmd:"" name:"cbor" help:"Convert the first blob to deterministic CBOR."`
	Info     infoCmd     `cmd:"" help:"Report name, entry count and sizes of each blob."`
}

func main() {
	log.SetFlags(0)

	var args cli
	ctx := kong.Parse(&args,
		kong.Name("nbt"),
		kong.Description("Inspect and convert Minecraft Named Binary Tag files."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&args.Globals); err != nil {
		log.Fatal(err)
	}
}

// readOptions maps the global flags onto decoder options.
func (g *globals) readOptions() ([]nbt.Option, error) {
	c, err := nbt.ParseCompression(g.Compression)
	if err != nil {
		return nil, err
	}
	return g.common(c), nil
}

// writeOptions is readOptions for encoders; auto writes uncompressed.
func (g *globals) writeOptions() ([]nbt.Option, error) {
	c, err := nbt.ParseCompression(g.Compression)
	if err != nil {
		return nil, err
	}
	if c == nbt.AutoDetect {
		c = nbt.Uncompressed
	}
	return g.common(c), nil
}

func (g *globals) common(c nbt.Compression) []nbt.Option {
	opts := []nbt.Option{nbt.WithCompression(c), nbt.WithMaxDepth(g.MaxDepth)}
	if g.LittleEndian {
		opts = append(opts, nbt.WithEndian(nbt.LittleEndian))
	}
	return opts
}
