package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dustin/go-humanize"

	nbt "github.com/PistonDevelopers/hematite-nbt"
)

type printCmd struct {
	File string `arg:"" help:"NBT file to read, or - for stdin." default:"-"`
}

func (c *printCmd) Run(g *globals) error {
	return eachBlob(c.File, g, func(b *nbt.Blob) error {
		_, err := fmt.Println(b)
		return err
	})
}

type jsonCmd struct {
	File string `arg:"" help:"NBT file to read, or - for stdin." default:"-"`
}

func (c *jsonCmd) Run(g *globals) error {
	return eachBlob(c.File, g, func(b *nbt.Blob) error {
		out, err := nbt.ToJSON(b.Root())
		if err != nil {
			return err
		}
		_, err = fmt.Println(out)
		return err
	})
}

type fromJSONCmd struct {
	File   string `arg:"" help:"JSON file to read, or - for stdin." default:"-"`
	Output string `short:"o" help:"Write NBT here instead of stdout."`
	Name   string `help:"Root compound name."`
	Sorted bool   `help:"Write compound keys in lexical order."`
}

func (c *fromJSONCmd) Run(g *globals) error {
	data, err := readInput(c.File)
	if err != nil {
		return err
	}
	root, err := nbt.FromJSON(data)
	if err != nil {
		return err
	}
	opts, err := g.writeOptions()
	if err != nil {
		return err
	}
	opts = append(opts, nbt.WithRootName(c.Name))
	if c.Sorted {
		opts = append(opts, nbt.WithKeyOrder(nbt.SortedOrder))
	}
	out, err := nbt.Marshal(root, opts...)
	if err != nil {
		return err
	}
	return writeOutput(c.Output, out)
}

type cborCmd struct {
	File   string `arg:"" help:"NBT file to read, or - for stdin." default:"-"`
	Output string `short:"o" help:"Write CBOR here instead of stdout."`
}

func (c *cborCmd) Run(g *globals) error {
	data, err := readInput(c.File)
	if err != nil {
		return err
	}
	opts, err := g.readOptions()
	if err != nil {
		return err
	}
	b, err := nbt.ReadBlob(bytes.NewReader(data), opts...)
	if err != nil {
		return err
	}
	out, err := nbt.ToCBOR(b.Root())
	if err != nil {
		return err
	}
	return writeOutput(c.Output, out)
}

type infoCmd struct {
	File string `arg:"" help:"NBT file to read, or - for stdin." default:"-"`
}

func (c *infoCmd) Run(g *globals) error {
	data, err := readInput(c.File)
	if err != nil {
		return err
	}
	detected, err := nbt.DetectCompression(bufio.NewReader(bytes.NewReader(data)))
	if err != nil {
		return err
	}
	blobs := 0
	raw := 0
	err = eachBlobIn(bytes.NewReader(data), g, func(b *nbt.Blob) error {
		blobs++
		raw += b.LenBytes()
		log.Printf("%q: %d entries, %s uncompressed", b.Name, b.Len(), humanize.Bytes(uint64(b.LenBytes())))
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("nbt: %d blob(s), %s on disk (%s), %s uncompressed",
		blobs, humanize.Bytes(uint64(len(data))), detected, humanize.Bytes(uint64(raw)))
	return nil
}

func eachBlob(file string, g *globals, fn func(*nbt.Blob) error) error {
	data, err := readInput(file)
	if err != nil {
		return err
	}
	return eachBlobIn(bytes.NewReader(data), g, fn)
}

func eachBlobIn(r io.Reader, g *globals, fn func(*nbt.Blob) error) error {
	opts, err := g.readOptions()
	if err != nil {
		return err
	}
	dec := nbt.NewDecoder(r, opts...)
	for {
		b, err := dec.DecodeBlob()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
	}
}

func readInput(file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

func writeOutput(file string, data []byte) error {
	if file == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	changed, err := writeFileIfChanged(file, data)
	if err != nil {
		return err
	}
	if changed {
		log.Printf("nbt: wrote %s (%s)", file, humanize.Bytes(uint64(len(data))))
	} else {
		log.Printf("nbt: %s unchanged", file)
	}
	return nil
}

func writeFileIfChanged(filePath string, data []byte) (bool, error) {
	existing, err := os.ReadFile(filePath)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
