package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/goliatone/go-epub/internal/adapt"
	"github.com/goliatone/go-epub/internal/packaging"
)

func main() {
	if err := runUnpack(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("epub unpack: %v", err)
	}
}

func runUnpack(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("epub-unpack", flag.ContinueOnError)
	in := fs.String("in", "", "EPUB file to explode")
	out := fs.String("out", "", "Destination directory")
	mapping := fs.Bool("mapping", false, "Print the archive mapping JSON instead of writing files")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("-in is required")
	}

	book, err := packaging.Open(*in)
	if err != nil {
		return fmt.Errorf("open %s: %w", *in, err)
	}

	if *mapping {
		entries, err := adapt.EPUBToMapping(book)
		if err != nil {
			return fmt.Errorf("build mapping: %w", err)
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if *out == "" {
		return fmt.Errorf("-out is required")
	}
	if err := packaging.WriteDir(*out, book); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Fprintf(stdout, "unpacked %d package(s) to %s\n", book.Len(), *out)
	return nil
}
