package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	epub "github.com/goliatone/go-epub"
)

func main() {
	if err := runTree(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatalf("epub tree: %v", err)
	}
}

func runTree(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("epub-tree", flag.ContinueOnError)
	in := fs.String("in", "-", "Collated single-page XHTML file, - reads stdin")
	indent := fs.Bool("indent", true, "Pretty-print the tree JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if *in == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(*in)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	binder, err := epub.AdaptSingleHTML(data)
	if err != nil {
		return fmt.Errorf("adapt single page: %w", err)
	}

	tree := epub.ModelToTree(binder)
	enc := json.NewEncoder(stdout)
	if *indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(tree)
}
