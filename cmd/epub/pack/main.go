package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/goliatone/go-epub/cmd/epub/internal/bootstrap"
	bookscmd "github.com/goliatone/go-epub/internal/commands/books"
	"github.com/goliatone/go-epub/internal/packaging"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runPack(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("epub pack: %v", err)
	}
}

func runPack(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("epub-pack", flag.ContinueOnError)
	dir := fs.String("dir", "", "Unpacked EPUB directory to repack")
	ident := fs.String("book", "", "Ident-hash of a stored book to export")
	out := fs.String("out", "", "Destination .epub path")
	publisher := fs.String("publisher", "", "Publisher recorded on the export")
	message := fs.String("message", "", "Publication message recorded with the publisher")
	configPath := fs.String("config", "", "Optional YAML configuration file")
	driver := fs.String("driver", "", "Database driver, sqlite3 or postgres")
	dsn := fs.String("dsn", "", "Database connection string for stored books")
	quiet := fs.Bool("quiet", false, "Disable logging output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("-out is required")
	}
	if (*dir == "") == (*ident == "") {
		return fmt.Errorf("exactly one of -dir or -book is required")
	}

	if *dir != "" {
		book, err := packaging.OpenFS(os.DirFS(*dir))
		if err != nil {
			return fmt.Errorf("open %s: %w", *dir, err)
		}
		dest, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create %s: %w", *out, err)
		}
		defer dest.Close()
		if err := packaging.WriteEPUB(dest, book); err != nil {
			return fmt.Errorf("write %s: %w", *out, err)
		}
		if err := dest.Close(); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "packed %s into %s\n", *dir, *out)
		return nil
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath: *configPath,
		Driver:     *driver,
		DSN:        *dsn,
		Quiet:      *quiet,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	handler := bookscmd.NewExportEPUBHandler(module.Library, module.Logger, bookscmd.FeatureGates{})
	cmd := bookscmd.ExportEPUBCommand{
		IdentHash: *ident,
		Out:       *out,
		Publisher: *publisher,
		Message:   *message,
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute export command: %w", err)
	}
	fmt.Fprintf(stdout, "exported %s to %s\n", *ident, *out)
	return nil
}
