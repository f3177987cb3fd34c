package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	epub "github.com/goliatone/go-epub"
	"github.com/goliatone/go-epub/book"
	"github.com/goliatone/go-epub/cmd/epub/internal/bootstrap"
	bookscmd "github.com/goliatone/go-epub/internal/commands/books"
	"github.com/goliatone/go-epub/internal/collation"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runCollate(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("epub collate: %v", err)
	}
}

func runCollate(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("epub-collate", flag.ContinueOnError)
	in := fs.String("in", "", "EPUB file to collate")
	ident := fs.String("book", "", "Ident-hash of a stored book to collate")
	out := fs.String("out", "", "Destination .epub path for the collated book")
	rulesetPath := fs.String("ruleset", "", "CSS ruleset file overriding the book's ruleset.css")
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
	if (*in == "") == (*ident == "") {
		return fmt.Errorf("exactly one of -in or -book is required")
	}

	var ruleset []byte
	if *rulesetPath != "" {
		data, err := os.ReadFile(*rulesetPath)
		if err != nil {
			return fmt.Errorf("read ruleset: %w", err)
		}
		ruleset = data
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

	ctx := context.Background()

	if *ident != "" && ruleset == nil {
		handler := bookscmd.NewCollateBookHandler(module.Library, module.Baker, module.Logger, bookscmd.FeatureGates{})
		cmd := bookscmd.CollateBookCommand{IdentHash: *ident, Out: *out}
		if err := handler.Execute(ctx, cmd); err != nil {
			return fmt.Errorf("execute collate command: %w", err)
		}
		fmt.Fprintf(stdout, "collated %s into %s\n", *ident, *out)
		return nil
	}

	binder, err := loadBinder(ctx, module, *in, *ident)
	if err != nil {
		return err
	}

	opts := []collation.Option{
		collation.WithBaker(module.Baker),
		collation.WithLogger(module.Logger),
	}
	if ruleset != nil {
		opts = append(opts, collation.WithRuleset(ruleset))
	}
	collated, err := collation.Collate(ctx, binder, opts...)
	if err != nil {
		return fmt.Errorf("collate: %w", err)
	}

	dest, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	defer dest.Close()
	if err := epub.MakeEPUB(dest, collated); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	if err := dest.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "collated book written to %s\n", *out)
	return nil
}

func loadBinder(ctx context.Context, module *bootstrap.Module, in, ident string) (*epub.Binder, error) {
	if ident != "" {
		binder, err := module.Library.Load(ctx, ident)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", ident, err)
		}
		return binder, nil
	}

	archive, err := epub.OpenEPUB(in)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", in, err)
	}
	if archive.Len() == 0 {
		return nil, fmt.Errorf("%s holds no packages", in)
	}
	node, err := epub.AdaptPackage(archive.Packages()[0])
	if err != nil {
		return nil, fmt.Errorf("adapt %s: %w", in, err)
	}
	binder, ok := node.(*book.Binder)
	if !ok {
		return nil, fmt.Errorf("%s did not adapt to a binder", in)
	}
	return binder, nil
}
