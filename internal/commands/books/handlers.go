package bookscmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goliatone/go-epub/book"
	"github.com/goliatone/go-epub/internal/adapt"
	"github.com/goliatone/go-epub/internal/collation"
	"github.com/goliatone/go-epub/internal/commands"
	"github.com/goliatone/go-epub/internal/ingest"
	"github.com/goliatone/go-epub/internal/library"
	"github.com/goliatone/go-epub/internal/logging"
	"github.com/goliatone/go-epub/internal/packaging"
	"github.com/goliatone/go-epub/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	importOperation  = "books.import_epub"
	exportOperation  = "books.export_epub"
	collateOperation = "books.collate_book"
	ingestOperation  = "books.ingest_markdown"
)

var (
	// ErrStorageFeatureDisabled is returned when the storage feature flag is disabled at runtime.
	ErrStorageFeatureDisabled = errors.New("books command: storage feature disabled")
	// ErrIngestFeatureDisabled is returned when the ingest feature flag is disabled at runtime.
	ErrIngestFeatureDisabled = errors.New("books command: ingest feature disabled")
	// ErrCollationFeatureDisabled is returned when the collation feature flag is disabled at runtime.
	ErrCollationFeatureDisabled = errors.New("books command: collation feature disabled")
)

var (
	_ command.Commander[ImportEPUBCommand]     = (*ImportEPUBHandler)(nil)
	_ command.Commander[ExportEPUBCommand]     = (*ExportEPUBHandler)(nil)
	_ command.Commander[CollateBookCommand]    = (*CollateBookHandler)(nil)
	_ command.Commander[IngestMarkdownCommand] = (*IngestMarkdownHandler)(nil)
)

// ImportEPUBHandler adapts EPUB files into book models and stores them in the archive.
type ImportEPUBHandler struct {
	inner *commands.Handler[ImportEPUBCommand]
}

// NewImportEPUBHandler creates a handler bound to the supplied archive service.
func NewImportEPUBHandler(archive library.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[ImportEPUBCommand]) *ImportEPUBHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ImportEPUBCommand) error {
		if !gates.storageEnabled() {
			return ErrStorageFeatureDisabled
		}

		epub, err := packaging.Open(msg.Path)
		if err != nil {
			return err
		}

		stored := 0
		for _, pkg := range epub.Packages() {
			node, err := adapt.AdaptPackage(pkg)
			if err != nil {
				return err
			}
			binder, ok := node.(*book.Binder)
			if !ok {
				return fmt.Errorf("books command: package %q did not adapt to a binder", pkg.ID())
			}
			if _, err := archive.Store(ctx, binder); err != nil {
				return err
			}
			stored++
		}

		logging.WithFields(baseLogger, map[string]any{
			"path":       msg.Path,
			"book_count": stored,
		}).Info("books.command.import_epub.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportEPUBCommand]{
		commands.WithLogger[ImportEPUBCommand](baseLogger),
		commands.WithOperation[ImportEPUBCommand](importOperation),
		commands.WithMessageFields(func(msg ImportEPUBCommand) map[string]any {
			return map[string]any{"path": msg.Path}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ImportEPUBCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportEPUBHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ImportEPUBCommand].
func (h *ImportEPUBHandler) Execute(ctx context.Context, msg ImportEPUBCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ExportEPUBHandler writes stored books back out as EPUB files.
type ExportEPUBHandler struct {
	inner *commands.Handler[ExportEPUBCommand]
}

// NewExportEPUBHandler creates a handler bound to the supplied archive service.
func NewExportEPUBHandler(archive library.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[ExportEPUBCommand]) *ExportEPUBHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ExportEPUBCommand) error {
		if !gates.storageEnabled() {
			return ErrStorageFeatureDisabled
		}

		binder, err := archive.Load(ctx, msg.IdentHash)
		if err != nil {
			return err
		}

		out, err := os.Create(msg.Out)
		if err != nil {
			return fmt.Errorf("books command: create %s: %w", msg.Out, err)
		}
		defer out.Close()

		if msg.Publisher != "" {
			err = adapt.MakePublicationEPUB(out, msg.Publisher, msg.Message, binder)
		} else {
			err = adapt.MakeEPUB(out, binder)
		}
		if err != nil {
			return err
		}

		logging.WithFields(baseLogger, map[string]any{
			"ident_hash": msg.IdentHash,
			"out":        msg.Out,
		}).Info("books.command.export_epub.completed")
		return out.Close()
	}

	handlerOpts := []commands.HandlerOption[ExportEPUBCommand]{
		commands.WithLogger[ExportEPUBCommand](baseLogger),
		commands.WithOperation[ExportEPUBCommand](exportOperation),
		commands.WithMessageFields(func(msg ExportEPUBCommand) map[string]any {
			fields := map[string]any{
				"ident_hash": msg.IdentHash,
				"out":        msg.Out,
			}
			if msg.Publisher != "" {
				fields["publisher"] = msg.Publisher
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ExportEPUBCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ExportEPUBHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ExportEPUBCommand].
func (h *ExportEPUBHandler) Execute(ctx context.Context, msg ExportEPUBCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CollateBookHandler collates stored books into single-page publications.
type CollateBookHandler struct {
	inner *commands.Handler[CollateBookCommand]
}

// NewCollateBookHandler creates a handler bound to the supplied archive
// service and baker. A nil baker falls back to the collation default.
func NewCollateBookHandler(archive library.Service, baker collation.Baker, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[CollateBookCommand]) *CollateBookHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg CollateBookCommand) error {
		if !gates.collationEnabled() {
			return ErrCollationFeatureDisabled
		}

		binder, err := archive.Load(ctx, msg.IdentHash)
		if err != nil {
			return err
		}

		collateOpts := []collation.Option{collation.WithLogger(baseLogger)}
		if baker != nil {
			collateOpts = append(collateOpts, collation.WithBaker(baker))
		}
		collated, err := collation.Collate(ctx, binder, collateOpts...)
		if err != nil {
			return err
		}

		out, err := os.Create(msg.Out)
		if err != nil {
			return fmt.Errorf("books command: create %s: %w", msg.Out, err)
		}
		defer out.Close()

		if err := adapt.MakeEPUB(out, collated); err != nil {
			return err
		}

		logging.WithFields(baseLogger, map[string]any{
			"ident_hash": msg.IdentHash,
			"out":        msg.Out,
		}).Info("books.command.collate_book.completed")
		return out.Close()
	}

	handlerOpts := []commands.HandlerOption[CollateBookCommand]{
		commands.WithLogger[CollateBookCommand](baseLogger),
		commands.WithOperation[CollateBookCommand](collateOperation),
		commands.WithMessageFields(func(msg CollateBookCommand) map[string]any {
			return map[string]any{
				"ident_hash": msg.IdentHash,
				"out":        msg.Out,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CollateBookCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CollateBookHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CollateBookCommand].
func (h *CollateBookHandler) Execute(ctx context.Context, msg CollateBookCommand) error {
	return h.inner.Execute(ctx, msg)
}

// IngestMarkdownHandler assembles markdown source trees into stored books.
type IngestMarkdownHandler struct {
	inner *commands.Handler[IngestMarkdownCommand]
}

// NewIngestMarkdownHandler creates a handler bound to the supplied ingest and archive services.
func NewIngestMarkdownHandler(sources ingest.Service, archive library.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[IngestMarkdownCommand]) *IngestMarkdownHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg IngestMarkdownCommand) error {
		if !gates.ingestEnabled() {
			return ErrIngestFeatureDisabled
		}
		if !gates.storageEnabled() {
			return ErrStorageFeatureDisabled
		}

		pages, err := sources.LoadBook(ctx, msg.Directory)
		if err != nil {
			return err
		}

		binder := book.NewBinder(msg.BookID, pages.Metadata().Clone(), pages.Nodes()...)
		stored, err := archive.Store(ctx, binder)
		if err != nil {
			return err
		}

		logging.WithFields(baseLogger, map[string]any{
			"directory":  msg.Directory,
			"ident_hash": stored.IdentHash,
			"page_count": pages.Len(),
		}).Info("books.command.ingest_markdown.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[IngestMarkdownCommand]{
		commands.WithLogger[IngestMarkdownCommand](baseLogger),
		commands.WithOperation[IngestMarkdownCommand](ingestOperation),
		commands.WithMessageFields(func(msg IngestMarkdownCommand) map[string]any {
			return map[string]any{
				"directory": msg.Directory,
				"book_id":   msg.BookID,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[IngestMarkdownCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &IngestMarkdownHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[IngestMarkdownCommand].
func (h *IngestMarkdownHandler) Execute(ctx context.Context, msg IngestMarkdownCommand) error {
	return h.inner.Execute(ctx, msg)
}
