package bookscmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-epub/internal/collation"
	"github.com/goliatone/go-epub/internal/commands"
	"github.com/goliatone/go-epub/internal/ingest"
	"github.com/goliatone/go-epub/internal/library"
	"github.com/goliatone/go-epub/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the book command handlers produced by RegisterBookCommands.
type HandlerSet struct {
	Import  *ImportEPUBHandler
	Export  *ExportEPUBHandler
	Collate *CollateBookHandler
	Ingest  *IngestMarkdownHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	importHandlerOpts  []commands.HandlerOption[ImportEPUBCommand]
	exportHandlerOpts  []commands.HandlerOption[ExportEPUBCommand]
	collateHandlerOpts []commands.HandlerOption[CollateBookCommand]
	ingestHandlerOpts  []commands.HandlerOption[IngestMarkdownCommand]
	ingestService      ingest.Service
	baker              collation.Baker
}

// WithImportHandlerOptions forwards options to the ImportEPUBHandler constructor.
func WithImportHandlerOptions(opts ...commands.HandlerOption[ImportEPUBCommand]) Option {
	return func(cfg *options) {
		cfg.importHandlerOpts = append(cfg.importHandlerOpts, opts...)
	}
}

// WithExportHandlerOptions forwards options to the ExportEPUBHandler constructor.
func WithExportHandlerOptions(opts ...commands.HandlerOption[ExportEPUBCommand]) Option {
	return func(cfg *options) {
		cfg.exportHandlerOpts = append(cfg.exportHandlerOpts, opts...)
	}
}

// WithCollateHandlerOptions forwards options to the CollateBookHandler constructor.
func WithCollateHandlerOptions(opts ...commands.HandlerOption[CollateBookCommand]) Option {
	return func(cfg *options) {
		cfg.collateHandlerOpts = append(cfg.collateHandlerOpts, opts...)
	}
}

// WithIngestHandlerOptions forwards options to the IngestMarkdownHandler constructor.
func WithIngestHandlerOptions(opts ...commands.HandlerOption[IngestMarkdownCommand]) Option {
	return func(cfg *options) {
		cfg.ingestHandlerOpts = append(cfg.ingestHandlerOpts, opts...)
	}
}

// WithIngestService supplies the markdown ingest service. Without it the
// ingest handler is not constructed.
func WithIngestService(service ingest.Service) Option {
	return func(cfg *options) {
		cfg.ingestService = service
	}
}

// WithBaker supplies the baker used by the collate handler.
func WithBaker(baker collation.Baker) Option {
	return func(cfg *options) {
		cfg.baker = baker
	}
}

// RegisterBookCommands builds the book command handlers and registers them
// with the provided registry. A HandlerSet containing the constructed
// handlers is returned so callers can wire additional integrations
// (dispatcher, cron) as needed.
func RegisterBookCommands(reg CommandRegistry, archive library.Service, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if archive == nil {
		return nil, errors.New("books command registration: archive service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "books")

	set := &HandlerSet{
		Import:  NewImportEPUBHandler(archive, logger, gates, cfg.importHandlerOpts...),
		Export:  NewExportEPUBHandler(archive, logger, gates, cfg.exportHandlerOpts...),
		Collate: NewCollateBookHandler(archive, cfg.baker, logger, gates, cfg.collateHandlerOpts...),
	}
	if cfg.ingestService != nil {
		set.Ingest = NewIngestMarkdownHandler(cfg.ingestService, archive, logger, gates, cfg.ingestHandlerOpts...)
	}

	if reg != nil {
		handlers := []any{set.Import, set.Export, set.Collate}
		if set.Ingest != nil {
			handlers = append(handlers, set.Ingest)
		}
		for _, handler := range handlers {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}

	return set, nil
}

// RegisterImportCron wires the provided import handler into a cron registrar
// using the supplied command configuration and message payload. The handler
// is executed with a background context.
func RegisterImportCron(reg CronRegistrar, handler *ImportEPUBHandler, cfg command.HandlerConfig, msg ImportEPUBCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
