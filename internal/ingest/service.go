// Package ingest assembles book models from markdown sources: frontmatter
// carries the page metadata, goldmark renders the body, and directory order
// becomes reading order.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	slug "github.com/goliatone/go-slug"

	"github.com/goliatone/go-epub/book"
	"github.com/goliatone/go-epub/internal/logging"
	"github.com/goliatone/go-epub/pkg/interfaces"
)

var (
	ErrFilesystemRequired = errors.New("ingest: filesystem is required")
	ErrNoSources          = errors.New("ingest: no markdown sources found")
)

// Config captures loader and parser behaviour for a book source tree.
type Config struct {
	Pattern   string
	Recursive bool
	IndexFile string
	Parser    ParseOptions
}

// Service exposes markdown ingestion use-cases.
type Service interface {
	// LoadDocument builds a single document from one markdown file.
	LoadDocument(ctx context.Context, name string) (*book.Document, error)
	// LoadBook assembles every source under dir into a translucent binder,
	// index page first. The binder takes its metadata from the index page.
	LoadBook(ctx context.Context, dir string) (*book.TranslucentBinder, error)
}

// ServiceOption customises service construction.
type ServiceOption func(*service)

// WithLogger injects the logger used by the service. Defaults to no-op.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	loader *Loader
	parser *GoldmarkParser
	cfg    Config
	logger interfaces.Logger
}

// NewService wires an ingestion service over the supplied filesystem.
func NewService(filesystem fs.FS, cfg Config, opts ...ServiceOption) (Service, error) {
	if filesystem == nil {
		return nil, ErrFilesystemRequired
	}
	s := &service{
		loader: NewLoader(filesystem, LoaderConfig{
			Pattern:   cfg.Pattern,
			Recursive: cfg.Recursive,
			IndexFile: cfg.IndexFile,
		}),
		parser: NewGoldmarkParser(cfg.Parser),
		cfg:    cfg,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) LoadDocument(ctx context.Context, name string) (*book.Document, error) {
	source, err := s.loader.LoadFile(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.buildDocument(source)
}

func (s *service) LoadBook(ctx context.Context, dir string) (*book.TranslucentBinder, error) {
	sources, err := s.loader.LoadDirectory(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSources, dir)
	}

	var binderMetadata book.Metadata
	docs := make([]book.Node, 0, len(sources))
	for i, source := range sources {
		doc, err := s.buildDocument(source)
		if err != nil {
			return nil, err
		}
		// The index page names the book.
		if i == 0 {
			binderMetadata = doc.Metadata().Clone()
		}
		docs = append(docs, doc)
	}

	binder := book.NewTranslucentBinder(binderMetadata, docs...)
	s.logger.Info("ingest.load_book.success", "dir", dir, "page_count", len(docs))
	return binder, nil
}

func (s *service) buildDocument(source *Source) (*book.Document, error) {
	id, metadata, body, err := ParseFrontMatter(source.Data)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", source.Path, err)
	}

	content, err := s.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", source.Path, err)
	}

	if id == "" {
		id = documentName(source.Path)
	}
	if metadata.Title == "" {
		metadata.Title = documentName(source.Path)
	}

	doc, err := book.NewDocument(id, content, metadata)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", source.Path, err)
	}
	return doc, nil
}

// documentName derives a stable slug from the source filename.
func documentName(p string) string {
	base := path.Base(p)
	base = strings.TrimSuffix(base, path.Ext(base))
	normalized, err := slug.Normalize(base)
	if err != nil || normalized == "" {
		return base
	}
	return normalized
}
