// Package epub models EPUB3 books as trees of binders, documents, and
// resources, and moves them between archive storage, package files, and
// rendered pages.
package epub

import (
	"context"
	"io"

	"github.com/goliatone/go-epub/book"
	"github.com/goliatone/go-epub/internal/adapt"
	"github.com/goliatone/go-epub/internal/collation"
	"github.com/goliatone/go-epub/internal/di"
	"github.com/goliatone/go-epub/internal/ingest"
	"github.com/goliatone/go-epub/internal/library"
	"github.com/goliatone/go-epub/internal/packaging"
	"github.com/goliatone/go-epub/internal/render"
	"github.com/goliatone/go-epub/internal/validation"
)

// Model types re-exported for consumers of the epub package.
type (
	Node              = book.Node
	Binder            = book.Binder
	TranslucentBinder = book.TranslucentBinder
	Document          = book.Document
	CompositeDocument = book.CompositeDocument
	DocumentPointer   = book.DocumentPointer
	Resource          = book.Resource
	Metadata          = book.Metadata
	Actor             = book.Actor
	TreeNode          = book.TreeNode
)

// Packaging types re-exported for consumers of the epub package.
type (
	EPUB            = packaging.EPUB
	Package         = packaging.Package
	Item            = packaging.Item
	PackageMetadata = packaging.Metadata
)

// LibraryService exports the archive storage contract.
type LibraryService = library.Service

// IngestService exports the markdown ingestion contract.
type IngestService = ingest.Service

// Book exports the stored book record returned by the archive.
type Book = library.Book

// Baker exports the collation page-transform contract.
type Baker = collation.Baker

// Module is the top level runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Module{container: di.NewContainer(cfg, opts...)}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Library returns the configured archive service.
func (m *Module) Library() LibraryService {
	return m.container.LibraryService()
}

// Ingest returns the configured markdown ingestion service, nil unless the
// ingest feature is enabled and a source filesystem was supplied.
func (m *Module) Ingest() IngestService {
	return m.container.IngestService()
}

// Baker returns the configured collation baker.
func (m *Module) Baker() Baker {
	return m.container.Baker()
}

// Collate runs the binder through the configured baker and returns the
// collated book.
func (m *Module) Collate(ctx context.Context, binder *Binder) (*Binder, error) {
	return collation.Collate(ctx, binder,
		collation.WithBaker(m.container.Baker()),
		collation.WithLogger(m.container.Logger("epub.collation")),
		collation.WithRouteSpace(m.container.RouteSpace()),
	)
}

// OpenEPUB reads the EPUB file at path.
func OpenEPUB(path string) (*EPUB, error) {
	return packaging.Open(path)
}

// WriteEPUB writes the EPUB archive to w.
func WriteEPUB(w io.Writer, e *EPUB) error {
	return packaging.WriteEPUB(w, e)
}

// AdaptPackage converts a single OPF package into a book model.
func AdaptPackage(pkg *Package) (Node, error) {
	return adapt.AdaptPackage(pkg)
}

// AdaptSingleHTML rebuilds a binder from a collated single-page book.
func AdaptSingleHTML(content []byte) (*Binder, error) {
	return adapt.AdaptSingleHTML(content)
}

// MakeEPUB writes the given models to w as an EPUB file.
func MakeEPUB(w io.Writer, nodes ...Node) error {
	return adapt.MakeEPUB(w, nodes...)
}

// MakePublicationEPUB writes the given models to w as an EPUB file carrying
// publication metadata.
func MakePublicationEPUB(w io.Writer, publisher, message string, nodes ...Node) error {
	return adapt.MakePublicationEPUB(w, publisher, message, nodes...)
}

// SingleHTML renders a binder onto one XHTML page.
func SingleHTML(binder *Binder) ([]byte, error) {
	return render.SingleHTML(binder)
}

// ModelToTree flattens a model into its tree of ids and titles.
func ModelToTree(node Node) *TreeNode {
	return book.ModelToTree(node)
}

// FlattenToDocuments lists every document in the model in reading order.
func FlattenToDocuments(node Node) []*Document {
	return book.FlattenToDocuments(node)
}

// ValidateTree checks a JSON tree payload against the tree schema.
func ValidateTree(payload []byte) error {
	return validation.ValidateTree(payload)
}
