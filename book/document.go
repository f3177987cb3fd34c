package book

import (
	"fmt"

	"golang.org/x/net/html"
)

// Document is a leaf content model: an XHTML fragment plus its metadata and
// the resources it uses. Content is held as a DOM so references can be
// rebound in place.
type Document struct {
	id        string
	metadata  Metadata
	resources []*Resource
	root      *html.Node
	refs      []*Reference
}

// NewDocument parses content into a document. References are discovered
// during parsing and stay live against the document's DOM.
func NewDocument(id string, content []byte, metadata Metadata, resources ...*Resource) (*Document, error) {
	root, err := ParseFragment(content)
	if err != nil {
		return nil, fmt.Errorf("book: document %q: %w", id, err)
	}
	return &Document{
		id:        id,
		metadata:  metadata,
		resources: resources,
		root:      root,
		refs:      collectReferences(root),
	}, nil
}

func (d *Document) ID() string { return d.id }

func (d *Document) IdentHash() string {
	return JoinIdentHash(d.id, d.metadata.Version)
}

// Metadata returns the document's metadata for reading and updating in place.
func (d *Document) Metadata() *Metadata { return &d.metadata }

// MediaType reports the model flavor.
func (d *Document) MediaType() string { return DocumentMediaType }

// Content serializes the document's DOM back to XHTML.
func (d *Document) Content() []byte { return SerializeFragment(d.root) }

// SetContent replaces the document's DOM and rediscovers references.
func (d *Document) SetContent(content []byte) error {
	root, err := ParseFragment(content)
	if err != nil {
		return fmt.Errorf("book: document %q: %w", d.id, err)
	}
	d.root = root
	d.refs = collectReferences(root)
	return nil
}

// ContentNode exposes the DOM container for callers that query or mutate
// content directly. Structural edits that add or remove URI-bearing
// attributes require a SetContent or Refresh to be seen by References.
func (d *Document) ContentNode() *html.Node { return d.root }

// References returns the live references discovered in the content.
func (d *Document) References() []*Reference { return d.refs }

// RefreshReferences rescans the DOM after direct content mutation.
func (d *Document) RefreshReferences() { d.refs = collectReferences(d.root) }

// Resources returns the resources attached to the document.
func (d *Document) Resources() []*Resource { return d.resources }

// AddResource attaches a resource to the document.
func (d *Document) AddResource(res *Resource) {
	d.resources = append(d.resources, res)
}

// SetResources replaces the document's attached resources.
func (d *Document) SetResources(resources ...*Resource) {
	d.resources = resources
}

// CompositeDocument is a document fabricated during collation rather than
// authored. It persists with the baked book, not on its own.
type CompositeDocument struct {
	Document
}

// NewCompositeDocument parses content into a composite document.
func NewCompositeDocument(id string, content []byte, metadata Metadata, resources ...*Resource) (*CompositeDocument, error) {
	doc, err := NewDocument(id, content, metadata, resources...)
	if err != nil {
		return nil, err
	}
	return &CompositeDocument{Document: *doc}, nil
}

// MediaType reports the model flavor.
func (d *CompositeDocument) MediaType() string { return CompositeDocumentMediaType }

// DocumentPointer stands in for a document that lives elsewhere. It carries
// just enough metadata to link out to the real thing.
type DocumentPointer struct {
	identHash string
	metadata  Metadata
}

// NewDocumentPointer builds a pointer to the document named by identHash.
func NewDocumentPointer(identHash string, metadata Metadata) *DocumentPointer {
	return &DocumentPointer{identHash: identHash, metadata: metadata}
}

func (p *DocumentPointer) ID() string        { return p.identHash }
func (p *DocumentPointer) IdentHash() string { return p.identHash }

// Metadata returns the pointer's metadata for reading and updating in place.
func (p *DocumentPointer) Metadata() *Metadata { return &p.metadata }
