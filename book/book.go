// Package book defines the object model for authored content: binders that
// order documents into a tree, the documents themselves, pointers to
// documents that live elsewhere, and the binary resources they reference.
//
// Models are assembled by hand, adapted from an EPUB package, or parsed out
// of a collated single-page book. They carry enough metadata to be written
// back out as a publishable EPUB.
package book

// TranslucentBinderID identifies binder nodes that group content without
// being addressable themselves, such as chapters inside a book.
const TranslucentBinderID = "subcol"

// Media types distinguish model flavors when content is stored or mapped.
const (
	BinderMediaType            = "application/vnd.org.cnx.collection"
	SubcollectionMediaType     = "application/vnd.org.cnx.subcollection"
	DocumentMediaType          = "application/vnd.org.cnx.document"
	CompositeDocumentMediaType = "application/vnd.org.cnx.composite-document"
)

// Node is the common surface of every content model. A node's IdentHash is
// its id joined with its version, or the bare id when no version is set.
type Node interface {
	ID() string
	IdentHash() string
	Metadata() *Metadata
}

// container is satisfied by binder models that hold child nodes.
type container interface {
	Nodes() []Node
}

var (
	_ Node = (*Binder)(nil)
	_ Node = (*TranslucentBinder)(nil)
	_ Node = (*Document)(nil)
	_ Node = (*CompositeDocument)(nil)
	_ Node = (*DocumentPointer)(nil)

	_ container = (*Binder)(nil)
	_ container = (*TranslucentBinder)(nil)
)
