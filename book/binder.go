package book

import "errors"

// ErrNodeNotAttached reports a title override aimed at a node the binder
// does not contain.
var ErrNodeNotAttached = errors.New("book: node is not attached to binder")

// TranslucentBinder groups child nodes without being addressable itself.
// It has no id; trees render it under the shared TranslucentBinderID. Each
// child may carry a title override that shadows the child's own title in
// the context of this binder.
type TranslucentBinder struct {
	metadata  Metadata
	nodes     []Node
	overrides []string
	resources []*Resource
}

// NewTranslucentBinder builds a binder around the given child nodes.
func NewTranslucentBinder(metadata Metadata, nodes ...Node) *TranslucentBinder {
	return &TranslucentBinder{
		metadata:  metadata,
		nodes:     nodes,
		overrides: make([]string, len(nodes)),
	}
}

func (b *TranslucentBinder) ID() string        { return "" }
func (b *TranslucentBinder) IdentHash() string { return "" }

// Metadata returns the binder's metadata for reading and updating in place.
func (b *TranslucentBinder) Metadata() *Metadata { return &b.metadata }

// Nodes returns the child nodes in insertion order.
func (b *TranslucentBinder) Nodes() []Node { return b.nodes }

// Len reports the number of direct children.
func (b *TranslucentBinder) Len() int { return len(b.nodes) }

// Append adds a child node to the end of the binder.
func (b *TranslucentBinder) Append(node Node) {
	b.nodes = append(b.nodes, node)
	b.overrides = append(b.overrides, "")
}

// SetTitleForNode records a title override for a child node.
func (b *TranslucentBinder) SetTitleForNode(node Node, title string) error {
	for i, n := range b.nodes {
		if n == node {
			b.overrides[i] = title
			return nil
		}
	}
	return ErrNodeNotAttached
}

// TitleForNode returns the title the binder displays for a child: the
// override when one is set, otherwise the child's own title.
func (b *TranslucentBinder) TitleForNode(node Node) string {
	if t := b.overrideFor(node); t != "" {
		return t
	}
	return node.Metadata().Title
}

func (b *TranslucentBinder) overrideFor(node Node) string {
	for i, n := range b.nodes {
		if n == node {
			return b.overrides[i]
		}
	}
	return ""
}

// Resources returns the binary resources attached to the binder itself,
// such as a cover image.
func (b *TranslucentBinder) Resources() []*Resource { return b.resources }

// SetResources replaces the binder's attached resources.
func (b *TranslucentBinder) SetResources(resources ...*Resource) {
	b.resources = resources
}

// Binder is an addressable TranslucentBinder: a book with an identity of
// its own.
type Binder struct {
	TranslucentBinder
	id string
}

// NewBinder builds a binder with the given identity around the child nodes.
func NewBinder(id string, metadata Metadata, nodes ...Node) *Binder {
	return &Binder{
		TranslucentBinder: *NewTranslucentBinder(metadata, nodes...),
		id:                id,
	}
}

func (b *Binder) ID() string { return b.id }

func (b *Binder) IdentHash() string {
	return JoinIdentHash(b.id, b.metadata.Version)
}
