package adapt

import (
	"bytes"
	"fmt"

	"github.com/goliatone/go-epub/book"
	"github.com/goliatone/go-epub/internal/htmldoc"
	"github.com/goliatone/go-epub/internal/packaging"
)

// Mapping entry types.
const (
	MappingDocument = "document"
	MappingPointer  = "pointer"
	MappingTree     = "tree"
)

// MappingEntry is the archive ingest shape for one package item: documents
// carry their serialized content, the navigation item carries the book tree.
type MappingEntry struct {
	Type     string
	Metadata book.Metadata
	Document []byte
	Tree     *book.TreeNode
}

// PackageToMapping chops a package apart into item name → entry. Documents
// contribute content and metadata, the navigation item contributes the tree
// and the book metadata, and anything that is not a document is left out.
func PackageToMapping(pkg *packaging.Package, opts ...Option) (map[string]*MappingEntry, error) {
	cfg := buildConfig(opts)
	mapping := make(map[string]*MappingEntry, pkg.Len())
	for _, item := range pkg.Items() {
		entry, err := mappingEntry(item, pkg, cfg)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			mapping[item.Name] = entry
		}
	}
	return mapping, nil
}

// EPUBToMapping maps every package in the container, in package order.
func EPUBToMapping(epub *packaging.EPUB, opts ...Option) ([]map[string]*MappingEntry, error) {
	mappings := make([]map[string]*MappingEntry, 0, epub.Len())
	for _, pkg := range epub.Packages() {
		mapping, err := PackageToMapping(pkg, opts...)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, mapping)
	}
	return mappings, nil
}

func mappingEntry(item *packaging.Item, pkg *packaging.Package, cfg config) (*MappingEntry, error) {
	if item.MediaType != packaging.XHTMLMediaType {
		return nil, nil
	}
	root, err := htmldoc.ParseDocument(bytes.NewReader(item.Data))
	if err != nil {
		return nil, fmt.Errorf("adapt: parse item %q: %w", item.Name, err)
	}

	if item.IsNavigation {
		metadata := htmldoc.ParseMetadataLenient(root)
		mergePackageMetadata(&metadata, pkg.Metadata)
		tree, err := htmldoc.ParseNavigationTree(root, pkg.ID())
		if err != nil {
			return nil, fmt.Errorf("adapt: item %q: %w", item.Name, err)
		}
		return &MappingEntry{Type: MappingTree, Metadata: metadata, Tree: tree}, nil
	}

	if htmldoc.IsDocumentPointer(root) {
		return &MappingEntry{
			Type:     MappingPointer,
			Metadata: htmldoc.ParsePointerMetadata(root),
			Document: item.Data,
		}, nil
	}

	metadata, err := parseItemMetadata(root, cfg)
	if err != nil {
		return nil, fmt.Errorf("adapt: item %q: %w", item.Name, err)
	}
	return &MappingEntry{
		Type:     MappingDocument,
		Metadata: metadata,
		Document: documentContent(root),
	}, nil
}
