// Package adapt converts between EPUB packages and book models: packages
// open into binder trees, binder trees pack into EPUBs, and collated
// single-page books reconstitute into binders.
package adapt

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-epub/book"
	"github.com/goliatone/go-epub/internal/htmldoc"
	"github.com/goliatone/go-epub/internal/packaging"
	"github.com/goliatone/go-epub/internal/routes"
)

// AdaptationError reports markup that cannot be reconciled into a model.
type AdaptationError struct {
	Reason string
}

func (e *AdaptationError) Error() string {
	return "adapt: " + e.Reason
}

type config struct {
	lenientMetadata bool
	space           *routes.Space
}

// Option adjusts how packages are adapted.
type Option func(*config)

// WithLenientMetadata accepts documents that are missing title, license, or
// summary metadata instead of failing.
func WithLenientMetadata() Option {
	return func(c *config) { c.lenientMetadata = true }
}

// WithRouteSpace recognizes and rebuilds links through the given route
// space instead of the default root-relative shapes.
func WithRouteSpace(space *routes.Space) Option {
	return func(c *config) {
		if space != nil {
			c.space = space
		}
	}
}

func buildConfig(opts []Option) config {
	cfg := config{space: routes.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// AdaptPackage builds a model tree from a package: the navigation item
// supplies the shape and the book metadata, every leaf resolves to a parsed
// document item, and leaves naming items the package does not carry become
// document pointers. The returned node is a TranslucentBinder when the
// navigation document carries the translucent binding marker, a Binder
// otherwise.
func AdaptPackage(pkg *packaging.Package, opts ...Option) (book.Node, error) {
	cfg := buildConfig(opts)

	nav := pkg.Navigation()
	if nav == nil {
		return nil, packaging.ErrMissingNavigation
	}
	root, err := htmldoc.ParseDocument(bytes.NewReader(nav.Data))
	if err != nil {
		return nil, fmt.Errorf("adapt: parse navigation %q: %w", nav.Name, err)
	}

	metadata := htmldoc.ParseMetadataLenient(root)
	mergePackageMetadata(&metadata, pkg.Metadata)

	id := pkg.ID()
	if split, version, err := book.SplitIdentHash(id); err == nil {
		id = split
		if metadata.Version == "" {
			metadata.Version = version
		}
	}

	tree, err := htmldoc.ParseNavigationTree(root, id)
	if err != nil {
		return nil, fmt.Errorf("adapt: navigation %q: %w", nav.Name, err)
	}

	var (
		node book.Node
		core *book.TranslucentBinder
	)
	if tree.ID == book.TranslucentBinderID {
		tb := book.NewTranslucentBinder(metadata)
		node, core = tb, tb
	} else {
		b := book.NewBinder(id, metadata)
		node, core = b, &b.TranslucentBinder
	}

	for _, child := range tree.Contents {
		if err := nodeToModel(core, child, pkg, cfg); err != nil {
			return nil, err
		}
	}

	core.SetResources(navResources(root, pkg)...)
	return node, nil
}

func nodeToModel(parent *book.TranslucentBinder, tree *book.TreeNode, pkg *packaging.Package, cfg config) error {
	if tree.ID == book.TranslucentBinderID {
		sub := book.NewTranslucentBinder(book.Metadata{Title: tree.Title})
		parent.Append(sub)
		for _, child := range tree.Contents {
			if err := nodeToModel(sub, child, pkg, cfg); err != nil {
				return err
			}
		}
		return nil
	}

	var node book.Node
	item, err := pkg.GrabByName(tree.ID)
	switch {
	case errors.Is(err, packaging.ErrItemNotFound):
		node = book.NewDocumentPointer(stem(tree.ID), book.Metadata{Title: tree.Title})
	case err != nil:
		return err
	default:
		node, err = adaptItem(item, pkg, cfg)
		if err != nil {
			return err
		}
	}

	parent.Append(node)
	if tree.Title != node.Metadata().Title {
		if err := parent.SetTitleForNode(node, tree.Title); err != nil {
			return err
		}
	}
	return nil
}

// AdaptItem parses one package item into a document or document pointer.
func AdaptItem(item *packaging.Item, pkg *packaging.Package, opts ...Option) (book.Node, error) {
	return adaptItem(item, pkg, buildConfig(opts))
}

func adaptItem(item *packaging.Item, pkg *packaging.Package, cfg config) (book.Node, error) {
	if item.MediaType != packaging.XHTMLMediaType {
		return nil, &AdaptationError{Reason: fmt.Sprintf("item %q is not a document (%s)", item.Name, item.MediaType)}
	}
	root, err := htmldoc.ParseDocument(bytes.NewReader(item.Data))
	if err != nil {
		return nil, fmt.Errorf("adapt: parse item %q: %w", item.Name, err)
	}

	if htmldoc.IsDocumentPointer(root) {
		return book.NewDocumentPointer(stem(item.Name), htmldoc.ParsePointerMetadata(root)), nil
	}

	metadata, err := parseItemMetadata(root, cfg)
	if err != nil {
		return nil, fmt.Errorf("adapt: item %q: %w", item.Name, err)
	}

	id := stem(item.Name)
	if split, version, err := book.SplitIdentHash(id); err == nil {
		id = split
		if metadata.Version == "" {
			metadata.Version = version
		}
	}

	doc, err := book.NewDocument(id, documentContent(root), metadata)
	if err != nil {
		return nil, fmt.Errorf("adapt: item %q: %w", item.Name, err)
	}
	bindPackageResources(doc, pkg)
	return doc, nil
}

func parseItemMetadata(root *html.Node, cfg config) (book.Metadata, error) {
	if cfg.lenientMetadata {
		return htmldoc.ParseMetadataLenient(root), nil
	}
	return htmldoc.ParseMetadata(root)
}

// documentContent pulls the usable body out of a page: everything except
// the metadata and resources blocks, which describe the document rather
// than belong to it.
func documentContent(root *html.Node) []byte {
	body := htmldoc.Body(root)
	if body == nil {
		return nil
	}
	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if dataType(c) == "metadata" || dataType(c) == "resources" {
			continue
		}
		buf.Write(book.SerializeNode(c))
	}
	return bytes.TrimSpace(buf.Bytes())
}

func dataType(n *html.Node) string {
	if n.Type != html.ElementNode {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Key == "data-type" {
			return attr.Val
		}
	}
	return ""
}

// bindPackageResources attaches package payloads to the document's
// ../resources/ references. References to names the package does not carry
// are left alone.
func bindPackageResources(doc *book.Document, pkg *packaging.Package) {
	for _, ref := range doc.References() {
		if ref.Kind() != book.InternalReference {
			continue
		}
		name, ok := strings.CutPrefix(ref.URI(), "../resources/")
		if !ok {
			continue
		}
		item, err := pkg.GrabByName(name)
		if err != nil {
			continue
		}
		res, err := book.NewResource(name, bytes.NewReader(item.Data), item.MediaType, name)
		if err != nil {
			continue
		}
		doc.AddResource(res)
		ref.Bind(res, "../resources/%s")
	}
}

func navResources(root *html.Node, pkg *packaging.Package) []*book.Resource {
	var resources []*book.Resource
	for _, id := range htmldoc.ParseResourceIDs(root) {
		item, err := pkg.GrabByName(id)
		if err != nil {
			continue
		}
		res, err := book.NewResource(id, bytes.NewReader(item.Data), item.MediaType, id)
		if err != nil {
			continue
		}
		resources = append(resources, res)
	}
	return resources
}

func mergePackageMetadata(md *book.Metadata, pm packaging.Metadata) {
	if md.Title == "" {
		md.Title = pm.Title
	}
	if md.Language == "" {
		md.Language = pm.Language
	}
	if md.LicenseText == "" {
		md.LicenseText = pm.LicenseText
	}
	if md.LicenseURL == "" {
		md.LicenseURL = pm.LicenseURL
	}
	if len(md.Publishers) == 0 && pm.Publisher != "" {
		md.Publishers = []book.Actor{{Name: pm.Publisher, Type: "publisher"}}
	}
}

func stem(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}
