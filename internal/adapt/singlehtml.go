package adapt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/goliatone/go-epub/book"
	"github.com/goliatone/go-epub/internal/htmldoc"
	"github.com/goliatone/go-epub/internal/routes"
)

// AdaptSingleHTML rebuilds a binder from a collated single-page book. The
// body-level metadata div names the book, the nav supplies titles, and the
// nested unit/chapter/page divs become binders and documents. The auto_
// id namespace the single-page renderer introduced is stripped back off.
func AdaptSingleHTML(content []byte, opts ...Option) (*book.Binder, error) {
	cfg := buildConfig(opts)

	root, err := htmldoc.ParseDocument(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("adapt: parse single page: %w", err)
	}
	sel := goquery.NewDocumentFromNode(root)

	metaDiv := sel.Find(`body > [data-type="metadata"]`).First()
	if metaDiv.Length() == 0 {
		return nil, &AdaptationError{Reason: "single page has no book metadata"}
	}
	metadata := htmldoc.ParseMetadataLenient(metaDiv.Nodes[0])

	id := metadata.ArchiveURI
	if split, _, err := book.SplitIdentHash(id); err == nil {
		id = split
	}
	if id == "" {
		id = "book"
	}

	tree, err := htmldoc.ParseNavigationTree(root, id)
	if err != nil {
		return nil, fmt.Errorf("adapt: single page: %w", err)
	}

	binder := book.NewBinder(id, metadata)
	queue := &treeQueue{nodes: tree.Contents}
	pages := map[string]*book.Document{}
	if err := adaptPieces(&binder.TranslucentBinder, htmldoc.Body(root), queue, pages); err != nil {
		return nil, err
	}
	if !queue.empty() {
		return nil, &AdaptationError{Reason: "navigation lists sections the document does not have"}
	}

	restoreDocumentIDs(binder, pages, cfg.space)
	return binder, nil
}

type treeQueue struct {
	nodes []*book.TreeNode
}

func (q *treeQueue) pop() *book.TreeNode {
	if len(q.nodes) == 0 {
		return nil
	}
	n := q.nodes[0]
	q.nodes = q.nodes[1:]
	return n
}

func (q *treeQueue) empty() bool { return len(q.nodes) == 0 }

func adaptPieces(parent *book.TranslucentBinder, container *html.Node, queue *treeQueue, pages map[string]*book.Document) error {
	if container == nil {
		return &AdaptationError{Reason: "single page has no body"}
	}
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "div" {
			continue
		}
		kind := dataType(c)
		switch kind {
		case "unit", "chapter":
			navNode := queue.pop()
			if navNode == nil {
				return &AdaptationError{Reason: "the document has more sections than the navigation"}
			}
			if navNode.ID != book.TranslucentBinderID {
				return &AdaptationError{Reason: fmt.Sprintf("section %q does not reconcile with navigation entry %q", kind, navNode.Title)}
			}
			title := directChildTitle(c)
			sub := book.NewTranslucentBinder(book.Metadata{Title: title})
			parent.Append(sub)
			if navNode.Title != title {
				if err := parent.SetTitleForNode(sub, navNode.Title); err != nil {
					return err
				}
			}
			subQueue := &treeQueue{nodes: navNode.Contents}
			if err := adaptPieces(sub, c, subQueue, pages); err != nil {
				return err
			}
			if !subQueue.empty() {
				return &AdaptationError{Reason: fmt.Sprintf("navigation for %q lists pages the document does not have", navNode.Title)}
			}
		case "page", "composite-page":
			navNode := queue.pop()
			if navNode == nil {
				return &AdaptationError{Reason: "the document has more pages than the navigation"}
			}
			if navNode.ID == book.TranslucentBinderID {
				return &AdaptationError{Reason: fmt.Sprintf("page %q does not reconcile with navigation section %q", attrValue(c, "id"), navNode.Title)}
			}
			node, err := adaptPageDiv(c, kind, pages)
			if err != nil {
				return err
			}
			parent.Append(node)
			if navNode.Title != node.Metadata().Title {
				if err := parent.SetTitleForNode(node, navNode.Title); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func adaptPageDiv(div *html.Node, kind string, pages map[string]*book.Document) (book.Node, error) {
	divID := attrValue(div, "id")
	if htmldoc.IsDocumentPointer(div) {
		return book.NewDocumentPointer(divID, htmldoc.ParsePointerMetadata(div)), nil
	}

	metadata := htmldoc.ParseMetadataLenient(div)
	id := metadata.ArchiveURI
	if split, _, err := book.SplitIdentHash(id); err == nil {
		id = split
	}
	if id == "" {
		id = divID
	}
	content := containerContent(div)

	if kind == "composite-page" {
		composite, err := book.NewCompositeDocument(id, content, metadata)
		if err != nil {
			return nil, err
		}
		pages[divID] = &composite.Document
		return composite, nil
	}
	doc, err := book.NewDocument(id, content, metadata)
	if err != nil {
		return nil, err
	}
	pages[divID] = doc
	return doc, nil
}

// containerContent serializes an element's children, dropping the metadata
// and resources blocks.
func containerContent(container *html.Node) []byte {
	var buf bytes.Buffer
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if dataType(c) == "metadata" || dataType(c) == "resources" {
			continue
		}
		buf.Write(book.SerializeNode(c))
	}
	return bytes.TrimSpace(buf.Bytes())
}

func directChildTitle(div *html.Node) string {
	for c := div.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "h1" && dataType(c) == "document-title" {
			return nodeText(c)
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			walk(gc)
		}
	}
	walk(n)
	return b.String()
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// restoreDocumentIDs undoes the single-page rewrites on every document:
// auto_ prefixes come off element ids, fragment links go back to page-local
// or /contents/ form, and /resources/ routes return to package-relative
// paths. Link targets resolve through the page div ids the links were
// written against, so documents renamed by their archive identity still
// link correctly.
func restoreDocumentIDs(binder *book.Binder, pages map[string]*book.Document, space *routes.Space) {
	for _, doc := range book.FlattenToDocuments(binder) {
		sel := goquery.NewDocumentFromNode(doc.ContentNode())
		sel.Find("[id]").Each(func(_ int, s *goquery.Selection) {
			id, _ := s.Attr("id")
			if parts := strings.SplitN(id, "_", 3); len(parts) == 3 && parts[0] == "auto" {
				s.SetAttr("id", parts[2])
			}
		})
		sel.Find("[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			s.SetAttr("href", restoreHref(doc, href, pages, space))
		})
		sel.Find("[src]").Each(func(_ int, s *goquery.Selection) {
			src, _ := s.Attr("src")
			if name, ok := space.CutResource(src); ok {
				s.SetAttr("src", "../resources/"+name)
			}
		})
		doc.RefreshReferences()
	}
}

func restoreHref(doc *book.Document, href string, pages map[string]*book.Document, space *routes.Space) string {
	if rest, ok := strings.CutPrefix(href, "#auto_"); ok {
		page, frag, found := strings.Cut(rest, "_")
		if !found {
			return href
		}
		target, ok := pages[page]
		if !ok {
			return href
		}
		if target == doc {
			return "#" + frag
		}
		return space.ContentsFragment(target.IdentHash(), frag)
	}
	if frag, ok := strings.CutPrefix(href, "#"); ok {
		if target, ok := pages[frag]; ok {
			return space.Contents(target.IdentHash())
		}
		return href
	}
	if name, ok := space.CutResource(href); ok {
		return "../resources/" + name
	}
	return href
}
