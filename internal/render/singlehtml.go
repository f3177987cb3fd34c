package render

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/goliatone/go-epub/book"
	"github.com/goliatone/go-epub/internal/routes"
)

type singleHTMLData struct {
	Title  string
	Meta   metadataData
	Nav    []*navEntry
	Pieces []*pieceData
}

// Option adjusts single-page rendering.
type Option func(*singleConfig)

type singleConfig struct {
	space *routes.Space
}

// WithRouteSpace renders links through the given route space instead of
// the default root-relative /contents/ and /resources/ shapes.
func WithRouteSpace(space *routes.Space) Option {
	return func(c *singleConfig) {
		if space != nil {
			c.space = space
		}
	}
}

type pieceData struct {
	IsBinder   bool
	Kind       string
	Title      string
	ID         string
	Meta       metadataData
	IsPointer  bool
	PointerURL string
	Content    string
	Contents   []*pieceData
}

// SingleHTML collates a whole binder onto one XHTML page: the book metadata
// and table of contents up front, then every node as a nested div. Element
// ids and fragment links are rewritten so pages cannot collide once they
// share a document.
func SingleHTML(binder *book.Binder, opts ...Option) ([]byte, error) {
	cfg := singleConfig{space: routes.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	md := binder.Metadata()
	meta := metadataDataFor(md)
	if meta.ArchiveValue == "" {
		meta.ArchiveValue = binder.ID()
	}
	pieces, err := singlePieces(&binder.TranslucentBinder, cfg.space)
	if err != nil {
		return nil, err
	}
	data := &singleHTMLData{
		Title: md.Title,
		Meta:  meta,
		Nav: navEntriesWith(&binder.TranslucentBinder, func(child book.Node) string {
			return "#" + child.ID()
		}),
		Pieces: pieces,
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "singlehtml", data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func singlePieces(parent *book.TranslucentBinder, space *routes.Space) ([]*pieceData, error) {
	pieces := make([]*pieceData, 0, parent.Len())
	for _, child := range parent.Nodes() {
		title := parent.TitleForNode(child)
		var (
			piece *pieceData
			err   error
		)
		switch n := child.(type) {
		case *book.Binder:
			piece, err = binderPiece(&n.TranslucentBinder, title, space)
		case *book.TranslucentBinder:
			piece, err = binderPiece(n, title, space)
		case *book.CompositeDocument:
			piece, err = documentPiece(&n.Document, "composite-page", space)
		case *book.Document:
			piece, err = documentPiece(n, "page", space)
		case *book.DocumentPointer:
			piece = &pieceData{
				Kind:       "page",
				ID:         n.ID(),
				Title:      n.Metadata().Title,
				Meta:       pointerMetadataData(n),
				IsPointer:  true,
				PointerURL: n.Metadata().URL,
			}
		}
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, piece)
	}
	return pieces, nil
}

func binderPiece(binder *book.TranslucentBinder, title string, space *routes.Space) (*pieceData, error) {
	kind := "chapter"
	if containsBinder(binder) {
		kind = "unit"
	}
	contents, err := singlePieces(binder, space)
	if err != nil {
		return nil, err
	}
	return &pieceData{IsBinder: true, Kind: kind, Title: title, Contents: contents}, nil
}

func documentPiece(doc *book.Document, kind string, space *routes.Space) (*pieceData, error) {
	content, err := rewriteForSinglePage(doc, space)
	if err != nil {
		return nil, err
	}
	return &pieceData{
		Kind:    kind,
		ID:      doc.ID(),
		Title:   doc.Metadata().Title,
		Meta:    metadataDataFor(doc.Metadata()),
		Content: string(content),
	}, nil
}

func pointerMetadataData(ptr *book.DocumentPointer) metadataData {
	meta := metadataDataFor(ptr.Metadata())
	meta.IsPointer = true
	return meta
}

func containsBinder(binder *book.TranslucentBinder) bool {
	for _, child := range binder.Nodes() {
		switch child.(type) {
		case *book.Binder, *book.TranslucentBinder:
			return true
		}
	}
	return false
}

// rewriteForSinglePage namespaces the document's element ids with an
// auto_<page>_ prefix, folds cross-page /contents/ links into fragment
// links, and shifts package-relative resource paths onto the /resources/
// route, working on a fresh parse so the document itself stays untouched.
func rewriteForSinglePage(doc *book.Document, space *routes.Space) ([]byte, error) {
	root, err := book.ParseFragment(doc.Content())
	if err != nil {
		return nil, err
	}
	sel := goquery.NewDocumentFromNode(root)
	sel.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		s.SetAttr("id", "auto_"+doc.ID()+"_"+id)
	})
	sel.Find("[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		s.SetAttr("href", rewriteSingleHref(doc.ID(), href, space))
	})
	sel.Find("[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if name, ok := strings.CutPrefix(src, "../resources/"); ok {
			s.SetAttr("src", space.Resource(name))
		}
	})
	return book.SerializeFragment(root), nil
}

func rewriteSingleHref(pageID, href string, space *routes.Space) string {
	if frag, ok := strings.CutPrefix(href, "#"); ok {
		return "#auto_" + pageID + "_" + frag
	}
	if target, frag, ok := space.CutContents(href); ok {
		if frag == "" {
			return "#" + target
		}
		return "#auto_" + target + "_" + frag
	}
	if name, ok := strings.CutPrefix(href, "../resources/"); ok {
		return space.Resource(name)
	}
	return href
}
