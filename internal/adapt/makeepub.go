package adapt

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-epub/book"
	"github.com/goliatone/go-epub/internal/packaging"
	"github.com/goliatone/go-epub/internal/render"
	"github.com/goliatone/go-epub/internal/routes"
)

// PackageOption adjusts the OPF metadata a binder packs into.
type PackageOption func(*packaging.Metadata)

// WithPublisher stamps the publisher onto the package metadata.
func WithPublisher(publisher string) PackageOption {
	return func(md *packaging.Metadata) { md.Publisher = publisher }
}

// WithPublicationMessage stamps the publication message onto the package
// metadata.
func WithPublicationMessage(message string) PackageOption {
	return func(md *packaging.Metadata) { md.PublicationMessage = message }
}

// BinderToPackage renders a binder into a package: a navigation document,
// one content document per flattened document, and the resources both
// carry. Inline data: references are lifted into content-hash named
// resources; references to sibling documents move onto the /contents/
// route. Translucent binders get a digest-derived package name since they
// have no identity of their own.
func BinderToPackage(node book.Node, opts ...PackageOption) (*packaging.Package, error) {
	core, err := binderCore(node)
	if err != nil {
		return nil, err
	}

	docs := book.FlattenToDocuments(node)
	name := node.IdentHash()
	if name == "" {
		name = translucentName(docs)
	}

	resources := map[string]*book.Resource{}
	for _, res := range core.Resources() {
		resources[res.Filename()] = res
	}

	var items []*packaging.Item
	for _, child := range book.FlattenModel(node) {
		var doc *book.Document
		switch m := child.(type) {
		case *book.CompositeDocument:
			doc = &m.Document
		case *book.Document:
			doc = m
		case *book.DocumentPointer:
			page, err := render.Page(m)
			if err != nil {
				return nil, err
			}
			items = append(items, &packaging.Item{
				Name:      render.ContentFilename(m.IdentHash()),
				Data:      page,
				MediaType: packaging.XHTMLMediaType,
			})
			continue
		default:
			continue
		}

		if err := prepareReferences(doc, docs); err != nil {
			return nil, err
		}
		for _, res := range doc.Resources() {
			resources[res.Filename()] = res
		}

		page, err := render.Page(child)
		if err != nil {
			return nil, err
		}
		docName := doc.IdentHash()
		if docName == "" {
			return nil, &AdaptationError{Reason: "document with no id cannot be packaged"}
		}
		items = append(items, &packaging.Item{
			Name:      render.ContentFilename(docName),
			Data:      page,
			MediaType: packaging.XHTMLMediaType,
		})
	}

	navPage, err := render.Page(node)
	if err != nil {
		return nil, err
	}
	nav := &packaging.Item{
		Name:         render.ContentFilename(name),
		Data:         navPage,
		MediaType:    packaging.XHTMLMediaType,
		IsNavigation: true,
		Properties:   []string{"nav"},
	}

	filenames := make([]string, 0, len(resources))
	for filename := range resources {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)
	for _, filename := range filenames {
		res := resources[filename]
		items = append(items, &packaging.Item{
			Name:      filename,
			Data:      res.Data(),
			MediaType: res.MediaType(),
		})
	}

	md := node.Metadata()
	pkgMeta := packaging.Metadata{
		Title:       md.Title,
		Identifier:  name,
		Language:    md.Language,
		LicenseText: md.LicenseText,
		LicenseURL:  md.LicenseURL,
	}
	for _, opt := range opts {
		opt(&pkgMeta)
	}

	return packaging.NewPackage(name+".opf", pkgMeta, append([]*packaging.Item{nav}, items...)...)
}

// MakeEPUB packs one package per binder into an .epub archive on w.
func MakeEPUB(w io.Writer, nodes ...book.Node) error {
	return makeEPUB(w, nodes, nil)
}

// MakePublicationEPUB is MakeEPUB with the publication inputs the archive
// requires on ingest: both publisher and message must be present.
func MakePublicationEPUB(w io.Writer, publisher, message string, nodes ...book.Node) error {
	if publisher == "" || message == "" {
		return &AdaptationError{Reason: "publication requires a publisher and a publication message"}
	}
	return makeEPUB(w, nodes, []PackageOption{
		WithPublisher(publisher),
		WithPublicationMessage(message),
	})
}

func makeEPUB(w io.Writer, nodes []book.Node, opts []PackageOption) error {
	if len(nodes) == 0 {
		return &AdaptationError{Reason: "no binders to package"}
	}
	pkgs := make([]*packaging.Package, 0, len(nodes))
	for _, node := range nodes {
		pkg, err := BinderToPackage(node, opts...)
		if err != nil {
			return err
		}
		pkgs = append(pkgs, pkg)
	}
	return packaging.WriteEPUB(w, packaging.NewEPUB(pkgs...))
}

func binderCore(node book.Node) (*book.TranslucentBinder, error) {
	switch n := node.(type) {
	case *book.Binder:
		return &n.TranslucentBinder, nil
	case *book.TranslucentBinder:
		return n, nil
	default:
		return nil, &AdaptationError{Reason: fmt.Sprintf("%T cannot be packaged", node)}
	}
}

// translucentName derives a stable package name for a binder with no
// identity: the digest of its flattened document ids.
func translucentName(docs []*book.Document) string {
	h := sha1.New()
	for _, doc := range docs {
		io.WriteString(h, doc.IdentHash())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// prepareReferences rewrites a document's references for packaging: inline
// payloads become attached resources, attached resource links are bound,
// and links naming sibling documents move onto the /contents/ route.
func prepareReferences(doc *book.Document, siblings []*book.Document) error {
	byID := map[string]*book.Document{}
	for _, sib := range siblings {
		byID[sib.ID()] = sib
		byID[sib.IdentHash()] = sib
	}

	for _, ref := range doc.References() {
		switch ref.Kind() {
		case book.InlineReference:
			res, err := resourceFromDataURI(ref.URI())
			if err != nil {
				return fmt.Errorf("adapt: document %q: %w", doc.ID(), err)
			}
			doc.AddResource(res)
			ref.Bind(res, "../resources/%s")
		case book.InternalReference:
			uri := ref.URI()
			if strings.HasPrefix(uri, "#") {
				continue
			}
			if _, _, ok := routes.CutContents(uri); ok {
				continue
			}
			if name, ok := strings.CutPrefix(uri, "../resources/"); ok {
				if res := resourceByFilename(doc, name); res != nil {
					ref.Bind(res, "../resources/%s")
				}
				continue
			}
			if res := resourceByFilename(doc, uri); res != nil {
				ref.Bind(res, "../resources/%s")
				continue
			}
			base, frag, _ := strings.Cut(uri, "#")
			if target, ok := byID[stem(base)]; ok && target != doc {
				if frag != "" {
					ref.SetURI(routes.Default().ContentsFragment(target.IdentHash(), frag))
				} else {
					ref.SetURI(routes.Default().Contents(target.IdentHash()))
				}
			}
		}
	}
	return nil
}

func resourceByFilename(doc *book.Document, name string) *book.Resource {
	for _, res := range doc.Resources() {
		if res.Filename() == name {
			return res
		}
	}
	return nil
}

// resourceFromDataURI decodes a data: URI into a content-hash named
// resource.
func resourceFromDataURI(uri string) (*book.Resource, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URI: %q", uri)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI: %q", uri)
	}

	mediaType := meta
	base64Encoded := false
	if m, enc, found := strings.Cut(meta, ";"); found {
		mediaType = m
		base64Encoded = enc == "base64"
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}

	var data []byte
	if base64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data URI payload: %w", err)
		}
		data = decoded
	} else {
		unescaped, err := url.QueryUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data URI payload: %w", err)
		}
		data = []byte(unescaped)
	}

	ext, err := render.ExtensionForMediaType(mediaType)
	if err != nil {
		return nil, err
	}
	return book.NewDigestResource(bytes.NewReader(data), mediaType, ext)
}
