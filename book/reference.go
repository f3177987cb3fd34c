package book

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ReferenceKind classifies where a reference points.
type ReferenceKind string

const (
	// ExternalReference points at another host.
	ExternalReference ReferenceKind = "external"
	// InternalReference points at content or resources within the book.
	InternalReference ReferenceKind = "internal"
	// InlineReference embeds its payload in a data URI.
	InlineReference ReferenceKind = "inline"
)

// referenceAttrs lists the attributes that carry URIs, in lookup order.
var referenceAttrs = []string{"href", "src", "data"}

// Reference is a live handle on a URI-bearing attribute inside document
// content. Updating the reference updates the DOM it was parsed from.
type Reference struct {
	node     *html.Node
	attr     string
	kind     ReferenceKind
	bound    *Resource
	template string
}

// Kind reports the reference classification at parse time.
func (r *Reference) Kind() ReferenceKind { return r.kind }

// Node returns the element the reference lives on.
func (r *Reference) Node() *html.Node { return r.node }

// URI returns the current attribute value.
func (r *Reference) URI() string {
	for _, a := range r.node.Attr {
		if a.Namespace == "" && a.Key == r.attr {
			return a.Val
		}
	}
	return ""
}

// SetURI rewrites the attribute value in place.
func (r *Reference) SetURI(uri string) {
	for i, a := range r.node.Attr {
		if a.Namespace == "" && a.Key == r.attr {
			r.node.Attr[i].Val = uri
			return
		}
	}
	r.node.Attr = append(r.node.Attr, html.Attribute{Key: r.attr, Val: uri})
}

// Bind ties the reference to a resource and rewrites the URI from the
// template, which receives the resource filename. A bound reference keeps
// tracking the resource: rebinding or re-rendering uses the same template.
func (r *Reference) Bind(res *Resource, template string) {
	r.bound = res
	r.template = template
	r.SetURI(fmt.Sprintf(template, res.Filename()))
}

// Bound returns the resource the reference is tied to, if any.
func (r *Reference) Bound() *Resource { return r.bound }

// collectReferences walks content in document order and wraps every
// URI-bearing attribute in a Reference.
func collectReferences(root *html.Node) []*Reference {
	doc := goquery.NewDocumentFromNode(root)
	var refs []*Reference
	doc.Find("[href], [src], object[data]").Each(func(_ int, s *goquery.Selection) {
		n := s.Nodes[0]
		for _, attr := range referenceAttrs {
			uri, ok := lookupAttr(n, attr)
			if !ok {
				continue
			}
			refs = append(refs, &Reference{
				node: n,
				attr: attr,
				kind: classifyReference(uri),
			})
			break
		}
	})
	return refs
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func classifyReference(uri string) ReferenceKind {
	if strings.HasPrefix(uri, "data:") {
		return InlineReference
	}
	u, err := url.Parse(uri)
	if err != nil {
		return InternalReference
	}
	if u.Scheme != "" || u.Host != "" {
		return ExternalReference
	}
	return InternalReference
}
