// Package htmldoc reads the HTML vocabulary used by published content:
// metadata blocks tagged with data-type attributes, navigation documents,
// and document pointer markers. It turns markup into book model values and
// never writes any.
package htmldoc

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseDocument parses a complete HTML document.
func ParseDocument(r io.Reader) (*html.Node, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parse document: %w", err)
	}
	return root, nil
}

// Body returns the body element under root, or nil when there is none.
func Body(root *html.Node) *html.Node {
	if root.Type == html.ElementNode && root.DataAtom == atom.Body {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if body := Body(c); body != nil {
			return body
		}
	}
	return nil
}

func firstText(doc *goquery.Document, selector string) string {
	return doc.Find(selector).First().Text()
}

func firstAttr(doc *goquery.Document, selector, attr string) string {
	v, _ := doc.Find(selector).First().Attr(attr)
	return v
}

func allText(doc *goquery.Document, selector string) []string {
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}
