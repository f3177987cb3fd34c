package book

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses document content into a DOM fragment. The content is
// read in body context, so an explicit <body> wrapper in the input is
// absorbed rather than nested. The returned node is a synthetic container
// whose children are the content nodes.
func ParseFragment(content []byte) (*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(content), context)
	if err != nil {
		return nil, fmt.Errorf("book: parse content fragment: %w", err)
	}
	container := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// SerializeFragment writes the children of a container node as XHTML,
// leaving the container itself out.
func SerializeFragment(container *html.Node) []byte {
	var buf bytes.Buffer
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		writeXHTML(&buf, c)
	}
	return buf.Bytes()
}

// SerializeNode writes a single node, tags included, as XHTML.
func SerializeNode(n *html.Node) []byte {
	var buf bytes.Buffer
	writeXHTML(&buf, n)
	return buf.Bytes()
}
