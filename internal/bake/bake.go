package bake

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/goliatone/go-epub/internal/logging"
	"github.com/goliatone/go-epub/pkg/interfaces"
)

// Engine applies parsed rulesets to a document in two passes. The collect
// pass runs every rule carrying move-to or copy-to declarations and fills
// the buckets. The materialize pass runs the remaining rules in order
// against the live tree, growing ::before/::after containers and flushing
// pending buckets in document order.
type Engine struct {
	log interfaces.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes the engine's diagnostics through the given logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.log = logger
		}
	}
}

// New returns a ruleset engine.
func New(opts ...Option) *Engine {
	e := &Engine{log: logging.NoOp()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bake parses the ruleset and applies it to doc in place.
func (e *Engine) Bake(ctx context.Context, doc *goquery.Document, ruleset []byte) error {
	rules, err := ParseRuleset(ruleset)
	if err != nil {
		return err
	}

	buckets := map[string][]*html.Node{}

	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return err
		}
		if rule.Pseudo != "" || !rule.collects() {
			continue
		}
		e.collect(rule, doc, buckets)
	}

	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return err
		}
		if rule.Pseudo == "" && rule.collects() {
			continue
		}
		e.materialize(rule, doc, buckets)
	}
	return nil
}

// collect applies a bucket-filling rule: attribute declarations touch the
// matched elements first, then move-to detaches them (copy-to clones them)
// into their bucket in document order.
func (e *Engine) collect(rule *Rule, doc *goquery.Document, buckets map[string][]*html.Node) {
	nodes := doc.FindMatcher(rule.matcher).Nodes
	for _, decl := range rule.Decls {
		switch decl.Property {
		case propMoveTo:
			for _, n := range nodes {
				detach(n)
				buckets[decl.Value] = append(buckets[decl.Value], n)
			}
		case propCopyTo:
			for _, n := range nodes {
				buckets[decl.Value] = append(buckets[decl.Value], cloneNode(n))
			}
		case propClass, propDataType, propID:
			for _, n := range nodes {
				setAttr(n, decl.Property, cssUnquote(decl.Value))
			}
		default:
			e.log.Debug("ignoring declaration in collect rule",
				"property", decl.Property, "selector", rule.Selector)
		}
	}
}

// materialize applies a mutation rule, first growing the pseudo container
// on each matched element when the rule names one.
func (e *Engine) materialize(rule *Rule, doc *goquery.Document, buckets map[string][]*html.Node) {
	targets := doc.FindMatcher(rule.matcher).Nodes
	if rule.Pseudo != "" {
		containers := make([]*html.Node, 0, len(targets))
		for _, n := range targets {
			c := &html.Node{Type: html.ElementNode, Data: "div"}
			if rule.Pseudo == "before" {
				n.InsertBefore(c, n.FirstChild)
			} else {
				n.AppendChild(c)
			}
			containers = append(containers, c)
		}
		targets = containers
	}

	for _, decl := range rule.Decls {
		switch decl.Property {
		case propClass, propDataType, propID:
			for _, n := range targets {
				setAttr(n, decl.Property, cssUnquote(decl.Value))
			}
		case propContent:
			e.applyContent(decl, rule, targets, buckets)
		default:
			e.log.Debug("ignoring declaration",
				"property", decl.Property, "selector", rule.Selector)
		}
	}
}

func (e *Engine) applyContent(decl Decl, rule *Rule, targets []*html.Node, buckets map[string][]*html.Node) {
	if bucket, ok := pendingBucket(decl.Value); ok {
		for _, n := range targets {
			pending := buckets[bucket]
			if len(pending) == 0 {
				e.log.Debug("pending bucket is empty",
					"bucket", bucket, "selector", rule.Selector)
				continue
			}
			delete(buckets, bucket)
			replaceChildren(n, pending)
		}
		return
	}
	text := cssUnquote(decl.Value)
	if text == decl.Value && decl.Value != "" {
		e.log.Debug("ignoring unsupported content value",
			"value", decl.Value, "selector", rule.Selector)
		return
	}
	for _, n := range targets {
		var children []*html.Node
		if text != "" {
			children = []*html.Node{{Type: html.TextNode, Data: text}}
		}
		replaceChildren(n, children)
	}
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func cloneNode(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneNode(c))
	}
	return clone
}

func replaceChildren(n *html.Node, children []*html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	for _, c := range children {
		detach(c)
		n.AppendChild(c)
	}
}

func setAttr(n *html.Node, key, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}
