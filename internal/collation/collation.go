// Package collation runs a book through its collation ruleset: the binder
// renders onto a single page, the baker rearranges that page, and the result
// reconstitutes into a new binder whose generated pages appear as composite
// documents.
package collation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/goliatone/go-epub/book"
	"github.com/goliatone/go-epub/internal/adapt"
	"github.com/goliatone/go-epub/internal/bake"
	"github.com/goliatone/go-epub/internal/htmldoc"
	"github.com/goliatone/go-epub/internal/logging"
	"github.com/goliatone/go-epub/internal/render"
	"github.com/goliatone/go-epub/internal/routes"
	"github.com/goliatone/go-epub/pkg/interfaces"
)

// RulesetName is the resource filename Collate looks for on a binder.
const RulesetName = "ruleset.css"

type config struct {
	baker   Baker
	ruleset []byte
	log     interfaces.Logger
	space   *routes.Space
}

// Option configures a collation run.
type Option func(*config)

// WithBaker replaces the default CSS ruleset engine.
func WithBaker(baker Baker) Option {
	return func(c *config) {
		if baker != nil {
			c.baker = baker
		}
	}
}

// WithRuleset bakes with the given CSS instead of the binder's ruleset.css
// resource.
func WithRuleset(ruleset []byte) Option {
	return func(c *config) { c.ruleset = ruleset }
}

// WithLogger routes collation diagnostics through the given logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithRouteSpace renders and reconstitutes intermediate page links against the
// given route space instead of the default /contents and /resources layout.
func WithRouteSpace(space *routes.Space) Option {
	return func(c *config) {
		if space != nil {
			c.space = space
		}
	}
}

func buildConfig(opts []Option) config {
	cfg := config{log: logging.NoOp(), space: routes.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.baker == nil {
		cfg.baker = NewRulesetBaker(bake.WithLogger(cfg.log))
	}
	return cfg
}

// Collate renders the binder onto a single page, bakes it, and reconstitutes
// the result. A binder with no ruleset (neither the WithRuleset option nor a
// ruleset.css resource) comes back unchanged. The input binder's resources
// carry over to the collated binder so page references keep resolving.
func Collate(ctx context.Context, binder *book.Binder, opts ...Option) (*book.Binder, error) {
	cfg := buildConfig(opts)

	ruleset := cfg.ruleset
	if ruleset == nil {
		if res := rulesetResource(binder); res != nil {
			ruleset = res.Data()
		}
	}
	if ruleset == nil {
		cfg.log.Debug("no collation ruleset, book unchanged", "book", binder.ID())
		return binder, nil
	}

	page, err := render.SingleHTML(binder, render.WithRouteSpace(cfg.space))
	if err != nil {
		return nil, fmt.Errorf("collation: render %q: %w", binder.ID(), err)
	}
	root, err := htmldoc.ParseDocument(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("collation: parse %q: %w", binder.ID(), err)
	}
	doc := goquery.NewDocumentFromNode(root)

	if err := cfg.baker.Bake(ctx, doc, ruleset); err != nil {
		return nil, fmt.Errorf("collation: bake %q: %w", binder.ID(), err)
	}

	syncNavigation(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("collation: serialize %q: %w", binder.ID(), err)
	}
	collated, err := adapt.AdaptSingleHTML(buf.Bytes(), adapt.WithRouteSpace(cfg.space))
	if err != nil {
		return nil, fmt.Errorf("collation: reconstitute %q: %w", binder.ID(), err)
	}
	collated.SetResources(binder.Resources()...)

	cfg.log.Info("collated book",
		"book", binder.ID(), "documents", len(book.FlattenToDocuments(collated)))
	return collated, nil
}

// Reconstitute rebuilds a binder from a collated single-page book.
func Reconstitute(r io.Reader) (*book.Binder, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("collation: read single page: %w", err)
	}
	return adapt.AdaptSingleHTML(data)
}

func rulesetResource(binder *book.Binder) *book.Resource {
	for _, res := range binder.Resources() {
		if res.Filename() == RulesetName {
			return res
		}
	}
	return nil
}

// syncNavigation rebuilds the nav list from the baked body so pages the
// ruleset grew or removed reconcile on reconstitution. Titles of surviving
// pages come from the old list, which is where binder title overrides live;
// section titles sit in the body itself.
func syncNavigation(doc *goquery.Document) {
	nav := doc.Find("nav").First()
	if nav.Length() == 0 {
		return
	}

	titles := map[string][]string{}
	nav.Find("a").Each(func(_ int, a *goquery.Selection) {
		if id, ok := strings.CutPrefix(a.AttrOr("href", ""), "#"); ok {
			titles[id] = append(titles[id], a.Text())
		}
	})

	nav.SetHtml(listMarkup(doc.Find("body").First(), titles))
}

func listMarkup(container *goquery.Selection, titles map[string][]string) string {
	var b strings.Builder
	b.WriteString("<ol>")
	container.Children().Each(func(_ int, child *goquery.Selection) {
		if !child.Is("div") {
			return
		}
		switch child.AttrOr("data-type", "") {
		case "unit", "chapter":
			title := child.ChildrenFiltered(`h1[data-type="document-title"]`).First().Text()
			b.WriteString("<li><span>" + html.EscapeString(title) + "</span>")
			b.WriteString(listMarkup(child, titles))
			b.WriteString("</li>")
		case "page", "composite-page":
			id := child.AttrOr("id", "")
			title := popTitle(titles, id)
			if title == "" {
				title = child.Find(`[data-type="metadata"] [data-type="document-title"]`).First().Text()
			}
			if title == "" {
				title = id
			}
			b.WriteString(`<li><a href="#` + html.EscapeString(id) + `">` +
				html.EscapeString(title) + "</a></li>")
		}
	})
	b.WriteString("</ol>")
	return b.String()
}

func popTitle(titles map[string][]string, id string) string {
	queue := titles[id]
	if len(queue) == 0 {
		return ""
	}
	titles[id] = queue[1:]
	return queue[0]
}
