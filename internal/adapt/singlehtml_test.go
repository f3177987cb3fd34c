package adapt

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-epub/book"
	"github.com/goliatone/go-epub/internal/render"
)

func dessertsBinder(t *testing.T) *book.Binder {
	t.Helper()
	newDoc := func(id, title, content string) *book.Document {
		doc, err := book.NewDocument(id, []byte(content), book.Metadata{
			Title:      title,
			LicenseURL: "http://creativecommons.org/licenses/by/4.0/",
			Summary:    "<p>" + title + "</p>",
		})
		if err != nil {
			t.Fatalf("NewDocument(%s): %v", id, err)
		}
		return doc
	}

	apple := newDoc("apple", "Apple",
		`<p>pommes</p><img src="../resources/1x1.jpg"/><ul id="list"><li>apple</li></ul>`+
			`<a href="#list">list</a><a href="/contents/lemon#yellow">lemon</a>`)
	lemon := newDoc("lemon", "Lemon",
		`<p id="yellow">yellow</p><a href="/contents/chocolate">chocolate</a>`)
	chocolate := newDoc("chocolate", "Chocolate", `<p id="coat">coat</p>`)

	citrus := book.NewTranslucentBinder(book.Metadata{Title: "Citrus"}, lemon)

	fruity := book.NewTranslucentBinder(book.Metadata{Title: "Fruity"}, apple, lemon, citrus)
	if err := fruity.SetTitleForNode(lemon, "レモン"); err != nil {
		t.Fatalf("SetTitleForNode: %v", err)
	}
	if err := fruity.SetTitleForNode(citrus, "citrus"); err != nil {
		t.Fatalf("SetTitleForNode: %v", err)
	}

	binder := book.NewBinder("Desserts", book.Metadata{
		Title:      "Desserts",
		LicenseURL: "http://creativecommons.org/licenses/by/4.0/",
		Summary:    "<p>sucré</p>",
	}, fruity, chocolate)

	cover, err := book.NewResource("cover.png", strings.NewReader("\x89PNG"), "image/png", "cover.png")
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	binder.SetResources(cover)
	return binder
}

func TestAdaptSingleHTMLRoundTrip(t *testing.T) {
	source := dessertsBinder(t)
	page, err := render.SingleHTML(source)
	if err != nil {
		t.Fatalf("SingleHTML: %v", err)
	}

	adapted, err := AdaptSingleHTML(page)
	if err != nil {
		t.Fatalf("AdaptSingleHTML: %v", err)
	}

	if adapted.ID() != "Desserts" {
		t.Errorf("binder id = %q, want Desserts", adapted.ID())
	}
	if got := adapted.Metadata().Summary; got != "<p>sucré</p>" {
		t.Errorf("binder summary = %q", got)
	}

	wantTree := book.ModelToTree(source)
	gotTree := book.ModelToTree(adapted)
	if !reflect.DeepEqual(gotTree, wantTree) {
		t.Errorf("tree mismatch\ngot:  %#v\nwant: %#v", gotTree, wantTree)
	}

	wantDocs := book.FlattenToDocuments(source)
	gotDocs := book.FlattenToDocuments(adapted)
	if len(gotDocs) != len(wantDocs) {
		t.Fatalf("flattened to %d documents, want %d", len(gotDocs), len(wantDocs))
	}
	for i := range wantDocs {
		if gotDocs[i].ID() != wantDocs[i].ID() {
			t.Errorf("document %d id = %q, want %q", i, gotDocs[i].ID(), wantDocs[i].ID())
		}
		got, want := string(gotDocs[i].Content()), string(wantDocs[i].Content())
		if got != want {
			t.Errorf("document %s content\ngot:  %s\nwant: %s", wantDocs[i].ID(), got, want)
		}
		if strings.Contains(got, "auto_") {
			t.Errorf("document %s kept namespaced ids: %s", wantDocs[i].ID(), got)
		}
	}

	apple := string(gotDocs[0].Content())
	for _, want := range []string{
		`<a href="#list">list</a>`,
		`<a href="/contents/lemon#yellow">lemon</a>`,
		`<img src="../resources/1x1.jpg"/>`,
	} {
		if !strings.Contains(apple, want) {
			t.Errorf("restored page is missing %q:\n%s", want, apple)
		}
	}
	if lemon := string(gotDocs[1].Content()); !strings.Contains(lemon, `<a href="/contents/chocolate">`) {
		t.Errorf("cross-page link was not restored:\n%s", lemon)
	}
}

func TestAdaptSingleHTMLCompositeAndPointerPages(t *testing.T) {
	doc, err := book.NewDocument("page", []byte("<p>body</p>"), book.Metadata{Title: "Page"})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	notes, err := book.NewCompositeDocument("notes", []byte("<p>generated</p>"),
		book.Metadata{Title: "Notes"})
	if err != nil {
		t.Fatalf("NewCompositeDocument: %v", err)
	}
	pointer := book.NewDocumentPointer("ptr@1", book.Metadata{
		Title: "Pointer",
		URL:   "http://cnx.org/contents/ptr@1",
	})
	binder := book.NewBinder("book", book.Metadata{Title: "Book"}, doc, notes, pointer)

	page, err := render.SingleHTML(binder)
	if err != nil {
		t.Fatalf("SingleHTML: %v", err)
	}
	adapted, err := AdaptSingleHTML(page)
	if err != nil {
		t.Fatalf("AdaptSingleHTML: %v", err)
	}

	nodes := adapted.Nodes()
	if len(nodes) != 3 {
		t.Fatalf("adapted %d nodes, want 3", len(nodes))
	}
	if _, ok := nodes[0].(*book.Document); !ok {
		t.Errorf("node 0 is %T, want *book.Document", nodes[0])
	}
	composite, ok := nodes[1].(*book.CompositeDocument)
	if !ok {
		t.Fatalf("node 1 is %T, want *book.CompositeDocument", nodes[1])
	}
	if got := string(composite.Content()); got != "<p>generated</p>" {
		t.Errorf("composite content = %q", got)
	}
	ptr, ok := nodes[2].(*book.DocumentPointer)
	if !ok {
		t.Fatalf("node 2 is %T, want *book.DocumentPointer", nodes[2])
	}
	if ptr.IdentHash() != "ptr@1" {
		t.Errorf("pointer ident = %q, want ptr@1", ptr.IdentHash())
	}
	if got := ptr.Metadata().URL; got != "http://cnx.org/contents/ptr@1" {
		t.Errorf("pointer url = %q", got)
	}
}

func singlePage(nav, body string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<html xmlns="http://www.w3.org/1999/xhtml"><head><title>Book</title></head>` +
		`<body itemscope="itemscope" itemtype="http://schema.org/Book">` +
		`<div data-type="metadata" style="display: none;">` +
		`<h1 data-type="document-title" itemprop="name">Book</h1></div>` +
		`<nav id="toc"><ol>` + nav + `</ol></nav>` +
		body + `</body></html>`)
}

func pageDiv(id, title, content string) string {
	return `<div data-type="page" id="` + id + `">` +
		`<div data-type="metadata"><h1 data-type="document-title">` + title + `</h1></div>` +
		content + `</div>`
}

func TestAdaptSingleHTMLBookIdentity(t *testing.T) {
	page := singlePage(`<li><a href="#one">One</a></li>`, pageDiv("one", "One", "<p>uno</p>"))

	binder, err := AdaptSingleHTML(page)
	if err != nil {
		t.Fatalf("AdaptSingleHTML: %v", err)
	}
	if binder.ID() != "book" {
		t.Errorf("binder id = %q, want book fallback", binder.ID())
	}
	if got := binder.Metadata().Title; got != "Book" {
		t.Errorf("binder title = %q", got)
	}
	docs := book.FlattenToDocuments(binder)
	if len(docs) != 1 {
		t.Fatalf("flattened to %d documents, want 1", len(docs))
	}
	if docs[0].ID() != "one" {
		t.Errorf("document id = %q, want one", docs[0].ID())
	}
	if got := string(docs[0].Content()); got != "<p>uno</p>" {
		t.Errorf("document content = %q", got)
	}
}

func TestAdaptSingleHTMLNavigationMismatch(t *testing.T) {
	chapter := `<div data-type="chapter"><h1 data-type="document-title">Part</h1>` +
		pageDiv("one", "One", "<p>uno</p>") + `</div>`

	cases := []struct {
		name   string
		nav    string
		body   string
		reason string
	}{
		{
			name:   "navigation lists missing pages",
			nav:    `<li><a href="#one">One</a></li><li><a href="#two">Two</a></li>`,
			body:   pageDiv("one", "One", "<p>uno</p>"),
			reason: "sections the document does not have",
		},
		{
			name:   "document has extra pages",
			nav:    `<li><a href="#one">One</a></li>`,
			body:   pageDiv("one", "One", "<p>uno</p>") + pageDiv("two", "Two", "<p>dos</p>"),
			reason: "more pages than the navigation",
		},
		{
			name:   "section where navigation expects a page",
			nav:    `<li><a href="#one">One</a></li>`,
			body:   chapter,
			reason: "does not reconcile",
		},
		{
			name:   "page where navigation expects a section",
			nav:    `<li><span>Part</span><ol><li><a href="#one">One</a></li></ol></li>`,
			body:   pageDiv("one", "One", "<p>uno</p>"),
			reason: "does not reconcile",
		},
		{
			name: "section navigation lists missing pages",
			nav: `<li><span>Part</span><ol><li><a href="#one">One</a></li>` +
				`<li><a href="#two">Two</a></li></ol></li>`,
			body:   chapter,
			reason: "lists pages the document does not have",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AdaptSingleHTML(singlePage(tc.nav, tc.body))
			var adaptErr *AdaptationError
			if !errors.As(err, &adaptErr) {
				t.Fatalf("err = %v, want an adaptation error", err)
			}
			if !strings.Contains(adaptErr.Reason, tc.reason) {
				t.Errorf("reason = %q, want it to mention %q", adaptErr.Reason, tc.reason)
			}
		})
	}
}

func TestAdaptSingleHTMLRequiresBookMetadata(t *testing.T) {
	page := []byte(`<html><body><nav id="toc"><ol></ol></nav><p>stray</p></body></html>`)

	_, err := AdaptSingleHTML(page)
	var adaptErr *AdaptationError
	if !errors.As(err, &adaptErr) {
		t.Fatalf("err = %v, want an adaptation error", err)
	}
	if !strings.Contains(adaptErr.Reason, "no book metadata") {
		t.Errorf("reason = %q", adaptErr.Reason)
	}
}
