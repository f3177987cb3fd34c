package epub_test

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	epub "github.com/goliatone/go-epub"
	"github.com/goliatone/go-epub/book"
	"github.com/goliatone/go-epub/internal/di"
)

func moduleForTest(t *testing.T, mutate func(*epub.Config), opts ...di.Option) *epub.Module {
	t.Helper()

	cfg := epub.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := epub.New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func demoBinder(t *testing.T) *epub.Binder {
	t.Helper()

	intro, err := book.NewDocument("intro", []byte("<p>Opening.</p>"), epub.Metadata{
		Title:       "Intro",
		Created:     "2013/03/19 15:01:16 -0500",
		Revised:     "2013/06/18 15:22:55 -0500",
		LicenseText: "CC-By 4.0",
		LicenseURL:  "http://creativecommons.org/licenses/by/4.0/",
		Authors:     []epub.Actor{{Name: "Marie", Type: "cnx-id", ID: "marie"}},
	})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	outro, err := book.NewDocument("outro", []byte("<p>Closing.</p>"), epub.Metadata{
		Title:       "Outro",
		Created:     "2013/03/19 15:01:16 -0500",
		Revised:     "2013/06/18 15:22:55 -0500",
		LicenseText: "CC-By 4.0",
		LicenseURL:  "http://creativecommons.org/licenses/by/4.0/",
		Authors:     []epub.Actor{{Name: "Marie", Type: "cnx-id", ID: "marie"}},
	})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}

	return book.NewBinder("demo", epub.Metadata{Title: "Demo Book", Version: "3"}, intro, outro)
}

func TestModuleStoreLoadExportRoundTrip(t *testing.T) {
	m := moduleForTest(t, nil)

	binder := demoBinder(t)
	stored, err := m.Library().Store(context.Background(), binder)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if stored.IdentHash != "demo@3" {
		t.Fatalf("stored ident = %q, want demo@3", stored.IdentHash)
	}

	loaded, err := m.Library().Load(context.Background(), "demo@3")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var buf bytes.Buffer
	if err := epub.MakeEPUB(&buf, loaded); err != nil {
		t.Fatalf("MakeEPUB: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected EPUB payload")
	}

	want := epub.ModelToTree(binder)
	got := epub.ModelToTree(loaded)
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("loaded tree mismatch\nwant %#v\ngot  %#v", want, got)
	}
}

func TestModuleIngestsMarkdownSources(t *testing.T) {
	fsys := fstest.MapFS{
		"guide/index.md": {Data: []byte(
			"---\nid: guide\nversion: \"1\"\ntitle: Guide\n---\n\nWelcome to the *guide*.\n")},
		"guide/apples.md": {Data: []byte("---\ntitle: Apples\n---\n\n# Apples\n")},
	}

	m := moduleForTest(t, func(cfg *epub.Config) {
		cfg.Features.Ingest = true
		cfg.Ingest.Enabled = true
	}, di.WithSourceFS(fsys))

	svc := m.Ingest()
	if svc == nil {
		t.Fatal("expected ingest service")
	}

	pages, err := svc.LoadBook(context.Background(), "guide")
	if err != nil {
		t.Fatalf("LoadBook: %v", err)
	}
	if pages.Len() != 2 {
		t.Fatalf("expected two pages, got %d", pages.Len())
	}

	docs := book.FlattenToDocuments(pages)
	if !strings.Contains(string(docs[0].Content()), "<em>guide</em>") {
		t.Fatalf("index content not rendered: %s", docs[0].Content())
	}

	binder := book.NewBinder("guide", pages.Metadata().Clone(), pages.Nodes()...)
	if _, err := m.Library().Store(context.Background(), binder); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, err := m.Library().Load(context.Background(), "guide@1"); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestModuleCollatePassesBookThroughWithoutRuleset(t *testing.T) {
	m := moduleForTest(t, func(cfg *epub.Config) {
		cfg.Features.Collation = true
	})

	binder := demoBinder(t)
	collated, err := m.Collate(context.Background(), binder)
	if err != nil {
		t.Fatalf("Collate: %v", err)
	}
	if collated != binder {
		t.Fatal("expected binder unchanged without a ruleset")
	}
}

func TestModuleCollateBakesRuleset(t *testing.T) {
	m := moduleForTest(t, func(cfg *epub.Config) {
		cfg.Features.Collation = true
	})

	uno, err := book.NewDocument("uno", []byte(`<p>uno</p><aside data-type="note">n1</aside>`), epub.Metadata{Title: "Uno"})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	binder := book.NewBinder("notes", epub.Metadata{Title: "Notes"}, uno)

	ruleset, err := book.NewResource("ruleset.css", strings.NewReader(`
aside[data-type="note"] { move-to: notes; }
body::after {
  data-type: "composite-page";
  id: "notes";
  content: pending(notes);
}
`), "text/css", "ruleset.css")
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	binder.SetResources(ruleset)

	collated, err := m.Collate(context.Background(), binder)
	if err != nil {
		t.Fatalf("Collate: %v", err)
	}
	if collated == binder {
		t.Fatal("expected a reconstituted binder when a ruleset is present")
	}
	nodes := collated.Nodes()
	if len(nodes) != 2 {
		t.Fatalf("expected page plus composite, got %d nodes", len(nodes))
	}
	if _, ok := nodes[1].(*epub.CompositeDocument); !ok {
		t.Fatalf("expected composite page, got %T", nodes[1])
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := epub.DefaultConfig()
	cfg.Storage.Provider = "papyrus"

	if _, err := epub.New(cfg); err == nil {
		t.Fatal("expected error for unknown storage provider")
	}
}

func TestValidateTreeAcceptsModelTrees(t *testing.T) {
	tree := epub.ModelToTree(demoBinder(t))

	payload, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal tree: %v", err)
	}
	if err := epub.ValidateTree(payload); err != nil {
		t.Fatalf("ValidateTree: %v", err)
	}
}
