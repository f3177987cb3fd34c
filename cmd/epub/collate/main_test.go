package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-epub/book"
	"github.com/goliatone/go-epub/cmd/epub/internal/bootstrap"
	"github.com/goliatone/go-epub/internal/adapt"
	"github.com/goliatone/go-epub/internal/collation"
	"github.com/goliatone/go-epub/internal/library"
	"github.com/goliatone/go-epub/internal/logging"
	"github.com/goliatone/go-epub/internal/packaging"
)

type stubArchive struct {
	binder *book.Binder
}

var _ library.Service = (*stubArchive)(nil)

func (s *stubArchive) Store(context.Context, *book.Binder) (*library.Book, error) {
	return nil, nil
}

func (s *stubArchive) Load(context.Context, string) (*book.Binder, error) {
	return s.binder, nil
}

func (s *stubArchive) List(context.Context) ([]*library.Book, error) { return nil, nil }

func (s *stubArchive) Delete(context.Context, string) error { return nil }

func notesBinder(t *testing.T) *book.Binder {
	t.Helper()

	metadata := book.Metadata{
		Title:       "Uno",
		Created:     "2013/03/19 15:01:16 -0500",
		Revised:     "2013/06/18 15:22:55 -0500",
		LicenseText: "CC-By 4.0",
		LicenseURL:  "http://creativecommons.org/licenses/by/4.0/",
		Authors:     []book.Actor{{Name: "Marie", Type: "cnx-id", ID: "marie"}},
	}
	doc, err := book.NewDocument("uno", []byte(`<p>uno</p><aside data-type="note">n1</aside>`), metadata)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	return book.NewBinder("notes", book.Metadata{Title: "Notes", Version: "1"}, doc)
}

const notesRuleset = `
aside[data-type="note"] { move-to: notes; }
body::after {
  data-type: "composite-page";
  id: "notes";
  content: pending(notes);
}
`

func stubBuilder(archive library.Service) func(bootstrap.Options) (*bootstrap.Module, error) {
	return func(bootstrap.Options) (*bootstrap.Module, error) {
		return &bootstrap.Module{
			Library: archive,
			Baker:   collation.NewRulesetBaker(),
			Logger:  logging.NoOp(),
		}, nil
	}
}

func TestRunCollateStoredBookWithRulesetOverride(t *testing.T) {
	original := moduleBuilder
	defer func() { moduleBuilder = original }()
	moduleBuilder = stubBuilder(&stubArchive{binder: notesBinder(t)})

	rulesetPath := filepath.Join(t.TempDir(), "ruleset.css")
	if err := os.WriteFile(rulesetPath, []byte(notesRuleset), 0o644); err != nil {
		t.Fatalf("write ruleset: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "collated.epub")
	var out bytes.Buffer
	err := runCollate([]string{
		"-book", "notes@1",
		"-ruleset", rulesetPath,
		"-out", dest,
	}, &out)
	if err != nil {
		t.Fatalf("runCollate: %v", err)
	}

	reopened, err := packaging.Open(dest)
	if err != nil {
		t.Fatalf("open collated epub: %v", err)
	}
	node, err := adapt.AdaptPackage(reopened.Packages()[0], adapt.WithLenientMetadata())
	if err != nil {
		t.Fatalf("AdaptPackage: %v", err)
	}
	binder, ok := node.(*book.Binder)
	if !ok {
		t.Fatalf("adapted to %T, want *book.Binder", node)
	}
	if got := binder.Len(); got != 2 {
		t.Fatalf("expected page plus composite after collation, got %d nodes", got)
	}
}

func TestRunCollateEPUBFile(t *testing.T) {
	original := moduleBuilder
	defer func() { moduleBuilder = original }()
	moduleBuilder = stubBuilder(nil)

	pkg, err := adapt.BinderToPackage(notesBinder(t))
	if err != nil {
		t.Fatalf("BinderToPackage: %v", err)
	}
	src := filepath.Join(t.TempDir(), "notes.epub")
	f, err := os.Create(src)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	if err := packaging.WriteEPUB(f, packaging.NewEPUB(pkg)); err != nil {
		t.Fatalf("WriteEPUB: %v", err)
	}
	f.Close()

	rulesetPath := filepath.Join(t.TempDir(), "ruleset.css")
	if err := os.WriteFile(rulesetPath, []byte(notesRuleset), 0o644); err != nil {
		t.Fatalf("write ruleset: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "collated.epub")
	var out bytes.Buffer
	err = runCollate([]string{
		"-in", src,
		"-ruleset", rulesetPath,
		"-out", dest,
	}, &out)
	if err != nil {
		t.Fatalf("runCollate: %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected collated epub: %v", err)
	}
}

func TestRunCollateRequiresExactlyOneSource(t *testing.T) {
	var out bytes.Buffer
	if err := runCollate([]string{"-out", "x.epub"}, &out); err == nil {
		t.Fatal("expected error when neither -in nor -book is given")
	}
}
