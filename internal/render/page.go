package render

import (
	"bytes"
	"fmt"

	"github.com/goliatone/go-epub/book"
)

type pageData struct {
	Title      string
	Meta       metadataData
	IsBinder   bool
	Nav        []*navEntry
	IsPointer  bool
	PointerURL string
	Content    string
	Resources  []string
}

type metadataData struct {
	Title            string
	ArchiveValue     string
	IsPointer        bool
	Translucent      bool
	Created          string
	Revised          string
	Language         string
	Summary          string
	LicenseURL       string
	LicenseText      string
	Subjects         []string
	Keywords         []string
	Authors          []book.Actor
	Editors          []book.Actor
	Illustrators     []book.Actor
	Translators      []book.Actor
	Publishers       []book.Actor
	CopyrightHolders []book.Actor
	DerivedFromURI   string
	DerivedFromTitle string
	PrintStyle       string
}

type navEntry struct {
	Title    string
	Href     string
	Contents []*navEntry
}

// Page renders a complete XHTML page for any book model: content pages for
// documents, navigation documents for binders, and stub pages for pointers.
func Page(node book.Node) ([]byte, error) {
	data, err := pageDataFor(node)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "page", data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pageDataFor(node book.Node) (*pageData, error) {
	md := node.Metadata()
	data := &pageData{
		Title: md.Title,
		Meta:  metadataDataFor(md),
	}
	switch n := node.(type) {
	case *book.Binder:
		data.IsBinder = true
		data.Nav = navEntries(&n.TranslucentBinder)
		data.Resources = resourceIDs(n.Resources())
	case *book.TranslucentBinder:
		data.IsBinder = true
		data.Meta.Translucent = true
		data.Nav = navEntries(n)
		data.Resources = resourceIDs(n.Resources())
	case *book.DocumentPointer:
		data.IsPointer = true
		data.Meta.IsPointer = true
		data.PointerURL = md.URL
	case *book.CompositeDocument:
		data.Content = string(n.Content())
		data.Resources = resourceIDs(n.Resources())
	case *book.Document:
		data.Content = string(n.Content())
		data.Resources = resourceIDs(n.Resources())
	default:
		return nil, fmt.Errorf("render: cannot build a page for %T", node)
	}
	return data, nil
}

func metadataDataFor(md *book.Metadata) metadataData {
	return metadataData{
		Title:            md.Title,
		ArchiveValue:     md.ArchiveURI,
		Created:          md.Created,
		Revised:          md.Revised,
		Language:         md.Language,
		Summary:          md.Summary,
		LicenseURL:       md.LicenseURL,
		LicenseText:      md.LicenseText,
		Subjects:         md.Subjects,
		Keywords:         md.Keywords,
		Authors:          md.Authors,
		Editors:          md.Editors,
		Illustrators:     md.Illustrators,
		Translators:      md.Translators,
		Publishers:       md.Publishers,
		CopyrightHolders: md.CopyrightHolders,
		DerivedFromURI:   md.DerivedFromURI,
		DerivedFromTitle: md.DerivedFromTitle,
		PrintStyle:       md.PrintStyle,
	}
}

func navEntries(binder *book.TranslucentBinder) []*navEntry {
	return navEntriesWith(binder, func(child book.Node) string {
		return ContentFilename(child.IdentHash())
	})
}

func navEntriesWith(binder *book.TranslucentBinder, href func(book.Node) string) []*navEntry {
	entries := make([]*navEntry, 0, binder.Len())
	for _, child := range binder.Nodes() {
		entry := &navEntry{Title: binder.TitleForNode(child)}
		switch sub := child.(type) {
		case *book.Binder:
			entry.Contents = navEntriesWith(&sub.TranslucentBinder, href)
		case *book.TranslucentBinder:
			entry.Contents = navEntriesWith(sub, href)
		default:
			entry.Href = href(child)
		}
		entries = append(entries, entry)
	}
	return entries
}

func resourceIDs(resources []*book.Resource) []string {
	ids := make([]string, 0, len(resources))
	for _, res := range resources {
		ids = append(ids, res.ID())
	}
	return ids
}
