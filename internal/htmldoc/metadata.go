package htmldoc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/goliatone/go-epub/book"
)

// MissingMetadataError reports a required metadata key with no value in the
// parsed markup.
type MissingMetadataError struct {
	Key string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("htmldoc: a value for %q could not be found", e.Key)
}

// ParseMetadata reads document metadata out of the subtree rooted at root.
// Title, license URL, and summary are required; everything else is optional.
func ParseMetadata(root *html.Node) (book.Metadata, error) {
	md := ParseMetadataLenient(root)
	switch {
	case md.Title == "":
		return book.Metadata{}, &MissingMetadataError{Key: "title"}
	case md.LicenseURL == "":
		return book.Metadata{}, &MissingMetadataError{Key: "license_url"}
	case md.Summary == "":
		return book.Metadata{}, &MissingMetadataError{Key: "summary"}
	}
	return md, nil
}

// ParseMetadataLenient reads whatever metadata the subtree carries without
// enforcing required keys. Collated pages frequently omit license blocks.
func ParseMetadataLenient(root *html.Node) book.Metadata {
	doc := goquery.NewDocumentFromNode(root)

	var md book.Metadata
	md.Title = firstText(doc, `[data-type="document-title"], [data-type="title"]`)
	if desc := doc.Find(`[data-type="description"]`).First(); desc.Length() > 0 {
		md.Summary = string(book.SerializeFragment(desc.Nodes[0]))
	}
	md.Created = firstAttr(doc, `meta[itemprop="dateCreated"]`, "content")
	md.Revised = firstAttr(doc, `meta[itemprop="dateModified"]`, "content")
	md.Language = firstAttr(doc, `[data-type="language"]`, "content")
	md.Subjects = allText(doc, `[data-type="subject"]`)
	md.Keywords = allText(doc, `[data-type="keyword"]`)

	license := doc.Find(`[data-type="license"]`).First()
	md.LicenseURL, _ = license.Attr("href")
	md.LicenseText = license.Text()

	md.Authors = parseActors(doc, `[data-type="author"]`)
	md.Editors = parseActors(doc, `[data-type="editor"]`)
	md.Illustrators = parseActors(doc, `[data-type="illustrator"]`)
	md.Translators = parseActors(doc, `[data-type="translator"]`)
	md.Publishers = parseActors(doc, `[data-type="publisher"]`)
	md.CopyrightHolders = parseActors(doc,
		`[data-type="copyright-holder"], [data-type="copyright-holders"]`)

	md.ArchiveURI = firstAttr(doc, `[data-type="cnx-archive-uri"]`, "data-value")
	if _, version, err := book.SplitIdentHash(md.ArchiveURI); err == nil {
		md.Version = version
	}

	derived := doc.Find(`[data-type="derived-from"]`).First()
	md.DerivedFromURI, _ = derived.Attr("href")
	md.DerivedFromTitle = derived.Text()

	md.PrintStyle = firstText(doc, `[data-type="print-style"]`)
	return md
}

// IsDocumentPointer reports whether the markup marks itself as a pointer to
// a document that lives elsewhere.
func IsDocumentPointer(root *html.Node) bool {
	doc := goquery.NewDocumentFromNode(root)
	v, _ := doc.Find(`[data-type="document"]`).First().Attr("data-value")
	return v == "pointer"
}

// ParsePointerMetadata reads the slim metadata a document pointer carries:
// its title, archive identity, and target location.
func ParsePointerMetadata(root *html.Node) book.Metadata {
	doc := goquery.NewDocumentFromNode(root)
	md := book.Metadata{
		Title:      firstText(doc, `[data-type="document-title"], [data-type="title"]`),
		ArchiveURI: firstAttr(doc, `[data-type="cnx-archive-uri"]`, "data-value"),
	}
	md.URL, _ = doc.Find("a[href]").First().Attr("href")
	return md
}

// ParseResourceIDs lists the resource ids a rendered page advertises in its
// resources block.
func ParseResourceIDs(root *html.Node) []string {
	doc := goquery.NewDocumentFromNode(root)
	return allText(doc, `[data-type="resources"] li`)
}

// parseActors collects the people tagged by selector. A display-seq meta
// refinement orders them; untagged entries keep document order.
func parseActors(doc *goquery.Document, selector string) []book.Actor {
	type entry struct {
		seq   int
		actor book.Actor
	}
	var entries []entry
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		var actor book.Actor
		if child := s.Children().First(); child.Length() > 0 {
			actor.Name = child.Text()
			actor.Type = child.AttrOr("data-type", "")
			actor.ID = child.AttrOr("href", "")
		} else {
			actor.Name = s.Text()
			if actor.Name == "" {
				actor.Name = s.AttrOr("content", "")
			}
		}

		seq := 0
		if id, ok := s.Attr("id"); ok {
			refine := `meta[refines="#` + id + `"][property="display-seq"]`
			if v, ok := doc.Find(refine).First().Attr("content"); ok {
				if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
					seq = n
				}
			}
		}
		entries = append(entries, entry{seq: seq, actor: actor})
	})

	if len(entries) == 0 {
		return nil
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	actors := make([]book.Actor, 0, len(entries))
	for _, e := range entries {
		actors = append(actors, e.actor)
	}
	return actors
}
