package htmldoc

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/goliatone/go-epub/book"
)

const documentMetadataFixture = `
<div data-type="metadata">
  <h1 data-type="document-title">Document One of Infinity</h1>
  <div data-type="description" class="description">
    By the end of this section, you will be able to:
    <ul class="list"><li class="item">Drive a car</li></ul>
  </div>
  <meta itemprop="dateCreated" content="2013/03/19 15:01:16 -0500"/>
  <meta itemprop="dateModified" content="2013/06/18 15:22:55 -0500"/>
  <span id="charrose" data-type="author"><a href="https://example.org/profiles/charrose" data-type="openstax-id">Charmaine St. Rose</a></span>
  <meta refines="#charrose" property="display-seq" content="3"/>
  <span id="marknewlyn" data-type="author"><a href="https://github.com/marknewlyn" data-type="github-id">Mark Horner</a></span>
  <meta refines="#marknewlyn" property="display-seq" content="1"/>
  <span id="sarblyth" data-type="author"><a href="https://cnx.org/member_profile/sarblyth" data-type="cnx-id">Sarah Blyth</a></span>
  <meta refines="#sarblyth" property="display-seq" content="2"/>
  <span data-type="editor">I. M. Picky</span>
  <span data-type="illustrator">Francis Hablar</span>
  <span data-type="translator">Francis Hablar</span>
  <span data-type="publisher">Ream</span>
  <span data-type="copyright-holder"><a href="https://cnx.org/member_profile/ream" data-type="cnx-id">Ream</a></span>
  <span data-type="subject">Science and Mathematics</span>
  <span data-type="keyword">South Africa</span>
  <a data-type="license" href="http://creativecommons.org/licenses/by/4.0/">CC-By 4.0</a>
  <a data-type="derived-from" href="http://example.org/contents/id@ver">Wild Grains and Warted Feet</a>
  <span data-type="print-style">* print style *</span>
</div>`

func parseFixture(t *testing.T, markup string) *html.Node {
	t.Helper()
	root, err := book.ParseFragment([]byte(markup))
	if err != nil {
		t.Fatalf("ParseFragment returned error: %v", err)
	}
	return root
}

func TestParseMetadata(t *testing.T) {
	md, err := ParseMetadata(parseFixture(t, documentMetadataFixture))
	if err != nil {
		t.Fatalf("ParseMetadata returned error: %v", err)
	}

	if md.Title != "Document One of Infinity" {
		t.Errorf("Title = %q", md.Title)
	}
	if md.Created != "2013/03/19 15:01:16 -0500" {
		t.Errorf("Created = %q", md.Created)
	}
	if md.Revised != "2013/06/18 15:22:55 -0500" {
		t.Errorf("Revised = %q", md.Revised)
	}
	if md.LicenseURL != "http://creativecommons.org/licenses/by/4.0/" {
		t.Errorf("LicenseURL = %q", md.LicenseURL)
	}
	if md.LicenseText != "CC-By 4.0" {
		t.Errorf("LicenseText = %q", md.LicenseText)
	}
	if !strings.Contains(md.Summary, `<ul class="list"><li class="item">Drive a car</li></ul>`) {
		t.Errorf("Summary did not keep markup: %q", md.Summary)
	}
	if !reflect.DeepEqual(md.Subjects, []string{"Science and Mathematics"}) {
		t.Errorf("Subjects = %v", md.Subjects)
	}
	if !reflect.DeepEqual(md.Keywords, []string{"South Africa"}) {
		t.Errorf("Keywords = %v", md.Keywords)
	}
	if md.DerivedFromURI != "http://example.org/contents/id@ver" {
		t.Errorf("DerivedFromURI = %q", md.DerivedFromURI)
	}
	if md.DerivedFromTitle != "Wild Grains and Warted Feet" {
		t.Errorf("DerivedFromTitle = %q", md.DerivedFromTitle)
	}
	if md.PrintStyle != "* print style *" {
		t.Errorf("PrintStyle = %q", md.PrintStyle)
	}

	wantEditors := []book.Actor{{Name: "I. M. Picky"}}
	if !reflect.DeepEqual(md.Editors, wantEditors) {
		t.Errorf("Editors = %v, want %v", md.Editors, wantEditors)
	}
	wantHolders := []book.Actor{{Name: "Ream", Type: "cnx-id", ID: "https://cnx.org/member_profile/ream"}}
	if !reflect.DeepEqual(md.CopyrightHolders, wantHolders) {
		t.Errorf("CopyrightHolders = %v, want %v", md.CopyrightHolders, wantHolders)
	}
}

func TestParseMetadataOrdersAuthorsByDisplaySeq(t *testing.T) {
	md, err := ParseMetadata(parseFixture(t, documentMetadataFixture))
	if err != nil {
		t.Fatalf("ParseMetadata returned error: %v", err)
	}

	want := []book.Actor{
		{Name: "Mark Horner", Type: "github-id", ID: "https://github.com/marknewlyn"},
		{Name: "Sarah Blyth", Type: "cnx-id", ID: "https://cnx.org/member_profile/sarblyth"},
		{Name: "Charmaine St. Rose", Type: "openstax-id", ID: "https://example.org/profiles/charrose"},
	}
	if !reflect.DeepEqual(md.Authors, want) {
		t.Fatalf("Authors = %v, want %v", md.Authors, want)
	}
}

func TestParseMetadataRequiresLicenseURL(t *testing.T) {
	markup := `
<div data-type="metadata">
  <h1 data-type="document-title">Bare Page</h1>
  <div data-type="description">desc</div>
</div>`
	_, err := ParseMetadata(parseFixture(t, markup))
	var missing *MissingMetadataError
	if !errors.As(err, &missing) {
		t.Fatalf("ParseMetadata error = %v, want MissingMetadataError", err)
	}
	if missing.Key != "license_url" {
		t.Fatalf("missing key = %q, want license_url", missing.Key)
	}
}

func TestParseMetadataLenientAllowsGaps(t *testing.T) {
	markup := `<div data-type="metadata"><h1 data-type="document-title">Apple</h1></div>`
	md := ParseMetadataLenient(parseFixture(t, markup))
	if md.Title != "Apple" {
		t.Fatalf("Title = %q, want Apple", md.Title)
	}
	if md.LicenseURL != "" || md.Summary != "" {
		t.Fatalf("lenient parse filled required fields: %+v", md)
	}
}

func TestParseMetadataSplitsArchiveURIVersion(t *testing.T) {
	markup := `<div data-type="metadata">
  <h1 data-type="document-title">Apple</h1>
  <span data-type="cnx-archive-uri" data-value="e78d4f90-e078-49d2-beac-e95e8be70667@1.6"></span>
</div>`
	md := ParseMetadataLenient(parseFixture(t, markup))

	if md.ArchiveURI != "e78d4f90-e078-49d2-beac-e95e8be70667@1.6" {
		t.Errorf("ArchiveURI = %q, want the raw uri kept", md.ArchiveURI)
	}
	if md.Version != "1.6" {
		t.Errorf("Version = %q, want 1.6", md.Version)
	}

	bare := `<div data-type="metadata">
  <h1 data-type="document-title">Apple</h1>
  <span data-type="cnx-archive-uri" data-value="e78d4f90-e078-49d2-beac-e95e8be70667"></span>
</div>`
	md = ParseMetadataLenient(parseFixture(t, bare))
	if md.Version != "" {
		t.Errorf("Version = %q, want empty for an unversioned uri", md.Version)
	}
}

func TestDocumentPointerDetection(t *testing.T) {
	markup := `
<div data-type="metadata">
  <h1 data-type="document-title">Pointer</h1>
  <span data-type="document" data-value="pointer"></span>
  <span data-type="cnx-archive-uri" data-value="pointer@1"></span>
</div>
<p>Click <a href="http://cnx.org/contents/pointer@1">here</a> to read.</p>`
	root := parseFixture(t, markup)

	if !IsDocumentPointer(root) {
		t.Fatalf("IsDocumentPointer = false, want true")
	}
	md := ParsePointerMetadata(root)
	if md.Title != "Pointer" {
		t.Errorf("Title = %q, want Pointer", md.Title)
	}
	if md.ArchiveURI != "pointer@1" {
		t.Errorf("ArchiveURI = %q, want pointer@1", md.ArchiveURI)
	}
	if md.URL != "http://cnx.org/contents/pointer@1" {
		t.Errorf("URL = %q", md.URL)
	}
}

func TestIsDocumentPointerIgnoresPlainDocuments(t *testing.T) {
	root := parseFixture(t, documentMetadataFixture)
	if IsDocumentPointer(root) {
		t.Fatalf("IsDocumentPointer = true for a plain document")
	}
}
