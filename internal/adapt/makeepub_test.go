package adapt

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"errors"
	"io/fs"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/goliatone/go-epub/book"
	"github.com/goliatone/go-epub/internal/packaging"
)

func TestBinderToPackage(t *testing.T) {
	pkg, err := BinderToPackage(rockBinder(t),
		WithPublisher("krabs"), WithPublicationMessage("$.$"))
	if err != nil {
		t.Fatalf("BinderToPackage: %v", err)
	}

	if pkg.Name != "rock.opf" {
		t.Errorf("package name = %q, want rock.opf", pkg.Name)
	}
	if pkg.Metadata.Publisher != "krabs" || pkg.Metadata.PublicationMessage != "$.$" {
		t.Errorf("publication metadata = %q %q", pkg.Metadata.Publisher, pkg.Metadata.PublicationMessage)
	}

	nav := pkg.Navigation()
	if nav == nil {
		t.Fatal("package has no navigation item")
	}
	if nav.Name != "rock.xhtml" {
		t.Errorf("navigation item name = %q, want rock.xhtml", nav.Name)
	}
	if !reflect.DeepEqual(nav.Properties, []string{"nav"}) {
		t.Errorf("navigation properties = %v", nav.Properties)
	}

	var names []string
	for _, item := range pkg.Items() {
		names = append(names, item.Name)
	}
	sort.Strings(names)
	wantNames := []string{
		"cover.png", "egress@draft.xhtml", "ingress@draft.xhtml",
		"pointer@1.xhtml", "rock.xhtml",
	}
	if !reflect.DeepEqual(names, wantNames) {
		t.Errorf("item names = %v, want %v", names, wantNames)
	}

	navPage := string(nav.Data)
	wantNav := `<nav id="toc"><ol>` +
		`<li><a href="ingress@draft.xhtml">entrée</a></li>` +
		`<li><a href="egress@draft.xhtml">egress</a></li>` +
		`<li><a href="pointer@1.xhtml">Pointer</a></li>` +
		`</ol></nav>`
	if !strings.Contains(navPage, wantNav) {
		t.Errorf("table of contents mismatch\nwant fragment: %s\nin:\n%s", wantNav, navPage)
	}
	if !strings.Contains(navPage, "<title>Kraken (Nueva Versión)</title>") {
		t.Error("navigation is missing the book title")
	}
	if !strings.Contains(navPage, "<li>cover.png</li>") {
		t.Error("navigation is missing the binder resources")
	}
	if strings.Contains(navPage, `data-value="translucent"`) {
		t.Error("binder navigation must not carry the translucent marker")
	}

	egress := grabData(t, pkg, "egress@draft.xhtml")
	for _, want := range []string{
		"<title>egress</title>",
		`<span data-type="cnx-archive-uri" data-value="e78d4f90-e078-49d2-beac-e95e8be70667" />`,
		"<p>hüvasti.</p>",
	} {
		if !strings.Contains(egress, want) {
			t.Errorf("egress page is missing %q", want)
		}
	}
	if strings.Contains(egress, "Derived from:") {
		t.Error("egress page should not carry a derivation block")
	}

	ingress := grabData(t, pkg, "ingress@draft.xhtml")
	for _, want := range []string{
		"Derived from:",
		"http://cnx.org/contents/dd68a67a-11f4-4140-a49f-b78e856e2262@1",
		"Taking Customers' Orders",
	} {
		if !strings.Contains(ingress, want) {
			t.Errorf("ingress page is missing %q", want)
		}
	}

	pointer := grabData(t, pkg, "pointer@1.xhtml")
	for _, want := range []string{
		"<title>Pointer</title>",
		`<span data-type="document" data-value="pointer" />`,
		`<span data-type="cnx-archive-uri" data-value="pointer@1" />`,
		`<a href="http://cnx.org/contents/pointer@1">here</a>`,
	} {
		if !strings.Contains(pointer, want) {
			t.Errorf("pointer page is missing %q", want)
		}
	}
}

func TestBinderToPackageTranslucent(t *testing.T) {
	newDoc := func(id, title, content string) *book.Document {
		doc, err := book.NewDocument(id, []byte(content), rockMetadata(title))
		if err != nil {
			t.Fatalf("NewDocument(%s): %v", id, err)
		}
		return doc
	}
	binder := book.NewTranslucentBinder(book.Metadata{Title: "Kraken"},
		newDoc("ingress", "entrée", "<p>Hello.</p>"),
		newDoc("egress", "egress", "<p>hüvasti.</p>"))

	pkg, err := BinderToPackage(binder)
	if err != nil {
		t.Fatalf("BinderToPackage: %v", err)
	}

	name := strings.TrimSuffix(pkg.Name, ".opf")
	if len(name) != 40 || strings.Trim(name, "0123456789abcdef") != "" {
		t.Errorf("translucent package name = %q, want a 40 character digest", name)
	}
	if pkg.ID() != name {
		t.Errorf("package id = %q, want %q", pkg.ID(), name)
	}
	if !strings.Contains(string(pkg.Navigation().Data),
		`<span data-type="binding" data-value="translucent" />`) {
		t.Error("navigation is missing the translucent marker")
	}

	again, err := BinderToPackage(binder)
	if err != nil {
		t.Fatalf("BinderToPackage: %v", err)
	}
	if again.Name != pkg.Name {
		t.Errorf("package name is not deterministic: %q then %q", pkg.Name, again.Name)
	}
}

func TestBinderToPackageBindsResourceReferences(t *testing.T) {
	jpg, err := book.NewResource("1x1.jpg", strings.NewReader("\xff\xd8\xff"), "image/jpeg", "1x1.jpg")
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	egress, err := book.NewDocument("egress",
		[]byte(`<p><img src="1x1.jpg"/>hüvasti.</p>`), rockMetadata("egress"), jpg)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	ingress, err := book.NewDocument("ingress",
		[]byte(`<p><a href="http://cnx.org/">Hello.</a><a id="nohref">Goodbye</a></p>`),
		rockMetadata("entrée"))
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	binder := book.NewTranslucentBinder(book.Metadata{Title: "Kraken"}, ingress, egress)

	pkg, err := BinderToPackage(binder)
	if err != nil {
		t.Fatalf("BinderToPackage: %v", err)
	}

	page := grabData(t, pkg, "egress@draft.xhtml")
	if !strings.Contains(page, `<p><img src="../resources/1x1.jpg"/>hüvasti.</p>`) {
		t.Errorf("resource reference was not rebound:\n%s", page)
	}
	if _, err := pkg.GrabByName("1x1.jpg"); err != nil {
		t.Errorf("package is missing the bound resource: %v", err)
	}

	hello := grabData(t, pkg, "ingress@draft.xhtml")
	if !strings.Contains(hello, `<a href="http://cnx.org/">Hello.</a>`) {
		t.Errorf("external reference must be left alone:\n%s", hello)
	}
}

func TestBinderToPackageCrossDocumentLinks(t *testing.T) {
	alpha, err := book.NewDocument("alpha",
		[]byte(`<p><a href="beta@draft.xhtml#sec">next</a><a href="beta">bare</a><a href="#here">home</a></p>`),
		rockMetadata("alpha"))
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	beta, err := book.NewDocument("beta", []byte(`<p id="sec">deux</p>`), rockMetadata("beta"))
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	binder := book.NewTranslucentBinder(book.Metadata{Title: "Kraken"}, alpha, beta)

	pkg, err := BinderToPackage(binder)
	if err != nil {
		t.Fatalf("BinderToPackage: %v", err)
	}

	page := grabData(t, pkg, "alpha@draft.xhtml")
	for _, want := range []string{
		`<a href="/contents/beta@draft#sec">next</a>`,
		`<a href="/contents/beta@draft">bare</a>`,
		`<a href="#here">home</a>`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("cross document link mismatch, missing %q in:\n%s", want, page)
		}
	}
}

func TestMakePublicationEPUB(t *testing.T) {
	var buf bytes.Buffer
	if err := MakePublicationEPUB(&buf, "krabs", "$.$", rockBinder(t)); err != nil {
		t.Fatalf("MakePublicationEPUB: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}

	mimetype, err := fs.ReadFile(zr, "mimetype")
	if err != nil {
		t.Fatalf("read mimetype: %v", err)
	}
	if string(mimetype) != "application/epub+zip" {
		t.Errorf("mimetype = %q", mimetype)
	}

	opf, err := fs.ReadFile(zr, "rock.opf")
	if err != nil {
		t.Fatalf("read opf: %v", err)
	}
	for _, want := range []string{
		"<dc:publisher>krabs</dc:publisher>",
		`<meta property="publicationMessage">$.$</meta>`,
		`href="resources/cover.png"`,
	} {
		if !strings.Contains(string(opf), want) {
			t.Errorf("opf is missing %q\n%s", want, opf)
		}
	}

	epub, err := packaging.OpenFS(zr)
	if err != nil {
		t.Fatalf("OpenFS: %v", err)
	}
	if epub.Len() != 1 {
		t.Fatalf("container has %d packages, want 1", epub.Len())
	}
	pkg := epub.Packages()[0]
	if pkg.Metadata.Publisher != "krabs" {
		t.Errorf("publisher = %q, want krabs", pkg.Metadata.Publisher)
	}
	if pkg.Metadata.PublicationMessage != "$.$" {
		t.Errorf("publication message = %q, want $.$", pkg.Metadata.PublicationMessage)
	}

	node, err := AdaptPackage(pkg)
	if err != nil {
		t.Fatalf("AdaptPackage: %v", err)
	}
	if n := len(book.FlattenModel(node)); n != 4 {
		t.Errorf("flattened model has %d nodes, want 4", n)
	}
}

func TestMakePublicationEPUBRequiresInputs(t *testing.T) {
	var buf bytes.Buffer
	var adaptErr *AdaptationError
	if err := MakePublicationEPUB(&buf, "", "$.$", rockBinder(t)); !errors.As(err, &adaptErr) {
		t.Errorf("missing publisher error = %v, want *AdaptationError", err)
	}
	if err := MakePublicationEPUB(&buf, "krabs", "", rockBinder(t)); !errors.As(err, &adaptErr) {
		t.Errorf("missing message error = %v, want *AdaptationError", err)
	}
}

func TestMakeEPUBRequiresBinders(t *testing.T) {
	var buf bytes.Buffer
	var adaptErr *AdaptationError
	if err := MakeEPUB(&buf); !errors.As(err, &adaptErr) {
		t.Errorf("MakeEPUB() error = %v, want *AdaptationError", err)
	}
}

func TestMakeEPUBMultiplePackages(t *testing.T) {
	coda, err := book.NewDocument("coda", []byte("<p>fin.</p>"), rockMetadata("coda"))
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	loose := book.NewTranslucentBinder(book.Metadata{Title: "Loose Pages"}, coda)

	var buf bytes.Buffer
	if err := MakeEPUB(&buf, rockBinder(t), loose); err != nil {
		t.Fatalf("MakeEPUB: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	epub, err := packaging.OpenFS(zr)
	if err != nil {
		t.Fatalf("OpenFS: %v", err)
	}
	if epub.Len() != 2 {
		t.Fatalf("container has %d packages, want 2", epub.Len())
	}
	if got := epub.Packages()[0].Name; got != "rock.opf" {
		t.Errorf("first package = %q, want rock.opf", got)
	}
	second := strings.TrimSuffix(epub.Packages()[1].Name, ".opf")
	if len(second) != 40 || strings.Trim(second, "0123456789abcdef") != "" {
		t.Errorf("second package = %q, want a digest name", second)
	}
}

func TestBinderToPackageInlineReferences(t *testing.T) {
	content := `<p><img src="data:image/png;base64,iVBORw0KGgo="/>pixel</p>`
	doc, err := book.NewDocument("egress", []byte(content), rockMetadata("egress"))
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	binder := book.NewBinder("rock", book.Metadata{Title: "Kraken"}, doc)

	pkg, err := BinderToPackage(binder)
	if err != nil {
		t.Fatalf("BinderToPackage: %v", err)
	}

	var res *packaging.Item
	for _, item := range pkg.Items() {
		if item.MediaType == "image/png" {
			res = item
		}
	}
	if res == nil {
		t.Fatal("inline image was not extracted into a resource item")
	}
	stem := strings.TrimSuffix(res.Name, ".png")
	if len(stem) != 32 || strings.Trim(stem, "0123456789abcdef") != "" {
		t.Errorf("resource name = %q, want a digest-named png", res.Name)
	}
	want, err := base64.StdEncoding.DecodeString("iVBORw0KGgo=")
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	if !bytes.Equal(res.Data, want) {
		t.Errorf("resource data = %q, want decoded data URI payload", res.Data)
	}

	page := grabData(t, pkg, "egress@draft.xhtml")
	if !strings.Contains(page, `src="../resources/`+res.Name+`"`) {
		t.Errorf("page does not reference the extracted resource:\n%s", page)
	}
	if strings.Contains(page, "data:") {
		t.Errorf("page still embeds the data URI:\n%s", page)
	}
}
