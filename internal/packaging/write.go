package packaging

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/klauspost/compress/flate"
)

const containerTemplateText = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
{{- range .}}
    <rootfile full-path="{{xml .}}" media-type="application/oebps-package+xml"/>
{{- end}}
  </rootfiles>
</container>
`

const opfTemplateText = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0"{{if .Metadata.Identifier}} unique-identifier="pub-id"{{end}}{{if .Metadata.Language}} xml:lang="{{xml .Metadata.Language}}"{{end}}>
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
{{- if .Metadata.Identifier}}
    <dc:identifier id="pub-id">{{xml .Metadata.Identifier}}</dc:identifier>
{{- end}}
{{- if .Metadata.Title}}
    <dc:title>{{xml .Metadata.Title}}</dc:title>
{{- end}}
{{- if .Metadata.Language}}
    <dc:language>{{xml .Metadata.Language}}</dc:language>
{{- end}}
    <dc:publisher>{{xml .Metadata.Publisher}}</dc:publisher>
{{- if .Metadata.LicenseText}}
    <dc:rights>{{xml .Metadata.LicenseText}}</dc:rights>
{{- end}}
{{- if .Metadata.LicenseURL}}
    <link rel="cc:license" href="{{xml .Metadata.LicenseURL}}"/>
{{- end}}
    <meta property="publicationMessage">{{xml .Metadata.PublicationMessage}}</meta>
{{- if .Metadata.BaseAttributionURL}}
    <meta property="cc:attributionURL">{{xml .Metadata.BaseAttributionURL}}</meta>
{{- end}}
  </metadata>
  <manifest>
{{- range .Manifest}}
    <item id="{{.ID}}" href="{{xml .Href}}" media-type="{{xml .MediaType}}"{{if .Properties}} properties="{{xml .Properties}}"{{end}}/>
{{- end}}
  </manifest>
  <spine>
{{- range .Spine}}
    <itemref idref="{{.}}"/>
{{- end}}
  </spine>
</package>
`

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;",
)

var opfTemplates = template.Must(template.New("container").
	Funcs(template.FuncMap{"xml": xmlEscaper.Replace}).
	Parse(containerTemplateText))

var opfTemplate = template.Must(opfTemplates.New("opf").Parse(opfTemplateText))

// WriteEPUB packs the container into an .epub archive. The mimetype entry
// is written first and stored uncompressed, as the container format
// requires. Packages share the contents/ and resources/ directories; items
// with the same name are written once.
func WriteEPUB(w io.Writer, epub *EPUB) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	mimetype, err := zw.CreateHeader(&zip.FileHeader{Name: MimetypePath, Method: zip.Store})
	if err != nil {
		return fmt.Errorf("packaging: write mimetype: %w", err)
	}
	if _, err := io.WriteString(mimetype, MimetypeContents); err != nil {
		return fmt.Errorf("packaging: write mimetype: %w", err)
	}

	container, err := zw.Create(ContainerPath)
	if err != nil {
		return fmt.Errorf("packaging: write container: %w", err)
	}
	if err := opfTemplates.ExecuteTemplate(container, "container", packageNames(epub)); err != nil {
		return fmt.Errorf("packaging: write container: %w", err)
	}

	written := map[string]bool{}
	for _, pkg := range epub.Packages() {
		opf, err := zw.Create(pkg.Name)
		if err != nil {
			return fmt.Errorf("packaging: write package document: %w", err)
		}
		if err := writeOPF(opf, pkg); err != nil {
			return err
		}

		for _, item := range pkg.Items() {
			name := itemPath(item)
			if written[name] {
				continue
			}
			written[name] = true
			f, err := zw.Create(name)
			if err != nil {
				return fmt.Errorf("packaging: write item %q: %w", item.Name, err)
			}
			if _, err := f.Write(item.Data); err != nil {
				return fmt.Errorf("packaging: write item %q: %w", item.Name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("packaging: finish archive: %w", err)
	}
	return nil
}

// WriteDir lays the container out as an exploded directory, the same shape
// Open accepts.
func WriteDir(dir string, epub *EPUB) error {
	writeFile := func(name string, data []byte) error {
		target := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("packaging: write %q: %w", name, err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("packaging: write %q: %w", name, err)
		}
		return nil
	}

	if err := writeFile(MimetypePath, []byte(MimetypeContents)); err != nil {
		return err
	}

	var container bytes.Buffer
	if err := opfTemplates.ExecuteTemplate(&container, "container", packageNames(epub)); err != nil {
		return fmt.Errorf("packaging: write container: %w", err)
	}
	if err := writeFile(ContainerPath, container.Bytes()); err != nil {
		return err
	}

	for _, pkg := range epub.Packages() {
		var opf bytes.Buffer
		if err := writeOPF(&opf, pkg); err != nil {
			return err
		}
		if err := writeFile(pkg.Name, opf.Bytes()); err != nil {
			return err
		}

		for _, item := range pkg.Items() {
			if err := writeFile(itemPath(item), item.Data); err != nil {
				return err
			}
		}
	}
	return nil
}

func packageNames(epub *EPUB) []string {
	names := make([]string, 0, epub.Len())
	for _, pkg := range epub.Packages() {
		names = append(names, pkg.Name)
	}
	return names
}

func itemPath(item *Item) string {
	if item.MediaType == XHTMLMediaType {
		return ContentsDir + "/" + item.Name
	}
	return ResourcesDir + "/" + item.Name
}

func writeOPF(w io.Writer, pkg *Package) error {
	type manifestEntry struct {
		ID         string
		Href       string
		MediaType  string
		Properties string
	}
	data := struct {
		Metadata Metadata
		Manifest []manifestEntry
		Spine    []string
	}{Metadata: pkg.Metadata}

	for i, item := range pkg.Items() {
		id := fmt.Sprintf("item-%d", i+1)
		data.Manifest = append(data.Manifest, manifestEntry{
			ID:         id,
			Href:       itemPath(item),
			MediaType:  item.MediaType,
			Properties: strings.Join(item.Properties, " "),
		})
		if item.MediaType == XHTMLMediaType {
			data.Spine = append(data.Spine, id)
		}
	}
	if err := opfTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("packaging: write package document: %w", err)
	}
	return nil
}
