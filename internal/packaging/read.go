package packaging

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/flate"
)

// Open reads an EPUB from disk. The path may point at a packed .epub file
// or at a directory holding the exploded container layout.
func Open(name string) (*EPUB, error) {
	info, err := os.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("packaging: open %q: %w", name, err)
	}
	if info.IsDir() {
		return OpenFS(os.DirFS(name))
	}

	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("packaging: open %q: %w", name, err)
	}
	defer zr.Close()
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
	return OpenFS(&zr.Reader)
}

// OpenFS reads an EPUB out of any filesystem with the container layout.
// All item payloads are loaded into memory; the filesystem is not needed
// afterwards.
func OpenFS(fsys fs.FS) (*EPUB, error) {
	data, err := fs.ReadFile(fsys, ContainerPath)
	if err != nil {
		return nil, fmt.Errorf("packaging: read container: %w", err)
	}

	var container struct {
		Rootfiles []struct {
			FullPath string `xml:"full-path,attr"`
		} `xml:"rootfiles>rootfile"`
	}
	if err := xml.Unmarshal(data, &container); err != nil {
		return nil, fmt.Errorf("packaging: parse container: %w", err)
	}

	var packages []*Package
	for _, rootfile := range container.Rootfiles {
		pkg, err := readPackage(fsys, rootfile.FullPath)
		if err != nil {
			return nil, err
		}
		packages = append(packages, pkg)
	}
	return NewEPUB(packages...), nil
}

// ReadPackage reads a single OPF package and its items out of fsys.
func ReadPackage(fsys fs.FS, opfPath string) (*Package, error) {
	return readPackage(fsys, opfPath)
}

type opfDocument struct {
	Metadata opfMetadata `xml:"metadata"`
	Manifest struct {
		Items []opfManifestItem `xml:"item"`
	} `xml:"manifest"`
}

type opfMetadata struct {
	Title      string    `xml:"title"`
	Publisher  string    `xml:"publisher"`
	Creator    string    `xml:"creator"`
	Identifier string    `xml:"identifier"`
	Language   string    `xml:"language"`
	Rights     string    `xml:"rights"`
	Metas      []opfMeta `xml:"meta"`
	Links      []opfLink `xml:"link"`
}

type opfMeta struct {
	Property string `xml:"property,attr"`
	Value    string `xml:",chardata"`
}

type opfLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

type opfManifestItem struct {
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

func readPackage(fsys fs.FS, opfPath string) (*Package, error) {
	data, err := fs.ReadFile(fsys, opfPath)
	if err != nil {
		return nil, fmt.Errorf("packaging: read package %q: %w", opfPath, err)
	}
	var opf opfDocument
	if err := xml.Unmarshal(data, &opf); err != nil {
		return nil, fmt.Errorf("packaging: parse package %q: %w", opfPath, err)
	}

	metadata, err := opfToMetadata(opf.Metadata)
	if err != nil {
		return nil, err
	}

	root := path.Dir(opfPath)
	items := make([]*Item, 0, len(opf.Manifest.Items))
	for _, entry := range opf.Manifest.Items {
		payload, err := fs.ReadFile(fsys, path.Join(root, entry.Href))
		if err != nil {
			return nil, fmt.Errorf("packaging: read item %q: %w", entry.Href, err)
		}
		properties := strings.Fields(entry.Properties)
		items = append(items, &Item{
			Name:         path.Base(entry.Href),
			Data:         payload,
			MediaType:    entry.MediaType,
			IsNavigation: hasProperty(properties, "nav"),
			Properties:   properties,
		})
	}

	// Spine ordering is ignored; the navigation document orders content.
	pkg, err := NewPackage(path.Base(opfPath), metadata, items...)
	if err != nil {
		return nil, fmt.Errorf("packaging: package %q: %w", opfPath, err)
	}
	return pkg, nil
}

func opfToMetadata(md opfMetadata) (Metadata, error) {
	out := Metadata{
		Title:       md.Title,
		Publisher:   md.Publisher,
		Identifier:  md.Identifier,
		Language:    strings.ToLower(md.Language),
		LicenseText: md.Rights,
	}
	// Early containers stored the publisher under dc:creator.
	if out.Publisher == "" {
		out.Publisher = md.Creator
	}
	for _, meta := range md.Metas {
		switch meta.Property {
		case "publicationMessage":
			out.PublicationMessage = meta.Value
		case "cc:attributionURL":
			out.BaseAttributionURL = meta.Value
		}
	}
	for _, link := range md.Links {
		if link.Rel == "cc:license" {
			out.LicenseURL = link.Href
		}
	}

	if out.Publisher == "" {
		return Metadata{}, &MissingMetadataError{Key: "publisher"}
	}
	if out.PublicationMessage == "" {
		return Metadata{}, &MissingMetadataError{Key: "publication_message"}
	}
	return out, nil
}

func hasProperty(properties []string, want string) bool {
	for _, p := range properties {
		if p == want {
			return true
		}
	}
	return false
}
