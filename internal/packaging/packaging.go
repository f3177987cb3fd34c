// Package packaging reads and writes the EPUB3 container format: the zip
// (or exploded directory) layout, META-INF/container.xml, OPF package
// documents, and their manifest items. It knows nothing about content
// semantics; adapters build book models on top of it.
package packaging

import (
	"errors"
	"fmt"
	"strings"
)

// Fixed locations and media types inside an EPUB container.
const (
	MimetypePath     = "mimetype"
	MimetypeContents = "application/epub+zip"
	ContainerPath    = "META-INF/container.xml"

	ContainerNamespace = "urn:oasis:names:tc:opendocument:xmlns:container"
	OPFNamespace       = "http://www.idpf.org/2007/opf"
	DCNamespace        = "http://purl.org/dc/elements/1.1/"

	OPFMediaType   = "application/oebps-package+xml"
	XHTMLMediaType = "application/xhtml+xml"

	// ContentsDir holds XHTML items; ResourcesDir everything else.
	ContentsDir  = "contents"
	ResourcesDir = "resources"
)

var (
	// ErrMissingNavigation reports a package without a navigation item.
	ErrMissingNavigation = errors.New("packaging: navigation item not found")
	// ErrAdditionalNavigation reports a package with more than one
	// navigation item; only one can exist per package.
	ErrAdditionalNavigation = errors.New("packaging: only one navigation item can exist per package")
	// ErrItemNotFound reports a name with no manifest item behind it.
	ErrItemNotFound = errors.New("packaging: item not found in package")
	// ErrDuplicateItemName reports two manifest items claiming one file
	// name; the writer could only keep one of them.
	ErrDuplicateItemName = errors.New("packaging: duplicate item name")
)

// MissingMetadataError reports required OPF metadata with no value.
type MissingMetadataError struct {
	Key string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("packaging: a value for %q could not be found", e.Key)
}

// Metadata is the package-level metadata carried by an OPF document.
// Publisher and PublicationMessage are required when reading.
type Metadata struct {
	Title              string
	Publisher          string
	PublicationMessage string
	Identifier         string
	Language           string
	LicenseText        string
	LicenseURL         string
	BaseAttributionURL string
}

// Item is a manifest entry plus its payload. Name is the bare file name;
// the writer decides the directory from the media type.
type Item struct {
	Name         string
	Data         []byte
	MediaType    string
	IsNavigation bool
	Properties   []string
}

// Package is one OPF package: its metadata and items. Exactly one item must
// be the navigation document.
type Package struct {
	Name     string
	Metadata Metadata

	items      []*Item
	navigation *Item
}

// NewPackage validates the items and assembles a package. Name is the OPF
// file name, e.g. "rock.opf".
func NewPackage(name string, metadata Metadata, items ...*Item) (*Package, error) {
	var navigation *Item
	names := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, taken := names[item.Name]; taken {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateItemName, item.Name)
		}
		names[item.Name] = struct{}{}
		if !item.IsNavigation {
			continue
		}
		if navigation != nil {
			return nil, ErrAdditionalNavigation
		}
		navigation = item
	}
	if navigation == nil {
		return nil, ErrMissingNavigation
	}
	return &Package{
		Name:       name,
		Metadata:   metadata,
		items:      items,
		navigation: navigation,
	}, nil
}

// ID returns the package identity: the metadata identifier when present,
// otherwise the OPF file name without its extension.
func (p *Package) ID() string {
	if p.Metadata.Identifier != "" {
		return p.Metadata.Identifier
	}
	return strings.TrimSuffix(p.Name, ".opf")
}

// Items returns the manifest items in declaration order.
func (p *Package) Items() []*Item { return p.items }

// Len reports the number of manifest items.
func (p *Package) Len() int { return len(p.items) }

// Navigation returns the package's navigation document.
func (p *Package) Navigation() *Item { return p.navigation }

// GrabByName returns the item with the given file name.
func (p *Package) GrabByName(name string) (*Item, error) {
	for _, item := range p.items {
		if item.Name == name {
			return item, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrItemNotFound, name)
}

// EPUB is an ordered set of packages read from one container.
type EPUB struct {
	packages []*Package
}

// NewEPUB assembles an EPUB around the given packages.
func NewEPUB(packages ...*Package) *EPUB {
	return &EPUB{packages: packages}
}

// Packages returns the packages in container declaration order.
func (e *EPUB) Packages() []*Package { return e.packages }

// Len reports the number of packages.
func (e *EPUB) Len() int { return len(e.packages) }
