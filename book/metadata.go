package book

import (
	"encoding/json"
	"slices"
)

// Actor identifies a person or organization credited on a piece of content.
// Type records the identity system the ID belongs to, e.g. "cnx-id".
type Actor struct {
	Name string `json:"name"`
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Metadata carries the descriptive fields shared by every content model.
// Dates are kept verbatim as authored; the model never reinterprets them.
type Metadata struct {
	Title    string `json:"title"`
	Summary  string `json:"summary,omitempty"`
	Language string `json:"language,omitempty"`
	Created  string `json:"created,omitempty"`
	Revised  string `json:"revised,omitempty"`
	Version  string `json:"version,omitempty"`

	LicenseText string `json:"license_text,omitempty"`
	LicenseURL  string `json:"license_url,omitempty"`

	Subjects []string `json:"subjects,omitempty"`
	Keywords []string `json:"keywords,omitempty"`

	Authors          []Actor `json:"authors,omitempty"`
	Editors          []Actor `json:"editors,omitempty"`
	Illustrators     []Actor `json:"illustrators,omitempty"`
	Translators      []Actor `json:"translators,omitempty"`
	Publishers       []Actor `json:"publishers,omitempty"`
	CopyrightHolders []Actor `json:"copyright_holders,omitempty"`

	// ArchiveURI is the archive identity of the content, when it has one.
	ArchiveURI string `json:"cnx-archive-uri,omitempty"`
	// URL is the remote location a DocumentPointer resolves to.
	URL string `json:"url,omitempty"`

	DerivedFromURI   string `json:"derived_from_uri,omitempty"`
	DerivedFromTitle string `json:"derived_from_title,omitempty"`
	PrintStyle       string `json:"print_style,omitempty"`
}

// Clone returns a copy that shares no slices with the receiver.
func (m Metadata) Clone() Metadata {
	c := m
	c.Subjects = slices.Clone(m.Subjects)
	c.Keywords = slices.Clone(m.Keywords)
	c.Authors = slices.Clone(m.Authors)
	c.Editors = slices.Clone(m.Editors)
	c.Illustrators = slices.Clone(m.Illustrators)
	c.Translators = slices.Clone(m.Translators)
	c.Publishers = slices.Clone(m.Publishers)
	c.CopyrightHolders = slices.Clone(m.CopyrightHolders)
	return c
}

// AsMap converts the metadata to its JSON map shape, the form it is stored
// and exchanged in.
func (m Metadata) AsMap() (map[string]any, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MetadataFromMap rebuilds metadata from its JSON map shape. A nil map
// yields zero metadata.
func MetadataFromMap(src map[string]any) (Metadata, error) {
	var md Metadata
	if src == nil {
		return md, nil
	}
	data, err := json.Marshal(src)
	if err != nil {
		return Metadata{}, err
	}
	if err := json.Unmarshal(data, &md); err != nil {
		return Metadata{}, err
	}
	return md, nil
}
