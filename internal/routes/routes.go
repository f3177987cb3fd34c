// Package routes owns the intra-book URL space. Rendered pages and adapted
// models agree on these shapes: cross-document links live under /contents/
// and resource payloads under /resources/ unless a host configures its own
// templates.
package routes

import (
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

const (
	defaultGroup         = "book"
	defaultContentsRoute = "contents"
	defaultResourceRoute = "resource"
	defaultParam         = "id"

	contentsPrefix  = "/contents/"
	resourcesPrefix = "/resources/"
)

// Space builds and recognizes book-internal URLs.
type Space struct {
	manager *urlkit.RouteManager

	contentsGroup  string
	resourcesGroup string
	contentsRoute  string
	resourceRoute  string
	identParam     string
	nameParam      string

	contentsCut  string
	resourcesCut string
}

// New returns a Space rooted at baseURL. An empty baseURL produces
// root-relative links, which is what packaged books use.
func New(baseURL string) *Space {
	return &Space{
		manager: urlkit.NewRouteManager(&urlkit.Config{
			Groups: []urlkit.GroupConfig{
				{
					Name:    defaultGroup,
					BaseURL: baseURL,
					Paths: map[string]string{
						defaultContentsRoute: contentsPrefix + ":" + defaultParam,
						defaultResourceRoute: resourcesPrefix + ":" + defaultParam,
					},
				},
			},
		}),
		contentsGroup:  defaultGroup,
		resourcesGroup: defaultGroup,
		contentsRoute:  defaultContentsRoute,
		resourceRoute:  defaultResourceRoute,
		identParam:     defaultParam,
		nameParam:      defaultParam,
		contentsCut:    contentsPrefix,
		resourcesCut:   resourcesPrefix,
	}
}

// FromManager builds a Space over externally configured route templates.
// The group and route names pick the contents and resource templates out of
// the manager; identParam and nameParam name the parameter each template
// takes.
func FromManager(manager *urlkit.RouteManager, contentsGroup, resourcesGroup, contentsRoute, resourceRoute, identParam, nameParam string) *Space {
	s := &Space{
		manager:        manager,
		contentsGroup:  contentsGroup,
		resourcesGroup: resourcesGroup,
		contentsRoute:  contentsRoute,
		resourceRoute:  resourceRoute,
		identParam:     identParam,
		nameParam:      nameParam,
	}
	s.contentsCut = s.derivePrefix(contentsGroup, contentsRoute, identParam, contentsPrefix)
	s.resourcesCut = s.derivePrefix(resourcesGroup, resourceRoute, nameParam, resourcesPrefix)
	return s
}

// derivePrefix recovers the literal prefix of a route template by building
// it with a marker value. Templates whose parameter is not the final path
// segment keep the conventional prefix.
func (s *Space) derivePrefix(group, route, param, fallback string) string {
	const marker = "template-marker"
	url, err := s.manager.Group(group).Builder(route).WithParam(param, marker).Build()
	if err != nil || !strings.HasSuffix(url, marker) {
		return fallback
	}
	return strings.TrimSuffix(url, marker)
}

var defaultSpace = New("")

// Default returns the root-relative space shared by the renderers and
// adapters.
func Default() *Space { return defaultSpace }

// Contents returns the link for a document, /contents/{id} by default.
func (s *Space) Contents(id string) string {
	url, err := s.manager.Group(s.contentsGroup).Builder(s.contentsRoute).
		WithParam(s.identParam, id).Build()
	if err != nil {
		return s.contentsCut + id
	}
	return url
}

// ContentsFragment returns the contents link with a fragment appended.
func (s *Space) ContentsFragment(id, fragment string) string {
	return s.Contents(id) + "#" + fragment
}

// Resource returns the link for a resource payload, /resources/{id} by
// default.
func (s *Space) Resource(id string) string {
	url, err := s.manager.Group(s.resourcesGroup).Builder(s.resourceRoute).
		WithParam(s.nameParam, id).Build()
	if err != nil {
		return s.resourcesCut + id
	}
	return url
}

// CutContents splits a contents link into its document id and optional
// fragment.
func (s *Space) CutContents(href string) (id, fragment string, ok bool) {
	rest, ok := strings.CutPrefix(href, s.contentsCut)
	if !ok {
		return "", "", false
	}
	id, fragment, _ = strings.Cut(rest, "#")
	return id, fragment, id != ""
}

// CutResource splits a resource link into the resource id.
func (s *Space) CutResource(href string) (id string, ok bool) {
	rest, ok := strings.CutPrefix(href, s.resourcesCut)
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

// CutContents splits a link against the default space.
func CutContents(href string) (id, fragment string, ok bool) {
	return defaultSpace.CutContents(href)
}

// CutResource splits a link against the default space.
func CutResource(href string) (id string, ok bool) {
	return defaultSpace.CutResource(href)
}
