// Package render writes book models back out as XHTML: standalone document
// pages, navigation documents, summary blocks, and whole books collated
// onto a single page. Everything it emits parses back through the htmldoc
// readers.
package render

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/goliatone/go-epub/book"
)

// contentExtension is the file extension for rendered content documents.
const contentExtension = ".xhtml"

// extensionsByMediaType is a fixed table rather than a registry lookup so
// generated file names never depend on host configuration.
var extensionsByMediaType = map[string]string{
	"application/xhtml+xml": ".xhtml",
	"text/html":             ".html",
	"text/css":              ".css",
	"text/plain":            ".txt",
	"application/json":      ".json",
	"application/pdf":       ".pdf",
	"image/png":             ".png",
	"image/jpeg":            ".jpg",
	"image/gif":             ".gif",
	"image/svg+xml":         ".svg",
	"image/webp":            ".webp",
}

// ExtensionForMediaType returns the file extension used when a payload of
// the given media type needs a generated file name.
func ExtensionForMediaType(mediaType string) (string, error) {
	ext, ok := extensionsByMediaType[mediaType]
	if !ok {
		return "", fmt.Errorf("render: no file extension for media type %q", mediaType)
	}
	return ext, nil
}

// ContentFilename names the rendered page file for a content model.
func ContentFilename(identHash string) string {
	return identHash + contentExtension
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
)

var templates = template.Must(template.New("render").
	Funcs(template.FuncMap{
		"xml":   xmlEscaper.Replace,
		"group": groupActors,
	}).
	Parse(templateText))

type actorGroup struct {
	Type   string
	Actors []book.Actor
}

func groupActors(role string, actors []book.Actor) actorGroup {
	return actorGroup{Type: role, Actors: actors}
}
