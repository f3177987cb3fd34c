package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-epub/book"
)

// frontMatterEnvelope is the YAML surface authors write at the top of a
// markdown page. Actor entries accept either a bare name or a name/id pair.
type frontMatterEnvelope struct {
	ID       string         `yaml:"id"`
	Version  string         `yaml:"version"`
	Title    string         `yaml:"title"`
	Summary  string         `yaml:"summary"`
	Language string         `yaml:"language"`
	License  string         `yaml:"license"`
	Created  string         `yaml:"created"`
	Revised  string         `yaml:"revised"`
	Subjects []string       `yaml:"subjects"`
	Keywords []string       `yaml:"keywords"`
	Authors  []actorEntry   `yaml:"authors"`
	Editors  []actorEntry   `yaml:"editors"`
	Custom   map[string]any `yaml:",inline"`
}

type actorEntry struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
	Type string `yaml:"type"`
}

// UnmarshalYAML accepts both `- Jane Doe` and `- {name: Jane Doe, id: jdoe}`.
func (a *actorEntry) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		a.Name = name
		return nil
	}
	type plain actorEntry
	var typed plain
	if err := unmarshal(&typed); err != nil {
		return err
	}
	*a = actorEntry(typed)
	return nil
}

// ParseFrontMatter extracts page metadata and the markdown body from source
// bytes. The returned metadata carries everything the model layer needs to
// publish the page.
func ParseFrontMatter(source []byte) (string, book.Metadata, []byte, error) {
	var env frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &env)
	if err != nil {
		return "", book.Metadata{}, nil, fmt.Errorf("ingest: parse frontmatter: %w", err)
	}

	metadata := book.Metadata{
		Title:      strings.TrimSpace(env.Title),
		Summary:    strings.TrimSpace(env.Summary),
		Language:   strings.TrimSpace(env.Language),
		LicenseURL: strings.TrimSpace(env.License),
		Created:    strings.TrimSpace(env.Created),
		Revised:    strings.TrimSpace(env.Revised),
		Version:    strings.TrimSpace(env.Version),
		Subjects:   cleanList(env.Subjects),
		Keywords:   cleanList(env.Keywords),
		Authors:    toActors(env.Authors),
		Editors:    toActors(env.Editors),
	}
	return strings.TrimSpace(env.ID), metadata, body, nil
}

func toActors(entries []actorEntry) []book.Actor {
	if len(entries) == 0 {
		return nil
	}
	actors := make([]book.Actor, 0, len(entries))
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			continue
		}
		actors = append(actors, book.Actor{
			Name: name,
			ID:   strings.TrimSpace(entry.ID),
			Type: strings.TrimSpace(entry.Type),
		})
	}
	return actors
}

func cleanList(values []string) []string {
	var out []string
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
