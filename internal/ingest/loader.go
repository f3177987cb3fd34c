package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Source is a discovered markdown file before it becomes a document.
type Source struct {
	Path     string
	Data     []byte
	Checksum []byte
}

// LoaderConfig configures how markdown files are discovered.
type LoaderConfig struct {
	// Pattern limits discovered files (defaults to "*.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
	// IndexFile is surfaced first within its directory (defaults to "index.md").
	IndexFile string
}

// Loader walks a filesystem for markdown sources in presentation order:
// the index file first, then the rest of a directory lexically.
type Loader struct {
	fs        fs.FS
	pattern   string
	recursive bool
	indexFile string
}

// NewLoader constructs a Loader over the provided filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	indexFile := strings.TrimSpace(cfg.IndexFile)
	if indexFile == "" {
		indexFile = "index.md"
	}
	return &Loader{
		fs:        filesystem,
		pattern:   pattern,
		recursive: cfg.Recursive,
		indexFile: indexFile,
	}
}

// LoadFile reads a single markdown source.
func (l *Loader) LoadFile(ctx context.Context, name string) (*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", name, err)
	}
	sum := sha256.Sum256(data)
	return &Source{
		Path:     name,
		Data:     data,
		Checksum: sum[:],
	}, nil
}

// LoadDirectory discovers markdown sources under dir in presentation order.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := path.Clean(dir)
	if root == "" {
		root = "."
	}

	var names []string
	walkErr := fs.WalkDir(l.fs, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !l.recursive && p != root {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		matched, err := path.Match(l.pattern, path.Base(p))
		if err != nil {
			return fmt.Errorf("ingest: pattern %q: %w", l.pattern, err)
		}
		if matched {
			names = append(names, p)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("ingest: walk %s: %w", root, walkErr)
	}

	l.sortNames(names)

	sources := make([]*Source, 0, len(names))
	for _, name := range names {
		source, err := l.LoadFile(ctx, name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, nil
}

// sortNames orders discovered files directory-first-lexical, with each
// directory's index file promoted to the front of its siblings.
func (l *Loader) sortNames(names []string) {
	sort.Slice(names, func(i, j int) bool {
		di, bi := path.Split(names[i])
		dj, bj := path.Split(names[j])
		if di != dj {
			return di < dj
		}
		if bi == l.indexFile && bj != l.indexFile {
			return true
		}
		if bj == l.indexFile && bi != l.indexFile {
			return false
		}
		return bi < bj
	})
}
