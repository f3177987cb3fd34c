package book

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// Resource is a binary asset referenced by documents or attached to a
// binder. Its digest is content-derived, so identical payloads share a
// digest regardless of their names.
type Resource struct {
	id        string
	mediaType string
	filename  string
	data      []byte
	digest    string
}

// NewResource reads the full payload and builds a resource around it. When
// filename is empty the id doubles as the filename.
func NewResource(id string, r io.Reader, mediaType, filename string) (*Resource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("book: read resource %q: %w", id, err)
	}
	if filename == "" {
		filename = id
	}
	sum := blake3.Sum256(data)
	return &Resource{
		id:        id,
		mediaType: mediaType,
		filename:  filename,
		data:      data,
		digest:    hex.EncodeToString(sum[:16]),
	}, nil
}

// NewDigestResource builds a resource named after its own content hash,
// digest plus the given extension. Inline payloads lifted out of documents
// are stored this way.
func NewDigestResource(r io.Reader, mediaType, ext string) (*Resource, error) {
	res, err := NewResource("", r, mediaType, "")
	if err != nil {
		return nil, err
	}
	name := res.digest + ext
	res.id = name
	res.filename = name
	return res, nil
}

func (r *Resource) ID() string        { return r.id }
func (r *Resource) MediaType() string { return r.mediaType }
func (r *Resource) Filename() string  { return r.filename }

// Digest returns the hex form of the payload's content hash.
func (r *Resource) Digest() string { return r.digest }

// Size reports the payload length in bytes.
func (r *Resource) Size() int64 { return int64(len(r.data)) }

// Data returns the payload. Callers must not modify it.
func (r *Resource) Data() []byte { return r.data }

// Open returns a fresh reader over the payload.
func (r *Resource) Open() io.ReadCloser {
	return io.NopCloser(bytes.NewReader(r.data))
}
