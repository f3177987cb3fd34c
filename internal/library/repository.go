package library

import (
	"context"
	"fmt"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NotFoundError indicates the requested library record does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("library: %s %q not found", e.Resource, e.Key)
}

// BookRepository abstracts storage operations for stored books.
type BookRepository interface {
	Upsert(ctx context.Context, record *Book) (*Book, error)
	GetByIdentHash(ctx context.Context, identHash string) (*Book, error)
	List(ctx context.Context) ([]*Book, error)
	Delete(ctx context.Context, identHash string) error
}

// DocRepository abstracts storage operations for stored documents.
type DocRepository interface {
	Upsert(ctx context.Context, record *Doc) (*Doc, error)
	GetByIdent(ctx context.Context, ident string) (*Doc, error)
}

// AssetRepository abstracts storage operations for stored resources.
type AssetRepository interface {
	Upsert(ctx context.Context, record *Asset) (*Asset, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)
	GetByDigest(ctx context.Context, digest string) (*Asset, error)
}

// BookDocRepository maintains the ordered book to document join.
type BookDocRepository interface {
	Replace(ctx context.Context, bookID uuid.UUID, docIDs []uuid.UUID) error
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]*BookDoc, error)
	DeleteByBook(ctx context.Context, bookID uuid.UUID) error
}

// BookAssetRepository maintains the ordered book to resource join.
type BookAssetRepository interface {
	Replace(ctx context.Context, bookID uuid.UUID, assetIDs []uuid.UUID) error
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]*BookAsset, error)
	DeleteByBook(ctx context.Context, bookID uuid.UUID) error
}

// DocAssetRepository maintains the ordered document to resource join.
type DocAssetRepository interface {
	Replace(ctx context.Context, docID uuid.UUID, assetIDs []uuid.UUID) error
	ListByDoc(ctx context.Context, docID uuid.UUID) ([]*DocAsset, error)
}

// NewBookModelRepository builds the go-repository-bun handlers for books.
func NewBookModelRepository(db *bun.DB) repository.Repository[*Book] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Book]{
		NewRecord: func() *Book { return &Book{} },
		GetID: func(b *Book) uuid.UUID {
			return b.ID
		},
		SetID: func(b *Book, id uuid.UUID) {
			b.ID = id
		},
		GetIdentifier: func() string {
			return "ident_hash"
		},
		GetIdentifierValue: func(b *Book) string {
			return b.IdentHash
		},
	})
}

// NewDocModelRepository builds the go-repository-bun handlers for documents.
func NewDocModelRepository(db *bun.DB) repository.Repository[*Doc] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Doc]{
		NewRecord: func() *Doc { return &Doc{} },
		GetID: func(d *Doc) uuid.UUID {
			return d.ID
		},
		SetID: func(d *Doc, id uuid.UUID) {
			d.ID = id
		},
		GetIdentifier: func() string {
			return "ident"
		},
		GetIdentifierValue: func(d *Doc) string {
			return d.Ident
		},
	})
}

// NewAssetModelRepository builds the go-repository-bun handlers for resources.
func NewAssetModelRepository(db *bun.DB) repository.Repository[*Asset] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Asset]{
		NewRecord: func() *Asset { return &Asset{} },
		GetID: func(a *Asset) uuid.UUID {
			return a.ID
		},
		SetID: func(a *Asset, id uuid.UUID) {
			a.ID = id
		},
		GetIdentifier: func() string {
			return "digest"
		},
		GetIdentifierValue: func(a *Asset) string {
			return a.Digest
		},
	})
}
