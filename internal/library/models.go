package library

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Book is a stored model tree: the binder's identity, metadata, and the
// serialized tree shape. Document content lives in Doc rows so books that
// share pages share storage.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID        uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	IdentHash string         `bun:"ident_hash,notnull" json:"ident_hash"`
	Title     string         `bun:"title,notnull" json:"title"`
	Metadata  map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	Tree      map[string]any `bun:"tree,type:jsonb,notnull" json:"tree"`
	CreatedAt time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Doc is a stored document: serialized XHTML content plus metadata, keyed
// by the document's ident-hash (or its item name when it has no archive
// identity).
type Doc struct {
	bun.BaseModel `bun:"table:docs,alias:d"`

	ID        uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Ident     string         `bun:"ident,notnull" json:"ident"`
	MediaType string         `bun:"media_type,notnull" json:"media_type"`
	Content   []byte         `bun:"content,notnull" json:"content"`
	Metadata  map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Asset is a stored binary resource, content-addressed by digest.
type Asset struct {
	bun.BaseModel `bun:"table:assets,alias:a"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Digest    string    `bun:"digest,notnull" json:"digest"`
	Filename  string    `bun:"filename,notnull" json:"filename"`
	MediaType string    `bun:"media_type,notnull" json:"media_type"`
	Data      []byte    `bun:"data,notnull" json:"data"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// BookDoc orders documents within a stored book.
type BookDoc struct {
	bun.BaseModel `bun:"table:book_docs,alias:bd"`

	ID       uuid.UUID `bun:",pk,type:uuid" json:"id"`
	BookID   uuid.UUID `bun:"book_id,notnull,type:uuid" json:"book_id"`
	DocID    uuid.UUID `bun:"doc_id,notnull,type:uuid" json:"doc_id"`
	Position int       `bun:"position,notnull" json:"position"`
}

// BookAsset orders the resources attached to a stored book's binder, e.g.
// cover images and collation rulesets that belong to the book rather than
// to any one page.
type BookAsset struct {
	bun.BaseModel `bun:"table:book_assets,alias:ba"`

	ID       uuid.UUID `bun:",pk,type:uuid" json:"id"`
	BookID   uuid.UUID `bun:"book_id,notnull,type:uuid" json:"book_id"`
	AssetID  uuid.UUID `bun:"asset_id,notnull,type:uuid" json:"asset_id"`
	Position int       `bun:"position,notnull" json:"position"`
}

// DocAsset orders the resources attached to a stored document.
type DocAsset struct {
	bun.BaseModel `bun:"table:doc_assets,alias:da"`

	ID       uuid.UUID `bun:",pk,type:uuid" json:"id"`
	DocID    uuid.UUID `bun:"doc_id,notnull,type:uuid" json:"doc_id"`
	AssetID  uuid.UUID `bun:"asset_id,notnull,type:uuid" json:"asset_id"`
	Position int       `bun:"position,notnull" json:"position"`
}
