package library

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryBookRepository is an in-memory implementation for scaffolding and tests.
type MemoryBookRepository struct {
	mu         sync.RWMutex
	books      map[uuid.UUID]*Book
	identIndex map[string]uuid.UUID
}

// NewMemoryBookRepository creates an empty in-memory book repository.
func NewMemoryBookRepository() *MemoryBookRepository {
	return &MemoryBookRepository{
		books:      make(map[uuid.UUID]*Book),
		identIndex: make(map[string]uuid.UUID),
	}
}

// Upsert inserts or replaces the supplied book.
func (m *MemoryBookRepository) Upsert(_ context.Context, record *Book) (*Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneBook(record)
	m.books[copied.ID] = copied
	m.identIndex[copied.IdentHash] = copied.ID
	return cloneBook(copied), nil
}

// GetByIdentHash retrieves a book by ident-hash, returning NotFoundError when absent.
func (m *MemoryBookRepository) GetByIdentHash(_ context.Context, identHash string) (*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.identIndex[identHash]
	if !ok {
		return nil, &NotFoundError{Resource: "book", Key: identHash}
	}
	return cloneBook(m.books[id]), nil
}

// List returns all stored books ordered by ident-hash.
func (m *MemoryBookRepository) List(_ context.Context) ([]*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Book, 0, len(m.books))
	for _, rec := range m.books {
		out = append(out, cloneBook(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IdentHash < out[j].IdentHash })
	return out, nil
}

// Delete removes a book by ident-hash.
func (m *MemoryBookRepository) Delete(_ context.Context, identHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.identIndex[identHash]
	if !ok {
		return &NotFoundError{Resource: "book", Key: identHash}
	}
	delete(m.books, id)
	delete(m.identIndex, identHash)
	return nil
}

// MemoryDocRepository is an in-memory implementation for scaffolding and tests.
type MemoryDocRepository struct {
	mu         sync.RWMutex
	docs       map[uuid.UUID]*Doc
	identIndex map[string]uuid.UUID
}

// NewMemoryDocRepository creates an empty in-memory document repository.
func NewMemoryDocRepository() *MemoryDocRepository {
	return &MemoryDocRepository{
		docs:       make(map[uuid.UUID]*Doc),
		identIndex: make(map[string]uuid.UUID),
	}
}

// Upsert inserts or replaces the supplied document.
func (m *MemoryDocRepository) Upsert(_ context.Context, record *Doc) (*Doc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneDoc(record)
	m.docs[copied.ID] = copied
	m.identIndex[copied.Ident] = copied.ID
	return cloneDoc(copied), nil
}

// GetByIdent retrieves a document by ident, returning NotFoundError when absent.
func (m *MemoryDocRepository) GetByIdent(_ context.Context, ident string) (*Doc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.identIndex[ident]
	if !ok {
		return nil, &NotFoundError{Resource: "doc", Key: ident}
	}
	return cloneDoc(m.docs[id]), nil
}

// MemoryAssetRepository is an in-memory implementation for scaffolding and tests.
type MemoryAssetRepository struct {
	mu          sync.RWMutex
	assets      map[uuid.UUID]*Asset
	digestIndex map[string]uuid.UUID
}

// NewMemoryAssetRepository creates an empty in-memory asset repository.
func NewMemoryAssetRepository() *MemoryAssetRepository {
	return &MemoryAssetRepository{
		assets:      make(map[uuid.UUID]*Asset),
		digestIndex: make(map[string]uuid.UUID),
	}
}

// Upsert inserts or replaces the supplied asset.
func (m *MemoryAssetRepository) Upsert(_ context.Context, record *Asset) (*Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneAsset(record)
	m.assets[copied.ID] = copied
	m.digestIndex[copied.Digest] = copied.ID
	return cloneAsset(copied), nil
}

// GetByID retrieves an asset by row id, returning NotFoundError when absent.
func (m *MemoryAssetRepository) GetByID(_ context.Context, id uuid.UUID) (*Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.assets[id]
	if !ok {
		return nil, &NotFoundError{Resource: "asset", Key: id.String()}
	}
	return cloneAsset(rec), nil
}

// GetByDigest retrieves an asset by content digest, returning NotFoundError when absent.
func (m *MemoryAssetRepository) GetByDigest(_ context.Context, digest string) (*Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.digestIndex[digest]
	if !ok {
		return nil, &NotFoundError{Resource: "asset", Key: digest}
	}
	return cloneAsset(m.assets[id]), nil
}

// MemoryBookDocRepository is an in-memory implementation for scaffolding and tests.
type MemoryBookDocRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID][]*BookDoc
}

// NewMemoryBookDocRepository creates an empty in-memory join repository.
func NewMemoryBookDocRepository() *MemoryBookDocRepository {
	return &MemoryBookDocRepository{rows: make(map[uuid.UUID][]*BookDoc)}
}

// Replace swaps the ordered join rows for a book.
func (m *MemoryBookDocRepository) Replace(_ context.Context, bookID uuid.UUID, docIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]*BookDoc, 0, len(docIDs))
	for i, docID := range docIDs {
		rows = append(rows, &BookDoc{
			ID:       uuid.New(),
			BookID:   bookID,
			DocID:    docID,
			Position: i,
		})
	}
	m.rows[bookID] = rows
	return nil
}

// ListByBook returns the join rows for a book in position order.
func (m *MemoryBookDocRepository) ListByBook(_ context.Context, bookID uuid.UUID) ([]*BookDoc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.rows[bookID]
	out := make([]*BookDoc, len(rows))
	for i, row := range rows {
		copied := *row
		out[i] = &copied
	}
	return out, nil
}

// DeleteByBook removes every join row for a book.
func (m *MemoryBookDocRepository) DeleteByBook(_ context.Context, bookID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rows, bookID)
	return nil
}

// MemoryBookAssetRepository is an in-memory implementation for scaffolding and tests.
type MemoryBookAssetRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID][]*BookAsset
}

// NewMemoryBookAssetRepository creates an empty in-memory join repository.
func NewMemoryBookAssetRepository() *MemoryBookAssetRepository {
	return &MemoryBookAssetRepository{rows: make(map[uuid.UUID][]*BookAsset)}
}

// Replace swaps the ordered join rows for a book.
func (m *MemoryBookAssetRepository) Replace(_ context.Context, bookID uuid.UUID, assetIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]*BookAsset, 0, len(assetIDs))
	for i, assetID := range assetIDs {
		rows = append(rows, &BookAsset{
			ID:       uuid.New(),
			BookID:   bookID,
			AssetID:  assetID,
			Position: i,
		})
	}
	m.rows[bookID] = rows
	return nil
}

// ListByBook returns the join rows for a book in position order.
func (m *MemoryBookAssetRepository) ListByBook(_ context.Context, bookID uuid.UUID) ([]*BookAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.rows[bookID]
	out := make([]*BookAsset, len(rows))
	for i, row := range rows {
		copied := *row
		out[i] = &copied
	}
	return out, nil
}

// DeleteByBook removes every join row for a book.
func (m *MemoryBookAssetRepository) DeleteByBook(_ context.Context, bookID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rows, bookID)
	return nil
}

// MemoryDocAssetRepository is an in-memory implementation for scaffolding and tests.
type MemoryDocAssetRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID][]*DocAsset
}

// NewMemoryDocAssetRepository creates an empty in-memory join repository.
func NewMemoryDocAssetRepository() *MemoryDocAssetRepository {
	return &MemoryDocAssetRepository{rows: make(map[uuid.UUID][]*DocAsset)}
}

// Replace swaps the ordered join rows for a document.
func (m *MemoryDocAssetRepository) Replace(_ context.Context, docID uuid.UUID, assetIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]*DocAsset, 0, len(assetIDs))
	for i, assetID := range assetIDs {
		rows = append(rows, &DocAsset{
			ID:       uuid.New(),
			DocID:    docID,
			AssetID:  assetID,
			Position: i,
		})
	}
	m.rows[docID] = rows
	return nil
}

// ListByDoc returns the join rows for a document in position order.
func (m *MemoryDocAssetRepository) ListByDoc(_ context.Context, docID uuid.UUID) ([]*DocAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.rows[docID]
	out := make([]*DocAsset, len(rows))
	for i, row := range rows {
		copied := *row
		out[i] = &copied
	}
	return out, nil
}

func cloneBook(src *Book) *Book {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Metadata = cloneMap(src.Metadata)
	copied.Tree = cloneMap(src.Tree)
	return &copied
}

func cloneDoc(src *Doc) *Doc {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Content = append([]byte(nil), src.Content...)
	copied.Metadata = cloneMap(src.Metadata)
	return &copied
}

func cloneAsset(src *Asset) *Asset {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Data = append([]byte(nil), src.Data...)
	return &copied
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
